package txfeed

import "strings"

// TransferState is the viewer-relative role of a transfer.
type TransferState string

const (
	// StateSent means the viewer address is the sender.
	StateSent TransferState = "SENT"

	// StateReceived means the viewer address is the recipient.
	StateReceived TransferState = "RECEIVED"

	// StateSelf means sender and recipient are the same address.
	StateSelf TransferState = "SELF"

	// StateError means the transfer itself failed on chain, regardless of
	// direction.
	StateError TransferState = "ERROR"

	// StateUnhandled means the record does not involve the viewer in a
	// recognized role. It still renders; an unhandled record is a visible
	// signal, never a silent filter.
	StateUnhandled TransferState = "UNHANDLED"
)

// Classify computes the viewer-relative state of a transfer. It is a pure
// function of (record, viewer address); recomputing with the same inputs
// always yields the same output.
//
// Precedence is fixed: ERROR beats SELF beats SENT beats RECEIVED. A failed
// self-transfer is ERROR, not SELF. Address comparison is case-insensitive.
func Classify(t Transfer, viewerAddress string) TransferState {
	switch {
	case t.Error:
		return StateError
	case strings.EqualFold(t.To, t.From):
		return StateSelf
	case strings.EqualFold(t.From, viewerAddress):
		return StateSent
	case strings.EqualFold(t.To, viewerAddress):
		return StateReceived
	default:
		return StateUnhandled
	}
}
