package txfeed

import (
	"context"
	"errors"
)

var (
	// ErrNetworkTimeout indicates a fetch attempt exceeded its time budget
	// before the indexer answered.
	ErrNetworkTimeout = errors.New("indexer request timed out")

	// ErrIndexerError indicates the indexer answered with an HTTP-level or
	// application-level failure (non-2xx status, or success=false envelope).
	ErrIndexerError = errors.New("indexer returned an error")

	// ErrMalformedResponse indicates the indexer's payload violated the
	// expected schema.
	ErrMalformedResponse = errors.New("indexer response is malformed")
)

// Asset identifies the currency or token a transfer moved.
type Asset struct {
	Symbol   string `json:"symbol"`
	Decimals int32  `json:"decimals"`
	Name     string `json:"name"`
}

// Operation is one sub-transfer inside a token-contract interaction. An
// empty operations list on a Transfer means a simple value transfer.
type Operation struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
	Asset Asset  `json:"asset"`
}

// Transfer is one raw transfer record as reported by the external indexer.
// The feed pipeline treats it as read-only input.
type Transfer struct {
	Hash       string      `json:"hash"`
	From       string      `json:"from"`
	To         string      `json:"to"`
	Value      string      `json:"value"`     // smallest-unit integer string
	Timestamp  int64       `json:"timestamp"` // epoch milliseconds
	Error      bool        `json:"error"`
	Asset      Asset       `json:"asset"`
	Operations []Operation `json:"operations"`
}

// AssetBalance is one asset position as reported by the indexer.
type AssetBalance struct {
	Symbol   string `json:"symbol"`
	Decimals int32  `json:"decimals"`
	Name     string `json:"name"`
	Balance  string `json:"balance"` // smallest-unit integer string
}

// Indexer is the remote transaction-indexing API the feed pipeline reads
// from. Implementations map transport and schema failures onto the
// sentinels above. The transfer list is expected newest-first; the pipeline
// never re-sorts it.
type Indexer interface {
	// AccountTransactions returns the full transfer history for the
	// address on the given chain.
	AccountTransactions(ctx context.Context, address string, chainID int) ([]Transfer, error)

	// AccountAssets returns the current asset balances for the address on
	// the given chain.
	AccountAssets(ctx context.Context, address string, chainID int) ([]AssetBalance, error)
}
