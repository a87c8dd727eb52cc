// Package units converts smallest-unit integer amounts (e.g. wei) into
// fixed-point decimal strings using exact decimal arithmetic. Binary
// floating point is never involved, so financial values round predictably.
package units

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// BalancePlaces is the default number of decimal places for asset balances.
	BalancePlaces = 4

	// AmountPlaces is the default number of decimal places for transfer amounts.
	AmountPlaces = 2
)

// Format converts a smallest-unit integer string into a fixed-point decimal
// string. The decimals argument is the asset's smallest-unit exponent
// (18 for ether), and places is the number of fractional digits to keep.
//
// Returns an error if raw is not a valid decimal integer string.
func Format(raw string, decimals, places int32) (string, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return "", fmt.Errorf("invalid amount %q: %w", raw, err)
	}

	return d.Shift(-decimals).StringFixed(places), nil
}
