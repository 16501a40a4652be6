// internal/minting/amount.go
package minting

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rovshanmuradov/token-minter/internal/storage/models"
)

// ErrInvalidAmount is returned for UI amounts that do not map to base units.
var ErrInvalidAmount = errors.New("invalid amount")

var maxUnits = models.Units(^uint64(0))

// ToBaseUnits converts a UI amount to base units: amount × 10^decimals.
// The amount must be non-negative and have at most decimals fractional digits.
func ToBaseUnits(amount decimal.Decimal, decimals uint8) (uint64, error) {
	if amount.IsNegative() {
		return 0, fmt.Errorf("%w: %s is negative", ErrInvalidAmount, amount)
	}
	units := amount.Shift(int32(decimals))
	if !units.IsInteger() {
		return 0, fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidAmount, amount, decimals)
	}
	if units.GreaterThan(maxUnits) {
		return 0, fmt.Errorf("%w: %s exceeds the u64 range", ErrInvalidAmount, amount)
	}
	return units.BigInt().Uint64(), nil
}

// ToUIAmount converts base units to a UI amount.
func ToUIAmount(units uint64, decimals uint8) decimal.Decimal {
	return models.Units(units).Shift(-int32(decimals))
}
