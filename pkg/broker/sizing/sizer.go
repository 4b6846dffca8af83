// Package sizing converts strategy intents expressed as ratios into round-lot
// share counts. It is stateless: cash and holdings move between bars, so every
// sizing decision queries the account fresh.
package sizing

import (
	"errors"
	"fmt"

	"github.com/linqiao-quant/ashare/pkg/utility/fixed"
)

var (
	ErrInvalidPrice = errors.New("invalid price")
	ErrInvalidRatio = errors.New("invalid ratio")
)

// FromCashRatio sizes a buy: the share count affordable with availableCash
// multiplied by ratio at the given price, truncated down to a multiple of
// lotSize. Results below one lot clamp to zero.
func FromCashRatio(availableCash, price, ratio fixed.Point, lotSize int64) (int64, error) {
	if price.Lte(fixed.Zero) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidPrice, price)
	}
	if err := checkRatio(ratio); err != nil {
		return 0, err
	}
	if availableCash.Lte(fixed.Zero) {
		return 0, nil
	}

	shares := availableCash.Mul(ratio).Div(price).Int64()
	return truncateToLot(shares, lotSize), nil
}

// FromPositionRatio sizes a sell as a fraction of the held quantity, truncated
// down to a multiple of lotSize. The result never exceeds heldQuantity.
func FromPositionRatio(heldQuantity int64, ratio fixed.Point, lotSize int64) (int64, error) {
	if err := checkRatio(ratio); err != nil {
		return 0, err
	}
	if heldQuantity <= 0 {
		return 0, nil
	}

	shares := ratio.MulInt64(heldQuantity).Int64()
	return truncateToLot(shares, lotSize), nil
}

func checkRatio(ratio fixed.Point) error {
	if ratio.Lt(fixed.Zero) || ratio.Gt(fixed.One) {
		return fmt.Errorf("%w: %s not in [0, 1]", ErrInvalidRatio, ratio)
	}
	return nil
}

func truncateToLot(shares, lotSize int64) int64 {
	if lotSize <= 0 {
		panic(fmt.Sprintf("sizing: lot size %d must be positive", lotSize))
	}
	if shares <= 0 {
		return 0
	}
	return shares - shares%lotSize
}
