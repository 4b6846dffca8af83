package fees

import (
	"errors"
	"fmt"

	"github.com/linqiao-quant/ashare/pkg/common"
	"github.com/linqiao-quant/ashare/pkg/utility/fixed"
)

// ErrInvalidTradeParameters indicates caller misuse: a non-positive price or
// quantity. It is returned synchronously, never as a rejection event.
var ErrInvalidTradeParameters = errors.New("invalid trade parameters")

// Schedule holds the per-run fee configuration for A-share trading.
// Commission is charged on both sides with a floor; stamp duty is charged on
// sells only.
type Schedule struct {
	CommissionRate fixed.Point
	StampDutyRate  fixed.Point
	MinCommission  fixed.Point
}

// Fee is the cost breakdown of one trade, rounded half-up to fen (0.01 CNY),
// the amounts actually debited from the account.
type Fee struct {
	Commission fixed.Point
	StampDuty  fixed.Point
	Total      fixed.Point
}

// Compute is pure and safe to call repeatedly, e.g. for pre-trade cost
// estimation when sizing a buy against available cash.
func (s Schedule) Compute(side common.OrderSide, price fixed.Point, quantity int64) (Fee, error) {
	if price.Lte(fixed.Zero) || quantity <= 0 {
		return Fee{}, fmt.Errorf("%w: price=%s quantity=%d", ErrInvalidTradeParameters, price, quantity)
	}

	value := price.MulInt64(quantity)

	commission := value.Mul(s.CommissionRate)
	if commission.Lt(s.MinCommission) {
		commission = s.MinCommission
	}
	commission = commission.RoundHalfUp(2)

	stampDuty := fixed.Zero
	if side == common.OrderSideSell {
		stampDuty = value.Mul(s.StampDutyRate).RoundHalfUp(2)
	}

	return Fee{
		Commission: commission,
		StampDuty:  stampDuty,
		Total:      commission.Add(stampDuty),
	}, nil
}
