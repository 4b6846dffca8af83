package strategy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linqiao-quant/ashare/pkg/bus"
	"github.com/linqiao-quant/ashare/pkg/common"
	"github.com/linqiao-quant/ashare/pkg/utility"
	"github.com/linqiao-quant/ashare/pkg/utility/fixed"
)

const rsiComponentName = "strategy.rsi"

var (
	oversold   = fixed.FromInt64(30, 0)
	overbought = fixed.FromInt64(70, 0)
)

// Rsi is a mean-reversion advisor on Wilder's relative strength index: buy
// when the index drops below 30, liquidate when it rises above 70.
type Rsi struct {
	router *bus.Router

	symbol   string
	period   int64
	buyRatio fixed.Point

	prevClose fixed.Point
	seen      int64
	avgGain   fixed.Point
	avgLoss   fixed.Point

	invested bool
	pending  bool
}

func NewRsi(router *bus.Router, symbol string, period int, buyRatio fixed.Point) (*Rsi, error) {
	if period <= 1 {
		return nil, fmt.Errorf("rsi period %d must be at least 2", period)
	}
	return &Rsi{
		router:   router,
		symbol:   symbol,
		period:   int64(period),
		buyRatio: buyRatio,
		avgGain:  fixed.Zero,
		avgLoss:  fixed.Zero,
	}, nil
}

func (a *Rsi) OnBar(_ context.Context, bar common.Bar) {
	if bar.Symbol != a.symbol {
		return
	}

	if a.seen == 0 {
		a.prevClose = bar.Close
		a.seen++
		return
	}

	delta := bar.Close.Sub(a.prevClose)
	a.prevClose = bar.Close

	gain, loss := fixed.Zero, fixed.Zero
	if delta.IsNeg() {
		loss = delta.Abs()
	} else {
		gain = delta
	}

	if a.seen <= a.period {
		// Warmup: plain average over the first period deltas.
		a.avgGain = a.avgGain.Add(gain.DivInt64(a.period))
		a.avgLoss = a.avgLoss.Add(loss.DivInt64(a.period))
	} else {
		// Wilder smoothing.
		a.avgGain = a.avgGain.MulInt64(a.period - 1).Add(gain).DivInt64(a.period)
		a.avgLoss = a.avgLoss.MulInt64(a.period - 1).Add(loss).DivInt64(a.period)
	}
	a.seen++

	if a.seen <= a.period {
		return
	}

	index := a.index()
	switch {
	case index.Lt(oversold) && !a.invested && !a.pending:
		a.submit(common.Order{
			Side:      common.OrderSideBuy,
			Mode:      common.SizeCashRatio,
			Ratio:     a.buyRatio,
			Symbol:    a.symbol,
			TimeStamp: bar.Day,
		})
	case index.Gt(overbought) && a.invested && !a.pending:
		a.submit(common.Order{
			Side:      common.OrderSideSell,
			Mode:      common.SizePositionRatio,
			Ratio:     fixed.One,
			Symbol:    a.symbol,
			TimeStamp: bar.Day,
		})
	}
}

func (a *Rsi) OnOrderFilled(_ context.Context, fill common.Fill) {
	if fill.Symbol != a.symbol {
		return
	}
	a.pending = false
	a.invested = fill.Side == common.OrderSideBuy
}

func (a *Rsi) OnOrderRejected(_ context.Context, rejection common.OrderRejected) {
	if rejection.OriginalOrder.Symbol != a.symbol {
		return
	}
	a.pending = false
	slog.Warn("order rejected", "strategy", rsiComponentName, "reason", rejection.Reason)
}

func (a *Rsi) index() fixed.Point {
	if a.avgLoss.IsZero() {
		return fixed.Hundred
	}
	rs := a.avgGain.Div(a.avgLoss)
	return fixed.Hundred.Sub(fixed.Hundred.Div(fixed.One.Add(rs)))
}

func (a *Rsi) submit(order common.Order) {
	order.State = common.OrderStatePending
	order.Source = rsiComponentName
	order.ExecutionId = utility.GetExecutionID()
	order.TraceID = utility.CreateTraceID()

	if err := a.router.Post(bus.OrderEvent, order); err != nil {
		slog.Error("unable to post order event", "error", err)
		return
	}
	a.pending = true
}
