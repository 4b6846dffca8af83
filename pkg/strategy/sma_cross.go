// Package strategy ships two reference advisors driving the broker through
// order events: a moving-average crossover and an RSI reversal. Both are
// long-only and size orders as ratios, leaving round-lot resolution to the
// broker.
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

const smaCrossComponentName = "strategy.sma-cross"

// SmaCross buys on a golden cross (fast average rising through the slow one)
// and liquidates on the death cross. Indicator state lives in fixed-size ring
// buffers keyed by nothing but arrival order.
type SmaCross struct {
	router *bus.Router

	symbol   string
	buyRatio fixed.Point

	fast *fixed.RingBuffer
	slow *fixed.RingBuffer

	hasPrev  bool
	wasAbove bool

	invested bool
	pending  bool
}

func NewSmaCross(router *bus.Router, symbol string, fastPeriod, slowPeriod int, buyRatio fixed.Point) (*SmaCross, error) {
	if fastPeriod <= 0 || fastPeriod >= slowPeriod {
		return nil, fmt.Errorf("fast period %d must be positive and below slow period %d", fastPeriod, slowPeriod)
	}
	return &SmaCross{
		router:   router,
		symbol:   symbol,
		buyRatio: buyRatio,
		fast:     fixed.NewRingBuffer(fastPeriod),
		slow:     fixed.NewRingBuffer(slowPeriod),
	}, nil
}

func (a *SmaCross) OnBar(_ context.Context, bar common.Bar) {
	if bar.Symbol != a.symbol {
		return
	}

	a.fast.Add(bar.Close)
	a.slow.Add(bar.Close)
	if !a.slow.IsFull() {
		return
	}

	above := a.fast.Mean().Gt(a.slow.Mean())
	if !a.hasPrev {
		a.hasPrev = true
		a.wasAbove = above
		return
	}

	switch {
	case above && !a.wasAbove && !a.invested && !a.pending:
		a.submit(common.Order{
			Side:      common.OrderSideBuy,
			Mode:      common.SizeCashRatio,
			Ratio:     a.buyRatio,
			Symbol:    a.symbol,
			TimeStamp: bar.Day,
		})
	case !above && a.wasAbove && a.invested && !a.pending:
		a.submit(common.Order{
			Side:      common.OrderSideSell,
			Mode:      common.SizePositionRatio,
			Ratio:     fixed.One,
			Symbol:    a.symbol,
			TimeStamp: bar.Day,
		})
	}

	a.wasAbove = above
}

func (a *SmaCross) OnOrderFilled(_ context.Context, fill common.Fill) {
	if fill.Symbol != a.symbol {
		return
	}
	a.pending = false
	a.invested = fill.Side == common.OrderSideBuy
}

func (a *SmaCross) OnOrderRejected(_ context.Context, rejection common.OrderRejected) {
	if rejection.OriginalOrder.Symbol != a.symbol {
		return
	}
	a.pending = false
	slog.Warn("order rejected", "strategy", smaCrossComponentName, "reason", rejection.Reason)
}

func (a *SmaCross) submit(order common.Order) {
	order.State = common.OrderStatePending
	order.Source = smaCrossComponentName
	order.ExecutionId = utility.GetExecutionID()
	order.TraceID = utility.CreateTraceID()

	if err := a.router.Post(bus.OrderEvent, order); err != nil {
		slog.Error("unable to post order event", "error", err)
		return
	}
	a.pending = true
}
