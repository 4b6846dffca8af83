package bus

import (
	"context"

	"github.com/linqiao-quant/ashare/pkg/common"
)

type EventHandler[T any] = func(context.Context, T)

type BarEventHandler EventHandler[common.Bar]
type OrderEventHandler EventHandler[common.Order]
type OrderFilledEventHandler EventHandler[common.Fill]
type OrderRejectedEventHandler EventHandler[common.OrderRejected]
type OrderCancelledEventHandler EventHandler[common.OrderCancelled]
type CashEventHandler EventHandler[common.Cash]
type EquityEventHandler EventHandler[common.Equity]

// MergeHandlers fans one event out to several handlers in order. The broker
// handler is merged ahead of the strategy handler on bar events so the
// strategy always observes post-mark-to-market account state.
func MergeHandlers[T any](handlers ...EventHandler[T]) EventHandler[T] {
	return func(ctx context.Context, event T) {
		for _, handler := range handlers {
			handler(ctx, event)
		}
	}
}
