// Package middleware provides handler decorators for the event bus, used to
// observe the event stream without touching the components that produce it.
package middleware

import (
	"context"
	"log/slog"

	"github.com/linqiao-quant/ashare/pkg/bus"
	"github.com/linqiao-quant/ashare/pkg/common"
)

type MonitorFlags uint16

const (
	MonitorNone MonitorFlags = 1 << iota
	MonitorAll
	MonitorBars
	MonitorOrders
	MonitorFills
	MonitorRejections
	MonitorCancellations
	MonitorCash
	MonitorEquity
)

// Monitor logs selected events as they pass through to the wrapped handler.
type Monitor struct {
	flags MonitorFlags
}

func NewMonitor(flags MonitorFlags) *Monitor {
	return &Monitor{
		flags: flags,
	}
}

func (m *Monitor) enabled(flag MonitorFlags) bool {
	return m.flags&flag != 0 || m.flags&MonitorAll != 0
}

func (m *Monitor) WithBar(handler bus.BarEventHandler) bus.BarEventHandler {
	return func(ctx context.Context, bar common.Bar) {
		if m.enabled(MonitorBars) {
			slog.Info("event", "bar", bar)
		}
		handler(ctx, bar)
	}
}

func (m *Monitor) WithOrder(handler bus.OrderEventHandler) bus.OrderEventHandler {
	return func(ctx context.Context, order common.Order) {
		if m.enabled(MonitorOrders) {
			slog.Info("event", "order", order)
		}
		handler(ctx, order)
	}
}

func (m *Monitor) WithOrderFilled(handler bus.OrderFilledEventHandler) bus.OrderFilledEventHandler {
	return func(ctx context.Context, fill common.Fill) {
		if m.enabled(MonitorFills) {
			slog.Info("event", "fill", fill)
		}
		handler(ctx, fill)
	}
}

func (m *Monitor) WithOrderRejected(handler bus.OrderRejectedEventHandler) bus.OrderRejectedEventHandler {
	return func(ctx context.Context, rejection common.OrderRejected) {
		if m.enabled(MonitorRejections) {
			slog.Info("event", "rejection", rejection)
		}
		handler(ctx, rejection)
	}
}

func (m *Monitor) WithOrderCancelled(handler bus.OrderCancelledEventHandler) bus.OrderCancelledEventHandler {
	return func(ctx context.Context, cancellation common.OrderCancelled) {
		if m.enabled(MonitorCancellations) {
			slog.Info("event", "cancellation", cancellation)
		}
		handler(ctx, cancellation)
	}
}

func (m *Monitor) WithCash(handler bus.CashEventHandler) bus.CashEventHandler {
	return func(ctx context.Context, cash common.Cash) {
		if m.enabled(MonitorCash) {
			slog.Info("event", "cash", cash)
		}
		handler(ctx, cash)
	}
}

func (m *Monitor) WithEquity(handler bus.EquityEventHandler) bus.EquityEventHandler {
	return func(ctx context.Context, equity common.Equity) {
		if m.enabled(MonitorEquity) {
			slog.Info("event", "equity", equity)
		}
		handler(ctx, equity)
	}
}
