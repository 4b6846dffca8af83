package bus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/linqiao-quant/ashare/pkg/common"
)

type event struct {
	id   EventId
	data interface{}
}

// Router is a single-goroutine event dispatcher. Posting is non-blocking;
// dispatching happens inside Exec or ExecLoop on the caller's goroutine, so
// handlers never run concurrently and events are processed strictly in
// posting order. That ordering is what makes same-bar order submission
// deterministic.
type Router struct {
	// Channels
	done   chan error
	events chan event

	// Handlers
	BarHandler            BarEventHandler
	OrderHandler          OrderEventHandler
	OrderFilledHandler    OrderFilledEventHandler
	OrderRejectedHandler  OrderRejectedEventHandler
	OrderCancelledHandler OrderCancelledEventHandler
	CashHandler           CashEventHandler
	EquityHandler         EquityEventHandler

	// Statistics
	runTime       time.Duration
	postCount     uint64
	postFails     uint64
	dispatchCount uint64
	dispatchFails uint64
}

func NewRouter(eventCapacity int) *Router {
	return &Router{
		done:   make(chan error),
		events: make(chan event, eventCapacity),
	}
}

func (r *Router) Post(id EventId, data interface{}) error {
	select {
	case r.events <- event{id, data}:
		r.postCount++
		return nil
	default:
		r.postFails++
		return errors.New("event capacity reached")
	}
}

func (r *Router) Exec(ctx context.Context) {
	r.resetStatistics()

	start := time.Now()
	defer func() {
		r.runTime += time.Since(start)
	}()

	for {
		select {
		case <-ctx.Done():
			r.done <- ctx.Err()
			return
		case ev := <-r.events:
			r.dispatchCount++
			if err := r.dispatch(ctx, ev); err != nil {
				r.dispatchFails++
				slog.Warn("dispatch failed", "error", err, "event", ev)
			}
		}
	}
}

// ExecLoop drains pending events before each call of doOnceCb. With the bar
// feed as the callback, every event raised by bar N (orders, fills, account
// updates) is fully dispatched before bar N+1 enters the system.
func (r *Router) ExecLoop(ctx context.Context, doOnceCb func() error) {
	r.resetStatistics()

	start := time.Now()
	defer func() {
		r.runTime += time.Since(start)
	}()

	for {
		select {
		case <-ctx.Done():
			r.done <- ctx.Err()
			return
		case ev := <-r.events:
			r.dispatchCount++
			if err := r.dispatch(ctx, ev); err != nil {
				r.dispatchFails++
				slog.Warn("dispatch failed", "error", err, "event", ev)
			}
		default:
			if err := doOnceCb(); err != nil {
				r.done <- err
				return
			}
		}
	}
}

func (r *Router) Done() <-chan error {
	return r.done
}

func (r *Router) Statistics() Statistics {
	throughput := 0.0
	if r.runTime > 0 {
		throughput = float64(r.postCount) / r.runTime.Seconds()
	}
	return Statistics{
		RunTime:       r.runTime,
		PostCount:     r.postCount,
		PostFails:     r.postFails,
		DispatchCount: r.dispatchCount,
		DispatchFails: r.dispatchFails,
		Throughput:    throughput,
	}
}

func (r *Router) resetStatistics() {
	r.runTime = 0
	r.postCount = 0
	r.postFails = 0
	r.dispatchCount = 0
	r.dispatchFails = 0
}

func (r *Router) dispatch(ctx context.Context, ev event) error {
	switch ev.id {
	case BarEvent:
		bar, ok := ev.data.(common.Bar)
		if !ok {
			return errors.New("invalid type assertion for bar event")
		}
		if r.BarHandler != nil {
			r.BarHandler(ctx, bar)
		} else {
			slog.Debug("bar handler is nil")
		}
	case OrderEvent:
		order, ok := ev.data.(common.Order)
		if !ok {
			return errors.New("invalid type assertion for order event")
		}
		if r.OrderHandler != nil {
			r.OrderHandler(ctx, order)
		} else {
			slog.Debug("order handler is nil")
		}
	case OrderFilledEvent:
		fill, ok := ev.data.(common.Fill)
		if !ok {
			return errors.New("invalid type assertion for order filled event")
		}
		if r.OrderFilledHandler != nil {
			r.OrderFilledHandler(ctx, fill)
		} else {
			slog.Debug("order filled handler is nil")
		}
	case OrderRejectedEvent:
		rejection, ok := ev.data.(common.OrderRejected)
		if !ok {
			return errors.New("invalid type assertion for order rejected event")
		}
		if r.OrderRejectedHandler != nil {
			r.OrderRejectedHandler(ctx, rejection)
		} else {
			slog.Debug("order rejected handler is nil")
		}
	case OrderCancelledEvent:
		cancellation, ok := ev.data.(common.OrderCancelled)
		if !ok {
			return errors.New("invalid type assertion for order cancelled event")
		}
		if r.OrderCancelledHandler != nil {
			r.OrderCancelledHandler(ctx, cancellation)
		} else {
			slog.Debug("order cancelled handler is nil")
		}
	case CashEvent:
		cash, ok := ev.data.(common.Cash)
		if !ok {
			return errors.New("invalid type assertion for cash event")
		}
		if r.CashHandler != nil {
			r.CashHandler(ctx, cash)
		} else {
			slog.Debug("cash handler is nil")
		}
	case EquityEvent:
		equity, ok := ev.data.(common.Equity)
		if !ok {
			return errors.New("invalid type assertion for equity event")
		}
		if r.EquityHandler != nil {
			r.EquityHandler(ctx, equity)
		} else {
			slog.Debug("equity handler is nil")
		}
	default:
		return fmt.Errorf("unsupported event id: %v", ev.id)
	}
	return nil
}
