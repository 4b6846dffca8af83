package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linqiao-quant/ashare/pkg/common"
)

func TestBusRouter_Post(t *testing.T) {
	r := NewRouter(10)

	require.NoError(t, r.Post(BarEvent, common.Bar{}))
	assert.Equal(t, uint64(1), r.postCount)
}

func TestBusRouter_PostCapacityReached(t *testing.T) {
	r := NewRouter(1)

	require.NoError(t, r.Post(BarEvent, common.Bar{}))
	assert.Error(t, r.Post(BarEvent, common.Bar{}))
	assert.Equal(t, uint64(1), r.postFails)
}

func TestBusRouter_DispatchTypeMismatch(t *testing.T) {
	r := NewRouter(1)

	err := r.dispatch(context.Background(), event{id: BarEvent, data: "not a bar"})
	assert.Error(t, err)

	err = r.dispatch(context.Background(), event{id: EventId(255), data: nil})
	assert.Error(t, err)
}

func TestBusRouter_ExecLoopDrainsEventsFirst(t *testing.T) {
	r := NewRouter(10)

	var order []string
	r.BarHandler = func(_ context.Context, _ common.Bar) {
		order = append(order, "bar")
	}
	r.OrderHandler = func(_ context.Context, _ common.Order) {
		order = append(order, "order")
	}

	require.NoError(t, r.Post(BarEvent, common.Bar{}))
	require.NoError(t, r.Post(OrderEvent, common.Order{}))

	feedCalls := 0
	stop := errors.New("stop")
	go r.ExecLoop(context.Background(), func() error {
		feedCalls++
		return stop
	})

	err := <-r.Done()
	assert.ErrorIs(t, err, stop)

	// Both queued events dispatch before the feed callback runs.
	assert.Equal(t, []string{"bar", "order"}, order)
	assert.Equal(t, 1, feedCalls)
}

func TestBusRouter_ExecCancellation(t *testing.T) {
	r := NewRouter(10)

	handled := make(chan struct{})
	r.EquityHandler = func(_ context.Context, _ common.Equity) {
		close(handled)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go r.Exec(ctx)

	require.NoError(t, r.Post(EquityEvent, common.Equity{}))

	select {
	case <-handled:
	case <-time.After(time.Second):
		t.Fatal("equity event was not dispatched")
	}

	cancel()
	err := <-r.Done()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBusRouter_MergeHandlers(t *testing.T) {
	var calls []int

	merged := MergeHandlers(
		func(_ context.Context, _ common.Bar) { calls = append(calls, 1) },
		func(_ context.Context, _ common.Bar) { calls = append(calls, 2) },
	)
	merged(context.Background(), common.Bar{})

	assert.Equal(t, []int{1, 2}, calls)
}

func TestBusRouter_Statistics(t *testing.T) {
	r := NewRouter(10)

	require.NoError(t, r.Post(BarEvent, common.Bar{}))
	stats := r.Statistics()

	assert.Equal(t, uint64(1), stats.PostCount)
	assert.Equal(t, uint64(0), stats.PostFails)
}
