package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linqiao-quant/ashare/pkg/bus"
	"github.com/linqiao-quant/ashare/pkg/common"
	"github.com/linqiao-quant/ashare/pkg/utility/fixed"
)

func TestRsi_BuysOversoldSellsOverbought(t *testing.T) {
	r := bus.NewRouter(16)
	var orders []common.Order
	r.OrderHandler = func(_ context.Context, o common.Order) { orders = append(orders, o) }

	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	a, err := NewRsi(r, "000001", 3, fixed.FromFloat64(0.8))
	require.NoError(t, err)

	// Three straight down days: no gains, index 0, deep oversold.
	feedCloses(ctx, a.OnBar, "000001", start, 10, 9.5, 9, 8.5)
	dispatchAll(t, r)

	require.Len(t, orders, 1)
	assert.Equal(t, common.OrderSideBuy, orders[0].Side)
	assert.Equal(t, common.SizeCashRatio, orders[0].Mode)

	a.OnOrderFilled(ctx, common.Fill{Symbol: "000001", Side: common.OrderSideBuy})

	// A sharp rebound flips the index above 70.
	feedCloses(ctx, a.OnBar, "000001", start.AddDate(0, 0, 4), 13, 16)
	dispatchAll(t, r)

	require.Len(t, orders, 2)
	assert.Equal(t, common.OrderSideSell, orders[1].Side)
	assert.Equal(t, common.SizePositionRatio, orders[1].Mode)
	assert.True(t, orders[1].Ratio.Eq(fixed.One))
}

func TestRsi_NoSignalDuringWarmup(t *testing.T) {
	r := bus.NewRouter(16)
	var orders []common.Order
	r.OrderHandler = func(_ context.Context, o common.Order) { orders = append(orders, o) }

	a, err := NewRsi(r, "000001", 5, fixed.One)
	require.NoError(t, err)

	// Four deltas for a five-period index: still warming up.
	feedCloses(context.Background(), a.OnBar, "000001",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 10, 9, 8, 7, 6)
	dispatchAll(t, r)

	assert.Empty(t, orders)
}

func TestRsi_PendingBlocksResubmission(t *testing.T) {
	r := bus.NewRouter(16)
	var orders []common.Order
	r.OrderHandler = func(_ context.Context, o common.Order) { orders = append(orders, o) }

	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	a, err := NewRsi(r, "000001", 3, fixed.One)
	require.NoError(t, err)

	// Oversold fires once, then stays quiet while the order is in flight.
	feedCloses(ctx, a.OnBar, "000001", start, 10, 9, 8, 7, 6, 5)
	dispatchAll(t, r)

	assert.Len(t, orders, 1)
}

func TestRsi_InvalidPeriod(t *testing.T) {
	_, err := NewRsi(bus.NewRouter(16), "000001", 1, fixed.One)
	assert.Error(t, err)
}
