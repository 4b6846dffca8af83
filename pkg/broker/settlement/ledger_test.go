package settlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linqiao-quant/ashare/pkg/utility/fixed"
)

var (
	day1 = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	day2 = day1.AddDate(0, 0, 1)
	day3 = day1.AddDate(0, 0, 2)
)

func TestLedger_SameDayBuyNotSellable(t *testing.T) {
	l := NewLedger()
	l.RecordBuy("600519", day1, 1000, fixed.FromFloat64(10.0))

	assert.Equal(t, int64(0), l.SellableQuantity("600519", day1))
	assert.Equal(t, int64(1000), l.SellableQuantity("600519", day2))
	assert.Equal(t, int64(1000), l.TotalQuantity("600519"))
}

func TestLedger_SettlementMonotonicity(t *testing.T) {
	l := NewLedger()
	l.RecordBuy("600519", day1, 300, fixed.FromFloat64(10.0))
	l.RecordBuy("600519", day2, 200, fixed.FromFloat64(11.0))

	assert.Equal(t, int64(300), l.SellableQuantity("600519", day2))
	assert.Equal(t, int64(500), l.SellableQuantity("600519", day3))
	// Advancing further with no new buys never decreases sellability.
	assert.Equal(t, int64(500), l.SellableQuantity("600519", day3.AddDate(0, 0, 7)))
}

func TestLedger_SameDayBuysMergeIntoOneBucket(t *testing.T) {
	l := NewLedger()
	l.RecordBuy("000001", day1, 100, fixed.FromFloat64(10.0))
	l.RecordBuy("000001", day1, 300, fixed.FromFloat64(14.0))

	lots := l.Lots("000001")
	require.Len(t, lots, 1)
	assert.Equal(t, int64(400), lots[0].Quantity)
	// Weighted: (100*10 + 300*14) / 400 = 13.
	assert.Equal(t, "13", lots[0].UnitCost.String())
}

func TestLedger_ConsumeSellFifo(t *testing.T) {
	l := NewLedger()
	l.RecordBuy("000001", day1, 200, fixed.FromFloat64(10.0))
	l.RecordBuy("000001", day2, 300, fixed.FromFloat64(12.0))

	// Sell 250 on day3: 200 from day1 at 10, 50 from day2 at 12.
	costBasis, err := l.ConsumeSell("000001", day3, 250)
	require.NoError(t, err)
	assert.Equal(t, "2600", costBasis.String())

	lots := l.Lots("000001")
	require.Len(t, lots, 1)
	assert.Equal(t, int64(250), lots[0].Quantity)
	assert.True(t, lots[0].Day.Equal(Day(day2)))
	assert.Equal(t, int64(250), l.TotalQuantity("000001"))
}

func TestLedger_ConsumeSellInsufficientSettled(t *testing.T) {
	l := NewLedger()
	l.RecordBuy("000001", day1, 200, fixed.FromFloat64(10.0))
	l.RecordBuy("000001", day2, 300, fixed.FromFloat64(12.0))

	// Only the day1 lot is settled on day2.
	_, err := l.ConsumeSell("000001", day2, 300)
	assert.ErrorIs(t, err, ErrInsufficientSettledShares)

	// A failed consume mutates nothing.
	assert.Equal(t, int64(500), l.TotalQuantity("000001"))
	assert.Equal(t, int64(200), l.SellableQuantity("000001", day2))
}

func TestLedger_ConsumeAllRemovesHolding(t *testing.T) {
	l := NewLedger()
	l.RecordBuy("000001", day1, 500, fixed.FromFloat64(8.0))

	_, err := l.ConsumeSell("000001", day2, 500)
	require.NoError(t, err)

	assert.Equal(t, int64(0), l.TotalQuantity("000001"))
	assert.Empty(t, l.Lots("000001"))
	assert.True(t, l.AverageCost("000001").IsZero())
}

func TestLedger_AverageCost(t *testing.T) {
	l := NewLedger()
	l.RecordBuy("000002", day1, 100, fixed.FromFloat64(10.0))
	l.RecordBuy("000002", day2, 100, fixed.FromFloat64(20.0))

	assert.Equal(t, "15", l.AverageCost("000002").String())
}

func TestLedger_InvariantViolationsPanic(t *testing.T) {
	l := NewLedger()
	l.RecordBuy("000001", day2, 100, fixed.FromFloat64(10.0))

	// Time-travelling buy.
	assert.Panics(t, func() {
		l.RecordBuy("000001", day1, 100, fixed.FromFloat64(10.0))
	})

	// Lot dated after the as-of day.
	assert.Panics(t, func() {
		l.SellableQuantity("000001", day1)
	})

	// Non-positive quantities are programmer errors.
	assert.Panics(t, func() {
		l.RecordBuy("000001", day2, 0, fixed.FromFloat64(10.0))
	})
	assert.Panics(t, func() {
		_, _ = l.ConsumeSell("000001", day3, -1)
	})
}

func TestLedger_Day(t *testing.T) {
	ts := time.Date(2024, 3, 4, 14, 55, 3, 0, time.UTC)
	assert.True(t, Day(ts).Equal(day1))
	assert.Equal(t, int64(0), NewLedger().SellableQuantity("600519", ts))
}
