package settlement

import (
	"errors"
	"fmt"
	"time"

	"github.com/linqiao-quant/ashare/pkg/utility/fixed"
)

// ErrInsufficientSettledShares indicates a sell larger than the settled
// holding. It is a business outcome, not a corrupted-state condition.
var ErrInsufficientSettledShares = errors.New("insufficient settled shares")

// Lot is a parcel of shares acquired on one trading day. Same-day buys of the
// same instrument merge into a single lot: sellability depends only on the
// acquisition day, and the merged unit cost stays quantity-weighted.
type Lot struct {
	Day      time.Time
	Quantity int64
	UnitCost fixed.Point
}

// Ledger enforces the T+1 settlement rule: shares bought on day D become
// sellable on D+1. Lots are kept per instrument, oldest first, and are
// consumed FIFO so realized cost basis matches the oldest holdings.
//
// The ledger is exclusively owned by one broker simulator; it has no
// internal locking and no global state.
type Ledger struct {
	lots map[string][]Lot
}

func NewLedger() *Ledger {
	return &Ledger{
		lots: make(map[string][]Lot),
	}
}

// Day truncates a timestamp to its trading day. All ledger bookkeeping and
// T+1 comparisons work on these normalized days.
func Day(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// RecordBuy appends the bought shares to the instrument's day bucket.
// Quantities must be positive and days must not precede the newest recorded
// lot; either would mean the caller's clock or ledger is corrupted, so both
// panic as invariant violations.
func (l *Ledger) RecordBuy(symbol string, day time.Time, quantity int64, unitCost fixed.Point) {
	if quantity <= 0 {
		panic(fmt.Sprintf("settlement: buy quantity %d for %s must be positive", quantity, symbol))
	}
	day = Day(day)

	lots := l.lots[symbol]
	if n := len(lots); n > 0 {
		last := lots[n-1]
		if day.Before(last.Day) {
			panic(fmt.Sprintf("settlement: buy on %s for %s predates newest lot %s",
				day.Format(time.DateOnly), symbol, last.Day.Format(time.DateOnly)))
		}
		if day.Equal(last.Day) {
			// Merge into the same-day bucket with a weighted unit cost.
			total := last.Quantity + quantity
			cost := last.UnitCost.MulInt64(last.Quantity).Add(unitCost.MulInt64(quantity)).DivInt64(total)
			lots[n-1] = Lot{Day: day, Quantity: total, UnitCost: cost}
			return
		}
	}

	l.lots[symbol] = append(lots, Lot{Day: day, Quantity: quantity, UnitCost: unitCost})
}

// SellableQuantity sums the lots acquired strictly before asOf's trading day.
// A lot dated after asOf means simulated time ran backwards; that is fatal.
func (l *Ledger) SellableQuantity(symbol string, asOf time.Time) int64 {
	day := Day(asOf)

	var sellable int64
	for _, lot := range l.lots[symbol] {
		if lot.Day.After(day) {
			panic(fmt.Sprintf("settlement: lot for %s dated %s is after current day %s",
				symbol, lot.Day.Format(time.DateOnly), day.Format(time.DateOnly)))
		}
		if lot.Day.Before(day) {
			sellable += lot.Quantity
		}
	}
	return sellable
}

// ConsumeSell removes quantity shares FIFO from the settled lots and returns
// the cost basis of the consumed shares. The caller is expected to have
// checked SellableQuantity first; the error return exists so an unchecked
// oversell surfaces as a rejection rather than corrupting the ledger.
func (l *Ledger) ConsumeSell(symbol string, asOf time.Time, quantity int64) (fixed.Point, error) {
	if quantity <= 0 {
		panic(fmt.Sprintf("settlement: sell quantity %d for %s must be positive", quantity, symbol))
	}
	if sellable := l.SellableQuantity(symbol, asOf); quantity > sellable {
		return fixed.Zero, fmt.Errorf("%w: want %d, settled %d", ErrInsufficientSettledShares, quantity, sellable)
	}

	costBasis := fixed.Zero
	remaining := quantity
	lots := l.lots[symbol]

	for remaining > 0 {
		lot := &lots[0]

		consumed := lot.Quantity
		if consumed > remaining {
			consumed = remaining
		}
		costBasis = costBasis.Add(lot.UnitCost.MulInt64(consumed))
		lot.Quantity -= consumed
		remaining -= consumed

		if lot.Quantity == 0 {
			lots = lots[1:]
		}
	}

	if len(lots) == 0 {
		delete(l.lots, symbol)
	} else {
		l.lots[symbol] = lots
	}
	return costBasis, nil
}

// TotalQuantity sums all lots regardless of settlement, i.e. the position
// size the broker must report for the instrument.
func (l *Ledger) TotalQuantity(symbol string) int64 {
	var total int64
	for _, lot := range l.lots[symbol] {
		total += lot.Quantity
	}
	return total
}

// AverageCost is the quantity-weighted mean unit cost over all lots. Returns
// zero for an empty holding.
func (l *Ledger) AverageCost(symbol string) fixed.Point {
	var total int64
	cost := fixed.Zero
	for _, lot := range l.lots[symbol] {
		total += lot.Quantity
		cost = cost.Add(lot.UnitCost.MulInt64(lot.Quantity))
	}
	if total == 0 {
		return fixed.Zero
	}
	return cost.DivInt64(total)
}

// Lots returns a copy of the instrument's lots, oldest first.
func (l *Ledger) Lots(symbol string) []Lot {
	lots := l.lots[symbol]
	out := make([]Lot, len(lots))
	copy(out, lots)
	return out
}
