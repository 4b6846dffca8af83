// Package broker simulates order execution against daily bars under A-share
// market rules: commission with a floor on both sides, stamp duty on sells
// only, round-lot sizing and T+1 settlement. Orders either fill entirely at
// the current bar's close or terminate as rejected or cancelled.
package broker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/linqiao-quant/ashare/pkg/broker/fees"
	"github.com/linqiao-quant/ashare/pkg/broker/settlement"
	"github.com/linqiao-quant/ashare/pkg/broker/sizing"
	"github.com/linqiao-quant/ashare/pkg/bus"
	"github.com/linqiao-quant/ashare/pkg/common"
	"github.com/linqiao-quant/ashare/pkg/utility"
	"github.com/linqiao-quant/ashare/pkg/utility/fixed"
)

const simulatorComponentName = "broker.simulator"

// ErrInvalidOrder indicates caller misuse detected synchronously at
// submission, before the order reaches the pending state. Business outcomes
// (T+1 restriction, insufficient cash or shares) are never errors; they are
// posted as rejection events instead.
var ErrInvalidOrder = errors.New("invalid order")

// Simulator owns one backtest account: free cash, the settlement ledger and
// the per-instrument positions derived from it. All state is exclusively
// owned and mutated on the bus dispatch goroutine; running two backtests
// means running two simulators.
type Simulator struct {
	router   *bus.Router
	schedule fees.Schedule
	lotSize  int64

	cash   fixed.Point
	equity fixed.Point

	ledger    *settlement.Ledger
	positions map[string]int64
	lastClose map[string]fixed.Point

	simulationTime time.Time
	firstPostDone  bool

	cancelled map[utility.TraceID]struct{}
}

func NewSimulator(router *bus.Router, startCash fixed.Point, options ...Option) *Simulator {
	s := &Simulator{
		router:    router,
		schedule:  DefaultSchedule(),
		lotSize:   100,
		cash:      startCash,
		equity:    startCash,
		ledger:    settlement.NewLedger(),
		positions: make(map[string]int64),
		lastClose: make(map[string]fixed.Point),
		cancelled: make(map[utility.TraceID]struct{}),
	}

	for _, option := range options {
		option(s)
	}

	return s
}

// OnBar advances simulated time, refreshes the instrument's mark price and
// re-marks equity. The first bar also publishes the opening cash and equity
// so downstream consumers (audit, store) see the starting state.
func (s *Simulator) OnBar(_ context.Context, bar common.Bar) {
	day := settlement.Day(bar.Day)
	if s.simulationTime.After(day) {
		panic(fmt.Sprintf("broker: bar for %s dated %s precedes simulation time %s",
			bar.Symbol, day.Format(time.DateOnly), s.simulationTime.Format(time.DateOnly)))
	}
	s.simulationTime = day
	s.lastClose[bar.Symbol] = bar.Close
	s.checkLedgerConsistency()

	lastEquity := s.equity
	s.markToMarket()

	if !s.firstPostDone {
		s.firstPostDone = true
		s.postCash()
		s.postEquity()
		return
	}
	if !lastEquity.Eq(s.equity) {
		s.postEquity()
	}
}

// OnOrder is the bus adapter around Submit. Cancelled orders are consumed
// here; validation failures are logged and dropped, since a misbuilt order
// has no owner to return an error to once it is on the bus.
func (s *Simulator) OnOrder(_ context.Context, order common.Order) {
	if _, ok := s.cancelled[order.TraceID]; ok {
		delete(s.cancelled, order.TraceID)
		order.State = common.OrderStateCancelled
		if err := s.router.Post(bus.OrderCancelledEvent, common.OrderCancelled{
			OriginalOrder: order,
			Source:        simulatorComponentName,
			ExecutionId:   utility.GetExecutionID(),
			TraceID:       utility.CreateTraceID(),
			TimeStamp:     s.simulationTime,
		}); err != nil {
			slog.Error("unable to post order cancelled event", "error", err)
		}
		return
	}

	if err := s.Submit(order); err != nil {
		slog.Warn("dropping invalid order", "error", err, "order", order)
	}
}

// Cancel marks a still-pending order for cancellation. The order transitions
// to its terminal cancelled state when the simulator would otherwise process
// it; an already-processed trace id is unknown and the call is a no-op.
func (s *Simulator) Cancel(id utility.TraceID) {
	s.cancelled[id] = struct{}{}
}

// Submit runs an order through the lifecycle: resolve the share count, check
// the guards, then either apply the fill transactionally or post a rejection
// event. The returned error covers caller misuse only and implies no state
// was touched.
func (s *Simulator) Submit(order common.Order) error {
	price, ok := s.lastClose[order.Symbol]
	if !ok {
		panic(fmt.Sprintf("broker: no market data seen for %q", order.Symbol))
	}

	quantity, err := s.resolveQuantity(order, price)
	if err != nil {
		return err
	}
	order.State = common.OrderStatePending
	order.Quantity = quantity

	if order.Side == common.OrderSideSell {
		if quantity > s.ledger.TotalQuantity(order.Symbol) {
			s.reject(order, common.RejectInsufficientSettledShares)
			return nil
		}
		if quantity > s.ledger.SellableQuantity(order.Symbol, s.simulationTime) {
			s.reject(order, common.RejectT1Restricted)
			return nil
		}
		s.fillSell(order, price, quantity)
		return nil
	}

	fee, err := s.schedule.Compute(common.OrderSideBuy, price, quantity)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOrder, err)
	}
	cost := price.MulInt64(quantity).Add(fee.Total)
	if cost.Gt(s.cash) {
		s.reject(order, common.RejectInsufficientCash)
		return nil
	}
	s.fillBuy(order, price, quantity, fee)
	return nil
}

func (s *Simulator) Cash() fixed.Point   { return s.cash }
func (s *Simulator) Equity() fixed.Point { return s.equity }

func (s *Simulator) Position(symbol string) common.Position {
	return common.Position{
		Symbol:      symbol,
		Quantity:    s.ledger.TotalQuantity(symbol),
		AverageCost: s.ledger.AverageCost(symbol),
	}
}

func (s *Simulator) SellableQuantity(symbol string) int64 {
	return s.ledger.SellableQuantity(symbol, s.simulationTime)
}

// resolveQuantity turns the order's sizing mode into a concrete share count.
// Ratio modes are resolved against the live account state at submission time.
func (s *Simulator) resolveQuantity(order common.Order, price fixed.Point) (int64, error) {
	switch order.Mode {
	case common.SizeShares:
		if order.Quantity <= 0 {
			return 0, fmt.Errorf("%w: quantity %d must be positive", ErrInvalidOrder, order.Quantity)
		}
		if order.Quantity%s.lotSize != 0 {
			return 0, fmt.Errorf("%w: quantity %d is not a multiple of lot size %d",
				ErrInvalidOrder, order.Quantity, s.lotSize)
		}
		return order.Quantity, nil

	case common.SizeCashRatio:
		if order.Side != common.OrderSideBuy {
			return 0, fmt.Errorf("%w: cash-ratio sizing is buy-only", ErrInvalidOrder)
		}
		quantity, err := sizing.FromCashRatio(s.cash, price, order.Ratio, s.lotSize)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidOrder, err)
		}
		if quantity == 0 {
			return 0, fmt.Errorf("%w: cash %s buys less than one lot at %s", ErrInvalidOrder, s.cash, price)
		}
		return quantity, nil

	case common.SizePositionRatio:
		if order.Side != common.OrderSideSell {
			return 0, fmt.Errorf("%w: position-ratio sizing is sell-only", ErrInvalidOrder)
		}
		held := s.ledger.TotalQuantity(order.Symbol)
		quantity, err := sizing.FromPositionRatio(held, order.Ratio, s.lotSize)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidOrder, err)
		}
		if quantity == 0 {
			return 0, fmt.Errorf("%w: ratio %s of %d held shares is less than one lot", ErrInvalidOrder, order.Ratio, held)
		}
		return quantity, nil

	default:
		return 0, fmt.Errorf("%w: unknown size mode %d", ErrInvalidOrder, order.Mode)
	}
}

// fillBuy applies the buy as one unit: cash debit, ledger lot, position. The
// cash guard already passed, so nothing below can fail halfway.
func (s *Simulator) fillBuy(order common.Order, price fixed.Point, quantity int64, fee fees.Fee) {
	s.cash = s.cash.Sub(price.MulInt64(quantity)).Sub(fee.Total)
	if s.cash.IsNeg() {
		panic(fmt.Sprintf("broker: cash %s went negative after guarded buy", s.cash))
	}
	s.ledger.RecordBuy(order.Symbol, s.simulationTime, quantity, price)
	s.positions[order.Symbol] += quantity

	s.finishFill(order, price, quantity, fee, fixed.Zero)
}

func (s *Simulator) fillSell(order common.Order, price fixed.Point, quantity int64) {
	fee, err := s.schedule.Compute(common.OrderSideSell, price, quantity)
	if err != nil {
		panic(fmt.Sprintf("broker: fee computation failed after guards: %v", err))
	}

	costBasis, err := s.ledger.ConsumeSell(order.Symbol, s.simulationTime, quantity)
	if err != nil {
		panic(fmt.Sprintf("broker: ledger consume failed after guards: %v", err))
	}
	proceeds := price.MulInt64(quantity)
	s.cash = s.cash.Add(proceeds).Sub(fee.Total)
	s.positions[order.Symbol] -= quantity
	if s.positions[order.Symbol] == 0 {
		delete(s.positions, order.Symbol)
	}

	realized := proceeds.Sub(fee.Total).Sub(costBasis)
	s.finishFill(order, price, quantity, fee, realized)
}

func (s *Simulator) finishFill(order common.Order, price fixed.Point, quantity int64, fee fees.Fee, realized fixed.Point) {
	s.checkLedgerConsistency()
	s.markToMarket()

	if err := s.router.Post(bus.OrderFilledEvent, common.Fill{
		OrderTraceID: order.TraceID,
		Symbol:       order.Symbol,
		Side:         order.Side,
		Price:        price,
		Quantity:     quantity,
		Commission:   fee.Commission,
		StampDuty:    fee.StampDuty,
		RealizedPnL:  realized,
		Source:       simulatorComponentName,
		ExecutionId:  utility.GetExecutionID(),
		TraceID:      utility.CreateTraceID(),
		TimeStamp:    s.simulationTime,
	}); err != nil {
		slog.Error("unable to post order filled event", "error", err)
	}
	s.postCash()
	s.postEquity()
}

func (s *Simulator) reject(order common.Order, reason common.RejectReason) {
	order.State = common.OrderStateRejected
	if err := s.router.Post(bus.OrderRejectedEvent, common.OrderRejected{
		OriginalOrder: order,
		Reason:        reason,
		Source:        simulatorComponentName,
		ExecutionId:   utility.GetExecutionID(),
		TraceID:       utility.CreateTraceID(),
		TimeStamp:     s.simulationTime,
	}); err != nil {
		slog.Error("unable to post order rejected event", "error", err)
	}
}

func (s *Simulator) markToMarket() {
	equity := s.cash
	for symbol, quantity := range s.positions {
		mark, ok := s.lastClose[symbol]
		if !ok {
			panic(fmt.Sprintf("broker: position in %q without a mark price", symbol))
		}
		equity = equity.Add(mark.MulInt64(quantity))
	}
	s.equity = equity
}

// checkLedgerConsistency asserts the derived position map agrees with the
// ledger's lot totals. A mismatch means a fill was applied partially, which
// would make every later number meaningless.
func (s *Simulator) checkLedgerConsistency() {
	for symbol, quantity := range s.positions {
		if got := s.ledger.TotalQuantity(symbol); got != quantity {
			panic(fmt.Sprintf("broker: position %d for %q diverged from ledger total %d", quantity, symbol, got))
		}
	}
}

func (s *Simulator) postCash() {
	if err := s.router.Post(bus.CashEvent, common.Cash{
		Source:      simulatorComponentName,
		ExecutionId: utility.GetExecutionID(),
		TraceID:     utility.CreateTraceID(),
		TimeStamp:   s.simulationTime,
		Value:       s.cash,
	}); err != nil {
		slog.Error("unable to post cash event", "error", err)
	}
}

func (s *Simulator) postEquity() {
	if err := s.router.Post(bus.EquityEvent, common.Equity{
		Source:      simulatorComponentName,
		ExecutionId: utility.GetExecutionID(),
		TraceID:     utility.CreateTraceID(),
		TimeStamp:   s.simulationTime,
		Value:       s.equity,
	}); err != nil {
		slog.Error("unable to post equity event", "error", err)
	}
}
