package bus

type EventId uint8

const (
	BarEvent EventId = iota
	OrderEvent
	OrderFilledEvent
	OrderRejectedEvent
	OrderCancelledEvent
	CashEvent
	EquityEvent
)
