package common

import (
	"time"

	"github.com/linqiao-quant/ashare/pkg/utility"
	"github.com/linqiao-quant/ashare/pkg/utility/fixed"
)

type OrderSide int
type OrderState string
type SizeMode int
type RejectReason string

const (
	OrderSideBuy OrderSide = iota
	OrderSideSell
)

// Order lifecycle. Pending orders either fill entirely at the current bar
// close or are rejected; a pending order may also be cancelled before the
// simulator processes it. Filled, rejected, and cancelled are terminal.
const (
	OrderStatePending   OrderState = "pending"
	OrderStateFilled    OrderState = "filled"
	OrderStateRejected  OrderState = "rejected"
	OrderStateCancelled OrderState = "cancelled"
)

const (
	SizeShares SizeMode = iota
	SizeCashRatio
	SizePositionRatio
)

// Business rejection reasons, reported to the strategy as events rather than
// errors so it can react on a later bar.
const (
	RejectT1Restricted              RejectReason = "t1-restricted"
	RejectInsufficientCash          RejectReason = "insufficient-cash"
	RejectInsufficientSettledShares RejectReason = "insufficient-settled-shares"
)

func (s OrderSide) String() string {
	if s == OrderSideSell {
		return "sell"
	}
	return "buy"
}

// Order is a trading intent submitted by a strategy. Quantity is used when
// Mode is SizeShares; Ratio is used for the cash-ratio and position-ratio
// modes, where the simulator resolves the share count at submission time.
type Order struct {
	Side     OrderSide   `json:"side"`
	Mode     SizeMode    `json:"mode"`
	Quantity int64       `json:"quantity,omitempty"`
	Ratio    fixed.Point `json:"ratio,omitempty"`
	State    OrderState  `json:"state"`

	Source      string              `json:"src,omitempty"`
	Symbol      string              `json:"symbol,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
}

type OrderRejected struct {
	OriginalOrder Order        `json:"original_order"`
	Reason        RejectReason `json:"reason,omitempty"`

	Source      string              `json:"src,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
}

type OrderCancelled struct {
	OriginalOrder Order `json:"original_order"`

	Source      string              `json:"src,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
}
