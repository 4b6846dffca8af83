package common

import (
	"time"

	"go.uber.org/zap"

	"github.com/linqiao-quant/ashare/pkg/utility"
	"github.com/linqiao-quant/ashare/pkg/utility/fixed"
)

// Fill records a completed execution. Exactly one Fill exists per filled
// order; fills are full, never partial. RealizedPnL is set on sells only and
// is computed against the FIFO cost basis of the consumed lots, net of fees.
type Fill struct {
	OrderTraceID utility.TraceID `json:"order_tid"`
	Symbol       string          `json:"symbol"`
	Side         OrderSide       `json:"side"`
	Price        fixed.Point     `json:"price"`
	Quantity     int64           `json:"quantity"`
	Commission   fixed.Point     `json:"commission"`
	StampDuty    fixed.Point     `json:"stamp_duty"`
	RealizedPnL  fixed.Point     `json:"realized_pnl,omitempty"`

	Source      string              `json:"src,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
}

func (f Fill) Fields() []zap.Field {
	return []zap.Field{
		zap.String("symbol", f.Symbol),
		zap.String("side", f.Side.String()),
		zap.String("price", f.Price.String()),
		zap.Int64("quantity", f.Quantity),
		zap.String("commission", f.Commission.String()),
		zap.String("stamp_duty", f.StampDuty.String()),
		zap.String("realized_pnl", f.RealizedPnL.String()),
		zap.Time("ts", f.TimeStamp),
	}
}
