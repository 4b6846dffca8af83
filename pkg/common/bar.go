package common

import (
	"time"

	"github.com/linqiao-quant/ashare/pkg/utility"
	"github.com/linqiao-quant/ashare/pkg/utility/fixed"
)

// Bar is one daily OHLCV candle. Day is the trading day truncated to midnight
// UTC; fills and settlement bookkeeping key off it. The simulator reads only
// Day and Close (the fill reference price), the rest is carried for
// strategies.
type Bar struct {
	Source      string              `json:"src,omitempty"`
	Symbol      string              `json:"symbol,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	Day         time.Time           `json:"day"`
	Open        fixed.Point         `json:"open"`
	High        fixed.Point         `json:"high"`
	Low         fixed.Point         `json:"low"`
	Close       fixed.Point         `json:"close"`
	Volume      fixed.Point         `json:"volume"`
}
