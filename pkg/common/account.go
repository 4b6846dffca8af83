package common

import (
	"time"

	"github.com/linqiao-quant/ashare/pkg/utility"
	"github.com/linqiao-quant/ashare/pkg/utility/fixed"
)

// Cash is the account's free cash after the last fill.
type Cash struct {
	Source      string              `json:"src,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts,omitempty"`
	Value       fixed.Point         `json:"value"`
}

// Equity is cash plus open positions marked to the latest close.
type Equity struct {
	Source      string              `json:"src,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts,omitempty"`
	Value       fixed.Point         `json:"value"`
}
