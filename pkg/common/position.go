package common

import (
	"github.com/linqiao-quant/ashare/pkg/utility/fixed"
)

// Position is the aggregate view over the settlement ledger's lots for one
// instrument. Quantity always equals the sum of the lot quantities;
// AverageCost is the quantity-weighted mean of the lots' unit costs.
type Position struct {
	Symbol      string      `json:"symbol"`
	Quantity    int64       `json:"quantity"`
	AverageCost fixed.Point `json:"average_cost"`
}
