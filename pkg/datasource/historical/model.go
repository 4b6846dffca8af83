package historical

import (
	"time"

	"github.com/linqiao-quant/ashare/pkg/common"
	"github.com/linqiao-quant/ashare/pkg/utility/fixed"
)

// BinaryBar is the on-disk daily bar record: one trading day per entry,
// sorted ascending by Day. Day is unix nanoseconds at midnight UTC.
type BinaryBar struct {
	Day    int64
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

func (b BinaryBar) ToModelBar(bar *common.Bar) {
	bar.Day = time.Unix(0, b.Day).UTC()
	bar.Open = fixed.FromFloat64(b.Open)
	bar.High = fixed.FromFloat64(b.High)
	bar.Low = fixed.FromFloat64(b.Low)
	bar.Close = fixed.FromFloat64(b.Close)
	bar.Volume = fixed.FromFloat64(b.Volume)
}
