package historical

import (
	"fmt"
	"time"

	"github.com/linqiao-quant/ashare/pkg/common"
	"github.com/linqiao-quant/ashare/pkg/utility"
)

const (
	invalidIndex           = -1
	barReaderComponentName = "datasource.historical.reader"
)

// BarReader iterates the daily bars of one instrument inside [from, to]. The
// start index is located with a binary search over the sorted archive on the
// first GetNext call.
type BarReader struct {
	source *Source[BinaryBar]

	symbol string
	from   int64
	to     int64
	idx    int64
}

func NewBarReader(source *Source[BinaryBar], symbol string, from, to time.Time) *BarReader {
	return &BarReader{
		source: source,
		symbol: symbol,
		from:   from.UnixNano(),
		to:     to.UnixNano(),
		idx:    invalidIndex,
	}
}

func (r *BarReader) GetNext() (common.Bar, error) {
	var bar common.Bar

	if r.idx == invalidIndex {
		if err := r.lookupStartIndex(); err != nil {
			return bar, err
		}
	}

	binBar, err := r.source.Read(r.idx)
	if err != nil {
		return bar, fmt.Errorf("error reading entry at index %d: %w", r.idx, err)
	}
	r.idx++

	if binBar.Day < r.from {
		return bar, fmt.Errorf("day is not from the proposed range")
	}
	if binBar.Day > r.to {
		return bar, ErrEof
	}

	binBar.ToModelBar(&bar)

	bar.Source = barReaderComponentName
	bar.Symbol = r.symbol
	bar.ExecutionId = utility.GetExecutionID()
	bar.TraceID = utility.CreateTraceID()

	return bar, nil
}

func (r *BarReader) lookupStartIndex() error {
	entryCount := r.source.EntryCount()
	if entryCount == 0 {
		return fmt.Errorf("entry count is zero")
	}

	low := int64(0)
	high := entryCount - 1

	for low <= high {
		mid := (low + high) / 2

		entry, err := r.source.Read(mid)
		if err != nil {
			return fmt.Errorf("error reading entry at index %d: %w", mid, err)
		}

		if entry.Day < r.from {
			low = mid + 1
		} else {
			high = mid - 1
		}
	}

	if low >= entryCount {
		return fmt.Errorf("no entry found with day >= from")
	}

	r.idx = low
	return nil
}
