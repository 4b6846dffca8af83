package historical

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(offset int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func writeArchive(t *testing.T, bars []BinaryBar) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bars.bin")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	for i := range bars {
		buf := unsafe.Slice((*byte)(unsafe.Pointer(&bars[i])), unsafe.Sizeof(bars[i])) // #nosec G103
		_, err := f.Write(buf)
		require.NoError(t, err)
	}
	return path
}

func testArchive(t *testing.T) *Source[BinaryBar] {
	t.Helper()

	bars := make([]BinaryBar, 0, 10)
	for i := 0; i < 10; i++ {
		price := 10.0 + float64(i)*0.1
		bars = append(bars, BinaryBar{
			Day:    day(i).UnixNano(),
			Open:   price,
			High:   price + 0.2,
			Low:    price - 0.2,
			Close:  price + 0.1,
			Volume: 1000,
		})
	}

	source := NewSource[BinaryBar](writeArchive(t, bars))
	require.NoError(t, source.Open())
	t.Cleanup(source.Close)
	return source
}

func TestSource_ReadRoundTrip(t *testing.T) {
	source := testArchive(t)

	assert.Equal(t, int64(10), source.EntryCount())

	record, err := source.Read(3)
	require.NoError(t, err)
	assert.Equal(t, day(3).UnixNano(), record.Day)
	assert.InDelta(t, 10.4, record.Close, 1e-9)

	_, err = source.Read(10)
	assert.ErrorIs(t, err, ErrEof)
}

func TestSource_RejectsTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 17), 0o600))

	source := NewSource[BinaryBar](path)
	assert.Error(t, source.Open())
}

func TestBarReader_RangeIteration(t *testing.T) {
	source := testArchive(t)

	// Days 2..5 inclusive.
	reader := NewBarReader(source, "600519", day(2), day(5))

	var days []time.Time
	for {
		bar, err := reader.GetNext()
		if err != nil {
			require.ErrorIs(t, err, ErrEof)
			break
		}
		assert.Equal(t, "600519", bar.Symbol)
		assert.Equal(t, barReaderComponentName, bar.Source)
		days = append(days, bar.Day)
	}

	require.Len(t, days, 4)
	assert.True(t, days[0].Equal(day(2)))
	assert.True(t, days[3].Equal(day(5)))
}

func TestBarReader_StartsAtFirstEntryInRange(t *testing.T) {
	source := testArchive(t)

	// From falls between archive days; the search lands on the next one.
	reader := NewBarReader(source, "600519", day(2).Add(-12*time.Hour), day(9))

	bar, err := reader.GetNext()
	require.NoError(t, err)
	assert.True(t, bar.Day.Equal(day(2)))
}

func TestBarReader_RangeBeyondArchive(t *testing.T) {
	source := testArchive(t)

	reader := NewBarReader(source, "600519", day(100), day(110))
	_, err := reader.GetNext()
	assert.Error(t, err)
}
