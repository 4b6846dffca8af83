package datasource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linqiao-quant/ashare/pkg/bus"
	"github.com/linqiao-quant/ashare/pkg/common"
	"github.com/linqiao-quant/ashare/pkg/datasource/synthetic"
	"github.com/linqiao-quant/ashare/pkg/utility/fixed"
)

type stubSource struct {
	bars []common.Bar
	idx  int
}

func (s *stubSource) GetNext() (common.Bar, error) {
	if s.idx >= len(s.bars) {
		return common.Bar{}, synthetic.ErrEof
	}
	bar := s.bars[s.idx]
	s.idx++
	return bar, nil
}

func TestCreateBarDispatcher(t *testing.T) {
	r := bus.NewRouter(16)
	ds := &stubSource{bars: []common.Bar{
		{Symbol: "600519", Day: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: fixed.FromFloat64(10)},
		{Symbol: "600519", Day: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Close: fixed.FromFloat64(11)},
	}}

	var received []common.Bar
	r.BarHandler = func(_ context.Context, bar common.Bar) {
		received = append(received, bar)
	}

	go r.ExecLoop(context.Background(), CreateBarDispatcher(r, ds))
	err := <-r.Done()

	// The loop terminates when the source is exhausted.
	require.ErrorIs(t, err, synthetic.ErrEof)
	require.Len(t, received, 2)
	assert.Equal(t, "11", received[1].Close.String())
}
