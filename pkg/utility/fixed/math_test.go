package fixed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func points(vals ...float64) []Point {
	out := make([]Point, 0, len(vals))
	for _, v := range vals {
		out = append(out, FromFloat64(v))
	}
	return out
}

func TestMath_Mean(t *testing.T) {
	assert.True(t, Mean(nil).IsZero())
	assert.Equal(t, "2", Mean(points(1, 2, 3)).String())
}

func TestMath_StdDev(t *testing.T) {
	assert.True(t, StdDev(points(5), FromInt(5, 0)).IsZero())

	p := points(2, 4, 4, 4, 5, 5, 7, 9)
	assert.Equal(t, "2", StdDev(p, Mean(p)).String())
}

func TestMath_DownsideDev(t *testing.T) {
	// Only returns below the risk-free rate contribute.
	p := points(0.02, -0.01, 0.03, -0.02)
	assert.False(t, DownsideDev(p, Zero).IsZero())
	assert.True(t, DownsideDev(points(0.01, 0.02), Zero).IsZero())
}

func TestMath_Ratios(t *testing.T) {
	p := points(0.01, -0.005, 0.02, 0.015, -0.01)

	assert.False(t, SharpeRatio(p, Zero).IsZero())
	assert.False(t, SortinoRatio(p, Zero).IsZero())
	assert.True(t, SharpeRatio(nil, Zero).IsZero())
	assert.True(t, SortinoRatio(points(0.01, 0.01), Zero).IsZero())
}
