package fixed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingBuffer_AddAndGet(t *testing.T) {
	r := NewRingBuffer(3)

	assert.True(t, r.IsEmpty())
	assert.Equal(t, 3, r.Capacity())

	r.Add(One)
	r.Add(Two)
	assert.Equal(t, 2, r.Size())
	assert.True(t, r.Latest().Eq(Two))
	assert.True(t, r.Oldest().Eq(One))

	r.Add(Ten)
	assert.True(t, r.IsFull())

	// Oldest is evicted on overflow.
	r.Add(Hundred)
	assert.Equal(t, 3, r.Size())
	assert.True(t, r.Latest().Eq(Hundred))
	assert.True(t, r.Oldest().Eq(Two))
}

func TestRingBuffer_Stats(t *testing.T) {
	r := NewRingBuffer(5)
	for _, v := range []int{2, 4, 6, 8} {
		r.Add(FromInt(v, 0))
	}

	assert.Equal(t, "20", r.Sum().String())
	assert.Equal(t, "5", r.Mean().String())
	assert.True(t, r.Min().Eq(Two))
	assert.Equal(t, "8", r.Max().String())
	assert.False(t, r.StdDev().IsZero())
}

func TestRingBuffer_Clear(t *testing.T) {
	r := NewRingBuffer(2)
	r.Add(One)
	r.Clear()

	assert.True(t, r.IsEmpty())
	assert.True(t, r.Mean().IsZero())
}

func TestRingBuffer_PanicsOnBadAccess(t *testing.T) {
	r := NewRingBuffer(2)

	assert.Panics(t, func() { r.Latest() })
	assert.Panics(t, func() { r.Get(0) })
	assert.Panics(t, func() { NewRingBuffer(0) })
}
