package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingBufferPushAndSlice(t *testing.T) {
	r := NewRingBuffer[int](3)
	assert.Empty(t, r.Slice())

	assert.False(t, r.Push(1))
	assert.False(t, r.Push(2))
	assert.Equal(t, []int{1, 2}, r.Slice())

	assert.False(t, r.Push(3))
	assert.True(t, r.Push(4))
	assert.True(t, r.Push(5))
	assert.Equal(t, []int{3, 4, 5}, r.Slice())
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 3, r.Cap())
}

func TestRingBufferWrapsManyTimes(t *testing.T) {
	r := NewRingBuffer[int](4)
	for i := 1; i <= 103; i++ {
		r.Push(i)
		assert.LessOrEqual(t, r.Len(), 4)
	}
	assert.Equal(t, []int{100, 101, 102, 103}, r.Slice())
}

func TestRingBufferSliceIsCopy(t *testing.T) {
	r := NewRingBuffer[int](2)
	r.Push(1)
	r.Push(2)

	s := r.Slice()
	s[0] = 99

	assert.Equal(t, []int{1, 2}, r.Slice())
}

func TestRingBufferNonPositiveCapacity(t *testing.T) {
	r := NewRingBuffer[string](0)
	r.Push("a")
	r.Push("b")
	assert.Equal(t, []string{"b"}, r.Slice())
}
