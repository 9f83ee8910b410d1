package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIndexed(t *testing.T) {
	s := NewIndexed[int](4)

	assert.Equal(t, 4, s.Len())
	assert.Equal(t, 0, s.Index())
	assert.Equal(t, 0, s.Current(), "elements start zero-valued")
}

func TestIndexed_SetIndex(t *testing.T) {
	s := NewIndexed[int](4)

	assert.True(t, s.SetIndex(3))
	assert.Equal(t, 3, s.Index())

	assert.False(t, s.SetIndex(4), "out of range must be rejected")
	assert.False(t, s.SetIndex(-1), "negative index must be rejected")
	assert.Equal(t, 3, s.Index(), "failed SetIndex must not mutate")
}

func TestIndexed_CurrentAndSetCurrent(t *testing.T) {
	s := NewIndexed[int](2)
	s.SetCurrent(42)
	assert.Equal(t, 42, s.Current())

	s.SetIndex(1)
	assert.Equal(t, 0, s.Current())
	s.SetCurrent(7)
	assert.Equal(t, 7, s.Current())

	s.SetIndex(0)
	assert.Equal(t, 42, s.Current())
}

func TestIndexed_AdvanceCyclic(t *testing.T) {
	const size = 4
	s := NewIndexed[int](size)

	// N cyclic advances return the index to its starting value.
	for i := 0; i < size; i++ {
		assert.True(t, s.Advance(true, true))
	}
	assert.Equal(t, 0, s.Index())

	for i := 0; i < size; i++ {
		assert.True(t, s.Advance(false, true))
	}
	assert.Equal(t, 0, s.Index())

	// Wrap points.
	s.SetIndex(size - 1)
	assert.True(t, s.Advance(true, true))
	assert.Equal(t, 0, s.Index())
	assert.True(t, s.Advance(false, true))
	assert.Equal(t, size-1, s.Index())
}

func TestIndexed_AdvanceNonCyclic(t *testing.T) {
	s := NewIndexed[int](3)

	assert.False(t, s.Advance(false, false), "fails at lower boundary")
	assert.Equal(t, 0, s.Index(), "failed advance must not mutate")

	assert.True(t, s.Advance(true, false))
	assert.True(t, s.Advance(true, false))
	assert.Equal(t, 2, s.Index())

	assert.False(t, s.Advance(true, false), "fails at upper boundary")
	assert.Equal(t, 2, s.Index())
}

func TestIndexed_Values(t *testing.T) {
	s := NewIndexed[uint32](4)
	assert.True(t, s.SetValues([]uint32{60, 300, 600, 1800}))
	assert.Equal(t, []uint32{60, 300, 600, 1800}, s.Values())

	assert.False(t, s.SetValues([]uint32{1, 2}), "length mismatch rejected")
	assert.Equal(t, []uint32{60, 300, 600, 1800}, s.Values())

	vals := s.Values()
	vals[0] = 99
	assert.Equal(t, uint32(60), s.At(0), "Values returns a copy")
}

func TestIndexed_SetAt(t *testing.T) {
	s := NewIndexed[int](2)
	assert.True(t, s.SetAt(1, 5))
	assert.Equal(t, 5, s.At(1))
	assert.False(t, s.SetAt(2, 5))
}
