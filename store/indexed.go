package store

import "golang.org/x/exp/constraints"

// Indexed is a fixed-capacity sequence of values with one current
// selection. The selection index is always a valid position, so
// Current never fails. Capacity is fixed at construction.
type Indexed[T constraints.Integer] struct {
	data  []T
	index int
}

// NewIndexed creates a store with size zero-valued elements and the
// selection at position 0. Size must be at least 1.
func NewIndexed[T constraints.Integer](size int) *Indexed[T] {
	if size < 1 {
		size = 1
	}
	return &Indexed[T]{data: make([]T, size)}
}

func (s *Indexed[T]) Len() int {
	return len(s.data)
}

func (s *Indexed[T]) Index() int {
	return s.index
}

// SetIndex moves the selection to i. Out-of-range values are rejected
// without mutation.
func (s *Indexed[T]) SetIndex(i int) bool {
	if i < 0 || i >= len(s.data) {
		return false
	}
	s.index = i
	return true
}

// Current returns the element at the selection index.
func (s *Indexed[T]) Current() T {
	return s.data[s.index]
}

// SetCurrent overwrites the element at the selection index.
func (s *Indexed[T]) SetCurrent(v T) {
	s.data[s.index] = v
}

// Advance moves the selection by one position. At a boundary it wraps
// to the opposite end when cyclic is true, otherwise it fails and
// leaves the index untouched.
func (s *Indexed[T]) Advance(forward, cyclic bool) bool {
	if forward {
		if s.index+1 >= len(s.data) {
			if !cyclic {
				return false
			}
			s.index = 0
			return true
		}
		s.index++
		return true
	}
	if s.index-1 < 0 {
		if !cyclic {
			return false
		}
		s.index = len(s.data) - 1
		return true
	}
	s.index--
	return true
}

func (s *Indexed[T]) At(i int) T {
	return s.data[i]
}

func (s *Indexed[T]) SetAt(i int, v T) bool {
	if i < 0 || i >= len(s.data) {
		return false
	}
	s.data[i] = v
	return true
}

// Values returns a copy of all elements in order.
func (s *Indexed[T]) Values() []T {
	out := make([]T, len(s.data))
	copy(out, s.data)
	return out
}

// SetValues overwrites the elements from vals. Length must match the
// fixed capacity.
func (s *Indexed[T]) SetValues(vals []T) bool {
	if len(vals) != len(s.data) {
		return false
	}
	copy(s.data, vals)
	return true
}
