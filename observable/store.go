package observable

import (
	"iter"
	"slices"
)

// arrayStore is the unsynchronized backing sequence of an ObservableList.
// Callers are responsible for holding the appropriate lock domains.
type arrayStore[T any] struct {
	data []T
}

func newArrayStore[T any](initial []T) *arrayStore[T] {
	return &arrayStore[T]{data: slices.Clone(initial)}
}

func (s *arrayStore[T]) append(values ...T) {
	s.data = append(s.data, values...)
}

// removeAt removes and returns the element at index i, which must be in
// bounds.
func (s *arrayStore[T]) removeAt(i int) T {
	removed := s.data[i]
	copy(s.data[i:], s.data[i+1:])
	// clear the vacated tail slot so the element can be GCed
	clear(s.data[len(s.data)-1:])
	s.data = s.data[:len(s.data)-1]
	return removed
}

func (s *arrayStore[T]) clear() {
	clear(s.data)
	s.data = s.data[:0]
}

func (s *arrayStore[T]) len() int {
	return len(s.data)
}

func (s *arrayStore[T]) indexFunc(predicate func(T) bool) int {
	return slices.IndexFunc(s.data, predicate)
}

// copyInto copies up to len(dst) elements into dst and returns the number
// copied.
func (s *arrayStore[T]) copyInto(dst []T) int {
	return copy(dst, s.data)
}

func (s *arrayStore[T]) snapshot() []T {
	return slices.Clone(s.data)
}

func (s *arrayStore[T]) get(i int) T {
	return s.data[i]
}

func (s *arrayStore[T]) values() iter.Seq[T] {
	return slices.Values(s.data)
}
