package observable

import "iter"

// Iterator is a single-pass forward cursor over an ObservableList. It holds
// the list's iteration lock from creation until Close, so the list cannot
// be structurally edited while the iterator is open.
//
// An iterator that is never closed starves every future mutator and reader
// of the list. Close it on all exit paths, typically with defer; or use
// [ObservableList.Values], which releases the lock automatically. An
// Iterator is for use by a single goroutine.
type Iterator[T any] struct {
	list   *ObservableList[T]
	pos    int
	closed bool
}

// Iterator blocks until the iteration lock is free, acquires it, and
// returns a cursor positioned before the first element.
//
// Panics with ErrReentrantCall if the calling goroutine already holds an
// open iterator on the same list.
func (l *ObservableList[T]) Iterator() *Iterator[T] {
	l.locks.acquireIterationOwned()
	return &Iterator[T]{list: l, pos: -1}
}

// Next advances the cursor and reports whether an element is available.
func (it *Iterator[T]) Next() bool {
	if it.closed {
		return false
	}
	if it.pos+1 >= it.list.store.len() {
		// move off the last element so Value and Index report exhaustion
		it.pos = it.list.store.len()
		return false
	}
	it.pos++
	return true
}

// Value returns the element at the cursor. Before the first Next, after an
// exhausted Next or after Close it returns the zero value.
func (it *Iterator[T]) Value() (val T) {
	if it.closed || it.pos < 0 || it.pos >= it.list.store.len() {
		return val
	}
	return it.list.store.get(it.pos)
}

// Index returns the cursor position, or -1 when the cursor is not on an
// element.
func (it *Iterator[T]) Index() int {
	if it.closed || it.pos < 0 || it.pos >= it.list.store.len() {
		return -1
	}
	return it.pos
}

// Reset always fails with ErrNotSupported: the cursor is single-pass, and a
// silent restart would conceal that the iteration lock is still held.
func (it *Iterator[T]) Reset() error {
	return ErrNotSupported
}

// Close releases the iteration lock. Exactly the first call releases;
// further calls are no-ops.
func (it *Iterator[T]) Close() {
	if it.closed {
		return
	}
	it.closed = true
	it.list.locks.releaseIterationOwned()
}

// Values returns a single-use sequence over the list's elements. The
// iteration lock is acquired when the range starts and released on every
// exit path: normal completion, early break, or a panic in the loop body.
func (l *ObservableList[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		l.locks.acquireIterationOwned()
		defer l.locks.releaseIterationOwned()
		for v := range l.store.values() {
			if !yield(v) {
				return
			}
		}
	}
}
