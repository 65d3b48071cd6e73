package observable

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/Fluttercom/ConcurrentObservable/dispatch"
)

var (
	// ErrCapacity reports a bulk copy whose destination offset is out of the
	// destination's bounds.
	ErrCapacity = fmt.Errorf("destination offset out of bounds")
	// ErrNotSupported reports an explicitly unsupported capability.
	ErrNotSupported = fmt.Errorf("operation is not supported")
	// ErrNoBatch reports an EndUpdate without a matching BeginUpdate.
	ErrNoBatch = fmt.Errorf("EndUpdate called without a matching BeginUpdate")
	// ErrReentrantCall is the panic value for a call that would deadlock the
	// calling goroutine against a lock it already holds, e.g. mutating the
	// list while holding one of its open iterators.
	ErrReentrantCall = fmt.Errorf("reentrant call into the list from its own iteration or notification")
)

// ObservableList is a thread-safe ordered list that reports structural
// changes to subscribed sinks. Elements are held as shared references only;
// the list never assumes ownership of element lifetime.
//
// See the package documentation for the lock discipline and the iterator
// contract.
type ObservableList[T any] struct {
	locks lockSet
	store *arrayStore[T]

	equal      func(a, b T) bool
	dispatcher dispatch.Dispatcher
	sinks      []Sink[T] // guarded by the notify domain

	// batch controller state
	batchMu     sync.Mutex
	depth       atomic.Int32
	exclusiveAt int32 // depth at which the exclusive lock was taken, 0 if not held
}

type config[T any] struct {
	equal      func(a, b T) bool
	dispatcher dispatch.Dispatcher
}

type Option[T any] func(*config[T])

// WithEqual sets the equality used by Remove, RemoveRange and Contains.
// The default compares boxed values with ==, which is valid for elements
// whose dynamic type is comparable.
func WithEqual[T any](equal func(a, b T) bool) Option[T] {
	if equal == nil {
		panic("observable.WithEqual: equality function cannot be nil")
	}
	return func(cfg *config[T]) {
		cfg.equal = equal
	}
}

// WithDispatcher sets the delivery channel for notifications. The default
// is dispatch.Immediate, which runs sinks on the mutating goroutine.
func WithDispatcher[T any](d dispatch.Dispatcher) Option[T] {
	if d == nil {
		panic("observable.WithDispatcher: dispatcher cannot be nil")
	}
	return func(cfg *config[T]) {
		cfg.dispatcher = d
	}
}

// New creates an ObservableList seeded with a copy of initial.
func New[T any](initial []T, opts ...Option[T]) *ObservableList[T] {
	cfg := &config[T]{
		equal:      func(a, b T) bool { return any(a) == any(b) },
		dispatcher: dispatch.Immediate{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &ObservableList[T]{
		store:      newArrayStore(initial),
		equal:      cfg.equal,
		dispatcher: cfg.dispatcher,
	}
}

// Subscribe registers a sink for change notifications.
func (l *ObservableList[T]) Subscribe(sink Sink[T]) {
	if sink == nil {
		panic("observable.Subscribe: sink cannot be nil")
	}
	l.locks.acquireNotify()
	defer l.locks.releaseNotify()
	l.sinks = append(l.sinks, sink)
}

// Unsubscribe removes a previously registered sink and reports whether it
// was registered. Sinks are matched by == identity, so register a sink
// whose dynamic type is comparable, typically a pointer; a value sink of a
// non-comparable type has no identity to match and is never found.
func (l *ObservableList[T]) Unsubscribe(sink Sink[T]) bool {
	l.locks.acquireNotify()
	defer l.locks.releaseNotify()
	for i, s := range l.sinks {
		if sameSink(s, sink) {
			l.sinks = append(l.sinks[:i], l.sinks[i+1:]...)
			return true
		}
	}
	return false
}

// sameSink compares two sinks by identity without the run-time panic that
// == on interfaces of a non-comparable dynamic type would raise.
func sameSink[T any](a, b Sink[T]) bool {
	if t := reflect.TypeOf(a); t != reflect.TypeOf(b) || !t.Comparable() {
		return false
	}
	return a == b
}

// Add appends item to the end of the list. Outside a batch it dispatches a
// single ChangeAdd notification before returning.
func (l *ObservableList[T]) Add(item T) {
	acquired := l.locks.acquireMutation()
	l.locks.acquireNotify()
	defer l.locks.releaseNotify() // deferred so a panicking sink cannot wedge the list
	l.locks.acquireIteration()
	l.store.append(item)
	count := l.store.len()
	l.locks.releaseIteration()
	suppress := l.depth.Load() > 0
	l.locks.releaseMutation(acquired)
	if !suppress {
		l.dispatchLocked(Change[T]{Kind: ChangeAdd, Item: item, Index: -1}, count)
	}
}

// AddRange appends items to the end of the list. Bulk edits always coalesce:
// a single ChangeReset is dispatched even while a batch is pending.
func (l *ObservableList[T]) AddRange(items []T) {
	acquired := l.locks.acquireMutation()
	l.locks.acquireNotify()
	defer l.locks.releaseNotify()
	l.locks.acquireIteration()
	l.store.append(items...)
	count := l.store.len()
	l.locks.releaseIteration()
	l.locks.releaseMutation(acquired)
	l.dispatchLocked(Change[T]{Kind: ChangeReset, Index: -1}, count)
}

// Remove removes the first element equal to item and reports whether a
// removal occurred. On removal it dispatches ChangeRemove carrying the
// index the element occupied, unless a batch is pending. An absent item
// dispatches nothing.
func (l *ObservableList[T]) Remove(item T) bool {
	acquired := l.locks.acquireMutation()
	l.locks.acquireNotify()
	defer l.locks.releaseNotify()
	l.locks.acquireIteration()
	index := l.store.indexFunc(func(v T) bool { return l.equal(v, item) })
	if index < 0 {
		l.locks.releaseIteration()
		l.locks.releaseMutation(acquired)
		return false
	}
	removed := l.store.removeAt(index)
	count := l.store.len()
	l.locks.releaseIteration()
	suppress := l.depth.Load() > 0
	l.locks.releaseMutation(acquired)
	if !suppress {
		l.dispatchLocked(Change[T]{Kind: ChangeRemove, Item: removed, Index: index}, count)
	}
	return true
}

// RemoveRange removes the first match of each given item. Bulk edits always
// coalesce: a single ChangeReset is dispatched even while a batch is
// pending, regardless of how many removals occurred.
func (l *ObservableList[T]) RemoveRange(items []T) {
	acquired := l.locks.acquireMutation()
	l.locks.acquireNotify()
	defer l.locks.releaseNotify()
	l.locks.acquireIteration()
	for _, item := range items {
		if index := l.store.indexFunc(func(v T) bool { return l.equal(v, item) }); index >= 0 {
			l.store.removeAt(index)
		}
	}
	count := l.store.len()
	l.locks.releaseIteration()
	l.locks.releaseMutation(acquired)
	l.dispatchLocked(Change[T]{Kind: ChangeReset, Index: -1}, count)
}

// Clear removes all elements. Outside a batch it dispatches a single
// ChangeReset.
func (l *ObservableList[T]) Clear() {
	acquired := l.locks.acquireMutation()
	l.locks.acquireNotify()
	defer l.locks.releaseNotify()
	l.locks.acquireIteration()
	l.store.clear()
	l.locks.releaseIteration()
	suppress := l.depth.Load() > 0
	l.locks.releaseMutation(acquired)
	if !suppress {
		l.dispatchLocked(Change[T]{Kind: ChangeReset, Index: -1}, 0)
	}
}

// Contains reports whether the list holds an element equal to item.
func (l *ObservableList[T]) Contains(item T) bool {
	l.locks.acquireIteration()
	defer l.locks.releaseIteration()
	return l.store.indexFunc(func(v T) bool { return l.equal(v, item) }) >= 0
}

// Count returns the number of elements.
func (l *ObservableList[T]) Count() int {
	l.locks.acquireIteration()
	defer l.locks.releaseIteration()
	return l.store.len()
}

// CopyTo copies min(len(dst)-offset, Count) elements into dst starting at
// offset and returns the number copied. It fails with ErrCapacity when
// offset is outside dst's bounds.
func (l *ObservableList[T]) CopyTo(dst []T, offset int) (int, error) {
	if offset < 0 || offset > len(dst) {
		return 0, fmt.Errorf("observable.CopyTo: offset %d with destination length %d: %w", offset, len(dst), ErrCapacity)
	}
	l.locks.acquireIteration()
	defer l.locks.releaseIteration()
	return l.store.copyInto(dst[offset:]), nil
}

// Snapshot returns a copy of the current elements.
func (l *ObservableList[T]) Snapshot() []T {
	l.locks.acquireIteration()
	defer l.locks.releaseIteration()
	return l.store.snapshot()
}

// IsReadOnly always returns false; the list does not support a read-only
// mode.
func (l *ObservableList[T]) IsReadOnly() bool {
	return false
}

// Locker exposes the mutation lock so external bulk helpers can serialize
// against structural edits without re-entering the list's API. Holding it
// blocks all mutators but not readers.
func (l *ObservableList[T]) Locker() sync.Locker {
	return &l.locks.mutation
}

// dispatchLocked delivers ch to every subscribed sink through the
// configured dispatcher, followed by the count-changed signal. The caller
// must hold the notify domain; the mutating call does not return before
// every sink has observed the change.
func (l *ObservableList[T]) dispatchLocked(ch Change[T], count int) {
	if len(l.sinks) == 0 {
		return
	}
	l.dispatcher.Invoke(func() {
		for _, s := range l.sinks {
			s.Changed(ch)
			s.CountChanged(count)
		}
	})
}
