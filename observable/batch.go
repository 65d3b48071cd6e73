package observable

import "slices"

// BeginUpdate starts (or nests into) a batch. While the batch is pending,
// Add, Remove and Clear suppress their per-operation notifications; the
// outermost EndUpdate emits one coalesced notification instead.
//
// When exclusive is true the calling goroutine additionally takes the
// mutation lock for the whole batch, blocking every concurrent structural
// edit until the matching EndUpdate. The exclusive batch is a coarse,
// collection-wide critical section; keep it short. Only the goroutine that
// began an exclusive batch may perform structural edits within it, and the
// matching EndUpdate must come from that same goroutine. A nested
// BeginUpdate(true) by the owner re-enters without re-locking.
func (l *ObservableList[T]) BeginUpdate(exclusive bool) {
	if exclusive {
		if l.locks.acquireMutationOwned() {
			l.batchMu.Lock()
			l.exclusiveAt = l.depth.Add(1)
			l.batchMu.Unlock()
			return
		}
	}
	l.batchMu.Lock()
	l.depth.Add(1)
	l.batchMu.Unlock()
}

// EndUpdate closes one level of batching. It returns ErrNoBatch when no
// batch is pending.
//
// The coalesced notification fires only when the nesting depth returns to
// zero: ChangeAddRange carrying a copy of added when onlyAdd is true,
// ChangeReset otherwise. Inner EndUpdate calls dispatch nothing and their
// arguments are ignored. (The legacy behavior fired on every EndUpdate,
// producing redundant events under nesting.)
//
// If the depth drops past the level at which an exclusive BeginUpdate took
// the mutation lock, the lock is released, after the coalesced event has
// been ordered ahead of any mutation the release unblocks.
func (l *ObservableList[T]) EndUpdate(onlyAdd bool, added []T) error {
	g := gid()
	l.batchMu.Lock()
	if l.depth.Load() == 0 {
		l.batchMu.Unlock()
		return ErrNoBatch
	}
	depth := l.depth.Add(-1)
	releaseExclusive := l.exclusiveAt > 0 && depth < l.exclusiveAt && l.locks.mutation.heldBy(g)
	if releaseExclusive {
		l.exclusiveAt = 0
	}
	l.batchMu.Unlock()

	if depth > 0 {
		if releaseExclusive {
			l.locks.releaseMutationOwned()
		}
		return nil
	}

	// Take notify before releasing the exclusive lock so the coalesced
	// event is ordered ahead of any mutation the release unblocks.
	l.locks.acquireNotify()
	defer l.locks.releaseNotify()
	if releaseExclusive {
		l.locks.releaseMutationOwned()
	}
	l.locks.acquireIteration()
	count := l.store.len()
	l.locks.releaseIteration()

	change := Change[T]{Kind: ChangeReset, Index: -1}
	if onlyAdd {
		change = Change[T]{Kind: ChangeAddRange, Items: slices.Clone(added), Index: -1}
	}
	l.dispatchLocked(change, count)
	return nil
}

// IsBatching reports whether a batch is currently pending.
func (l *ObservableList[T]) IsBatching() bool {
	return l.depth.Load() > 0
}
