/*
Package observable provides a thread-safe, index-addressable list that
reports every structural change to registered sinks, in the order the
changes were applied.

# Locking

Three lock domains protect the list: mutation (structural writes and
whole-list exclusivity), notify (serializes delivery to sinks), and
iteration (read traversal). Every code path acquires them in the fixed
order mutation -> notify -> iteration; acquisition is centralized in one
helper type so no other ordering can exist.

# Iteration

[ObservableList.Iterator] holds the iteration lock for the iterator's whole
lifetime and releases it exactly once on Close. An iterator that is never
closed blocks every future mutator and reader of the list. Prefer
[ObservableList.Values], which releases the lock on every exit path
(normal completion, early break, panic):

	for v := range list.Values() {
		if v == target {
			break // lock released here too
		}
	}

A goroutine that holds its own open iterator and calls back into the list
panics with [ErrReentrantCall] instead of deadlocking against itself. The
same applies to a sink that mutates the list from inside a notification
delivered by [dispatch.Immediate].

# Batching

BeginUpdate/EndUpdate suppress per-operation notifications and emit a
single coalesced event when the outermost EndUpdate returns the nesting
depth to zero. An exclusive batch additionally holds the mutation lock for
the batch's duration, blocking all concurrent structural edits; keep such
batches short.
*/
package observable
