package observable

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// gid returns the id of the calling goroutine, parsed from the stack header
// line ("goroutine 123 [running]:"). Used only to track long-held lock
// ownership; never exposed.
func gid() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseUint(string(fields[1]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// ownedMutex is a mutex that can record which goroutine holds it. Short
// critical sections lock anonymously; long-held acquisitions (an open
// iterator, an exclusive batch, a notification dispatch) record their owner
// so re-entrant calls from that goroutine can be detected instead of
// deadlocking.
type ownedMutex struct {
	mu    sync.Mutex
	owner atomic.Uint64 // gid of an owning holder, 0 otherwise
}

func (m *ownedMutex) Lock()   { m.mu.Lock() }
func (m *ownedMutex) Unlock() { m.mu.Unlock() }

func (m *ownedMutex) lockOwned() {
	m.mu.Lock()
	m.owner.Store(gid())
}

func (m *ownedMutex) unlockOwned() {
	m.owner.Store(0)
	m.mu.Unlock()
}

func (m *ownedMutex) heldBy(g uint64) bool {
	return g != 0 && m.owner.Load() == g
}

// lockSet is the single owner of the list's three lock domains. All
// acquisition goes through its methods; the only legal acquisition order is
// mutation -> notify -> iteration, and each helper asserts the re-entrancy
// invariants before blocking.
type lockSet struct {
	mutation  ownedMutex
	notify    ownedMutex
	iteration ownedMutex
}

// acquireMutation enters the mutation domain for a structural edit. The
// goroutine that holds the mutation lock for an exclusive batch passes
// through without re-locking; the returned flag reports whether the lock
// was actually taken and must be handed back to releaseMutation.
//
// Panics with ErrReentrantCall if the calling goroutine already holds the
// iteration domain (an open iterator) or the notify domain (a sink being
// notified): both would self-deadlock under the fixed order.
func (ls *lockSet) acquireMutation() bool {
	g := gid()
	if ls.iteration.heldBy(g) || ls.notify.heldBy(g) {
		panic(ErrReentrantCall)
	}
	if ls.mutation.heldBy(g) {
		return false
	}
	ls.mutation.Lock()
	return true
}

func (ls *lockSet) releaseMutation(acquired bool) {
	if acquired {
		ls.mutation.Unlock()
	}
}

// acquireMutationOwned enters the mutation domain for an exclusive batch,
// recording the caller as owner so its structural edits pass through for
// the batch's duration. Returns false when the caller already owns the
// domain (nested exclusive batch).
func (ls *lockSet) acquireMutationOwned() bool {
	g := gid()
	if ls.iteration.heldBy(g) || ls.notify.heldBy(g) {
		panic(ErrReentrantCall)
	}
	if ls.mutation.heldBy(g) {
		return false
	}
	ls.mutation.lockOwned()
	return true
}

func (ls *lockSet) releaseMutationOwned() { ls.mutation.unlockOwned() }

// acquireNotify enters the notify domain and records the caller as owner
// for the duration, so immediate-dispatch sinks that call back into the
// list are detected.
func (ls *lockSet) acquireNotify() {
	if ls.notify.heldBy(gid()) {
		panic(ErrReentrantCall)
	}
	ls.notify.lockOwned()
}

func (ls *lockSet) releaseNotify() { ls.notify.unlockOwned() }

// acquireIteration enters the iteration domain for a short read. Panics
// with ErrReentrantCall if the calling goroutine already holds it through
// an open iterator.
func (ls *lockSet) acquireIteration() {
	if ls.iteration.heldBy(gid()) {
		panic(ErrReentrantCall)
	}
	ls.iteration.Lock()
}

func (ls *lockSet) releaseIteration() { ls.iteration.Unlock() }

// acquireIterationOwned enters the iteration domain for a long-held
// traversal and records the caller as owner until the matching release.
func (ls *lockSet) acquireIterationOwned() {
	if ls.iteration.heldBy(gid()) {
		panic(ErrReentrantCall)
	}
	ls.iteration.lockOwned()
}

func (ls *lockSet) releaseIterationOwned() { ls.iteration.unlockOwned() }
