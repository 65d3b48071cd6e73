package dispatch

import (
	"context"
	"sync"
)

type job struct {
	fn   func()
	done chan struct{}
}

// Loop marshals callbacks onto a single consumer goroutine, the one that
// calls [Loop.Run]. Invoke posts the callback and waits for the loop to
// execute it, so callers observe the same completed-before-return semantics
// as [Immediate], just on a different goroutine.
//
// The jobs channel is unbuffered on purpose: a post succeeds only when the
// running loop has accepted the job, so a job can never be stranded between
// a successful post and a loop shutdown.
type Loop struct {
	mu     sync.Mutex
	jobs   chan job
	doneCh chan struct{} // closed when the loop is closed
	closed bool
}

// NewLoop creates a Loop. It does nothing until Run is called; Invoke blocks
// until the loop is running or closed.
func NewLoop() *Loop {
	return &Loop{
		jobs:   make(chan job),
		doneCh: make(chan struct{}),
	}
}

// Run executes posted callbacks on the calling goroutine until ctx is
// cancelled or Close is called. A job accepted before shutdown is always
// executed before Run returns.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			l.Close()
			return
		case <-l.doneCh:
			return
		case j := <-l.jobs:
			j.fn()
			close(j.done)
		}
	}
}

// Invoke runs fn on the loop goroutine and returns after fn has completed.
// If the loop has been closed, fn runs inline on the calling goroutine
// instead, so producers are never wedged during shutdown.
func (l *Loop) Invoke(fn func()) {
	j := job{fn: fn, done: make(chan struct{})}
	select {
	case l.jobs <- j:
		<-j.done
	case <-l.doneCh:
		fn()
	}
}

// Done returns a channel that is closed when the loop is closed.
func (l *Loop) Done() <-chan struct{} {
	return l.doneCh
}

// Close stops the loop. It is safe to call multiple times and from any
// goroutine.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.doneCh)
}

// IsClosed returns whether the loop has been closed.
func (l *Loop) IsClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}
