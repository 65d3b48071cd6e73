/*
Package dispatch provides the delivery channel that observable collections
use to hand change notifications to their consumer.

A [Dispatcher] accepts a zero-argument callback and returns only after the
callback has run. [Immediate] runs the callback on the calling goroutine and
suits non-marshaled consumers. [Loop] marshals callbacks onto a dedicated
consumer goroutine and blocks the caller until delivery completes, which
keeps the invariant that by the time a mutating call returns, listeners have
already observed the change.
*/
package dispatch

// Dispatcher executes callbacks on behalf of a notification producer.
type Dispatcher interface {
	// Invoke runs fn and returns once fn has completed. Implementations
	// decide on which goroutine fn runs.
	Invoke(fn func())
}

// Immediate runs callbacks inline on the calling goroutine.
type Immediate struct{}

func (Immediate) Invoke(fn func()) { fn() }
