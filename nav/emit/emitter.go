// Package emit provides the observability sink for the navigation
// choreographer: every step of the intent pipeline (admission, debounce
// suppression, validation outcome, command emission, transaction
// activity) is reported as an Event to a configured Emitter.
package emit

import "context"

// Emitter consumes the choreographer's lifecycle events.
//
// Emit is called synchronously from the choreographer's serial dispatch
// loop, between admitting one intent and dispatching the next. A slow
// Emit therefore delays navigation for every producer feeding the
// session: implementations must return quickly, offloading any real
// I/O, and must not panic: failing to record an event must never fail
// the navigation that produced it. On backend trouble, buffer or drop
// and log internally.
//
// Flush blocks until everything buffered has reached the backend, ctx
// is cancelled, or its deadline passes. The choreographer never calls
// Flush itself; applications call it at shutdown so the tail of the
// session's history is not lost with the process.
type Emitter interface {
	Emit(event Event)
	Flush(ctx context.Context) error
}
