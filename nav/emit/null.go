package emit

import "context"

// NullEmitter discards every event. It is the sink to configure when a
// choreographer should run with no observability at all: benchmarks,
// and tests that assert on commands rather than events.
type NullEmitter struct{}

// NewNullEmitter returns the discarding emitter.
func NewNullEmitter() *NullEmitter { return &NullEmitter{} }

// Emit discards the event.
func (*NullEmitter) Emit(Event) {}

// Flush has nothing to flush.
func (*NullEmitter) Flush(context.Context) error { return nil }
