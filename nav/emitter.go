package nav

import (
	"github.com/dshills/navchoreo/nav/audit"
	"github.com/dshills/navchoreo/nav/emit"
)

// Emitter is the observability sink a Choreographer publishes lifecycle
// events to (intent_received, intent_debounced, validation_result,
// command_emitted, transaction_started, transaction_completed). Aliased from
// nav/emit so callers configuring a Choreographer via WithEmitter don't
// need a second import for emit.LogEmitter/BufferedEmitter/OTelEmitter/
// NullEmitter.
type Emitter = emit.Emitter

// AuditStore is the append-only intent/command audit trail a Choreographer
// writes to, independent of back-stack persistence. Aliased from nav/audit
// for the same reason as Emitter.
type AuditStore = audit.AuditStore
