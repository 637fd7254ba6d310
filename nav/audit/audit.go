// Package audit provides an append-only trail of dispatched intents and
// emitted commands. It is an observability record, not back-stack
// persistence: the choreographer writes to it and never reads it back.
package audit

import (
	"context"
	"time"
)

// Record is one entry in the audit trail: either an admitted Intent or an
// emitted Command, flattened to a storage-friendly shape. Detail carries
// the JSON-encoded remainder of whichever payload produced the record
// (NavOptions, Overlay, validation message, ...) so the schema doesn't
// grow a column per intent/command variant.
type Record struct {
	SessionID string
	Sequence  int
	Kind      string // "intent" or "command"
	Name      string // e.g. "NavigateTo", "Back", "DisplayDialog"
	RouteKey  string
	Sender    string
	Detail    string
	Timestamp time.Time
}

// AuditStore persists Records and retrieves them back per session.
//
// Implementations: MemoryStore (testing), SQLiteStore (local/single-process
// deployments), MySQLStore (shared/production deployments).
type AuditStore interface {
	// Append records a single entry. Implementations must not reorder
	// entries relative to insertion order for a given SessionID.
	Append(ctx context.Context, record Record) error

	// History returns up to limit records for sessionID, oldest first. A
	// non-positive limit returns every record for the session.
	History(ctx context.Context, sessionID string, limit int) ([]Record, error)
}
