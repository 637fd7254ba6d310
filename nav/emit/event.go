package emit

// Event represents an observability event emitted during navigation
// choreography: intent admission, validation outcomes, transaction
// lifecycle, and command emission.
//
// Events are emitted to an Emitter which can:
//   - Log to stdout/stderr
//   - Send to OpenTelemetry
//   - Store in time-series databases
//   - Trigger alerts
type Event struct {
	// SessionID identifies the choreographer instance (typically one per
	// app process or per user session) that emitted this event.
	SessionID string

	// Sequence is the monotonically increasing dispatch-loop step number
	// at which this event was emitted.
	Sequence int

	// RouteKey identifies the node involved, when applicable (e.g. the
	// destination of a NavigateTo). Empty for choreographer-level events
	// that aren't tied to a specific node.
	RouteKey string

	// Msg names the lifecycle point: "intent_received",
	// "intent_debounced", "validation_result", "command_emitted",
	// "transaction_started", or "transaction_completed".
	Msg string

	// Meta contains additional structured data specific to this event.
	// Common keys:
	//   - "sender": which actor class produced the intent
	//   - "result": the validation result kind
	//   - "error": error details
	//   - "dialog_id": the dialog a Dialog/DismissDialog command concerns
	Meta map[string]interface{}
}
