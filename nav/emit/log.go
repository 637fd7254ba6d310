package emit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
)

// LogEmitter writes one line per navigation event, in a human-readable
// key=value form or as JSON (one object per line, suitable for jsonl
// ingestion).
//
// The text form leads with a severity derived from the event itself:
// an event carrying an "error" is ERROR, a rejected validation is WARN,
// debounce suppressions are DEBUG, everything else INFO. Well-known
// navigation keys (sender, kind, result, reason) get their own columns;
// whatever else an event carries trails the line in deterministic key
// order.
//
//	INFO  command_emitted session=kiosk-3 seq=12 route=settings kind=NavigateTo
//	WARN  validation_result session=kiosk-3 seq=14 route=admin result=invalid
//
// A single mutex serialises writes so lines from Emit and Flush never
// interleave, whatever writer is underneath.
type LogEmitter struct {
	mu       sync.Mutex
	writer   io.Writer
	jsonMode bool
}

// NewLogEmitter writes events to writer (os.Stdout if nil), as JSON
// lines when jsonMode is set and as text otherwise.
func NewLogEmitter(writer io.Writer, jsonMode bool) *LogEmitter {
	if writer == nil {
		writer = os.Stdout
	}
	return &LogEmitter{writer: writer, jsonMode: jsonMode}
}

// wireEvent is the JSON shape of one logged event. The derived level is
// included so downstream filters don't have to re-implement the
// severity rules, and empty fields are omitted to keep lines short.
type wireEvent struct {
	Level     string                 `json:"level"`
	SessionID string                 `json:"sessionID"`
	Sequence  int                    `json:"sequence"`
	RouteKey  string                 `json:"routeKey,omitempty"`
	Msg       string                 `json:"msg"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
}

// levelFor derives the line's severity from the event content.
func levelFor(event Event) string {
	if _, ok := event.Meta["error"]; ok {
		return "ERROR"
	}
	if event.Msg == "validation_result" {
		if result, ok := event.Meta["result"].(string); ok && result == "invalid" {
			return "WARN"
		}
	}
	if event.Msg == "intent_debounced" {
		return "DEBUG"
	}
	return "INFO"
}

// columnKeys are the meta keys promoted to their own text columns, in
// the order they appear on the line.
var columnKeys = []string{"sender", "kind", "result", "reason"}

// Emit writes the event as one line. Write errors are swallowed: losing
// a log line must not fail the navigation that produced it.
func (l *LogEmitter) Emit(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.jsonMode {
		l.writeJSON(event)
		return
	}
	l.writeText(event)
}

func (l *LogEmitter) writeJSON(event Event) {
	line, err := json.Marshal(wireEvent{
		Level:     levelFor(event),
		SessionID: event.SessionID,
		Sequence:  event.Sequence,
		RouteKey:  event.RouteKey,
		Msg:       event.Msg,
		Meta:      event.Meta,
	})
	if err != nil {
		// Meta carried something unmarshalable; degrade to a text line
		// rather than drop the event.
		l.writeText(event)
		return
	}
	_, _ = l.writer.Write(append(line, '\n'))
}

func (l *LogEmitter) writeText(event Event) {
	var b strings.Builder
	fmt.Fprintf(&b, "%-5s %s session=%s seq=%d", levelFor(event), event.Msg, event.SessionID, event.Sequence)
	if event.RouteKey != "" {
		fmt.Fprintf(&b, " route=%s", event.RouteKey)
	}

	written := map[string]bool{}
	for _, key := range columnKeys {
		if v, ok := event.Meta[key]; ok {
			fmt.Fprintf(&b, " %s=%v", key, v)
			written[key] = true
		}
	}
	if err, ok := event.Meta["error"]; ok {
		fmt.Fprintf(&b, " error=%q", fmt.Sprintf("%v", err))
		written["error"] = true
	}

	// Whatever is left trails the line in deterministic order.
	rest := make([]string, 0, len(event.Meta))
	for key := range event.Meta {
		if !written[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		fmt.Fprintf(&b, " %s=%v", key, event.Meta[key])
	}

	b.WriteByte('\n')
	_, _ = io.WriteString(l.writer, b.String())
}

// Flush is a no-op: every Emit writes through to the underlying writer
// before returning. Syncing a file writer is the caller's concern.
func (l *LogEmitter) Flush(_ context.Context) error {
	return nil
}
