package emit

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelEmitter implements Emitter by creating OpenTelemetry spans.
//
// Each event becomes a span with:
//   - Span name: event.Msg (e.g., "intent_received", "command_emitted")
//   - Attributes: session ID, sequence, route key, and all event.Meta fields
//   - Status: Set to error if event.Meta["error"] exists
//
// Spans are ended immediately: choreographer events represent points in
// time, not durations.
//
// Usage:
//
//	tracer := otel.Tracer("navchoreo")
//	emitter := emit.NewOTelEmitter(tracer)
//
//	emitter.Emit(Event{
//	    SessionID: "session-001",
//	    Sequence: 1,
//	    RouteKey: "home",
//	    Msg: "intent_received",
//	})
//
// Integration with OpenTelemetry:
//
//	// Setup OpenTelemetry provider (application code)
//	import (
//	    "go.opentelemetry.io/otel"
//	    sdktrace "go.opentelemetry.io/otel/sdk/trace"
//	)
//
//	// Create trace provider with exporter (Jaeger, Zipkin, etc.)
//	tp := sdktrace.NewTracerProvider(
//	    sdktrace.WithBatcher(exporter),
//	)
//	otel.SetTracerProvider(tp)
//
//	tracer := otel.Tracer("navchoreo")
//	emitter := emit.NewOTelEmitter(tracer)
//
//	// Use in the choreographer
//	c, _ := nav.New(g, actors, nav.WithEmitter(emitter))
type OTelEmitter struct {
	tracer trace.Tracer
}

// NewOTelEmitter creates an OTelEmitter that creates one span per event.
//
// The tracer typically comes from otel.Tracer("service-name").
func NewOTelEmitter(tracer trace.Tracer) *OTelEmitter {
	return &OTelEmitter{tracer: tracer}
}

// Emit creates an OpenTelemetry span for the event.
func (o *OTelEmitter) Emit(event Event) {
	ctx := context.Background()
	_, span := o.tracer.Start(ctx, event.Msg)
	defer span.End()

	o.addStandardAttributes(span, event)
	o.addMetadataAttributes(span, event.Meta)
	o.addDispatchAttributes(span, event.Meta)

	if err, ok := event.Meta["error"].(string); ok {
		span.SetStatus(codes.Error, err)
		span.RecordError(fmt.Errorf("%s", err))
	}
}

// Flush forces export of all pending spans. OpenTelemetry typically
// buffers spans in a batch span processor; Flush ensures they reach the
// backend before the application exits. It blocks until all spans are
// exported, ctx is cancelled, or its deadline passes.
//
// Usage:
//
//	defer func() {
//	    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	    defer cancel()
//	    if err := emitter.Flush(ctx); err != nil {
//	        log.Printf("failed to flush spans: %v", err)
//	    }
//	}()
func (o *OTelEmitter) Flush(ctx context.Context) error {
	tp := otel.GetTracerProvider()

	type flusher interface {
		ForceFlush(context.Context) error
	}

	if f, ok := tp.(flusher); ok {
		return f.ForceFlush(ctx)
	}

	// Provider doesn't support flushing (e.g., noop provider).
	return nil
}

// addStandardAttributes adds core event fields as span attributes.
func (o *OTelEmitter) addStandardAttributes(span trace.Span, event Event) {
	span.SetAttributes(
		attribute.String("navchoreo.session_id", event.SessionID),
		attribute.Int("navchoreo.sequence", event.Sequence),
		attribute.String("navchoreo.route_key", event.RouteKey),
	)
}

// addMetadataAttributes converts event metadata to span attributes.
// string, int, int64, float64, and bool convert directly; time.Duration
// converts to milliseconds; anything else falls back to its string
// representation.
func (o *OTelEmitter) addMetadataAttributes(span trace.Span, meta map[string]interface{}) {
	if meta == nil {
		return
	}

	for key, value := range meta {
		// Handled separately by addDispatchAttributes.
		if key == "attempt" || key == "dialog_id" {
			continue
		}

		// Map well-known choreographer metadata keys to namespaced
		// OpenTelemetry attributes.
		attrKey := key
		switch key {
		case "sender":
			attrKey = "navchoreo.sender"
		case "result":
			attrKey = "navchoreo.validation_result"
		case "latency_ms":
			attrKey = "navchoreo.dispatch_latency_ms"
		case "reason":
			attrKey = "navchoreo.reason"
		}

		switch v := value.(type) {
		case string:
			span.SetAttributes(attribute.String(attrKey, v))
		case int:
			span.SetAttributes(attribute.Int(attrKey, v))
		case int64:
			span.SetAttributes(attribute.Int64(attrKey, v))
		case float64:
			span.SetAttributes(attribute.Float64(attrKey, v))
		case bool:
			span.SetAttributes(attribute.Bool(attrKey, v))
		case time.Duration:
			span.SetAttributes(attribute.Int64(attrKey, int64(v/time.Millisecond)))
		default:
			span.SetAttributes(attribute.String(attrKey, fmt.Sprintf("%v", v)))
		}
	}
}

// addDispatchAttributes adds retry/dialog span attributes:
//   - navchoreo.attempt: retry attempt number (0 for the first attempt)
//   - navchoreo.dialog_id: the dialog a Dialog/DismissDialog event concerns
func (o *OTelEmitter) addDispatchAttributes(span trace.Span, meta map[string]interface{}) {
	if meta == nil {
		return
	}

	if dialogID, ok := meta["dialog_id"].(string); ok {
		span.SetAttributes(attribute.String("navchoreo.dialog_id", dialogID))
	}

	if attempt, ok := meta["attempt"].(int); ok {
		span.SetAttributes(attribute.Int("navchoreo.attempt", attempt))
	} else if attempt, ok := meta["attempt"].(int64); ok {
		span.SetAttributes(attribute.Int64("navchoreo.attempt", attempt))
	}
}
