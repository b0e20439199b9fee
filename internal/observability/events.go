package observability

import "time"

// serviceName stamps every published envelope so mixed-tenant exchanges can
// filter on origin.
const serviceName = "campus-sync"

// EventEnvelope is the wire form for everything campus-sync publishes to the
// broker. Consumers bind on event_type for a stream and event_name for the
// specific transition within it.
type EventEnvelope struct {
	Service   string      `json:"service"`
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	EmittedAt time.Time   `json:"emitted_at"`
	Payload   interface{} `json:"payload"`
}

// NewEnvelope stamps service and emission time onto an event.
func NewEnvelope(eventType, eventName string, payload interface{}) EventEnvelope {
	return EventEnvelope{
		Service:   serviceName,
		EventType: eventType,
		EventName: eventName,
		EmittedAt: time.Now().UTC(),
		Payload:   payload,
	}
}

// BuildHeaders carries request correlation ids onto the AMQP message. Returns
// nil when there is nothing to carry.
func BuildHeaders(requestID, traceID string) map[string]string {
	if requestID == "" && traceID == "" {
		return nil
	}
	headers := make(map[string]string, 2)
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
