package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is something that happened to the review session.
// Events are immutable; WithPayload returns a modified copy.
type Event struct {
	ID        string         `json:"id"`
	Type      Type           `json:"type"`
	SessionID string         `json:"session_id"`
	Level     Level          `json:"level"`
	Message   string         `json:"message"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewEvent creates an event with a generated ID, the type's default level and the current time
func NewEvent(eventType Type, sessionID, message string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SessionID: sessionID,
		Level:     eventType.DefaultLevel(),
		Message:   message,
		Payload:   map[string]any{},
		Timestamp: time.Now(),
	}
}

// WithPayload returns a new Event with an added payload key-value pair
func (e *Event) WithPayload(key string, value any) *Event {
	payload := make(map[string]any, len(e.Payload)+1)
	for k, v := range e.Payload {
		payload[k] = v
	}
	payload[key] = value

	next := *e
	next.Payload = payload
	return &next
}

// GetPayloadString retrieves a string value from the payload
func (e *Event) GetPayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
