package event

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a domain event published by the validation orchestrator
// or the approval workflow engine
type Event struct {
	ID            string                 `json:"id"`
	Type          Type                   `json:"type"`
	SubjectID     string                 `json:"subject_id"`
	Payload       map[string]interface{} `json:"payload"`
	Timestamp     time.Time              `json:"timestamp"`
	CorrelationID string                 `json:"correlation_id"`
}

// NewEvent creates a new domain event with a generated ID and timestamp.
// SubjectID identifies the delivery or workflow instance the event concerns.
func NewEvent(eventType Type, subjectID string, payload map[string]interface{}) *Event {
	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		SubjectID:     subjectID,
		Payload:       payload,
		Timestamp:     time.Now(),
		CorrelationID: uuid.NewString(),
	}
}

// NewEventWithCorrelation creates an event linked to a correlation chain
func NewEventWithCorrelation(eventType Type, subjectID string, payload map[string]interface{}, correlationID string) *Event {
	e := NewEvent(eventType, subjectID, payload)
	e.CorrelationID = correlationID
	return e
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
