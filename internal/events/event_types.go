package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCredentialIssued    EventType = "credential.issued"
	EventCredentialRejected  EventType = "credential.rejected"
	EventSubscriptionCreated EventType = "subscription.created"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with an id and the current time.
func New(eventType EventType, subjectID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// CredentialIssuedPayload payload.
type CredentialIssuedPayload struct {
	CredentialID string    `json:"credential_id"`
	SubjectName  string    `json:"subject_name"`
	BoundAddress string    `json:"bound_address"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// CredentialRejectedPayload carries only the failure kind; addresses are
// deliberately left out.
type CredentialRejectedPayload struct {
	Reason string `json:"reason"`
}

// SubscriptionCreatedPayload payload.
type SubscriptionCreatedPayload struct {
	SubscriptionID string `json:"subscription_id"`
	Plan           string `json:"plan"`
}
