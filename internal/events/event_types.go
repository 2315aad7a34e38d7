package events

import (
	"time"

	"github.com/spec-kit/event-gate/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered  EventType = "user_registered"
	EventEntryAdmitted   EventType = "entry_admitted"
	EventEntryDenied     EventType = "entry_denied"
	EventEventRegistered EventType = "event_registered"
)

// AllTypes lists every type the services publish.
var AllTypes = []EventType{
	EventUserRegistered,
	EventEntryAdmitted,
	EventEntryDenied,
	EventEventRegistered,
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type   domain.SubjectType `json:"type"`
	UserID string             `json:"user_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email        string `json:"email"`
	ReferralCode string `json:"referral_code"`
	ReferredBy   string `json:"referred_by,omitempty"`
}

// EntryDecisionPayload is shared by admitted and denied events.
type EntryDecisionPayload struct {
	Outcome   domain.AdmissionOutcome `json:"outcome"`
	EntryTime *time.Time              `json:"entry_time,omitempty"`
}

// EventRegisteredPayload payload.
type EventRegisteredPayload struct {
	EventName string `json:"event_name"`
}
