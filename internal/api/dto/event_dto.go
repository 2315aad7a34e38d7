package dto

import (
	"time"

	"github.com/spec-kit/event-gate/internal/domain"
	"github.com/spec-kit/event-gate/internal/service"
)

// EventRequest payload for POST /admin/add-event.
type EventRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	Coordinator  string `json:"coordinator" validate:"max=200"`
	Mobile       string `json:"mobile" validate:"max=32"`
	Date         string `json:"date" validate:"max=64"`
	Timings      string `json:"timings" validate:"max=64"`
	WhatsappLink string `json:"whatsappLink" validate:"omitempty,url"`
	Link         string `json:"link" validate:"omitempty,url"`
	Rules        string `json:"rules"`
	Image        string `json:"image"`
	Description  string `json:"description"`
	Prize        string `json:"prize" validate:"max=200"`
	Category     string `json:"category" validate:"max=64"`
	Capacity     int    `json:"capacity" validate:"gte=0"`
}

// Input converts to the service input.
func (r EventRequest) Input() service.EventInput {
	return service.EventInput{
		Name:         r.Name,
		Coordinator:  r.Coordinator,
		Mobile:       r.Mobile,
		Date:         r.Date,
		Timings:      r.Timings,
		WhatsappLink: r.WhatsappLink,
		Link:         r.Link,
		Rules:        r.Rules,
		Image:        r.Image,
		Description:  r.Description,
		Prize:        r.Prize,
		Category:     r.Category,
		Capacity:     r.Capacity,
	}
}

// UpdateEventRequest payload for POST /admin/update. The id is accepted as
// either "_id" or "id". Omitted fields keep their stored value.
type UpdateEventRequest struct {
	MongoID      string  `json:"_id"`
	ID           string  `json:"id"`
	Name         *string `json:"name" validate:"omitempty,max=200"`
	Coordinator  *string `json:"coordinator" validate:"omitempty,max=200"`
	Mobile       *string `json:"mobile" validate:"omitempty,max=32"`
	Date         *string `json:"date" validate:"omitempty,max=64"`
	Timings      *string `json:"timings" validate:"omitempty,max=64"`
	WhatsappLink *string `json:"whatsappLink" validate:"omitempty,url"`
	Link         *string `json:"link" validate:"omitempty,url"`
	Rules        *string `json:"rules"`
	Image        *string `json:"image"`
	Description  *string `json:"description"`
	Prize        *string `json:"prize" validate:"omitempty,max=200"`
	Category     *string `json:"category" validate:"omitempty,max=64"`
	Capacity     *int    `json:"capacity" validate:"omitempty,gte=0"`
}

// Patch converts to the service patch.
func (r UpdateEventRequest) Patch() service.EventPatch {
	return service.EventPatch{
		Name:         r.Name,
		Coordinator:  r.Coordinator,
		Mobile:       r.Mobile,
		Date:         r.Date,
		Timings:      r.Timings,
		WhatsappLink: r.WhatsappLink,
		Link:         r.Link,
		Rules:        r.Rules,
		Image:        r.Image,
		Description:  r.Description,
		Prize:        r.Prize,
		Category:     r.Category,
		Capacity:     r.Capacity,
	}
}

// EventID returns whichever id field was supplied.
func (r UpdateEventRequest) EventID() string {
	if r.ID != "" {
		return r.ID
	}
	return r.MongoID
}

// RegisterEventRequest payload for POST /api/register-event.
type RegisterEventRequest struct {
	EventName string `json:"eventName" validate:"required"`
}

// EventResponse is the public event representation.
type EventResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Coordinator  string    `json:"coordinator"`
	Mobile       string    `json:"mobile"`
	Date         string    `json:"date"`
	Timings      string    `json:"timings"`
	WhatsappLink string    `json:"whatsappLink"`
	Link         string    `json:"link"`
	Rules        string    `json:"rules"`
	Image        string    `json:"image"`
	Description  string    `json:"description"`
	Prize        string    `json:"prize"`
	Category     string    `json:"category"`
	Capacity     int       `json:"capacity"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewEventResponse maps one event.
func NewEventResponse(e domain.Event) EventResponse {
	return EventResponse{
		ID:           e.ID,
		Name:         e.Name,
		Coordinator:  e.Coordinator,
		Mobile:       e.Mobile,
		Date:         e.Date,
		Timings:      e.Timings,
		WhatsappLink: e.WhatsappLink,
		Link:         e.Link,
		Rules:        e.Rules,
		Image:        e.Image,
		Description:  e.Description,
		Prize:        e.Prize,
		Category:     e.Category,
		Capacity:     e.Capacity,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// NewEventList maps a catalogue, never returning nil.
func NewEventList(events []domain.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, NewEventResponse(e))
	}
	return out
}

// EventMutationResponse wraps add/update results.
type EventMutationResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Event   EventResponse `json:"event"`
}
