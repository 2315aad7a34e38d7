package dto

import (
	"time"

	"github.com/spec-kit/event-gate/internal/domain"
)

// VerifyResponse is the read-only gate pre-check.
type VerifyResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Validated  bool       `json:"validated"`
	HasEntered bool       `json:"hasEntered"`
	EntryTime  *time.Time `json:"entryTime"`
	AllowEntry bool       `json:"allowEntry"`
}

// NewVerifyResponse maps a snapshot.
func NewVerifyResponse(s *domain.EntrySnapshot) VerifyResponse {
	return VerifyResponse{
		ID:         s.User.ID,
		Name:       s.User.Name,
		Email:      s.User.Email,
		Validated:  s.Validated,
		HasEntered: s.HasEntered,
		EntryTime:  s.EntryTime,
		AllowEntry: s.AllowEntry,
	}
}

// AdmitResponse is the gate decision. PlayBuzzer is set on every deny.
type AdmitResponse struct {
	Success    bool       `json:"success"`
	PlayBuzzer bool       `json:"playBuzzer"`
	Outcome    string     `json:"outcome"`
	EntryTime  *time.Time `json:"entryTime"`
	Message    string     `json:"message"`
	Name       string     `json:"name,omitempty"`
}

// NewAdmitResponse maps an admission.
func NewAdmitResponse(a *domain.Admission) AdmitResponse {
	resp := AdmitResponse{
		Success:    a.Allowed(),
		PlayBuzzer: a.PlayBuzzer(),
		Outcome:    string(a.Outcome),
		EntryTime:  a.EntryTime,
	}
	if a.User != nil {
		resp.Name = a.User.Name
	}
	switch a.Outcome {
	case domain.AdmissionAllowed:
		resp.Message = "entry allowed"
	case domain.AdmissionReplay:
		resp.Message = "already entered"
	default:
		resp.Message = "user not found"
	}
	return resp
}
