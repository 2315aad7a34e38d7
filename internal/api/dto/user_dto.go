package dto

import (
	"time"

	"github.com/spec-kit/event-gate/internal/domain"
	"github.com/spec-kit/event-gate/internal/service"
)

// SignupRequest payload for new accounts.
type SignupRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6,max=72"`
	Username     string `json:"username" validate:"max=100"`
	ReferralCode string `json:"referralCode" validate:"max=32"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignupUser echoes the created account's referral data.
type SignupUser struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	ReferalID   string  `json:"referalID"`
	ReferalCode *string `json:"referalCode"`
}

// SignupResponse is returned with 201.
type SignupResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	User    SignupUser `json:"user"`
}

// NewSignupResponse renders the created user.
func NewSignupResponse(user *domain.User, usedCode string) SignupResponse {
	var code *string
	if usedCode != "" {
		code = &usedCode
	}
	return SignupResponse{
		Success: true,
		Message: "User created successfully",
		User: SignupUser{
			ID:          user.ID,
			Email:       user.Email,
			ReferalID:   user.ReferralCode,
			ReferalCode: code,
		},
	}
}

// MessageResponse is the plain success envelope.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// LoginResponse acknowledges a session; the token travels in the cookie.
type LoginResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ProfileResponse is GET /api/user.
type ProfileResponse struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	ReferralCode     string          `json:"referralCode"`
	ReferralCount    int             `json:"referralCount"`
	QRPath           string          `json:"qrPath"`
	Validated        bool            `json:"validated"`
	HasEntered       bool            `json:"hasEntered"`
	EntryTime        *time.Time      `json:"entryTime"`
	IsAdmin          bool            `json:"isAdmin"`
	RegisteredEvents []EventResponse `json:"registeredEvents"`
}

// QRPath is the route serving a user's badge.
func QRPath(userID string) string {
	return "/api/qrcode/" + userID
}

// NewProfileResponse maps a resolved profile.
func NewProfileResponse(p *service.Profile) ProfileResponse {
	return ProfileResponse{
		ID:               p.User.ID,
		Name:             p.User.Name,
		Email:            p.User.Email,
		ReferralCode:     p.User.ReferralCode,
		ReferralCount:    p.User.ReferralCount,
		QRPath:           QRPath(p.User.ID),
		Validated:        p.User.IsValidated,
		HasEntered:       p.User.HasEntered,
		EntryTime:        p.User.EntryTime,
		IsAdmin:          p.User.IsAdmin,
		RegisteredEvents: NewEventList(p.Events),
	}
}

// UserSummary is one row of the admin roster.
type UserSummary struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	ReferralCode  string     `json:"referralCode"`
	ReferralCount int        `json:"referralCount"`
	Events        []string   `json:"events"`
	Validated     bool       `json:"validated"`
	HasEntered    bool       `json:"hasEntered"`
	EntryTime     *time.Time `json:"entryTime"`
	IsAdmin       bool       `json:"isAdmin"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// NewUserList maps the roster.
func NewUserList(users []domain.User) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		events := u.Events
		if events == nil {
			events = []string{}
		}
		out = append(out, UserSummary{
			ID:            u.ID,
			Name:          u.Name,
			Email:         u.Email,
			ReferralCode:  u.ReferralCode,
			ReferralCount: u.ReferralCount,
			Events:        events,
			Validated:     u.IsValidated,
			HasEntered:    u.HasEntered,
			EntryTime:     u.EntryTime,
			IsAdmin:       u.IsAdmin,
			CreatedAt:     u.CreatedAt,
		})
	}
	return out
}
