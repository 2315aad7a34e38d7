package domain

import (
	"strings"
	"time"
)

// User is an attendee account. Admission fields move from not-entered to
// entered exactly once; EntryTime is non-nil iff HasEntered.
type User struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string
	Events        []string
	ReferralCode  string
	ReferralCount int
	CredentialRef string
	IsValidated   bool
	HasEntered    bool
	EntryTime     *time.Time
	IsAdmin       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasEvent reports whether the user registered for the named event.
func (u *User) HasEvent(name string) bool {
	for _, e := range u.Events {
		if e == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can't alias slices or the entry time.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.Events = append([]string(nil), u.Events...)
	if u.EntryTime != nil {
		t := *u.EntryTime
		cp.EntryTime = &t
	}
	return &cp
}

// NormalizeEmail is the canonical stored form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
