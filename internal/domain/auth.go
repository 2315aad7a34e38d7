package domain

import "time"

// SubjectType differentiates regular attendees from gate/admin operators.
type SubjectType string

const (
	SubjectTypeUser  SubjectType = "USER"
	SubjectTypeAdmin SubjectType = "ADMIN"
)

// Identity is the resolved caller behind a session token.
type Identity struct {
	User      *User
	TokenID   string
	ExpiresAt time.Time
}

// Subject returns the subject type derived from the stored admin flag.
func (i *Identity) Subject() SubjectType {
	if i != nil && i.User != nil && i.User.IsAdmin {
		return SubjectTypeAdmin
	}
	return SubjectTypeUser
}

// Session describes an issued session token.
type Session struct {
	Token     string
	ExpiresAt time.Time
}
