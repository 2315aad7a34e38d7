package service

import (
	"context"
	"errors"

	"github.com/spec-kit/event-gate/internal/auth"
	"github.com/spec-kit/event-gate/internal/credential"
	"github.com/spec-kit/event-gate/internal/domain"
	"github.com/spec-kit/event-gate/internal/repository"
	apperrors "github.com/spec-kit/event-gate/pkg/util"
)

// Profile is a user with their registrations resolved to events.
type Profile struct {
	User   *domain.User
	Events []domain.Event
}

// UserService serves profile, roster and badge reads.
type UserService struct {
	users       repository.UserRepository
	events      *EventService
	credentials *credential.Generator
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, eventService *EventService, credentials *credential.Generator) *UserService {
	return &UserService{users: users, events: eventService, credentials: credentials}
}

// Profile loads the caller's profile.
func (s *UserService) Profile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	resolved, err := s.events.ResolveNames(ctx, user.Events)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Events: resolved}, nil
}

// List returns every account for the admin roster.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// Credential returns the PNG badge for userID. Non-admins may only read
// their own.
func (s *UserService) Credential(ctx context.Context, caller *domain.Identity, userID string) ([]byte, error) {
	if caller == nil || caller.User == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if caller.User.ID != userID && !auth.IsAdmin(caller) {
		return nil, apperrors.NewForbidden("access denied")
	}
	png, err := s.credentials.Load(ctx, userID)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return nil, apperrors.NewNotFound("QR code", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return png, nil
}
