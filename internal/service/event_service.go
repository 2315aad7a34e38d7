package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/event-gate/internal/cache"
	"github.com/spec-kit/event-gate/internal/domain"
	"github.com/spec-kit/event-gate/internal/events"
	"github.com/spec-kit/event-gate/internal/repository"
	apperrors "github.com/spec-kit/event-gate/pkg/util"
)

// EventService manages the event catalogue and user registrations.
// Registrations join on event name, so names must stay unique.
type EventService struct {
	events     repository.EventRepository
	users      repository.UserRepository
	cache      *cache.EventsCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// EventDependencies bundles collaborators for the event registry.
type EventDependencies struct {
	EventRepo  repository.EventRepository
	UserRepo   repository.UserRepository
	Cache      *cache.EventsCache
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewEventService builds the service.
func NewEventService(deps EventDependencies) *EventService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{
		events:     deps.EventRepo,
		users:      deps.UserRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// EventInput carries the editable catalogue fields.
type EventInput struct {
	Name         string
	Coordinator  string
	Mobile       string
	Date         string
	Timings      string
	WhatsappLink string
	Link         string
	Rules        string
	Image        string
	Description  string
	Prize        string
	Category     string
	Capacity     int
}

func (in EventInput) apply(e *domain.Event) {
	e.Name = strings.TrimSpace(in.Name)
	e.Coordinator = in.Coordinator
	e.Mobile = in.Mobile
	e.Date = in.Date
	e.Timings = in.Timings
	e.WhatsappLink = in.WhatsappLink
	e.Link = in.Link
	e.Rules = in.Rules
	e.Image = in.Image
	e.Description = in.Description
	e.Prize = in.Prize
	e.Category = in.Category
	e.Capacity = in.Capacity
}

func (in EventInput) validate() error {
	return validateEvent(in.Name, in.Capacity)
}

func validateEvent(name string, capacity int) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.NewValidationError("event name is required", map[string]any{"field": "name"})
	}
	if capacity < 0 {
		return apperrors.NewValidationError("capacity must not be negative", map[string]any{"field": "capacity"})
	}
	return nil
}

// EventPatch carries a partial update. Nil fields keep their stored value.
type EventPatch struct {
	Name         *string
	Coordinator  *string
	Mobile       *string
	Date         *string
	Timings      *string
	WhatsappLink *string
	Link         *string
	Rules        *string
	Image        *string
	Description  *string
	Prize        *string
	Category     *string
	Capacity     *int
}

func (p EventPatch) apply(e *domain.Event) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	if p.Name != nil {
		e.Name = strings.TrimSpace(*p.Name)
	}
	setString(&e.Coordinator, p.Coordinator)
	setString(&e.Mobile, p.Mobile)
	setString(&e.Date, p.Date)
	setString(&e.Timings, p.Timings)
	setString(&e.WhatsappLink, p.WhatsappLink)
	setString(&e.Link, p.Link)
	setString(&e.Rules, p.Rules)
	setString(&e.Image, p.Image)
	setString(&e.Description, p.Description)
	setString(&e.Prize, p.Prize)
	setString(&e.Category, p.Category)
	if p.Capacity != nil {
		e.Capacity = *p.Capacity
	}
}

// List returns the catalogue, reading through the cache.
func (s *EventService) List(ctx context.Context) ([]domain.Event, error) {
	if cached, ok, err := s.cache.Get(ctx); err != nil {
		s.logger.Warn("events cache read", zap.Error(err))
	} else if ok {
		return cached, nil
	}

	list, err := s.events.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if list == nil {
		list = []domain.Event{}
	}
	if err := s.cache.Set(ctx, list); err != nil {
		s.logger.Warn("events cache write", zap.Error(err))
	}
	return list, nil
}

// Add creates an event. Duplicate names are a conflict.
func (s *EventService) Add(ctx context.Context, in EventInput) (*domain.Event, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	event := &domain.Event{ID: uuid.NewString()}
	in.apply(event)

	if err := s.events.Create(ctx, event); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("event name already exists", map[string]any{"name": event.Name})
		}
		return nil, apperrors.NewInternalError(err)
	}
	s.invalidate(ctx)
	s.logger.Info("event added", zap.String("event_id", event.ID), zap.String("name", event.Name))
	return event, nil
}

// Update overwrites the fields present in patch and keeps the rest. A rename
// is carried into every user's registrations.
func (s *EventService) Update(ctx context.Context, id string, patch EventPatch) (*domain.Event, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError("event id is required", map[string]any{"field": "_id"})
	}
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("event", map[string]any{"id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	patch.apply(event)
	if err := validateEvent(event.Name, event.Capacity); err != nil {
		return nil, err
	}

	if err := s.events.Update(ctx, event); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NewNotFound("event", map[string]any{"id": id})
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperrors.NewConflict("event name already exists", map[string]any{"name": event.Name})
		}
		return nil, apperrors.NewInternalError(err)
	}
	s.invalidate(ctx)
	s.logger.Info("event updated", zap.String("event_id", event.ID))
	return event, nil
}

// RegisterUserForEvent adds eventName to the user's registrations.
// It is not idempotent: a second call reports AlreadyRegistered.
func (s *EventService) RegisterUserForEvent(ctx context.Context, userID, eventName string) error {
	eventName = strings.TrimSpace(eventName)
	if eventName == "" {
		return apperrors.NewValidationError("eventName is required", map[string]any{"field": "eventName"})
	}
	if _, err := s.events.GetByName(ctx, eventName); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("event", map[string]any{"name": eventName})
		}
		return apperrors.NewInternalError(err)
	}

	if err := s.users.AppendEventRegistration(ctx, userID, eventName); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyRegistered):
			return apperrors.NewAlreadyRegistered(eventName)
		case errors.Is(err, repository.ErrNotFound):
			return apperrors.NewNotFound("user", nil)
		}
		return apperrors.NewInternalError(err)
	}

	publish(ctx, s.dispatcher, s.logger, events.EventEventRegistered, userID, nil, events.EventRegisteredPayload{EventName: eventName})
	return nil
}

// ResolveNames maps registered names to catalogue entries, skipping names
// with no matching event.
func (s *EventService) ResolveNames(ctx context.Context, names []string) ([]domain.Event, error) {
	result := make([]domain.Event, 0, len(names))
	for _, name := range names {
		event, err := s.events.GetByName(ctx, name)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		result = append(result, *event)
	}
	return result, nil
}

func (s *EventService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("events cache invalidate", zap.Error(err))
	}
}
