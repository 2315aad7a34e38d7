package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/event-gate/internal/domain"
	"github.com/spec-kit/event-gate/internal/events"
	"github.com/spec-kit/event-gate/internal/repository"
	apperrors "github.com/spec-kit/event-gate/pkg/util"
)

// GateMetrics records admit outcomes.
type GateMetrics interface {
	RecordGateDecision(outcome domain.AdmissionOutcome)
}

// GateService runs the entry gate: a read-only verify and the one-shot admit.
type GateService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	metrics    GateMetrics
	logger     *zap.Logger
	now        func() time.Time
}

// GateDependencies bundles collaborators for the gate.
type GateDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Metrics    GateMetrics
	Logger     *zap.Logger
}

// NewGateService builds the service.
func NewGateService(deps GateDependencies) *GateService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GateService{
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Verify returns the current admission snapshot. It never mutates state
// and gives no guarantee about a later Admit.
func (s *GateService) Verify(ctx context.Context, userID string) (*domain.EntrySnapshot, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": userID})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return &domain.EntrySnapshot{
		User:       user,
		Validated:  user.IsValidated,
		HasEntered: user.HasEntered,
		EntryTime:  user.EntryTime,
		AllowEntry: !user.HasEntered,
	}, nil
}

// Admit flips the holder to admitted exactly once. Replays and unknown ids
// come back as deny outcomes rather than errors; an error means the store
// failed and no decision was made.
func (s *GateService) Admit(ctx context.Context, operator *domain.Identity, userID string) (*domain.Admission, error) {
	admission := &domain.Admission{UserID: userID}

	if userID == "" {
		admission.Outcome = domain.AdmissionNotFound
	} else {
		user, admitted, err := s.users.ConditionallyAdmit(ctx, userID, s.now())
		switch {
		case errors.Is(err, repository.ErrNotFound):
			admission.Outcome = domain.AdmissionNotFound
		case err != nil:
			s.logger.Error("admit failed", zap.String("user_id", userID), zap.Error(err))
			return nil, apperrors.NewInternalError(err)
		case admitted:
			admission.Outcome = domain.AdmissionAllowed
			admission.User = user
			admission.EntryTime = user.EntryTime
		default:
			admission.Outcome = domain.AdmissionReplay
			admission.User = user
			admission.EntryTime = user.EntryTime
		}
	}

	if s.metrics != nil {
		s.metrics.RecordGateDecision(admission.Outcome)
	}
	s.record(ctx, operator, admission)
	return admission, nil
}

func (s *GateService) record(ctx context.Context, operator *domain.Identity, a *domain.Admission) {
	fields := []zap.Field{zap.String("user_id", a.UserID), zap.String("outcome", string(a.Outcome))}
	if operator != nil && operator.User != nil {
		fields = append(fields, zap.String("operator_id", operator.User.ID))
	}

	eventType := events.EventEntryAdmitted
	if a.Allowed() {
		s.logger.Info("entry admitted", fields...)
	} else {
		eventType = events.EventEntryDenied
		s.logger.Warn("entry denied", fields...)
	}
	publish(ctx, s.dispatcher, s.logger, eventType, a.UserID, operator, events.EntryDecisionPayload{
		Outcome:   a.Outcome,
		EntryTime: a.EntryTime,
	})
}
