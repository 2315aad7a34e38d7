package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/teris-io/shortid"
	"go.uber.org/zap"

	"github.com/spec-kit/event-gate/internal/auth"
	"github.com/spec-kit/event-gate/internal/config"
	"github.com/spec-kit/event-gate/internal/credential"
	"github.com/spec-kit/event-gate/internal/domain"
	"github.com/spec-kit/event-gate/internal/events"
	"github.com/spec-kit/event-gate/internal/repository"
	apperrors "github.com/spec-kit/event-gate/pkg/util"
)

const referralAttempts = 3

// AuthService coordinates signup, login and session resolution.
type AuthService struct {
	users       repository.UserRepository
	credentials *credential.Generator
	tokenMgr    *auth.TokenManager
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	bcryptCost  int
	newID       func() string
	newReferral func() (string, error)
}

// AuthDependencies encapsulates collaborators for auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	Credentials  *credential.Generator
	TokenManager *auth.TokenManager
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tokenMgr := deps.TokenManager
	if tokenMgr == nil {
		tokenMgr = auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL())
	}
	return &AuthService{
		users:       deps.UserRepo,
		credentials: deps.Credentials,
		tokenMgr:    tokenMgr,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		bcryptCost:  cfg.BcryptCost,
		newID:       uuid.NewString,
		newReferral: shortid.Generate,
	}
}

// SignupInput is the validated signup payload.
type SignupInput struct {
	Name         string
	Email        string
	Password     string
	ReferralCode string
}

// Signup creates an account together with its entry badge. The badge is
// written before the user row; if either step fails no account exists.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, apperrors.NewValidationError("email and password are required", nil)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.NewValidationError("invalid email", map[string]any{"field": "email"})
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewEmailTaken()
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternalError(err)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	id := s.newID()
	ref, err := s.credentials.Generate(ctx, id)
	if err != nil {
		s.logger.Error("credential generation failed", zap.String("user_id", id), zap.Error(err))
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		ID:            id,
		Name:          strings.TrimSpace(in.Name),
		Email:         email,
		PasswordHash:  hash,
		Events:        []string{},
		CredentialRef: ref,
	}
	if err := s.create(ctx, user); err != nil {
		if derr := s.credentials.Discard(ctx, id); derr != nil {
			s.logger.Error("discard orphaned credential", zap.String("user_id", id), zap.Error(derr))
		}
		return nil, err
	}

	referredBy := strings.TrimSpace(in.ReferralCode)
	if referredBy != "" {
		s.creditReferral(ctx, referredBy)
	}

	publish(ctx, s.dispatcher, s.logger, events.EventUserRegistered, user.ID, nil, events.UserRegisteredPayload{
		Email:        user.Email,
		ReferralCode: user.ReferralCode,
		ReferredBy:   referredBy,
	})
	s.logger.Info("user signed up", zap.String("user_id", user.ID))
	return user, nil
}

// create inserts the user, drawing a fresh referral code if the generated
// one collides with an existing account.
func (s *AuthService) create(ctx context.Context, user *domain.User) error {
	for attempt := 0; attempt < referralAttempts; attempt++ {
		code, err := s.newReferral()
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		user.ReferralCode = code

		err = s.users.Create(ctx, user)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return apperrors.NewInternalError(err)
		}
		if _, lookupErr := s.users.GetByEmail(ctx, user.Email); lookupErr == nil {
			return apperrors.NewEmailTaken()
		}
	}
	return apperrors.NewInternalError(errors.New("could not allocate a unique referral code"))
}

func (s *AuthService) creditReferral(ctx context.Context, code string) {
	ok, err := s.users.IncrementReferralCount(ctx, code)
	switch {
	case err != nil:
		s.logger.Error("referral increment failed", zap.String("referral_code", code), zap.Error(err))
	case !ok:
		s.logger.Warn("unknown referral code", zap.String("referral_code", code))
	}
}

// Login verifies credentials and issues a session. Unknown email and wrong
// password produce the same error and comparable latency.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, domain.Session, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.Session{}, apperrors.NewValidationError("email and password are required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, domain.Session{}, apperrors.NewInternalError(err)
		}
		auth.BurnCompare(password, s.bcryptCost)
		return nil, domain.Session{}, apperrors.NewInvalidCredentials()
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, domain.Session{}, apperrors.NewInvalidCredentials()
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Email, user.ReferralCode)
	if err != nil {
		return nil, domain.Session{}, apperrors.NewInternalError(err)
	}
	return user, domain.Session{Token: token, ExpiresAt: exp}, nil
}

// Logout has no server-side effect; the transport clears the cookie.
// A copy of the token obtained elsewhere stays valid until it expires.
func (s *AuthService) Logout(_ context.Context, identity *domain.Identity) error {
	if identity != nil && identity.User != nil {
		s.logger.Info("user logged out", zap.String("user_id", identity.User.ID))
	}
	return nil
}

// Authenticate verifies a token and resolves its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, apperrors.NewUnauthorized("access denied, no token provided")
	}
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, apperrors.NewUnauthorized("session expired")
		}
		return nil, apperrors.NewUnauthorized("invalid token")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("unauthenticated")
		}
		return nil, apperrors.NewInternalError(err)
	}

	identity := &domain.Identity{User: user, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

// Authorize reports whether the identity may use admin operations.
func (s *AuthService) Authorize(identity *domain.Identity) bool {
	return auth.IsAdmin(identity)
}

// SessionTTL exposes the token lifetime for cookie max-age.
func (s *AuthService) SessionTTL() int {
	return int(s.tokenMgr.TTL().Seconds())
}
