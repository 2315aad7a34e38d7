package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/event-gate/internal/auth"
	"github.com/spec-kit/event-gate/internal/cache"
	"github.com/spec-kit/event-gate/internal/config"
	"github.com/spec-kit/event-gate/internal/credential"
	"github.com/spec-kit/event-gate/internal/domain"
	"github.com/spec-kit/event-gate/internal/events"
	"github.com/spec-kit/event-gate/internal/repository"
)

var testAuthConfig = config.AuthConfig{
	JWTSecret:       "test-secret",
	SessionTTLHours: 24,
	BcryptCost:      bcrypt.MinCost,
}

type fixture struct {
	store      *repository.MemoryStore
	users      repository.UserRepository
	events     repository.EventRepository
	credStore  *credential.FSStore
	generator  *credential.Generator
	dispatcher events.Dispatcher
	auth       *AuthService
	gate       *GateService
	registry   *EventService
	profiles   *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	credStore, err := credential.NewFSStore(t.TempDir())
	require.NoError(t, err)
	generator := credential.NewGenerator(credStore, 128)
	dispatcher := events.NewInMemoryDispatcher(nil)

	f := &fixture{
		store:      store,
		users:      store.Users(),
		events:     store.Events(),
		credStore:  credStore,
		generator:  generator,
		dispatcher: dispatcher,
	}
	f.auth = NewAuthService(testAuthConfig, AuthDependencies{
		UserRepo:     f.users,
		Credentials:  generator,
		TokenManager: auth.NewTokenManager(testAuthConfig.JWTSecret, time.Hour),
		Dispatcher:   dispatcher,
	})
	f.gate = NewGateService(GateDependencies{UserRepo: f.users, Dispatcher: dispatcher})
	f.registry = NewEventService(EventDependencies{
		EventRepo:  f.events,
		UserRepo:   f.users,
		Cache:      cache.NewEventsCache(nil, 0),
		Dispatcher: dispatcher,
	})
	f.profiles = NewUserService(f.users, f.registry, generator)
	return f
}

func (f *fixture) signup(t *testing.T, email string) *domain.User {
	t.Helper()
	user, err := f.auth.Signup(context.Background(), SignupInput{Name: "Test", Email: email, Password: "secret1"})
	require.NoError(t, err)
	return user
}

func (f *fixture) identity(t *testing.T, user *domain.User) *domain.Identity {
	t.Helper()
	fresh, err := f.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	return &domain.Identity{User: fresh}
}

func (f *fixture) promote(t *testing.T, user *domain.User) {
	t.Helper()
	require.NoError(t, f.users.SetAdmin(context.Background(), user.Email, true))
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Error(1)
}

func (m *mockUserRepo) ConditionallyAdmit(ctx context.Context, id string, at time.Time) (*domain.User, bool, error) {
	args := m.Called(ctx, id, at)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Bool(1), args.Error(2)
}

func (m *mockUserRepo) AppendEventRegistration(ctx context.Context, id, eventName string) error {
	return m.Called(ctx, id, eventName).Error(0)
}

func (m *mockUserRepo) IncrementReferralCount(ctx context.Context, referralCode string) (bool, error) {
	args := m.Called(ctx, referralCode)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) SetAdmin(ctx context.Context, email string, admin bool) error {
	return m.Called(ctx, email, admin).Error(0)
}
