//go:build integration

package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"

	"github.com/spec-kit/event-gate/internal/domain"
	"github.com/spec-kit/event-gate/internal/persistence"
)

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("gate"),
		tcpostgres.WithUsername("gate"),
		tcpostgres.WithPassword("gate"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(ctr)
	})

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, persistence.RunMigrations(ctx, pool, zap.NewNop()))
	return pool
}

func TestPostgres_UserLifecycle(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	repo := NewUserRepository(pool)

	user := &domain.User{ID: "u1", Name: "A", Email: "a@x.com", PasswordHash: "h", ReferralCode: "r1", CredentialRef: "u1.png"}
	require.NoError(t, repo.Create(ctx, user))
	assert.False(t, user.CreatedAt.IsZero())

	err := repo.Create(ctx, &domain.User{ID: "u2", Email: "a@x.com", PasswordHash: "h", ReferralCode: "r2"})
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.Empty(t, got.Events)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := repo.IncrementReferralCount(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.IncrementReferralCount(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.SetAdmin(ctx, "a@x.com", true))
	assert.ErrorIs(t, repo.SetAdmin(ctx, "b@x.com", true), ErrNotFound)

	got, err = repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.ReferralCount)
	assert.True(t, got.IsAdmin)
}

func TestPostgres_ConditionallyAdmitConcurrent(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	repo := NewUserRepository(pool)
	require.NoError(t, repo.Create(ctx, &domain.User{ID: "u1", Email: "a@x.com", PasswordHash: "h", ReferralCode: "r1"}))

	const workers = 32
	var wins int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, admitted, err := repo.ConditionallyAdmit(ctx, "u1", time.Now().UTC())
			if err == nil && admitted {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	close(start)
	wg.Wait()
	assert.Equal(t, int32(1), wins)

	user, admitted, err := repo.ConditionallyAdmit(ctx, "u1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, admitted)
	require.NotNil(t, user.EntryTime)
	assert.True(t, user.EntryTime.Before(time.Now().Add(time.Minute)))

	_, _, err = repo.ConditionallyAdmit(ctx, "missing", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgres_EventsAndRegistration(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	events := NewEventRepository(pool)

	require.NoError(t, users.Create(ctx, &domain.User{ID: "u1", Email: "a@x.com", PasswordHash: "h", ReferralCode: "r1"}))
	require.NoError(t, events.Create(ctx, &domain.Event{ID: "e1", Name: "Band Jam"}))
	require.NoError(t, events.Create(ctx, &domain.Event{ID: "e2", Name: "Panache"}))
	assert.ErrorIs(t, events.Create(ctx, &domain.Event{ID: "e3", Name: "Panache"}), ErrDuplicate)

	require.NoError(t, users.AppendEventRegistration(ctx, "u1", "Band Jam"))
	assert.ErrorIs(t, users.AppendEventRegistration(ctx, "u1", "Band Jam"), ErrAlreadyRegistered)
	assert.ErrorIs(t, users.AppendEventRegistration(ctx, "nope", "Band Jam"), ErrNotFound)

	assert.ErrorIs(t, events.Update(ctx, &domain.Event{ID: "e1", Name: "Panache"}), ErrDuplicate)
	assert.ErrorIs(t, events.Update(ctx, &domain.Event{ID: "missing", Name: "X"}), ErrNotFound)
	require.NoError(t, events.Update(ctx, &domain.Event{ID: "e1", Name: "Battle of Bands", Capacity: 50}))

	user, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Battle of Bands"}, user.Events)

	list, err := events.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
