package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/event-gate/internal/domain"
)

func seedUser(t *testing.T, repo UserRepository, id, email string) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &domain.User{
		ID:           id,
		Name:         "user " + id,
		Email:        email,
		PasswordHash: "hash",
		ReferralCode: "ref-" + id,
	}))
}

func TestMemoryUsers_CreateRejectsDuplicateEmail(t *testing.T) {
	repo := NewMemoryStore().Users()
	seedUser(t, repo, "u1", "a@x.com")

	err := repo.Create(context.Background(), &domain.User{ID: "u2", Email: "a@x.com", ReferralCode: "other"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryUsers_ConditionallyAdmit(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Users()
	seedUser(t, repo, "u1", "a@x.com")

	first := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	user, admitted, err := repo.ConditionallyAdmit(ctx, "u1", first)
	require.NoError(t, err)
	assert.True(t, admitted)
	require.NotNil(t, user.EntryTime)
	assert.True(t, first.Equal(*user.EntryTime))

	user, admitted, err = repo.ConditionallyAdmit(ctx, "u1", first.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, admitted)
	assert.True(t, first.Equal(*user.EntryTime), "replay must not overwrite the entry time")

	_, _, err = repo.ConditionallyAdmit(ctx, "missing", first)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUsers_ConditionallyAdmitConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Users()
	seedUser(t, repo, "u1", "a@x.com")

	const workers = 64
	var wins int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, admitted, err := repo.ConditionallyAdmit(ctx, "u1", time.Now())
			if err == nil && admitted {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins)
}

func TestMemoryUsers_AppendEventRegistration(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Users()
	seedUser(t, repo, "u1", "a@x.com")

	require.NoError(t, repo.AppendEventRegistration(ctx, "u1", "Panache"))
	assert.ErrorIs(t, repo.AppendEventRegistration(ctx, "u1", "Panache"), ErrAlreadyRegistered)
	assert.ErrorIs(t, repo.AppendEventRegistration(ctx, "nope", "Panache"), ErrNotFound)

	user, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Panache"}, user.Events)
}

func TestMemoryUsers_IncrementReferralCount(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Users()
	seedUser(t, repo, "u1", "a@x.com")

	ok, err := repo.IncrementReferralCount(ctx, "ref-u1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IncrementReferralCount(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, ok)

	user, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, user.ReferralCount)
}

func TestMemoryUsers_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Users()
	seedUser(t, repo, "u1", "a@x.com")

	user, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	user.Events = append(user.Events, "mutated")
	user.HasEntered = true

	fresh, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, fresh.Events)
	assert.False(t, fresh.HasEntered)
}

func TestMemoryEvents_RenamePropagatesToUsers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	users, events := store.Users(), store.Events()
	seedUser(t, users, "u1", "a@x.com")

	require.NoError(t, events.Create(ctx, &domain.Event{ID: "e1", Name: "Band Jam"}))
	require.NoError(t, events.Create(ctx, &domain.Event{ID: "e2", Name: "Panache"}))
	require.NoError(t, users.AppendEventRegistration(ctx, "u1", "Band Jam"))

	assert.ErrorIs(t, events.Create(ctx, &domain.Event{ID: "e3", Name: "Panache"}), ErrDuplicate)
	assert.ErrorIs(t, events.Update(ctx, &domain.Event{ID: "e1", Name: "Panache"}), ErrDuplicate)
	assert.ErrorIs(t, events.Update(ctx, &domain.Event{ID: "missing", Name: "X"}), ErrNotFound)

	require.NoError(t, events.Update(ctx, &domain.Event{ID: "e1", Name: "Battle of Bands"}))

	user, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Battle of Bands"}, user.Events)

	_, err = events.GetByName(ctx, "Band Jam")
	assert.ErrorIs(t, err, ErrNotFound)
}
