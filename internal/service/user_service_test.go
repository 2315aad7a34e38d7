package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/event-gate/pkg/util"
)

func TestUserService_ProfileSkipsUnknownEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.signup(t, "a@x.com")

	_, err := f.registry.Add(ctx, EventInput{Name: "Panache"})
	require.NoError(t, err)
	require.NoError(t, f.registry.RegisterUserForEvent(ctx, user.ID, "Panache"))
	require.NoError(t, f.users.AppendEventRegistration(ctx, user.ID, "Retired Event"))

	profile, err := f.profiles.Profile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", profile.User.Email)
	require.Len(t, profile.Events, 1)
	assert.Equal(t, "Panache", profile.Events[0].Name)
}

func TestUserService_CredentialAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signup(t, "alice@x.com")
	bob := f.signup(t, "bob@x.com")

	png, err := f.profiles.Credential(ctx, f.identity(t, alice), alice.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, png)

	_, err = f.profiles.Credential(ctx, f.identity(t, alice), bob.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	f.promote(t, alice)
	_, err = f.profiles.Credential(ctx, f.identity(t, alice), bob.ID)
	require.NoError(t, err)

	_, err = f.profiles.Credential(ctx, f.identity(t, alice), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserService_List(t *testing.T) {
	f := newFixture(t)
	users, err := f.profiles.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)

	f.signup(t, "a@x.com")
	users, err = f.profiles.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
