package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/event-gate/internal/credential"
	"github.com/spec-kit/event-gate/internal/repository"
	apperrors "github.com/spec-kit/event-gate/pkg/util"
)

func TestSignup_IssuesDecodableCredential(t *testing.T) {
	f := newFixture(t)
	user := f.signup(t, "a@x.com")

	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, user.ReferralCode)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.Equal(t, credential.Key(user.ID), filepath.Base(user.CredentialRef))

	png, err := f.generator.Load(context.Background(), user.ID)
	require.NoError(t, err)
	decoded, err := credential.Decode(png)
	require.NoError(t, err)
	assert.Equal(t, user.ID, decoded)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "a@x.com")

	_, err := f.auth.Signup(context.Background(), SignupInput{Name: "Other", Email: "A@X.com ", Password: "different"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestSignup_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Signup(ctx, SignupInput{Email: "a@x.com"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.auth.Signup(ctx, SignupInput{Email: "not-an-email", Password: "pw"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

type brokenStore struct{}

func (brokenStore) Put(context.Context, string, []byte) (string, error) {
	return "", errors.New("disk full")
}
func (brokenStore) Get(context.Context, string) ([]byte, error) { return nil, credential.ErrNotFound }
func (brokenStore) Delete(context.Context, string) error        { return nil }

func TestSignup_ArtifactFailureCreatesNoUser(t *testing.T) {
	f := newFixture(t)
	f.auth.credentials = credential.NewGenerator(brokenStore{}, 128)

	_, err := f.auth.Signup(context.Background(), SignupInput{Email: "a@x.com", Password: "secret1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInternal)

	_, err = f.users.GetByEmail(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSignup_StoreFailureDiscardsArtifact(t *testing.T) {
	f := newFixture(t)
	repo := new(mockUserRepo)
	repo.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, repository.ErrNotFound)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset"))
	f.auth.users = repo
	f.auth.newID = func() string { return "fixed-id" }

	_, err := f.auth.Signup(context.Background(), SignupInput{Email: "a@x.com", Password: "secret1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInternal)

	_, err = f.generator.Load(context.Background(), "fixed-id")
	assert.ErrorIs(t, err, credential.ErrNotFound)
	repo.AssertExpectations(t)
}

func TestSignup_RetriesReferralCollision(t *testing.T) {
	f := newFixture(t)
	codes := []string{"dup", "dup", "fresh"}
	f.auth.newReferral = func() (string, error) {
		code := codes[0]
		codes = codes[1:]
		return code, nil
	}

	first := f.signup(t, "a@x.com")
	second := f.signup(t, "b@x.com")
	assert.Equal(t, "dup", first.ReferralCode)
	assert.Equal(t, "fresh", second.ReferralCode)
}

func TestSignup_CreditsReferrer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	referrer := f.signup(t, "ref@x.com")

	_, err := f.auth.Signup(ctx, SignupInput{Email: "b@x.com", Password: "pw", ReferralCode: referrer.ReferralCode})
	require.NoError(t, err)
	_, err = f.auth.Signup(ctx, SignupInput{Email: "c@x.com", Password: "pw", ReferralCode: "no-such-code"})
	require.NoError(t, err)

	fresh, err := f.users.GetByID(ctx, referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.ReferralCount)
}

func TestLogin_IdenticalFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signup(t, "a@x.com")

	_, _, wrongPassword := f.auth.Login(ctx, "a@x.com", "wrong")
	_, _, unknownEmail := f.auth.Login(ctx, "nobody@x.com", "secret1")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, apperrors.ToDomainError(wrongPassword).Code, apperrors.ToDomainError(unknownEmail).Code)
	assert.Equal(t, 401, apperrors.ToDomainError(unknownEmail).HTTPStatus)
}

func TestLoginAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.signup(t, "a@x.com")

	got, session, err := f.auth.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, session.Token)

	identity, err := f.auth.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.User.ID)
	assert.False(t, f.auth.Authorize(identity))

	f.promote(t, user)
	identity, err = f.auth.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.True(t, f.auth.Authorize(identity))
}

func TestAuthenticate_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Authenticate(ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = f.auth.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	orphan, _, err := f.auth.tokenMgr.GenerateToken("deleted-user", "gone@x.com", "ref")
	require.NoError(t, err)
	_, err = f.auth.Authenticate(ctx, orphan)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
