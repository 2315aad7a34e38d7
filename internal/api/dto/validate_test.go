package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/event-gate/internal/domain"
	apperrors "github.com/spec-kit/event-gate/pkg/util"
)

func TestValidate_Signup(t *testing.T) {
	assert.NoError(t, Validate(SignupRequest{Email: "a@x.com", Password: "secret1"}))

	err := Validate(SignupRequest{Email: "nope", Password: "123"})
	require.Error(t, err)
	derr := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeValidation, derr.Code)
	fields, ok := derr.Details["fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "email", fields["email"])
	assert.Equal(t, "min", fields["password"])
}

func TestValidate_EventRequest(t *testing.T) {
	assert.NoError(t, Validate(EventRequest{Name: "Panache"}))
	assert.Error(t, Validate(EventRequest{}))
	assert.Error(t, Validate(EventRequest{Name: "x", Capacity: -1}))
	assert.Error(t, Validate(EventRequest{Name: "x", Link: "not a url"}))
}

func TestUpdateEventRequest_EventID(t *testing.T) {
	assert.Equal(t, "a", UpdateEventRequest{MongoID: "a"}.EventID())
	assert.Equal(t, "b", UpdateEventRequest{MongoID: "a", ID: "b"}.EventID())
}

func TestUpdateEventRequest_PartialBody(t *testing.T) {
	name := "Battle of Bands"
	req := UpdateEventRequest{ID: "e1", Name: &name}
	require.NoError(t, Validate(req))

	patch := req.Patch()
	require.NotNil(t, patch.Name)
	assert.Equal(t, name, *patch.Name)
	assert.Nil(t, patch.Timings)
	assert.Nil(t, patch.Capacity)

	negative := -1
	assert.Error(t, Validate(UpdateEventRequest{ID: "e1", Capacity: &negative}))
	badURL := "not a url"
	assert.Error(t, Validate(UpdateEventRequest{ID: "e1", Link: &badURL}))
}

func TestNewAdmitResponse(t *testing.T) {
	resp := NewAdmitResponse(&domain.Admission{Outcome: domain.AdmissionReplay})
	assert.False(t, resp.Success)
	assert.True(t, resp.PlayBuzzer)
	assert.Equal(t, "already entered", resp.Message)

	resp = NewAdmitResponse(&domain.Admission{Outcome: domain.AdmissionAllowed})
	assert.True(t, resp.Success)
	assert.False(t, resp.PlayBuzzer)
}
