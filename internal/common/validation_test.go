package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Content  string   `validate:"max=10"`
	Action   string   `validate:"required,oneof=A B"`
	Status   string   `validate:"omitempty,post_status"`
	Decision string   `validate:"omitempty,decision"`
	Accounts []string `validate:"min=1"`
}

func TestValidateStruct(t *testing.T) {
	ok := sampleRequest{Content: "hi", Action: "A", Status: "DRAFT", Decision: "APPROVE", Accounts: []string{"x"}}
	assert.NoError(t, ValidateStruct(ok))

	tests := []struct {
		name  string
		req   sampleRequest
		field string
		msg   string
	}{
		{"missing action", sampleRequest{Accounts: []string{"x"}}, "action", "is required"},
		{"bad action", sampleRequest{Action: "C", Accounts: []string{"x"}}, "action", "must be one of [A B]"},
		{"long content", sampleRequest{Content: "01234567890", Action: "A", Accounts: []string{"x"}}, "content", "must be at most 10"},
		{"bad status", sampleRequest{Action: "A", Status: "ARCHIVED", Accounts: []string{"x"}}, "status", "failed post_status validation"},
		{"bad decision", sampleRequest{Action: "A", Decision: "MAYBE", Accounts: []string{"x"}}, "decision", "failed decision validation"},
		{"no accounts", sampleRequest{Action: "A"}, "accounts", "must be at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.req)
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.msg, verr.Message)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestErrorTaxonomy(t *testing.T) {
	upload := &UploadError{File: "a.png", Err: assert.AnError}
	assert.True(t, IsUpload(upload))
	assert.ErrorIs(t, upload, assert.AnError)
	assert.Equal(t, "upload of a.png failed: "+assert.AnError.Error(), upload.Error())

	mutation := &MutationError{Step: "post.update", Err: ErrNotFound}
	assert.ErrorIs(t, mutation, ErrNotFound)
	assert.False(t, IsUpload(mutation))
	assert.Equal(t, "post.update failed: not found", mutation.Error())

	v := NewValidationError("scheduledAt", "must be at least %s in the future", 5*time.Minute)
	assert.Equal(t, "scheduledAt: must be at least 5m0s in the future", v.Error())
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", "postplanner")

	token, err := m.GenerateToken("user-1", "team-1", time.Hour)
	require.NoError(t, err)

	claims, err := m.ValidToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "team-1", claims.TeamID)

	other := NewJWTManager("other-secret", "postplanner")
	_, err = other.ValidToken(token)
	assert.Error(t, err)

	expired, err := m.GenerateToken("user-1", "team-1", -time.Minute)
	require.NoError(t, err)
	_, err = m.ValidToken(expired)
	assert.Error(t, err)

	_, err = m.GenerateToken("", "team-1", time.Hour)
	assert.Error(t, err)

	_, err = NewJWTManager("", "postplanner").ValidToken(token)
	assert.Error(t, err)
}
