package validators

import (
	"testing"

	"github.com/anonto42/userdir/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestIsValidID(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"zero id", "000000000000000000000000", true},
		{"mixed hex", "5f1d7a2b9c3e4d5f6a7b8c9d", true},
		{"empty", "", false},
		{"word", "invalid", false},
		{"sentinel", "loginUser", false},
		{"too short", "00000000000000000000000", false},
		{"too long", "0000000000000000000000000", false},
		{"non hex", "zzzzzzzzzzzzzzzzzzzzzzzz", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidID(tt.value))
		})
	}
}

func TestIsValidFollowPayload(t *testing.T) {
	assert.True(t, IsValidFollowPayload(models.FollowRequest{FollowID: "000000000000000000000001"}))
	assert.True(t, IsValidFollowPayload(models.FollowRequest{FollowID: "not-an-id"}))
	assert.False(t, IsValidFollowPayload(models.FollowRequest{}))
}

func TestValidator_NewFollowRequest(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(models.NewFollowRequest{
		UserID:   "000000000000000000000000",
		FollowID: "000000000000000000000001",
	}))
	assert.Error(t, v.Validate(models.NewFollowRequest{UserID: "000000000000000000000000"}))
	assert.Error(t, v.Validate(models.NewFollowRequest{
		UserID:   "000000000000000000000000",
		FollowID: "invalid",
	}))
}

func TestValidator_UserRequests(t *testing.T) {
	v := NewValidator()
	empty := ""
	name := "dave"

	assert.NoError(t, v.Validate(models.CreateUserRequest{Name: "dave"}))
	assert.Error(t, v.Validate(models.CreateUserRequest{}))
	assert.NoError(t, v.Validate(models.UpdateUserRequest{}))
	assert.NoError(t, v.Validate(models.UpdateUserRequest{Name: &name}))
	assert.Error(t, v.Validate(models.UpdateUserRequest{Name: &empty}))
	assert.Error(t, v.Validate(models.LoginUserRequest{}))
}
