package authgate_test

import (
	"encoding/json"
	"testing"

	"github.com/goliatone/go-authgate"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name       string
		attrs      map[string]any
		wantFields []string
		check      func(t *testing.T, u *authgate.User)
	}{
		{
			name: "complete",
			attrs: map[string]any{
				"id":        id.String(),
				"username":  "johndoe",
				"email":     "johndoe@example.com",
				"full_name": "John Doe",
				"disabled":  true,
			},
			check: func(t *testing.T, u *authgate.User) {
				assert.Equal(t, id, u.ID)
				assert.Equal(t, "johndoe", u.Username)
				assert.Equal(t, "John Doe", u.FullName)
				assert.True(t, u.Disabled)
				assert.False(t, u.IsActive())
			},
		},
		{
			name: "defaults",
			attrs: map[string]any{
				"username": " johndoe ",
				"email":    "johndoe@example.com",
				"ignored":  42,
			},
			check: func(t *testing.T, u *authgate.User) {
				assert.NotEqual(t, uuid.Nil, u.ID)
				assert.Equal(t, "johndoe", u.Username)
				assert.False(t, u.Disabled)
				assert.True(t, u.IsActive())
			},
		},
		{
			name:       "missing required",
			attrs:      map[string]any{},
			wantFields: []string{"username", "email"},
		},
		{
			name: "bad email",
			attrs: map[string]any{
				"username": "johndoe",
				"email":    "not-an-email",
			},
			wantFields: []string{"email"},
		},
		{
			name: "wrong types",
			attrs: map[string]any{
				"id":       12,
				"username": 7,
				"email":    "johndoe@example.com",
				"disabled": "yes",
			},
			wantFields: []string{"id", "username", "disabled"},
		},
		{
			name: "bad uuid",
			attrs: map[string]any{
				"id":       "nope",
				"username": "johndoe",
				"email":    "johndoe@example.com",
			},
			wantFields: []string{"id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := authgate.NewUser(tt.attrs)
			if len(tt.wantFields) > 0 {
				require.Error(t, err)
				assert.Nil(t, u)

				var richErr *errors.Error
				require.True(t, errors.As(err, &richErr))
				assert.Equal(t, errors.CategoryValidation, richErr.Category)
				assert.Equal(t, authgate.TextCodeInvalidUser, richErr.TextCode)
				assert.Equal(t, 400, richErr.Code)

				fields := richErr.ValidationMap()
				for _, f := range tt.wantFields {
					assert.Contains(t, fields, f)
				}
				return
			}

			require.NoError(t, err)
			tt.check(t, u)
		})
	}
}

func TestUser_IsActive(t *testing.T) {
	var nilUser *authgate.User
	assert.False(t, nilUser.IsActive())
	assert.True(t, (&authgate.User{Username: "a"}).IsActive())
	assert.False(t, (&authgate.User{Username: "a", Disabled: true}).IsActive())
}

func TestStoredCredential_JSONHidesHash(t *testing.T) {
	raw, err := json.Marshal(authgate.StoredCredential{Username: "johndoe", HashedPassword: "$2a$04$abc"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "$2a$04$abc")
}

func TestTokenResponse_JSON(t *testing.T) {
	raw, err := json.Marshal(authgate.NewTokenResponse("tok"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"access_token":"tok","token_type":"bearer"}`, string(raw))
}
