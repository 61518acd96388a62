package authgate_test

import (
	"fmt"
	"testing"

	"github.com/goliatone/go-authgate"
	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 200},
		{name: "invalid credentials", err: authgate.ErrInvalidCredentials, want: 401},
		{name: "invalid token", err: authgate.ErrInvalidToken, want: 401},
		{name: "expired token", err: authgate.ErrExpiredToken, want: 401},
		{name: "missing token", err: authgate.ErrMissingToken, want: 401},
		{name: "unknown user", err: authgate.ErrUnknownUser, want: 401},
		{name: "inactive user", err: authgate.ErrInactiveUser, want: 400},
		{name: "not found", err: authgate.ErrRecordNotFound, want: 404},
		{name: "wrapped", err: fmt.Errorf("outer: %w", authgate.ErrInactiveUser), want: 400},
		{name: "plain error", err: fmt.Errorf("boom"), want: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, authgate.StatusCode(tt.err))
		})
	}
}

func TestErrorCategories(t *testing.T) {
	assert.True(t, errors.IsCategory(authgate.ErrInvalidCredentials, errors.CategoryAuth))
	assert.True(t, errors.IsCategory(authgate.ErrInvalidToken, errors.CategoryAuth))
	assert.True(t, errors.IsCategory(authgate.ErrInactiveUser, errors.CategoryAuthz))
	assert.True(t, errors.IsCategory(authgate.ErrRecordNotFound, errors.CategoryNotFound))
}

func TestUnknownUserLooksLikeInvalidToken(t *testing.T) {
	// clients see one message whether the token or the user was bad
	assert.Equal(t, authgate.ErrInvalidToken.Message, authgate.ErrUnknownUser.Message)
	assert.NotEqual(t, authgate.ErrInvalidToken.TextCode, authgate.ErrUnknownUser.TextCode)
}

func TestErrorPredicates(t *testing.T) {
	assert.True(t, authgate.IsNotFound(authgate.ErrRecordNotFound))
	assert.True(t, authgate.IsNotFound(fmt.Errorf("lookup: %w", authgate.ErrRecordNotFound)))
	assert.False(t, authgate.IsNotFound(nil))
	assert.False(t, authgate.IsNotFound(authgate.ErrUnknownUser))

	assert.True(t, authgate.IsTokenExpiredError(authgate.ErrExpiredToken))
	assert.False(t, authgate.IsTokenExpiredError(authgate.ErrInvalidToken))
	assert.False(t, authgate.IsTokenExpiredError(nil))

	assert.True(t, authgate.IsMalformedError(authgate.ErrInvalidToken))
	assert.False(t, authgate.IsMalformedError(authgate.ErrExpiredToken))

	assert.True(t, authgate.IsUnauthorized(authgate.ErrMissingToken))
	assert.False(t, authgate.IsUnauthorized(authgate.ErrInactiveUser))
}
