package authgate

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeUnknownUser  = "UNKNOWN_USER"
	TextCodeTokenMissing = "TOKEN_MISSING"
	TextCodeNotFound     = "RECORD_NOT_FOUND"
)

// ErrInvalidCredentials is returned for unknown usernames and wrong
// passwords alike so callers cannot enumerate accounts.
var ErrInvalidCredentials = errors.New("Incorrect username or password", errors.CategoryAuth).
	WithTextCode(errors.TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidToken covers bad signatures, malformed tokens and missing subjects
var ErrInvalidToken = errors.New("Could not validate credentials", errors.CategoryAuth).
	WithTextCode(errors.TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrExpiredToken is returned when the token exp claim has elapsed
var ErrExpiredToken = errors.New("Token has expired", errors.CategoryAuth).
	WithTextCode(errors.TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrMissingToken is returned when a request carries no bearer token
var ErrMissingToken = errors.New("Not authenticated", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMissing).
	WithCode(errors.CodeUnauthorized)

// ErrUnknownUser is returned when a verified token names a user the store
// does not know about.
var ErrUnknownUser = errors.New("Could not validate credentials", errors.CategoryAuth).
	WithTextCode(TextCodeUnknownUser).
	WithCode(errors.CodeUnauthorized)

// ErrInactiveUser is returned by the active-user gate for disabled accounts
var ErrInactiveUser = errors.New("Inactive user", errors.CategoryAuthz).
	WithTextCode(errors.TextCodeAccountDisabled).
	WithCode(errors.CodeBadRequest)

// ErrRecordNotFound is what UserStore implementations return for unknown usernames
var ErrRecordNotFound = errors.New("record not found", errors.CategoryNotFound).
	WithTextCode(TextCodeNotFound).
	WithCode(errors.CodeNotFound)

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = errors.New("empty password not allowed", errors.CategoryBadInput).
	WithTextCode(errors.TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is returned by ComparePasswordAndHash
var ErrMismatchedHashAndPassword = errors.New("password does not match hash", errors.CategoryAuth).
	WithTextCode(errors.TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// IsNotFound reports whether err means the record does not exist
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrRecordNotFound) || errors.IsNotFound(err)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrExpiredToken) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrInvalidToken) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// StatusCode maps an error to the HTTP status the gateway responds with
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.Code != 0 {
		return richErr.Code
	}

	return http.StatusInternalServerError
}

// IsUnauthorized reports whether the client must authenticate again
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}
