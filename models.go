package authgate

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenTypeBearer is the token_type returned on login
const TokenTypeBearer = "bearer"

const TextCodeInvalidUser = "INVALID_USER"

// User is the authenticated principal. Only Disabled is expected to change
// after creation, flipped by an administrative process.
type User struct {
	ID       uuid.UUID `json:"id,omitempty"`
	Username string    `json:"username"`
	Email    string    `json:"email,omitempty"`
	FullName string    `json:"full_name,omitempty"`
	Disabled bool      `json:"disabled"`
}

// IsActive reports whether the user may pass the active-user gate
func (u *User) IsActive() bool {
	return u != nil && !u.Disabled
}

// StoredCredential pairs a username with its password hash
type StoredCredential struct {
	Username       string `json:"username"`
	HashedPassword string `json:"-"`
}

// TokenResponse is the login response body
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// NewTokenResponse wraps a signed token as a bearer response
func NewTokenResponse(token string) TokenResponse {
	return TokenResponse{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
	}
}

// UserAttributes are the validated inputs used to build a User
type UserAttributes struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	Disabled bool      `json:"disabled"`
}

// Validate will validate the attributes
func (a UserAttributes) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Username, validation.Required, validation.Length(1, 100)),
		validation.Field(&a.Email, validation.Required, validation.Length(3, 254), is.EmailFormat),
		validation.Field(&a.FullName, validation.Length(0, 200)),
	)
}

// Build validates the attributes and returns a User. A nil ID gets a fresh UUID.
func (a UserAttributes) Build() (*User, error) {
	a.Username = strings.TrimSpace(a.Username)
	a.Email = strings.TrimSpace(a.Email)

	if err := a.Validate(); err != nil {
		return nil, errors.FromOzzoValidation(err, "invalid user attributes").
			WithTextCode(TextCodeInvalidUser).
			WithCode(errors.CodeBadRequest)
	}

	id := a.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	return &User{
		ID:       id,
		Username: a.Username,
		Email:    a.Email,
		FullName: a.FullName,
		Disabled: a.Disabled,
	}, nil
}

// NewUser builds a User from a loosely typed mapping such as decoded JSON or
// YAML. Unknown keys are ignored, wrongly typed values and missing required
// fields are reported as a validation error.
func NewUser(attrs map[string]any) (*User, error) {
	var out UserAttributes
	typeErrs := validation.Errors{}

	if raw, ok := attrs["id"]; ok && raw != nil {
		switch v := raw.(type) {
		case uuid.UUID:
			out.ID = v
		case string:
			id, err := uuid.Parse(v)
			if err != nil {
				typeErrs["id"] = fmt.Errorf("must be a valid UUID")
			}
			out.ID = id
		default:
			typeErrs["id"] = fmt.Errorf("must be a valid UUID")
		}
	}

	stringField := func(key string, dst *string) {
		raw, ok := attrs[key]
		if !ok || raw == nil {
			return
		}
		s, ok := raw.(string)
		if !ok {
			typeErrs[key] = fmt.Errorf("must be a string")
			return
		}
		*dst = s
	}

	stringField("username", &out.Username)
	stringField("email", &out.Email)
	stringField("full_name", &out.FullName)

	if raw, ok := attrs["disabled"]; ok && raw != nil {
		b, ok := raw.(bool)
		if !ok {
			typeErrs["disabled"] = fmt.Errorf("must be a boolean")
		}
		out.Disabled = b
	}

	if len(typeErrs) > 0 {
		return nil, errors.FromOzzoValidation(typeErrs, "invalid user attributes").
			WithTextCode(TextCodeInvalidUser).
			WithCode(errors.CodeBadRequest)
	}

	return out.Build()
}
