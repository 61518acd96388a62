package authgate

import (
	"context"
	"strings"
	"sync"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Authenticator checks username and password pairs against a UserStore
type Authenticator struct {
	store  UserStore
	hasher PasswordAuthenticator
	logger Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthenticator returns a bcrypt backed Authenticator
func NewAuthenticator(store UserStore) *Authenticator {
	return &Authenticator{
		store:  store,
		hasher: BcryptHasher{},
		logger: defLogger{},
	}
}

func (a *Authenticator) WithLogger(logger Logger) *Authenticator {
	a.logger = normalizeLogger(logger)
	return a
}

// WithPasswordAuthenticator swaps the hash verification primitive
func (a *Authenticator) WithPasswordAuthenticator(hasher PasswordAuthenticator) *Authenticator {
	if hasher != nil {
		a.hasher = hasher
	}
	return a
}

// Authenticate returns the User for a valid username and password. Unknown
// usernames and wrong passwords both fail with ErrInvalidCredentials.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		a.burnComparison(password)
		return nil, ErrInvalidCredentials
	}

	cred, err := a.store.LookupCredential(ctx, username)
	if err != nil {
		if IsNotFound(err) {
			a.burnComparison(password)
			return nil, ErrInvalidCredentials
		}
		a.logger.Error("authenticate credential lookup failed: %v", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve credential").
			WithCode(errors.CodeInternal)
	}

	if cred == nil || cred.HashedPassword == "" {
		a.burnComparison(password)
		return nil, ErrInvalidCredentials
	}

	if err := a.hasher.ComparePasswordAndHash(password, cred.HashedPassword); err != nil {
		if !errors.Is(err, ErrMismatchedHashAndPassword) {
			a.logger.Warn("authenticate stored hash could not be compared for %s", username)
		}
		return nil, ErrInvalidCredentials
	}

	user, err := a.store.LookupUser(ctx, username)
	if err != nil {
		if IsNotFound(err) {
			a.logger.Warn("authenticate credential without user record for %s", username)
			return nil, ErrInvalidCredentials
		}
		a.logger.Error("authenticate user lookup failed: %v", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user").
			WithCode(errors.CodeInternal)
	}

	if user == nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// burnComparison runs a comparison against a hash nobody knows the password
// for, so a miss on the username costs about as much as a wrong password.
func (a *Authenticator) burnComparison(password string) {
	a.dummyOnce.Do(func() {
		h, err := a.hasher.HashPassword(uuid.NewString())
		if err != nil {
			h = RandomPasswordHash()
		}
		a.dummyHash = h
	})
	_ = a.hasher.ComparePasswordAndHash(password, a.dummyHash)
}
