package authgate

import (
	"context"

	"github.com/goliatone/go-errors"
)

// IdentityResolver loads the user named by a verified token and applies the
// active-user gate.
type IdentityResolver struct {
	store  UserStore
	logger Logger
}

func NewIdentityResolver(store UserStore) *IdentityResolver {
	return &IdentityResolver{
		store:  store,
		logger: defLogger{},
	}
}

func (r *IdentityResolver) WithLogger(logger Logger) *IdentityResolver {
	r.logger = normalizeLogger(logger)
	return r
}

// Resolve looks up the user, failing with ErrUnknownUser if absent
func (r *IdentityResolver) Resolve(ctx context.Context, username string) (*User, error) {
	if username == "" {
		return nil, ErrUnknownUser
	}

	user, err := r.store.LookupUser(ctx, username)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrUnknownUser
		}
		r.logger.Error("resolve user lookup failed: %v", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user").
			WithCode(errors.CodeInternal)
	}

	if user == nil {
		return nil, ErrUnknownUser
	}

	return user, nil
}

// ResolveActive resolves the user and rejects disabled accounts with
// ErrInactiveUser.
func (r *IdentityResolver) ResolveActive(ctx context.Context, username string) (*User, error) {
	user, err := r.Resolve(ctx, username)
	if err != nil {
		return nil, err
	}

	if !user.IsActive() {
		return nil, ErrInactiveUser
	}

	return user, nil
}
