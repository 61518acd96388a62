package authgate

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
)

// Stage names a step of the per-request authorization flow:
// TokenPresented -> Verified -> IdentityResolved -> ActiveUserConfirmed.
// Rejections are reported with the stage that failed.
type Stage string

const (
	StageCredentials         Stage = "credentials"
	StageTokenIssued         Stage = "token_issued"
	StageTokenPresented      Stage = "token_presented"
	StageVerified            Stage = "verified"
	StageIdentityResolved    Stage = "identity_resolved"
	StageActiveUserConfirmed Stage = "active_user_confirmed"
)

// Gateway composes the authenticator, token service and identity resolver
// into the login and per-request authorization flows.
type Gateway struct {
	cfg           Config
	authenticator *Authenticator
	tokens        *TokenService
	resolver      *IdentityResolver
	logger        Logger
	activitySink  ActivitySink
	now           Clock
}

// GatewayOption configures a Gateway
type GatewayOption func(*Gateway)

// WithLogger sets the logger for the gateway and its components
func WithLogger(logger Logger) GatewayOption {
	return func(g *Gateway) {
		g.logger = normalizeLogger(logger)
	}
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func WithActivitySink(sink ActivitySink) GatewayOption {
	return func(g *Gateway) {
		g.activitySink = normalizeActivitySink(sink)
	}
}

// WithClock overrides the time source, mostly useful in tests
func WithClock(clock Clock) GatewayOption {
	return func(g *Gateway) {
		if clock != nil {
			g.now = clock
		}
	}
}

// WithPasswordHasher swaps the password verification primitive
func WithPasswordHasher(hasher PasswordAuthenticator) GatewayOption {
	return func(g *Gateway) {
		g.authenticator.WithPasswordAuthenticator(hasher)
	}
}

type validatable interface {
	Validate() error
}

// NewGateway builds a Gateway. The configuration is validated here and is
// read-only afterwards.
func NewGateway(store UserStore, cfg Config, opts ...GatewayOption) (*Gateway, error) {
	if store == nil {
		return nil, errors.New("user store is required", errors.CategoryBadInput)
	}

	if cfg == nil {
		return nil, errors.New("gateway config is required", errors.CategoryBadInput)
	}

	if v, ok := cfg.(validatable); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}

	g := &Gateway{
		cfg:           cfg,
		authenticator: NewAuthenticator(store),
		resolver:      NewIdentityResolver(store),
		logger:        defLogger{},
		activitySink:  noopActivitySink{},
		now:           time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	tokens, err := NewTokenService(cfg, g.logger)
	if err != nil {
		return nil, err
	}

	g.tokens = tokens.WithClock(g.now)
	g.authenticator.WithLogger(g.logger)
	g.resolver.WithLogger(g.logger)

	return g, nil
}

// Config returns the gateway configuration
func (g *Gateway) Config() Config {
	return g.cfg
}

// TokenService returns the TokenService used by the gateway
func (g *Gateway) TokenService() *TokenService {
	return g.tokens
}

// Authenticator returns the credential checker used by Login
func (g *Gateway) Authenticator() *Authenticator {
	return g.authenticator
}

// Resolver returns the identity resolver used by Authorize
func (g *Gateway) Resolver() *IdentityResolver {
	return g.resolver
}

// Login authenticates the credentials and issues a token with the default TTL
func (g *Gateway) Login(ctx context.Context, username, password string) (TokenResponse, error) {
	user, err := g.authenticator.Authenticate(ctx, username, password)
	if err != nil {
		g.logger.Info("login rejected for %q: %s", username, textCode(err))
		g.emit(ctx, ActivityEventLoginFailure, username, StageCredentials, err)
		return TokenResponse{}, err
	}

	token, _, err := g.tokens.IssueDefault(user.Username)
	if err != nil {
		g.logger.Error("login failed to issue token for %q: %v", user.Username, err)
		g.emit(ctx, ActivityEventLoginFailure, user.Username, StageTokenIssued, err)
		return TokenResponse{}, err
	}

	g.emit(ctx, ActivityEventLoginSuccess, user.Username, StageTokenIssued, nil)

	return NewTokenResponse(token), nil
}

// Authorize runs a presented token through verification, identity
// resolution and the active-user gate. Every failure is terminal.
func (g *Gateway) Authorize(ctx context.Context, rawToken string) (*User, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		g.emit(ctx, ActivityEventAuthorizationFailure, "", StageTokenPresented, ErrMissingToken)
		return nil, ErrMissingToken
	}

	username, err := g.tokens.Verify(rawToken)
	if err != nil {
		g.emit(ctx, ActivityEventAuthorizationFailure, "", StageVerified, err)
		return nil, err
	}

	user, err := g.resolver.Resolve(ctx, username)
	if err != nil {
		g.emit(ctx, ActivityEventAuthorizationFailure, username, StageIdentityResolved, err)
		return nil, err
	}

	if !user.IsActive() {
		g.emit(ctx, ActivityEventAuthorizationFailure, username, StageActiveUserConfirmed, ErrInactiveUser)
		return nil, ErrInactiveUser
	}

	g.emit(ctx, ActivityEventAuthorizationSuccess, username, StageActiveUserConfirmed, nil)

	return user, nil
}

func (g *Gateway) emit(ctx context.Context, eventType ActivityEventType, username string, stage Stage, cause error) {
	event := ActivityEvent{
		EventType:  eventType,
		Username:   username,
		Stage:      stage,
		OccurredAt: g.now(),
	}

	if cause != nil {
		event.TextCode = textCode(cause)
		event.Status = StatusCode(cause)
	}

	sink := normalizeActivitySink(g.activitySink)
	if err := sink.Record(ctx, event); err != nil {
		g.logger.Warn("activity sink record error: %v", err)
	}
}

func textCode(err error) string {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode
	}
	return ""
}
