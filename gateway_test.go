package authgate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-authgate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, store authgate.UserStore, opts ...authgate.GatewayOption) *authgate.Gateway {
	t.Helper()

	base := []authgate.GatewayOption{
		authgate.WithLogger(authgate.NopLogger()),
		authgate.WithPasswordHasher(fastHasher),
	}

	g, err := authgate.NewGateway(store, testOptions(), append(base, opts...)...)
	require.NoError(t, err)
	return g
}

func TestNewGateway_Validation(t *testing.T) {
	store := authgate.NewMemoryStore()

	_, err := authgate.NewGateway(nil, testOptions())
	assert.Error(t, err)

	_, err = authgate.NewGateway(store, nil)
	assert.Error(t, err)

	short := testOptions()
	short.SigningKey = "short"
	_, err = authgate.NewGateway(store, short)
	assert.Error(t, err)

	g, err := authgate.NewGateway(store, testOptions(), nil)
	require.NoError(t, err)
	assert.NotNil(t, g.TokenService())
	assert.NotNil(t, g.Authenticator())
	assert.NotNil(t, g.Resolver())
	assert.Equal(t, testSigningKey, g.Config().GetSigningKey())
}

func TestGateway_LoginAndAuthorize(t *testing.T) {
	sink := &capturingSink{}
	g := newTestGateway(t, newFixtureStore(t), authgate.WithActivitySink(sink))
	ctx := context.Background()

	res, err := g.Login(ctx, "johndoe", "secret")
	require.NoError(t, err)
	assert.Equal(t, "bearer", res.TokenType)
	assert.NotEmpty(t, res.AccessToken)

	last := sink.Last()
	assert.Equal(t, authgate.ActivityEventLoginSuccess, last.EventType)
	assert.Equal(t, authgate.StageTokenIssued, last.Stage)
	assert.Equal(t, "johndoe", last.Username)

	user, err := g.Authorize(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "johndoe", user.Username)
	assert.True(t, user.IsActive())

	last = sink.Last()
	assert.Equal(t, authgate.ActivityEventAuthorizationSuccess, last.EventType)
	assert.Equal(t, authgate.StageActiveUserConfirmed, last.Stage)
	assert.Empty(t, last.TextCode)
}

func TestGateway_LoginFailures(t *testing.T) {
	sink := &capturingSink{}
	g := newTestGateway(t, newFixtureStore(t), authgate.WithActivitySink(sink))
	ctx := context.Background()

	for _, tc := range []struct{ username, password string }{
		{"johndoe", "wrong"},
		{"nobody", "secret"},
		{"", ""},
	} {
		res, err := g.Login(ctx, tc.username, tc.password)
		assert.ErrorIs(t, err, authgate.ErrInvalidCredentials)
		assert.Empty(t, res.AccessToken)

		last := sink.Last()
		assert.Equal(t, authgate.ActivityEventLoginFailure, last.EventType)
		assert.Equal(t, authgate.StageCredentials, last.Stage)
		assert.Equal(t, "INVALID_CREDENTIALS", last.TextCode)
		assert.Equal(t, 401, last.Status)
		assert.True(t, last.Failed())
	}
}

func TestGateway_AuthorizeStages(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	sink := &capturingSink{}
	store := newFixtureStore(t)
	g := newTestGateway(t, store,
		authgate.WithActivitySink(sink),
		authgate.WithClock(clock.Now),
	)
	ctx := context.Background()

	johnToken, _, err := g.TokenService().IssueDefault("johndoe")
	require.NoError(t, err)

	aliceToken, _, err := g.TokenService().IssueDefault("alice")
	require.NoError(t, err)

	ghostToken, _, err := g.TokenService().IssueDefault("ghost")
	require.NoError(t, err)

	shortToken, _, err := g.TokenService().Issue("johndoe", time.Minute)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)

	tests := []struct {
		name      string
		token     string
		wantErr   error
		wantStage authgate.Stage
		wantCode  string
	}{
		{name: "missing token", token: "  ", wantErr: authgate.ErrMissingToken, wantStage: authgate.StageTokenPresented, wantCode: "TOKEN_MISSING"},
		{name: "malformed token", token: "abc.def.ghi", wantErr: authgate.ErrInvalidToken, wantStage: authgate.StageVerified, wantCode: "TOKEN_MALFORMED"},
		{name: "expired token", token: shortToken, wantErr: authgate.ErrExpiredToken, wantStage: authgate.StageVerified, wantCode: "TOKEN_EXPIRED"},
		{name: "unknown user", token: ghostToken, wantErr: authgate.ErrUnknownUser, wantStage: authgate.StageIdentityResolved, wantCode: "UNKNOWN_USER"},
		{name: "inactive user", token: aliceToken, wantErr: authgate.ErrInactiveUser, wantStage: authgate.StageActiveUserConfirmed, wantCode: "ACCOUNT_DISABLED"},
		{name: "active user", token: johnToken, wantStage: authgate.StageActiveUserConfirmed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := g.Authorize(ctx, tt.token)
			last := sink.Last()

			assert.Equal(t, tt.wantStage, last.Stage)
			assert.Equal(t, tt.wantCode, last.TextCode)
			assert.Equal(t, clock.Now(), last.OccurredAt)

			if tt.wantErr != nil {
				assert.Nil(t, user)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, authgate.ActivityEventAuthorizationFailure, last.EventType)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "johndoe", user.Username)
			assert.Equal(t, authgate.ActivityEventAuthorizationSuccess, last.EventType)
		})
	}
}

func TestGateway_DeletedUserTokenIsRejected(t *testing.T) {
	store := newFixtureStore(t)
	g := newTestGateway(t, store)
	ctx := context.Background()

	res, err := g.Login(ctx, "johndoe", "secret")
	require.NoError(t, err)

	store.Delete("johndoe")

	_, err = g.Authorize(ctx, res.AccessToken)
	assert.ErrorIs(t, err, authgate.ErrUnknownUser)
}

func TestGateway_SinkErrorsAreLogged(t *testing.T) {
	logger := new(MockLogger)
	logger.On("Warn", "activity sink record error: %v", mock.Anything).Return()

	failing := authgate.ActivitySinkFunc(func(context.Context, authgate.ActivityEvent) error {
		return errors.New("queue full")
	})

	g, err := authgate.NewGateway(newFixtureStore(t), testOptions(),
		authgate.WithLogger(logger),
		authgate.WithActivitySink(failing),
		authgate.WithPasswordHasher(fastHasher),
	)
	require.NoError(t, err)

	res, err := g.Login(context.Background(), "johndoe", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)

	logger.AssertNumberOfCalls(t, "Warn", 1)
}

func TestGateway_ConcurrentAuthorize(t *testing.T) {
	g := newTestGateway(t, newFixtureStore(t))
	ctx := context.Background()

	res, err := g.Login(ctx, "johndoe", "secret")
	require.NoError(t, err)

	errs := make(chan error, 32)
	for i := 0; i < cap(errs); i++ {
		go func() {
			_, err := g.Authorize(ctx, res.AccessToken)
			errs <- err
		}()
	}

	for i := 0; i < cap(errs); i++ {
		assert.NoError(t, <-errs)
	}
}
