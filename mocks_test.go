package authgate_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-authgate"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSigningKey = "test-signing-key-0123456789abcdef"

// MockUserStore implements authgate.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) LookupCredential(ctx context.Context, username string) (*authgate.StoredCredential, error) {
	args := m.Called(ctx, username)
	if cred := args.Get(0); cred != nil {
		return cred.(*authgate.StoredCredential), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) LookupUser(ctx context.Context, username string) (*authgate.User, error) {
	args := m.Called(ctx, username)
	if user := args.Get(0); user != nil {
		return user.(*authgate.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockLogger implements authgate.Logger
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

type capturingSink struct {
	mu     sync.Mutex
	events []authgate.ActivityEvent
}

func (c *capturingSink) Record(_ context.Context, event authgate.ActivityEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *capturingSink) Events() []authgate.ActivityEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]authgate.ActivityEvent, len(c.events))
	copy(out, c.events)
	return out
}

func (c *capturingSink) Last() authgate.ActivityEvent {
	events := c.Events()
	if len(events) == 0 {
		return authgate.ActivityEvent{}
	}
	return events[len(events)-1]
}

// fastHasher keeps bcrypt at its minimum cost so tests stay quick
var fastHasher = authgate.BcryptHasher{Cost: bcrypt.MinCost}

func testOptions() authgate.Options {
	opts := authgate.NewOptions(testSigningKey)
	opts.Issuer = "authgate-test"
	return opts
}

// newFixtureStore holds johndoe/secret (active) and alice/secret2 (disabled)
func newFixtureStore(t *testing.T) *authgate.MemoryStore {
	t.Helper()

	store := authgate.NewMemoryStore().WithPasswordAuthenticator(fastHasher)
	ctx := context.Background()

	_, err := store.Register(ctx, authgate.UserAttributes{
		Username: "johndoe",
		Email:    "johndoe@example.com",
		FullName: "John Doe",
	}, "secret")
	require.NoError(t, err)

	_, err = store.Register(ctx, authgate.UserAttributes{
		Username: "alice",
		Email:    "alice@example.com",
		FullName: "Alice Wonderson",
		Disabled: true,
	}, "secret2")
	require.NoError(t, err)

	return store
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
