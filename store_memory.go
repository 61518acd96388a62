package authgate

import (
	"context"
	"strings"
	"sync"

	"github.com/goliatone/go-errors"
)

// MemoryStore is an in-memory UserStore. It is safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	users       map[string]User
	credentials map[string]string
	hasher      PasswordAuthenticator
}

var _ UserStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       map[string]User{},
		credentials: map[string]string{},
		hasher:      BcryptHasher{},
	}
}

// WithPasswordAuthenticator sets the hasher used by Register
func (m *MemoryStore) WithPasswordAuthenticator(hasher PasswordAuthenticator) *MemoryStore {
	if hasher != nil {
		m.hasher = hasher
	}
	return m
}

// Put stores the user together with an already hashed password
func (m *MemoryStore) Put(user *User, hashedPassword string) error {
	if user == nil || strings.TrimSpace(user.Username) == "" {
		return errors.New("user with a username is required", errors.CategoryBadInput)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[user.Username] = *user
	if hashedPassword != "" {
		m.credentials[user.Username] = hashedPassword
	}
	return nil
}

// Register validates the attributes, hashes the password and stores the user
func (m *MemoryStore) Register(_ context.Context, attrs UserAttributes, password string) (*User, error) {
	user, err := attrs.Build()
	if err != nil {
		return nil, err
	}

	hash, err := m.hasher.HashPassword(password)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[user.Username]; exists {
		return nil, errors.New("username already registered", errors.CategoryConflict).
			WithTextCode(TextCodeUserExists).
			WithCode(errors.CodeConflict)
	}

	m.users[user.Username] = *user
	m.credentials[user.Username] = hash

	out := *user
	return &out, nil
}

// SetDisabled flips the disabled flag of an existing user
func (m *MemoryStore) SetDisabled(username string, disabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[username]
	if !ok {
		return ErrRecordNotFound
	}
	u.Disabled = disabled
	m.users[username] = u
	return nil
}

// Delete removes a user and its credential
func (m *MemoryStore) Delete(username string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.users, username)
	delete(m.credentials, username)
}

func (m *MemoryStore) LookupCredential(_ context.Context, username string) (*StoredCredential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hash, ok := m.credentials[username]
	if !ok {
		return nil, ErrRecordNotFound
	}

	return &StoredCredential{Username: username, HashedPassword: hash}, nil
}

// LookupUser returns a copy so callers cannot mutate the stored record
func (m *MemoryStore) LookupUser(_ context.Context, username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[username]
	if !ok {
		return nil, ErrRecordNotFound
	}

	return &u, nil
}
