package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/target/calorie-tracker/internal/domain/auth"
	"github.com/target/calorie-tracker/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider          = (*MockAuthProvider)(nil)
	_ ports.PasswordAuthenticator = (*MockPasswordAuthenticator)(nil)
	_ ports.TokenRevoker          = (*MockPasswordAuthenticator)(nil)
	_ ports.SessionStore          = (*MemorySessionStore)(nil)
)

func defaultIdentity() domainauth.Identity {
	return domainauth.Identity{
		UserID:      "mock-user-1",
		Email:       "mock.user@example.com",
		AccessToken: "mock-access-token",
	}
}

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	// Deterministic values for predictable testing
	AuthURL     string
	StatePrefix string
	NoncePrefix string
	DefaultUser domainauth.Identity

	// Internal state tracking for deterministic behavior
	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultUser: defaultIdentity(),
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.callCount++
	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}

	statePrefix := m.StatePrefix
	if statePrefix == "" {
		statePrefix = "state"
	}
	noncePrefix := m.NoncePrefix
	if noncePrefix == "" {
		noncePrefix = "nonce"
	}

	state := fmt.Sprintf("%s-%d", statePrefix, m.callCount)
	nonce := fmt.Sprintf("%s-%d", noncePrefix, m.callCount)

	return authURL, state, nonce, nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	// Return a copy of the default user with a fresh expiration time
	user := m.DefaultUser
	if user.UserID == "" {
		user = defaultIdentity()
	}
	user.ExpiresAt = time.Now().Add(time.Hour)

	return user, nil
}

// MockPasswordAuthenticator simulates hosted email/password auth.
// It also implements ports.TokenRevoker and records revoked tokens.
type MockPasswordAuthenticator struct {
	SignInFunc  func(ctx context.Context, creds ports.Credentials) (domainauth.Identity, error)
	SignUpFunc  func(ctx context.Context, creds ports.Credentials) (domainauth.Identity, bool, error)
	SignOutFunc func(ctx context.Context, accessToken string) error

	// Password accepted by the default SignIn; empty accepts any password.
	Password string

	mu      sync.Mutex
	Revoked []string
}

// ErrInvalidCredentials is returned by the default SignIn on a password mismatch.
var ErrInvalidCredentials = errors.New("invalid login credentials")

func (m *MockPasswordAuthenticator) SignIn(ctx context.Context, creds ports.Credentials) (domainauth.Identity, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, creds)
	}
	if m.Password != "" && creds.Password != m.Password {
		return domainauth.Identity{}, ErrInvalidCredentials
	}
	id := defaultIdentity()
	id.Email = creds.Email
	id.ExpiresAt = time.Now().Add(time.Hour)
	return id, nil
}

func (m *MockPasswordAuthenticator) SignUp(
	ctx context.Context,
	creds ports.Credentials,
) (domainauth.Identity, bool, error) {
	if m.SignUpFunc != nil {
		return m.SignUpFunc(ctx, creds)
	}
	id, err := m.SignIn(ctx, creds)
	return id, err == nil, err
}

func (m *MockPasswordAuthenticator) SignOut(ctx context.Context, accessToken string) error {
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx, accessToken)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Revoked = append(m.Revoked, accessToken)
	return nil
}

// MemorySessionStore is an in-memory session store for unit tests.
// Set GetErr to simulate an unavailable store.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session

	GetErr    error
	DeleteErr error
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	if m.GetErr != nil {
		return domainauth.Session{}, m.GetErr
	}
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if id == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ErrNotFound is returned by mocks when a session is not present.
var ErrNotFound = ports.ErrSessionNotFound
