package ports

// Package ports defines interfaces (hexagonal ports) for auth and meal storage.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"errors"

	domainauth "github.com/target/calorie-tracker/internal/domain/auth"
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// AuthProvider initiates and completes a redirect-based authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// Credentials are an email/password pair submitted on the sign-in form.
type Credentials struct {
	Email    string
	Password string
}

// PasswordAuthenticator signs users in with credentials against hosted auth.
type PasswordAuthenticator interface {
	SignIn(ctx context.Context, creds Credentials) (domainauth.Identity, error)

	// SignUp registers a new account. The returned identity is empty when the
	// provider requires email confirmation before issuing a session.
	SignUp(ctx context.Context, creds Credentials) (domainauth.Identity, bool, error)
}

// TokenRevoker invalidates a provider session on sign-out.
type TokenRevoker interface {
	SignOut(ctx context.Context, accessToken string) error
}

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// ErrSessionNotFound is returned (possibly wrapped) by SessionStore.Get when no
// session exists for the id. Any other error means the store could not answer.
var ErrSessionNotFound = errors.New("session not found")
