package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/target/calorie-tracker/internal/domain/auth"
	apperrors "github.com/target/calorie-tracker/internal/errors"
	"github.com/target/calorie-tracker/internal/ports"
)

// AuthProviders groups the auth collaborators. Exactly one of Redirect or
// Password is normally set; Revoker is optional.
type AuthProviders struct {
	Redirect ports.AuthProvider
	Password ports.PasswordAuthenticator
	Revoker  ports.TokenRevoker
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Providers AuthProviders
	Sessions  ports.SessionStore
	// SessionTTL caps how long a session lives. Zero keeps the provider's expiry.
	SessionTTL time.Duration
	Logger     *slog.Logger
}

// AuthService orchestrates sign-in flows and session persistence.
type AuthService struct {
	redirect ports.AuthProvider
	password ports.PasswordAuthenticator
	revoker  ports.TokenRevoker
	sessions ports.SessionStore
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

var (
	// ErrSessionExpired is returned by GetSession for a session past its expiry.
	ErrSessionExpired = errors.New("session expired")
	// ErrPasswordUnsupported is returned when password sign-in is not configured.
	ErrPasswordUnsupported = errors.New("password sign-in is not enabled")
	// ErrRedirectUnsupported is returned when redirect login is not configured.
	ErrRedirectUnsupported = errors.New("redirect login is not enabled")
)

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	if opts.Sessions == nil {
		panic("AuthService requires a session store")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		redirect: opts.Providers.Redirect,
		password: opts.Providers.Password,
		revoker:  opts.Providers.Revoker,
		sessions: opts.Sessions,
		ttl:      opts.SessionTTL,
		logger:   logger.With("component", "auth_service"),
		now:      time.Now,
	}
}

// UsesPassword reports whether the entry page should show the credentials form.
func (s *AuthService) UsesPassword() bool { return s.password != nil }

// SignIn verifies credentials with hosted auth and persists a session.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domainauth.Session, error) {
	if s.password == nil {
		return nil, ErrPasswordUnsupported
	}
	creds, err := normalizeCredentials(email, password)
	if err != nil {
		return nil, err
	}

	identity, err := s.password.SignIn(ctx, creds)
	if err != nil {
		return nil, apperrors.Auth(err, "Invalid email or password.")
	}
	return s.startSession(ctx, identity)
}

// SignUp registers an account. The session is nil when hosted auth requires
// email confirmation first.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*domainauth.Session, error) {
	if s.password == nil {
		return nil, ErrPasswordUnsupported
	}
	creds, err := normalizeCredentials(email, password)
	if err != nil {
		return nil, err
	}

	identity, issued, err := s.password.SignUp(ctx, creds)
	if err != nil {
		return nil, apperrors.Auth(err, "Could not create the account.")
	}
	if !issued {
		s.logger.InfoContext(ctx, "sign-up pending email confirmation")
		return nil, nil
	}
	return s.startSession(ctx, identity)
}

func normalizeCredentials(email, password string) (ports.Credentials, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ports.Credentials{}, apperrors.Validation("Please enter your email and password.")
	}
	return ports.Credentials{Email: email, Password: password}, nil
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates a redirect flow and returns the provider auth URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if s.redirect == nil {
		return nil, ErrRedirectUnsupported
	}
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL, state, nonce, err := s.redirect.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}
	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLogin exchanges the code for an identity and persists a session.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*domainauth.Session, error) {
	if s.redirect == nil {
		return nil, ErrRedirectUnsupported
	}
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	identity, err := s.redirect.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return s.startSession(ctx, identity)
}

func (s *AuthService) startSession(ctx context.Context, identity domainauth.Identity) (*domainauth.Session, error) {
	if identity.UserID == "" {
		return nil, apperrors.Auth(errors.New("identity has no user id"), "Sign-in failed.")
	}
	session := domainauth.Session{
		ID:          uuid.NewString(),
		UserID:      identity.UserID,
		Email:       identity.Email,
		AccessToken: identity.AccessToken,
		ExpiresAt:   identity.ExpiresAt,
	}
	if s.ttl > 0 {
		limit := s.now().Add(s.ttl)
		if session.ExpiresAt.IsZero() || session.ExpiresAt.After(limit) {
			session.ExpiresAt = limit
		}
	}
	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}
	return &session, nil
}

// GetSession retrieves a live session by ID. A missing session surfaces
// ports.ErrSessionNotFound and an expired one ErrSessionExpired; anything
// else means the store could not answer.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, ports.ErrSessionNotFound
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.Expired(s.now()) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(ErrSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// SignOut revokes the provider token (best effort) and removes the session.
// Any failure is returned as an auth error after both steps were attempted.
func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	var errs []error
	if s.revoker != nil {
		session, err := s.sessions.Get(ctx, sessionID)
		switch {
		case err == nil && session.AccessToken != "":
			if revokeErr := s.revoker.SignOut(ctx, session.AccessToken); revokeErr != nil {
				errs = append(errs, fmt.Errorf("revoke token: %w", revokeErr))
			}
		case err != nil && !errors.Is(err, ports.ErrSessionNotFound):
			errs = append(errs, fmt.Errorf("get session: %w", err))
		}
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		errs = append(errs, fmt.Errorf("delete session: %w", err))
	}

	if len(errs) > 0 {
		return apperrors.Auth(errors.Join(errs...), "Sign out failed.")
	}
	return nil
}
