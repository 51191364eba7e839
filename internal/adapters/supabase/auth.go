package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	domainauth "github.com/target/calorie-tracker/internal/domain/auth"
	"github.com/target/calorie-tracker/internal/ports"
)

// ErrInvalidCredentials is returned when hosted auth rejects an email/password pair.
var ErrInvalidCredentials = errors.New("invalid login credentials")

// AuthError is a non-2xx response from hosted auth.
type AuthError struct {
	Status      int    `json:"-"`
	Code        string `json:"error_code"`
	ErrorName   string `json:"error"`
	Description string `json:"error_description"`
	Msg         string `json:"msg"`
}

func (e *AuthError) Error() string {
	msg := firstNonEmpty(e.Description, e.Msg, e.ErrorName, http.StatusText(e.Status))
	return fmt.Sprintf("auth %d: %s", e.Status, msg)
}

// Unwrap lets callers match rejected credentials with errors.Is.
func (e *AuthError) Unwrap() error {
	if e.Status == http.StatusBadRequest && (e.ErrorName == "invalid_grant" || e.Code == "invalid_credentials") {
		return ErrInvalidCredentials
	}
	return nil
}

func decodeAuthError(resp *http.Response, body []byte) error {
	ae := &AuthError{Status: resp.StatusCode}
	if len(body) > 0 && json.Unmarshal(body, ae) != nil {
		ae.Msg = strings.TrimSpace(string(body))
	}
	return ae
}

// Authenticator implements password sign-in, sign-up and sign-out against hosted auth.
type Authenticator struct {
	c         *client
	jwtSecret []byte
	now       func() time.Time
}

var (
	_ ports.PasswordAuthenticator = (*Authenticator)(nil)
	_ ports.TokenRevoker          = (*Authenticator)(nil)
)

// NewAuthenticator builds an Authenticator. When cfg.JWTSecret is set every
// issued access token is verified (HS256) before it becomes a session.
func NewAuthenticator(cfg Config) (*Authenticator, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	a := &Authenticator{c: c, now: time.Now}
	if cfg.JWTSecret != "" {
		a.jwtSecret = []byte(cfg.JWTSecret)
	}
	return a, nil
}

type authUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// tokenResponse covers both the token grant and the sign-up response. Sign-up
// without auto-confirm returns the bare user without any token fields.
type tokenResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"`
	ExpiresAt    int64    `json:"expires_at"`
	User         authUser `json:"user"`

	ID    string `json:"id"`
	Email string `json:"email"`
}

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *Authenticator) SignIn(ctx context.Context, creds ports.Credentials) (domainauth.Identity, error) {
	if creds.Email == "" || creds.Password == "" {
		return domainauth.Identity{}, ErrInvalidCredentials
	}
	q := url.Values{}
	q.Set("grant_type", "password")

	var tr tokenResponse
	err := a.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  q,
		body:   credentialsBody(creds),
	}, &tr, decodeAuthError)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("sign in: %w", err)
	}
	if tr.AccessToken == "" {
		return domainauth.Identity{}, errors.New("sign in: no access token in response")
	}
	return a.identityFromToken(tr)
}

func (a *Authenticator) SignUp(ctx context.Context, creds ports.Credentials) (domainauth.Identity, bool, error) {
	if creds.Email == "" || creds.Password == "" {
		return domainauth.Identity{}, false, errors.New("email and password are required")
	}
	var tr tokenResponse
	err := a.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/signup",
		body:   credentialsBody(creds),
	}, &tr, decodeAuthError)
	if err != nil {
		return domainauth.Identity{}, false, fmt.Errorf("sign up: %w", err)
	}
	if tr.AccessToken == "" {
		// Email confirmation pending; no session yet.
		return domainauth.Identity{}, false, nil
	}
	id, err := a.identityFromToken(tr)
	if err != nil {
		return domainauth.Identity{}, false, err
	}
	return id, true, nil
}

func (a *Authenticator) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	err := a.c.do(ctx, request{method: http.MethodPost, path: "/auth/v1/logout", bearer: accessToken}, nil, decodeAuthError)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

func (a *Authenticator) identityFromToken(tr tokenResponse) (domainauth.Identity, error) {
	id := domainauth.Identity{
		UserID:       firstNonEmpty(tr.User.ID, tr.ID),
		Email:        firstNonEmpty(tr.User.Email, tr.Email),
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
	}
	switch {
	case tr.ExpiresAt > 0:
		id.ExpiresAt = time.Unix(tr.ExpiresAt, 0)
	case tr.ExpiresIn > 0:
		id.ExpiresAt = a.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	if a.jwtSecret != nil {
		claims, err := a.verify(tr.AccessToken)
		if err != nil {
			return domainauth.Identity{}, fmt.Errorf("verify access token: %w", err)
		}
		if id.UserID != "" && claims.Subject != id.UserID {
			return domainauth.Identity{}, errors.New("verify access token: subject does not match user")
		}
		id.UserID = claims.Subject
		id.Email = firstNonEmpty(id.Email, claims.Email)
		if claims.ExpiresAt != nil {
			id.ExpiresAt = claims.ExpiresAt.Time
		}
	}

	if id.UserID == "" {
		return domainauth.Identity{}, errors.New("auth response has no user id")
	}
	if id.ExpiresAt.IsZero() {
		id.ExpiresAt = a.now().Add(time.Hour)
	}
	return id, nil
}

// accessClaims is the subset of hosted-auth JWT claims we use.
type accessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func (a *Authenticator) verify(raw string) (*accessClaims, error) {
	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
