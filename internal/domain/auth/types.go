package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// Identity represents the authenticated principal returned by the auth collaborator.
// Adapters map provider-specific claims into this shape; the application never mutates it.
type Identity struct {
	UserID       string // stable user identifier (hosted auth user id or OIDC sub)
	Email        string
	AccessToken  string // forwarded to the hosted store so row-level policies apply
	RefreshToken string
	ExpiresAt    time.Time // absolute expiry from the provider token
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier (e.g., random URL-safe string).
type Session struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	AccessToken string    `json:"access_token,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Identity returns the identity carried by the session.
func (s Session) Identity() Identity {
	return Identity{
		UserID:      s.UserID,
		Email:       s.Email,
		AccessToken: s.AccessToken,
		ExpiresAt:   s.ExpiresAt,
	}
}
