// Package devauth signs every login in as one configured user. It backs
// AUTH_MODE=mock so the meal pages can be used without a hosted auth project.
package devauth

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/target/calorie-tracker/internal/domain/auth"
	"github.com/target/calorie-tracker/internal/ports"
)

const (
	callbackPath       = "/auth/callback"
	defaultSessionSpan = 8 * time.Hour
)

// Config names the identity handed out on every login.
type Config struct {
	UserID          string
	Email           string
	SessionDuration time.Duration // 8h when zero
}

// Provider satisfies ports.AuthProvider without leaving the app: Begin points the
// browser at our own callback and Exchange returns the configured identity.
type Provider struct {
	identity domainauth.Identity
	span     time.Duration
	now      func() time.Time
}

var _ ports.AuthProvider = (*Provider)(nil)

func NewProvider(cfg Config) (*Provider, error) {
	var missing []string
	if cfg.UserID == "" {
		missing = append(missing, "UserID")
	}
	if cfg.Email == "" {
		missing = append(missing, "Email")
	}
	if len(missing) > 0 {
		return nil, errors.New("dev auth: missing " + strings.Join(missing, " and "))
	}

	span := cfg.SessionDuration
	if span <= 0 {
		span = defaultSessionSpan
	}
	return &Provider{
		identity: domainauth.Identity{UserID: cfg.UserID, Email: cfg.Email},
		span:     span,
		now:      time.Now,
	}, nil
}

// Begin returns a callback URL carrying a fresh state. The auth handler checks
// state and nonce against its cookies as it would for a real IdP.
func (p *Provider) Begin(context.Context, ports.BeginInput) (string, string, string, error) {
	state, nonce := uuid.NewString(), uuid.NewString()
	q := url.Values{"code": {"dev"}, "state": {state}}
	return callbackPath + "?" + q.Encode(), state, nonce, nil
}

// Exchange ignores its input.
func (p *Provider) Exchange(context.Context, ports.ExchangeInput) (domainauth.Identity, error) {
	id := p.identity
	id.ExpiresAt = p.now().Add(p.span)
	return id, nil
}
