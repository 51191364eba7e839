// Package oidc signs users in through a standard OpenID Connect issuer
// (AUTH_MODE=oauth).
package oidc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	domainauth "github.com/target/calorie-tracker/internal/domain/auth"
	"github.com/target/calorie-tracker/internal/ports"
	"golang.org/x/oauth2"
)

const (
	defaultTokenLifetime = time.Hour
	discoveryTimeout     = 30 * time.Second
	wellKnownSuffix      = "/.well-known/openid-configuration"
)

// ProviderConfig configures a Provider. Scope is space separated and defaults to "openid email".
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	DiscoveryURL string       // issuer URL, with or without the well-known suffix
	HTTPClient   *http.Client // 30s timeout when nil
}

func (c ProviderConfig) validate() error {
	var errs []error
	if c.ClientID == "" {
		errs = append(errs, errors.New("client ID is required"))
	}
	if c.ClientSecret == "" {
		errs = append(errs, errors.New("client secret is required"))
	}
	if c.RedirectURL == "" {
		errs = append(errs, errors.New("redirect URL is required"))
	}
	if c.DiscoveryURL == "" {
		errs = append(errs, errors.New("discovery URL is required"))
	}
	return errors.Join(errs...)
}

// Provider implements ports.AuthProvider with go-oidc and x/oauth2.
type Provider struct {
	oauth    *oauth2.Config
	issuer   *gooidc.Provider
	verifier *gooidc.IDTokenVerifier
	client   *http.Client
	now      func() time.Time
}

var _ ports.AuthProvider = (*Provider)(nil)

// NewProvider reads the issuer's discovery document once.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: discoveryTimeout}
	}

	issuer, err := gooidc.NewProvider(gooidc.ClientContext(context.Background(), client), issuerURL(cfg.DiscoveryURL))
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	scopes := strings.Fields(cfg.Scope)
	if len(scopes) == 0 {
		scopes = []string{gooidc.ScopeOpenID, "email"}
	}
	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     issuer.Endpoint(),
		},
		issuer:   issuer,
		verifier: issuer.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		client:   client,
		now:      time.Now,
	}, nil
}

func issuerURL(discovery string) string {
	return strings.TrimSuffix(strings.TrimSuffix(discovery, "/"), wellKnownSuffix)
}

// Begin builds the authorization URL. The IdP redirects to the configured
// redirect URL; in.RedirectURL only has to be present.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}
	state, nonce := oauth2.GenerateVerifier(), oauth2.GenerateVerifier()
	return p.oauth.AuthCodeURL(state, gooidc.Nonce(nonce)), state, nonce, nil
}

// Exchange trades the code for tokens. Subject and email come from the verified
// ID token when the openid scope was requested, with the userinfo endpoint
// filling whatever is still missing.
func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	switch {
	case in.Code == "":
		return domainauth.Identity{}, errors.New("authorization code is required")
	case in.State == "":
		return domainauth.Identity{}, errors.New("state is required")
	case in.Nonce == "":
		return domainauth.Identity{}, errors.New("nonce is required")
	}

	ctx = gooidc.ClientContext(ctx, p.client)
	tok, err := p.oauth.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	var who claims
	if slices.Contains(p.oauth.Scopes, gooidc.ScopeOpenID) {
		if who, err = p.idTokenClaims(ctx, tok, in.Nonce); err != nil {
			return domainauth.Identity{}, err
		}
	}
	if !who.complete() {
		info, err := p.userInfoClaims(ctx, tok)
		if err != nil {
			return domainauth.Identity{}, err
		}
		who = who.merge(info)
	}
	if who.Subject == "" {
		return domainauth.Identity{}, errors.New("identity provider returned no subject")
	}

	expires := tok.Expiry
	if expires.IsZero() {
		expires = p.now().Add(defaultTokenLifetime)
	}
	return domainauth.Identity{
		UserID:       who.Subject,
		Email:        who.email(),
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    expires,
	}, nil
}

func (p *Provider) idTokenClaims(ctx context.Context, tok *oauth2.Token, nonce string) (claims, error) {
	raw, err := rawIDToken(tok)
	if err != nil {
		return claims{}, err
	}
	idTok, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return claims{}, fmt.Errorf("verify id_token: %w", err)
	}
	if idTok.Nonce != nonce {
		return claims{}, errors.New("id_token nonce mismatch")
	}
	var c claims
	if err := idTok.Claims(&c); err != nil {
		return claims{}, fmt.Errorf("decode id_token claims: %w", err)
	}
	return c, nil
}

func (p *Provider) userInfoClaims(ctx context.Context, tok *oauth2.Token) (claims, error) {
	info, err := p.issuer.UserInfo(ctx, oauth2.StaticTokenSource(tok))
	if err != nil {
		return claims{}, fmt.Errorf("fetch user info: %w", err)
	}
	var c claims
	if err := info.Claims(&c); err != nil {
		return claims{}, fmt.Errorf("decode user info: %w", err)
	}
	return c, nil
}

func rawIDToken(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	raw, _ := tok.Extra("id_token").(string)
	if raw == "" {
		return "", errors.New("missing id_token in token response")
	}
	return raw, nil
}

// claims are the standard claims read from the ID token and userinfo.
type claims struct {
	Subject           string `json:"sub"`
	Email             string `json:"email"`
	PreferredUsername string `json:"preferred_username"`
}

// email falls back to preferred_username when it looks like an address.
func (c claims) email() string {
	if c.Email != "" {
		return c.Email
	}
	if strings.Contains(c.PreferredUsername, "@") {
		return c.PreferredUsername
	}
	return ""
}

func (c claims) complete() bool { return c.Subject != "" && c.email() != "" }

// merge keeps c's values and takes the rest from other.
func (c claims) merge(other claims) claims {
	if c.Subject == "" {
		c.Subject = other.Subject
	}
	if c.Email == "" {
		c.Email = other.Email
	}
	if c.PreferredUsername == "" {
		c.PreferredUsername = other.PreferredUsername
	}
	return c
}
