// Package supabase talks to the hosted auth (GoTrue) and REST (PostgREST) gateways.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout  = 15 * time.Second
	maxErrorBodyLen = 8 << 10
	maxBodyLen      = 4 << 20
)

// Config holds connection settings shared by every hosted client.
type Config struct {
	URL     string
	AnonKey string
	// JWTSecret verifies access tokens issued by hosted auth. Optional.
	JWTSecret string
	Timeout   time.Duration
	Client    *http.Client
}

// client is the shared transport used by the auth, REST and probe adapters.
type client struct {
	baseURL string
	anonKey string
	http    *http.Client
}

func newClient(cfg Config) (*client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" {
		return nil, errors.New("supabase url is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("parse supabase url: %w", err)
	}
	hc := cfg.Client
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &client{baseURL: base, anonKey: cfg.AnonKey, http: hc}, nil
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	bearer string
	prefer string
}

// do sends req and decodes a 2xx JSON body into out (when non-nil).
// Non-2xx responses are returned as whatever decodeErr builds from the body.
func (c *client) do(ctx context.Context, req request, out any, decodeErr func(*http.Response, []byte) error) error {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		buf, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("apikey", c.anonKey)
	bearer := req.bearer
	if bearer == "" {
		bearer = c.anonKey
	}
	if bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+bearer)
	}
	if req.prefer != "" {
		httpReq.Header.Set("Prefer", req.prefer)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return decodeErr(resp, snippet)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyLen))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyLen)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
