// Package redis stores signed-in sessions in Redis so they survive restarts and
// can be shared between replicas.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	domainauth "github.com/target/calorie-tracker/internal/domain/auth"
	"github.com/target/calorie-tracker/internal/ports"
)

// SessionStore keeps each session as a JSON value whose key expires with the session.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a new Redis-based session store.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return NewSessionStoreWithPrefix(client, "calories:session:")
}

// NewSessionStoreWithPrefix creates a Redis session store with a custom key prefix.
func NewSessionStoreWithPrefix(client redis.UniversalClient, prefix string) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}

	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", sess.ID)
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sess.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}

	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return domainauth.Session{}, ErrNotFound
	case err != nil:
		return domainauth.Session{}, fmt.Errorf("redis get session: %w", err)
	}

	var sess domainauth.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("decode session: %w", err)
	}
	// Key expiry and the stored deadline can disagree by clock skew.
	if sess.Expired(s.now()) {
		if err := s.Delete(ctx, id); err != nil {
			return domainauth.Session{}, fmt.Errorf("drop expired session: %w", err)
		}
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.client.Del(ctx, s.key(id)).Err()
}

func (s *SessionStore) key(id string) string { return s.prefix + id }

// ErrNotFound is returned when a session is not found.
var ErrNotFound = ports.ErrSessionNotFound
