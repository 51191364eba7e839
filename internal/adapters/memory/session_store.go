// Package memory provides an in-process session store for single-instance deployments.
package memory

import (
	"context"
	"errors"
	"time"

	"github.com/target/calorie-tracker/internal/core"
	domainauth "github.com/target/calorie-tracker/internal/domain/auth"
	"github.com/target/calorie-tracker/internal/ports"
)

// SessionStore keeps sessions in a bounded LRU. Sessions are lost on restart.
type SessionStore struct {
	cache *core.LRU[domainauth.Session]
	now   func() time.Time
}

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStoreOptions configures NewSessionStore.
type SessionStoreOptions struct {
	Capacity int
	Now      func() time.Time
}

// NewSessionStore creates a memory-backed session store.
func NewSessionStore(opts SessionStoreOptions) *SessionStore {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &SessionStore{
		cache: core.NewLRU[domainauth.Session](core.LRUConfig{Capacity: opts.Capacity, Now: now}),
		now:   now,
	}
}

func (s *SessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return errors.New("session is expired")
	}
	s.cache.Set(sess.ID, sess, 0)
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	sess, ok := s.cache.Get(id)
	if !ok {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	if sess.Expired(s.now()) {
		s.cache.Delete(id)
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}
