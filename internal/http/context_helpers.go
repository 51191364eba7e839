package httpx

import (
	"context"

	domainauth "github.com/target/calorie-tracker/internal/domain/auth"
	"github.com/target/calorie-tracker/internal/ports"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type sessionKey struct{}

// WithSessionContext returns a child context carrying the resolved session state.
func WithSessionContext(ctx context.Context, sc domainauth.SessionContext) context.Context {
	return context.WithValue(ctx, sessionKey{}, sc)
}

// SessionContextFrom returns the session state resolved by LoadSession.
// Requests that never passed through the middleware are treated as anonymous.
func SessionContextFrom(ctx context.Context) domainauth.SessionContext {
	if sc, ok := ctx.Value(sessionKey{}).(domainauth.SessionContext); ok {
		return sc
	}
	return domainauth.Anonymous()
}

// GetSessionFromContext returns the authenticated session, or nil.
func GetSessionFromContext(ctx context.Context) *domainauth.Session {
	sc := SessionContextFrom(ctx)
	if !sc.IsAuthenticated() {
		return nil
	}
	return sc.Session
}

// OwnerFromContext returns the meal owner for the authenticated caller.
func OwnerFromContext(ctx context.Context) (ports.Owner, bool) {
	sess := GetSessionFromContext(ctx)
	if sess == nil {
		return ports.Owner{}, false
	}
	return ports.Owner{UserID: sess.UserID, AccessToken: sess.AccessToken}, true
}
