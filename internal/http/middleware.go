package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	domainauth "github.com/target/calorie-tracker/internal/domain/auth"
	"github.com/target/calorie-tracker/internal/ports"
	"github.com/target/calorie-tracker/internal/service"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *respWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SessionResolver looks up a live session by id.
type SessionResolver interface {
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
}

// LoadSessionConfig configures LoadSession.
type LoadSessionConfig struct {
	Sessions     SessionResolver
	CookieDomain string
	Logger       *slog.Logger
}

// LoadSession resolves the session state once per request and stores it in the context.
//
//   - no cookie: unauthenticated
//   - unknown or expired session: unauthenticated, and the stale cookie is cleared
//   - any other lookup failure: loading, so gated pages wait instead of redirecting
func LoadSession(cfg LoadSessionConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cookies := cookieWriter{domain: cfg.CookieDomain}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sc := resolveSession(r, cfg.Sessions)
			switch {
			case sc.err == nil:
			case errors.Is(sc.err, ports.ErrSessionNotFound), errors.Is(sc.err, service.ErrSessionExpired):
				cookies.clear(w, r, SessionCookieName)
			default:
				logger.WarnContext(r.Context(), "session lookup failed", "error", sc.err)
			}
			next.ServeHTTP(w, r.WithContext(WithSessionContext(r.Context(), sc.state)))
		})
	}
}

type resolvedSession struct {
	state domainauth.SessionContext
	err   error
}

func resolveSession(r *http.Request, sessions SessionResolver) resolvedSession {
	id := sessionIDFromRequest(r)
	if id == "" || sessions == nil {
		return resolvedSession{state: domainauth.Anonymous()}
	}

	sess, err := sessions.GetSession(r.Context(), id)
	switch {
	case err == nil && sess != nil:
		return resolvedSession{state: domainauth.Authenticated(*sess)}
	case err == nil:
		return resolvedSession{state: domainauth.Anonymous(), err: ports.ErrSessionNotFound}
	case errors.Is(err, ports.ErrSessionNotFound), errors.Is(err, service.ErrSessionExpired):
		return resolvedSession{state: domainauth.Anonymous(), err: err}
	default:
		return resolvedSession{state: domainauth.Loading(), err: err}
	}
}

// RequireSessionJSON rejects API requests that have no authenticated session.
// An undetermined session yields 503 so clients retry instead of re-authenticating.
func RequireSessionJSON() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch domainauth.Gate(SessionContextFrom(r.Context())) {
			case domainauth.GateRender:
				next.ServeHTTP(w, r)
			case domainauth.GateLoader:
				WriteError(w, ErrorParams{
					Code:    http.StatusServiceUnavailable,
					ErrCode: "session_loading",
					Err:     errors.New("session is still loading"),
				})
			default:
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Err:     errors.New("authentication required"),
				})
			}
		})
	}
}

// redirectToAuth sends the visitor to the authentication entry point.
// HTMX requests get an HX-Redirect so the whole page navigates.
func redirectToAuth(w http.ResponseWriter, r *http.Request) {
	if IsHTMX(r) {
		SetHXRedirect(w, authPath)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, authPath, http.StatusSeeOther)
}
