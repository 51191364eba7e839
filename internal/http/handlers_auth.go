package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/target/calorie-tracker/internal/domain/auth"
	"github.com/target/calorie-tracker/internal/service"
)

// AuthServiceInterface is the part of service.AuthService the redirect flow uses.
type AuthServiceInterface interface {
	BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*domainauth.Session, error)
	SignOut(ctx context.Context, sessionID string) error
}

// ViewDropper forgets per-session state on sign-out.
type ViewDropper interface {
	Drop(sessionID string)
}

var _ AuthServiceInterface = (*service.AuthService)(nil)

// AuthHandlers serves the redirect login flow, sign-out and the status endpoint.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	Views        ViewDropper // optional
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *AuthHandlers) cookies() cookieWriter { return cookieWriter{domain: h.CookieDomain} }

// Login starts a redirect login, or sends password-mode visitors to the sign-in page.
// GET /auth/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	redirectURI := r.URL.Query().Get("redirect_uri")
	if redirectURI == "" {
		redirectURI = dashboardPath
	}
	redirectURI = safeRedirectPath(redirectURI)

	result, err := h.Svc.BeginLogin(r.Context(), redirectURI)
	if errors.Is(err, service.ErrRedirectUnsupported) {
		// Password providers sign in on the entry page itself.
		http.Redirect(w, r, authPath, http.StatusSeeOther)
		return
	}
	if err != nil {
		h.logger().ErrorContext(r.Context(), "begin login failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_failed",
			Err:     errors.New("unable to start sign-in"),
		})
		return
	}

	c := h.cookies()
	c.setShortLived(w, r, oauthStateCookie, result.State)
	c.setShortLived(w, r, oauthNonceCookie, result.Nonce)
	c.setShortLived(w, r, postLoginCookie, redirectURI)

	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback finishes a redirect login.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	in, rejected := callbackInput(r)
	if rejected != nil {
		WriteError(w, *rejected)
		return
	}

	sess, err := h.Svc.CompleteLogin(r.Context(), in)
	if err != nil {
		h.logger().WarnContext(r.Context(), "complete login failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "login_completion_failed",
			Err:     errors.New("sign-in could not be completed"),
		})
		return
	}

	c := h.cookies()
	c.setSession(w, r, *sess)
	c.clear(w, r, oauthStateCookie)
	c.clear(w, r, oauthNonceCookie)

	http.Redirect(w, r, h.getPostLoginRedirect(w, r), http.StatusFound)
}

// callbackInput checks the callback query against the state and nonce cookies
// set by Login. A non-nil ErrorParams describes the 400 to send.
func callbackInput(r *http.Request) (service.CompleteLoginInput, *ErrorParams) {
	bad := func(code, msg string) *ErrorParams {
		return &ErrorParams{Code: http.StatusBadRequest, ErrCode: code, Err: errors.New(msg)}
	}

	q := r.URL.Query()
	in := service.CompleteLoginInput{Code: q.Get("code"), State: q.Get("state")}
	switch {
	case in.Code == "":
		return in, bad("missing_code", "authorization code is required")
	case in.State == "":
		return in, bad("missing_state", "state parameter is required")
	}
	if c, err := r.Cookie(oauthStateCookie); err != nil || c.Value != in.State {
		return in, bad("invalid_state", "invalid or missing state parameter")
	}
	nonce, err := r.Cookie(oauthNonceCookie)
	if err != nil {
		return in, bad("missing_nonce", "missing nonce parameter")
	}
	in.Nonce = nonce.Value
	return in, nil
}

// Logout handles the logout endpoint.
// POST /auth/logout.
//
// A failed sign-out is logged and swallowed: the cookie is cleared and the
// visitor lands on the home page either way.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if id := sessionIDFromRequest(r); id != "" {
		if err := h.Svc.SignOut(r.Context(), id); err != nil {
			h.logger().WarnContext(r.Context(), "sign out failed", "error", err)
		}
		if h.Views != nil {
			h.Views.Drop(id)
		}
	}

	h.cookies().clear(w, r, SessionCookieName)

	if IsHTMX(r) {
		HTMX(w).Redirect("/")
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type authStatus struct {
	State         string      `json:"state"`
	Authenticated bool        `json:"authenticated"`
	User          *statusUser `json:"user,omitempty"`
	ExpiresAt     *time.Time  `json:"expires_at,omitempty"`
}

type statusUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Status reports the caller's session state.
// GET /api/auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	sc := SessionContextFrom(r.Context())
	resp := authStatus{State: sc.State.String(), Authenticated: sc.IsAuthenticated()}
	if id, ok := sc.Identity(); ok {
		resp.User = &statusUser{ID: id.UserID, Email: id.Email}
		if !id.ExpiresAt.IsZero() {
			resp.ExpiresAt = &id.ExpiresAt
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}

// getPostLoginRedirect returns the post-login redirect URL and clears the cookie.
func (h *AuthHandlers) getPostLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	redirectURI := dashboardPath
	if redirectCookie, err := r.Cookie(postLoginCookie); err == nil {
		if candidate := safeRedirectPath(redirectCookie.Value); candidate != "/" || redirectCookie.Value == "/" {
			redirectURI = candidate
		}
		h.cookies().clear(w, r, postLoginCookie)
	}
	return redirectURI
}

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return candidate
}
