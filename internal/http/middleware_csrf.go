package httpx

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
)

const (
	DefaultCSRFCookieName = "csrf_token"
	// DefaultCSRFHeaderName is in canonical form; HTMX sends it from the page meta tag.
	DefaultCSRFHeaderName  = "X-Csrf-Token"
	DefaultCSRFTokenLength = 32

	csrfCookieMaxAge  = 12 * 60 * 60
	csrfFailedMessage = "Your form has expired. Please reload the page and try again."
)

// CSRFConfig configures CSRFProtection. Zero fields take the Default* values;
// FormFieldName defaults to the cookie name.
type CSRFConfig struct {
	CookieName    string
	HeaderName    string
	FormFieldName string
	CookieDomain  string
	TokenLength   int // random bytes before encoding
}

type csrfGuard struct {
	cfg CSRFConfig
}

func newCSRFGuard(cfg CSRFConfig) *csrfGuard {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCSRFCookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultCSRFHeaderName
	}
	if cfg.FormFieldName == "" {
		cfg.FormFieldName = cfg.CookieName
	}
	if cfg.TokenLength <= 0 {
		cfg.TokenLength = DefaultCSRFTokenLength
	}
	return &csrfGuard{cfg: cfg}
}

// CSRFProtection enforces the double-submit cookie pattern. Every request gets a
// token cookie (issued on first visit) and the token in its context. State-changing
// methods must echo it back in the header or, for form posts, the form field.
func CSRFProtection(cfg CSRFConfig) func(http.Handler) http.Handler {
	g := newCSRFGuard(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := g.ensureToken(w, r)
			if err != nil {
				http.Error(w, "unable to generate CSRF token", http.StatusInternalServerError)
				return
			}
			r = r.WithContext(context.WithValue(r.Context(), csrfTokenKey{}, token))

			if isUnsafeMethod(r.Method) && !g.matches(r, token) {
				rejectCSRF(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ensureToken returns the cookie token, issuing a new cookie when there is none.
func (g *csrfGuard) ensureToken(w http.ResponseWriter, r *http.Request) (string, error) {
	if c, err := r.Cookie(g.cfg.CookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}

	buf := make([]byte, g.cfg.TokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("csrf token: %w", err)
	}
	token := base64.URLEncoding.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     g.cfg.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   g.cfg.CookieDomain,
		HttpOnly: false, // the page script copies it into the HTMX header
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteStrictMode,
		MaxAge:   csrfCookieMaxAge,
	})
	return token, nil
}

// matches reports whether the request echoes token. JSON bodies are never read.
func (g *csrfGuard) matches(r *http.Request, token string) bool {
	submitted := r.Header.Get(g.cfg.HeaderName)
	if submitted == "" && isFormBody(r) {
		if err := r.ParseForm(); err != nil {
			return false
		}
		submitted = r.PostFormValue(g.cfg.FormFieldName)
	}
	if submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(token)) == 1
}

func isFormBody(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mt == "application/x-www-form-urlencoded" || mt == "multipart/form-data"
}

func isUnsafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	}
	return true
}

// rejectCSRF answers a failed check in the caller's format: a JSON envelope for
// the API, an alert for HTMX and plain text otherwise.
func rejectCSRF(w http.ResponseWriter, r *http.Request) {
	switch {
	case isAPIRequest(r):
		WriteError(w, ErrorParams{
			Code:    http.StatusForbidden,
			ErrCode: "csrf_failed",
			Err:     errors.New(csrfFailedMessage),
		})
		return
	case IsHTMX(r):
		HTMX(w).Alert(csrfFailedMessage).Reswap("none")
	}
	http.Error(w, "CSRF token validation failed", http.StatusForbidden)
}

type csrfTokenKey struct{}

// GetCSRFToken returns the token CSRFProtection stored on the request, for
// embedding in forms and the page meta tag.
func GetCSRFToken(r *http.Request) string {
	token, _ := r.Context().Value(csrfTokenKey{}).(string)
	return token
}
