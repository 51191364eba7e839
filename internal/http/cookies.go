package httpx

import (
	"net/http"
	"strings"
	"time"

	domainauth "github.com/target/calorie-tracker/internal/domain/auth"
)

// SessionCookieName holds the opaque session id.
const SessionCookieName = "session_id"

// Short-lived cookies used by the redirect login flow.
const (
	oauthStateCookie    = "oauth_state"
	oauthNonceCookie    = "oauth_nonce"
	postLoginCookie     = "post_login_redirect"
	oauthCookieLifetime = 600 // 10 minutes
)

// isSecureRequest reports whether the request arrived over TLS, directly or via a proxy.
func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || isForwardedHTTPS(r)
}

// isForwardedHTTPS checks if the request was forwarded over HTTPS.
// Handles comma-separated values in X-Forwarded-Proto header.
func isForwardedHTTPS(r *http.Request) bool {
	xfProto := r.Header.Get("X-Forwarded-Proto")
	if xfProto == "" {
		return false
	}

	for _, proto := range strings.Split(xfProto, ",") {
		if strings.EqualFold(strings.TrimSpace(proto), "https") {
			return true
		}
	}

	return false
}

// cookieWriter sets and clears cookies scoped to one domain.
type cookieWriter struct {
	domain string
}

// clear expires a cookie immediately.
// It mirrors the attributes used when setting cookies so browsers match the deletion.
func (c cookieWriter) clear(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   c.domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// setShortLived writes an HttpOnly cookie used during the redirect login round-trip.
func (c cookieWriter) setShortLived(w http.ResponseWriter, r *http.Request, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   oauthCookieLifetime,
	})
}

// setSession writes the session cookie. A session without an expiry gets a browser-session cookie.
func (c cookieWriter) setSession(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    s.ID,
		Path:     "/",
		Domain:   c.domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
	if !s.ExpiresAt.IsZero() {
		if maxAge := int(time.Until(s.ExpiresAt).Seconds()); maxAge > 0 {
			cookie.MaxAge = maxAge
		}
	}
	http.SetCookie(w, cookie)
}

// sessionIDFromRequest returns the session cookie value, or "".
func sessionIDFromRequest(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
