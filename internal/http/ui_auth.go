package httpx

import (
	"net/http"
	"strings"

	apperrors "github.com/target/calorie-tracker/internal/errors"
)

const (
	authActionSignIn = "signin"
	authActionSignUp = "signup"

	msgSignInFailed       = "Invalid email or password."
	msgSignUpFailed       = "Could not create the account."
	msgConfirmationNeeded = "Check your email to confirm your account, then sign in."
)

//nolint:gochecknoglobals // page metadata shared by the auth handlers
var authMeta = PageMeta{Title: appName + " - Sign In", CurrentPage: PageAuth}

// authForm is the state of the sign-in form.
type authForm struct {
	Action  string
	Email   string
	Message string // error banner
	Info    string // informational banner
	Status  int
}

// AuthPage is the authentication entry point. Signed-in visitors go straight to the dashboard.
func (h *UIHandlers) AuthPage(w http.ResponseWriter, r *http.Request) {
	if SessionContextFrom(r.Context()).IsAuthenticated() {
		h.redirectAfterSignIn(w, r)
		return
	}
	h.renderAuth(w, r, authForm{Action: authActionSignIn})
}

// AuthSubmit handles the email/password form for both sign-in and sign-up.
func (h *UIHandlers) AuthSubmit(w http.ResponseWriter, r *http.Request) {
	if h.Auth == nil || !h.Auth.UsesPassword() {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	action := r.PostFormValue("action")
	if action != authActionSignUp {
		action = authActionSignIn
	}
	form := authForm{Action: action, Email: email}

	if action == authActionSignUp {
		sess, err := h.Auth.SignUp(r.Context(), email, password)
		switch {
		case err != nil:
			h.logger().InfoContext(r.Context(), "sign-up failed", "error", err)
			form.Message = apperrors.GetMessage(err, msgSignUpFailed)
			form.Status = authFailureStatus(err)
			h.renderAuth(w, r, form)
		case sess == nil:
			form.Action = authActionSignIn
			form.Info = msgConfirmationNeeded
			h.renderAuth(w, r, form)
		default:
			cookieWriter{domain: h.CookieDomain}.setSession(w, r, *sess)
			h.redirectAfterSignIn(w, r)
		}
		return
	}

	sess, err := h.Auth.SignIn(r.Context(), email, password)
	if err != nil {
		h.logger().InfoContext(r.Context(), "sign-in failed", "error", err)
		form.Message = msgSignInFailed
		if apperrors.IsValidation(err) {
			form.Message = apperrors.GetMessage(err, msgSignInFailed)
		}
		form.Status = authFailureStatus(err)
		h.renderAuth(w, r, form)
		return
	}
	cookieWriter{domain: h.CookieDomain}.setSession(w, r, *sess)
	h.redirectAfterSignIn(w, r)
}

// authFailureStatus is 422 for missing credentials and 401 otherwise.
func authFailureStatus(err error) int {
	if apperrors.IsValidation(err) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusUnauthorized
}

func (h *UIHandlers) renderAuth(w http.ResponseWriter, r *http.Request, form authForm) {
	usesPassword := h.Auth != nil && h.Auth.UsesPassword()
	b := NewTemplateData(r, authMeta).
		With("UsesPassword", usesPassword).
		With("Form", form).
		WithError(form.Message)
	h.renderPage(w, r, pageRender{Data: b.Build(), Status: form.Status})
}

func (h *UIHandlers) redirectAfterSignIn(w http.ResponseWriter, r *http.Request) {
	if IsHTMX(r) {
		HTMX(w).Redirect(dashboardPath)
		return
	}
	http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
}
