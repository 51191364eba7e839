package httpx

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/calorie-tracker/internal/domain/auth"
	apperrors "github.com/target/calorie-tracker/internal/errors"
)

func authValues(action, email, password string) url.Values {
	return url.Values{"action": {action}, "email": {email}, "password": {password}}
}

func TestAuthPage(t *testing.T) {
	t.Run("password form", func(t *testing.T) {
		app := newTestApp(t)
		rec := app.get("/auth", reqOpts{anon: true})

		require.Equal(t, http.StatusOK, rec.Code)
		doc := parseHTML(t, rec.Body.String())
		assert.NotNil(t, findByID(doc, "email"))
		assert.NotNil(t, findByID(doc, "password"))

		var actions []string
		for _, btn := range findAll(doc, byTag("button")) {
			if v, ok := attr(btn, "value"); ok {
				actions = append(actions, v)
			}
		}
		assert.Equal(t, []string{authActionSignIn, authActionSignUp}, actions)
		assert.Contains(t, rec.Body.String(), "Sign in to your account")
	})

	t.Run("redirect provider shows continue link", func(t *testing.T) {
		app := newTestApp(t)
		app.auth.password = false
		rec := app.get("/auth", reqOpts{anon: true})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, findByID(parseHTML(t, rec.Body.String()), "password"))
		assert.Contains(t, rec.Body.String(), `href="/auth/login"`)
	})

	t.Run("signed-in visitor goes to the dashboard", func(t *testing.T) {
		app := newTestApp(t).signIn()
		rec := app.get("/auth", reqOpts{})

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	})
}

func TestAuthSubmit_SignIn(t *testing.T) {
	t.Run("success sets the session cookie", func(t *testing.T) {
		app := newTestApp(t)
		app.auth.signIn = func(email, password string) (*domainauth.Session, error) {
			assert.Equal(t, testEmail, email)
			assert.Equal(t, "hunter22", password)
			s := testSession()
			return &s, nil
		}

		rec := app.post("/auth", reqOpts{anon: true, form: authValues("signin", "  "+testEmail+" ", "hunter22")})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

		c := findCookie(rec, SessionCookieName)
		require.NotNil(t, c)
		assert.Equal(t, testSessionID, c.Value)
	})

	t.Run("bad credentials", func(t *testing.T) {
		app := newTestApp(t)
		app.auth.signIn = func(string, string) (*domainauth.Session, error) {
			return nil, apperrors.Auth(errors.New("invalid_grant"), "Invalid login credentials")
		}

		rec := app.post("/auth", reqOpts{anon: true, form: authValues("signin", testEmail, "wrong")})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), msgSignInFailed)
		assert.Nil(t, findCookie(rec, SessionCookieName))

		email := findByID(parseHTML(t, rec.Body.String()), "email")
		require.NotNil(t, email)
		v, _ := attr(email, "value")
		assert.Equal(t, testEmail, v, "email is kept for another attempt")
	})

	t.Run("missing credentials", func(t *testing.T) {
		app := newTestApp(t)
		app.auth.signIn = func(string, string) (*domainauth.Session, error) {
			return nil, apperrors.Validation("Email and password are required.")
		}

		rec := app.post("/auth", reqOpts{anon: true, form: authValues("signin", "", "")})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "Email and password are required.")
	})

	t.Run("htmx success uses HX-Redirect", func(t *testing.T) {
		app := newTestApp(t)
		app.auth.signIn = func(string, string) (*domainauth.Session, error) {
			s := testSession()
			return &s, nil
		}

		rec := app.post("/auth", reqOpts{anon: true, htmx: true, form: authValues("signin", testEmail, "pw")})
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get("HX-Redirect"))
	})
}

func TestAuthSubmit_SignUp(t *testing.T) {
	t.Run("confirmation pending", func(t *testing.T) {
		app := newTestApp(t)
		app.auth.signUp = func(string, string) (*domainauth.Session, error) { return nil, nil }

		rec := app.post("/auth", reqOpts{anon: true, form: authValues("signup", testEmail, "hunter22")})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), msgConfirmationNeeded)
		assert.Contains(t, rec.Body.String(), "Sign in to your account")
		assert.Nil(t, findCookie(rec, SessionCookieName))
	})

	t.Run("immediate session", func(t *testing.T) {
		app := newTestApp(t)
		app.auth.signUp = func(string, string) (*domainauth.Session, error) {
			s := testSession()
			return &s, nil
		}

		rec := app.post("/auth", reqOpts{anon: true, form: authValues("signup", testEmail, "hunter22")})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		require.NotNil(t, findCookie(rec, SessionCookieName))
	})

	t.Run("rejected", func(t *testing.T) {
		app := newTestApp(t)
		app.auth.signUp = func(string, string) (*domainauth.Session, error) {
			return nil, apperrors.Auth(errors.New("user_already_exists"), "User already registered")
		}

		rec := app.post("/auth", reqOpts{anon: true, form: authValues("signup", testEmail, "hunter22")})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "User already registered")
		assert.Contains(t, rec.Body.String(), "Create your account")
	})
}

func TestAuthSubmit_RedirectProvider(t *testing.T) {
	app := newTestApp(t)
	app.auth.password = false

	rec := app.post("/auth", reqOpts{anon: true, form: authValues("signin", testEmail, "pw")})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
}
