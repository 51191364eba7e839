package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/calorie-tracker/internal/domain/auth"
)

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name    string
		session domainauth.SessionContext
		want    string
	}{
		{"anonymous", domainauth.Anonymous(), "unauthenticated"},
		{"signed in", domainauth.Authenticated(testSession()), "authenticated"},
		{"store unavailable", domainauth.Loading(), "loading"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req = req.WithContext(WithSessionContext(req.Context(), tt.session))
			rec := httptest.NewRecorder()

			healthHandler(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

			var body healthStatus
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, healthStatus{Status: "ok", Session: tt.want}, body)
		})
	}
}

func TestHealthHandler_HEAD(t *testing.T) {
	req := httptest.NewRequest(http.MethodHead, "/healthz", nil)
	rec := httptest.NewRecorder()

	healthHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Zero(t, rec.Body.Len(), "HEAD responses carry no body")
}

func TestHealthRoute_SessionStoreDown(t *testing.T) {
	app := newTestApp(t)
	app.auth.lookupErr = errors.New("redis: connection refused")

	rec := app.get("/healthz", reqOpts{})

	require.Equal(t, http.StatusOK, rec.Code, "liveness does not depend on the session store")
	var body healthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "loading", body.Session)
}
