package supabase

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/target/calorie-tracker/internal/errors"
)

func TestProber_Probe(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		body            string
		wantErr         bool
		relationMissing bool
	}{
		{name: "table exists", status: http.StatusOK, body: `[]`},
		{name: "relation missing", status: http.StatusNotFound, body: `{"code":"42P01","message":"relation \"public._test\" does not exist"}`, wantErr: true, relationMissing: true},
		{name: "schema cache miss", status: http.StatusNotFound, body: `{"code":"PGRST205","message":"Could not find the table 'public._test' in the schema cache"}`, wantErr: true, relationMissing: true},
		{name: "bad key", status: http.StatusUnauthorized, body: `{"message":"Invalid API key"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/rest/v1/_test", r.URL.Path)
				assert.Equal(t, "1", r.URL.Query().Get("limit"))
				assert.Equal(t, "Bearer anon", r.Header.Get("Authorization"))
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			p, err := NewProber(Config{URL: srv.URL, AnonKey: "anon"})
			require.NoError(t, err)

			err = p.Probe(context.Background())
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.relationMissing, apperrors.IsRelationMissing(err))
		})
	}
}
