package bootstrap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/calorie-tracker/config"
)

func TestParseConfig_Defaults(t *testing.T) {
	t.Setenv("AUTH_MODE", "supabase")
	t.Setenv("STORE_MODE", "rest")
	t.Setenv("MEAL_VIEW_MUTATION_TIMEOUT", "0s")

	cfg, err := parseConfig()
	require.NoError(t, err)
	assert.Equal(t, config.AuthModeSupabase, cfg.Auth.Mode)
	assert.Equal(t, config.StoreModeREST, cfg.Store.Mode)
	assert.Equal(t, 10*time.Second, cfg.Meals.MutationTimeout, "non-positive durations fall back to defaults")
}

func TestParseConfig_Rejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "rest store needs hosted auth",
			env:  map[string]string{"AUTH_MODE": "mock", "STORE_MODE": "rest"},
			want: "STORE_MODE=rest requires AUTH_MODE=supabase",
		},
		{
			name: "public suffix cookie domain",
			env:  map[string]string{"APP_COOKIE_DOMAIN": ".co.uk"},
			want: "public suffix",
		},
		{
			name: "unknown auth mode",
			env:  map[string]string{"AUTH_MODE": "ldap"},
			want: "invalid AuthMode",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := parseConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
