package config

import "time"

// MealsConfig controls the per-session meal view and the diagnostic probe.
type MealsConfig struct {
	// MutationTimeout bounds every remote call made while a view holds its mutation token.
	MutationTimeout time.Duration `env:"MEAL_VIEW_MUTATION_TIMEOUT" envDefault:"10s"`

	// IdleTTL evicts views that have not been touched for this long.
	IdleTTL time.Duration `env:"MEAL_VIEW_IDLE_TTL" envDefault:"30m"`

	// Capacity is the maximum number of views held in memory.
	Capacity int `env:"MEAL_VIEW_CAPACITY" envDefault:"1024"`

	// ProbeTimeout bounds the diagnostic connectivity probe.
	ProbeTimeout time.Duration `env:"PROBE_TIMEOUT" envDefault:"5s"`
}

// Sanitize applies defaults to non-positive values.
func (m *MealsConfig) Sanitize() {
	if m.MutationTimeout <= 0 {
		m.MutationTimeout = 10 * time.Second
	}
	if m.IdleTTL <= 0 {
		m.IdleTTL = 30 * time.Minute
	}
	if m.Capacity <= 0 {
		m.Capacity = 1024
	}
	if m.ProbeTimeout <= 0 {
		m.ProbeTimeout = 5 * time.Second
	}
}
