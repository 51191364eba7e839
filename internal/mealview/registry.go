package mealview

import (
	"context"
	"log/slog"
	"time"

	"github.com/target/calorie-tracker/internal/core"
	"github.com/target/calorie-tracker/internal/ports"
)

// DefaultIdleTTL is how long an untouched view is kept.
const DefaultIdleTTL = 30 * time.Minute

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	View     ViewOptions
	IdleTTL  time.Duration
	Capacity int
	Now      func() time.Time
}

// Registry maps session IDs to their Views.
type Registry struct {
	views   *core.LRU[*View]
	viewOpt ViewOptions
	ttl     time.Duration
	logger  *slog.Logger
}

// NewRegistry creates a Registry.
func NewRegistry(opts RegistryOptions) *Registry {
	ttl := opts.IdleTTL
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	logger := opts.View.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts.View.Logger = logger.With("component", "mealview")
	return &Registry{
		views:   core.NewLRU[*View](core.LRUConfig{Capacity: opts.Capacity, Now: opts.Now}),
		viewOpt: opts.View,
		ttl:     ttl,
		logger:  opts.View.Logger,
	}
}

// Get returns the View for sessionID, creating it on first use. The owner's
// access token is refreshed on every call.
func (r *Registry) Get(sessionID string, owner ports.Owner) *View {
	v := r.views.GetOrCreate(sessionID, r.ttl, func() *View {
		return NewView(owner, r.viewOpt)
	})
	v.SetOwner(owner)
	return v
}

// Drop forgets the View for sessionID.
func (r *Registry) Drop(sessionID string) {
	r.views.Delete(sessionID)
}

// Len returns the number of live views.
func (r *Registry) Len() int { return r.views.Len() }

// Sweep removes idle views and returns how many were removed.
func (r *Registry) Sweep() int { return r.views.Sweep() }

// RunJanitor sweeps idle views every interval until ctx is done.
func (r *Registry) RunJanitor(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				stats := r.views.Stats()
				r.logger.DebugContext(ctx, "swept idle meal views", "removed", n, "size", stats.Size, "evictions", stats.Evictions)
			}
		}
	}
}
