// Package mealview holds the per-session meal list: the loaded sequence and
// the mutation token that serializes remote changes.
package mealview

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/target/calorie-tracker/internal/domain/model"
	apperrors "github.com/target/calorie-tracker/internal/errors"
	"github.com/target/calorie-tracker/internal/ports"
)

// DefaultMutationTimeout bounds every remote call made while holding the token.
const DefaultMutationTimeout = 10 * time.Second

// ErrBusyMessage is the user-facing text of the conflict returned when the token is held.
const ErrBusyMessage = "another change is still in progress"

// MealStore is the slice of the meal service a View needs.
type MealStore interface {
	List(ctx context.Context, owner ports.Owner) ([]model.Meal, error)
	Create(ctx context.Context, owner ports.Owner, req model.CreateMealRequest) (model.Meal, error)
	Delete(ctx context.Context, owner ports.Owner, id string) error
}

// View is one browser session's meal list. Methods are safe for concurrent use.
type View struct {
	store   MealStore
	timeout time.Duration
	logger  *slog.Logger

	token chan struct{}

	mu      sync.RWMutex
	owner   ports.Owner
	meals   []model.Meal
	loaded  bool
	loadErr error
}

// ViewOptions groups dependencies for NewView.
type ViewOptions struct {
	Store   MealStore
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewView creates an empty, unloaded View for owner.
func NewView(owner ports.Owner, opts ViewOptions) *View {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultMutationTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &View{
		store:   opts.Store,
		timeout: timeout,
		logger:  logger,
		token:   make(chan struct{}, 1),
		owner:   owner,
		meals:   []model.Meal{},
	}
}

func (v *View) acquire() (release func(), err error) {
	select {
	case v.token <- struct{}{}:
		return func() { <-v.token }, nil
	default:
		return nil, apperrors.Conflict(ErrBusyMessage)
	}
}

// InFlight reports whether a remote change is currently running.
func (v *View) InFlight() bool { return len(v.token) > 0 }

// SetOwner refreshes the identity used for remote calls.
func (v *View) SetOwner(owner ports.Owner) {
	v.mu.Lock()
	v.owner = owner
	v.mu.Unlock()
}

func (v *View) currentOwner() ports.Owner {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.owner
}

// Load replaces the sequence with the store's list. On failure the previous
// sequence is kept and the error is remembered, logged, and returned.
func (v *View) Load(ctx context.Context) error {
	release, err := v.acquire()
	if err != nil {
		return err
	}
	defer release()

	owner := v.currentOwner()
	callCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	meals, err := v.store.List(callCtx, owner)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.loadErr = err
		v.logger.WarnContext(ctx, "load meals failed", "user_id", owner.UserID, "error", err)
		return err
	}
	if meals == nil {
		meals = []model.Meal{}
	}
	v.meals = meals
	v.loaded = true
	v.loadErr = nil
	return nil
}

// Add creates a meal and prepends it. The list is not re-fetched.
func (v *View) Add(ctx context.Context, req model.CreateMealRequest) (model.Meal, error) {
	release, err := v.acquire()
	if err != nil {
		return model.Meal{}, err
	}
	defer release()

	callCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	meal, err := v.store.Create(callCtx, v.currentOwner(), req)
	if err != nil {
		return model.Meal{}, err
	}

	v.mu.Lock()
	v.meals = slices.Insert(v.meals, 0, meal)
	v.mu.Unlock()
	return meal, nil
}

// Delete removes the meal with id. Ids not in the loaded sequence fail with
// not_found without contacting the store.
func (v *View) Delete(ctx context.Context, id string) error {
	release, err := v.acquire()
	if err != nil {
		return err
	}
	defer release()

	if v.indexOf(id) < 0 {
		return apperrors.NotFound("Meal not found")
	}

	callCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	if err := v.store.Delete(callCtx, v.currentOwner(), id); err != nil {
		return err
	}

	v.mu.Lock()
	if i := v.indexOfLocked(id); i >= 0 {
		v.meals = slices.Delete(v.meals, i, i+1)
	}
	v.mu.Unlock()
	return nil
}

func (v *View) indexOf(id string) int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.indexOfLocked(id)
}

func (v *View) indexOfLocked(id string) int {
	return slices.IndexFunc(v.meals, func(m model.Meal) bool { return m.ID == id })
}

// Meals returns a copy of the sequence, newest first.
func (v *View) Meals() []model.Meal {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.meals)
}

// Total is the sum of calories over every loaded meal, whatever its date.
func (v *View) Total() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return model.TotalCalories(v.meals)
}

// Loaded reports whether at least one Load succeeded.
func (v *View) Loaded() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loaded
}

// LastLoadError returns the error of the most recent failed Load, or nil.
func (v *View) LastLoadError() error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loadErr
}
