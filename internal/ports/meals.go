package ports

import (
	"context"

	"github.com/target/calorie-tracker/internal/domain/model"
)

// Owner scopes a meal operation to one identity. AccessToken is forwarded to
// stores that enforce row-level policies themselves.
type Owner struct {
	UserID      string
	AccessToken string
}

// MealRepository is the table-scoped client for the meals table.
// Every operation is restricted to rows owned by owner.
type MealRepository interface {
	// List returns the owner's meals, newest created first.
	List(ctx context.Context, owner Owner) ([]model.Meal, error)
	// Create inserts one meal and returns the stored row.
	Create(ctx context.Context, owner Owner, req model.CreateMealRequest) (model.Meal, error)
	// Delete removes the meal with id. A missing row is a not_found error.
	Delete(ctx context.Context, owner Owner, id string) error
}

// ConnectivityProber issues a bounded read against the sentinel table "_test".
type ConnectivityProber interface {
	Probe(ctx context.Context) error
}
