package supabase

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/target/calorie-tracker/internal/domain/model"
	apperrors "github.com/target/calorie-tracker/internal/errors"
	"github.com/target/calorie-tracker/internal/ports"
)

const (
	mealsPath            = "/rest/v1/meals"
	preferRepresentation = "return=representation"
)

// MealRepository is the PostgREST client for the meals table. Requests run
// with the owner's access token so row-level policies apply.
type MealRepository struct {
	c *client
}

var _ ports.MealRepository = (*MealRepository)(nil)

// NewMealRepository builds a MealRepository.
func NewMealRepository(cfg Config) (*MealRepository, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &MealRepository{c: c}, nil
}

func (r *MealRepository) List(ctx context.Context, owner ports.Owner) ([]model.Meal, error) {
	if owner.UserID == "" {
		return nil, apperrors.Unauthorized("sign in to view meals")
	}
	q := url.Values{}
	q.Set("select", "*")
	q.Set("user_id", "eq."+owner.UserID)
	q.Set("order", "created_at.desc")

	var meals []model.Meal
	err := r.c.do(ctx, request{method: http.MethodGet, path: mealsPath, query: q, bearer: owner.AccessToken}, &meals, decodeRESTError)
	if err != nil {
		return nil, MapRESTError(err, "Failed to load meals.")
	}
	if meals == nil {
		meals = []model.Meal{}
	}
	return meals, nil
}

type insertMealRow struct {
	FoodName string `json:"food_name"`
	Calories int    `json:"calories"`
	Date     string `json:"date"`
	UserID   string `json:"user_id"`
}

func (r *MealRepository) Create(ctx context.Context, owner ports.Owner, req model.CreateMealRequest) (model.Meal, error) {
	if owner.UserID == "" {
		return model.Meal{}, apperrors.Unauthorized("sign in to add meals")
	}
	row := insertMealRow{FoodName: req.FoodName, Calories: req.Calories, Date: req.Date, UserID: owner.UserID}

	var rows []model.Meal
	err := r.c.do(ctx, request{
		method: http.MethodPost,
		path:   mealsPath,
		body:   []insertMealRow{row},
		bearer: owner.AccessToken,
		prefer: preferRepresentation,
	}, &rows, decodeRESTError)
	if err != nil {
		return model.Meal{}, MapRESTError(err, "Failed to add meal.")
	}
	if len(rows) != 1 {
		return model.Meal{}, apperrors.Store(errors.New("insert returned no single row"), "Failed to add meal.")
	}
	return rows[0], nil
}

func (r *MealRepository) Delete(ctx context.Context, owner ports.Owner, id string) error {
	if owner.UserID == "" {
		return apperrors.Unauthorized("sign in to delete meals")
	}
	if id == "" {
		return apperrors.NotFound("Meal not found")
	}
	q := url.Values{}
	q.Set("id", "eq."+id)
	q.Set("user_id", "eq."+owner.UserID)

	var rows []model.Meal
	err := r.c.do(ctx, request{
		method: http.MethodDelete,
		path:   mealsPath,
		query:  q,
		bearer: owner.AccessToken,
		prefer: preferRepresentation,
	}, &rows, decodeRESTError)
	if err != nil {
		return MapRESTError(err, "Failed to delete meal.")
	}
	if len(rows) == 0 {
		return apperrors.NotFound("Meal not found")
	}
	return nil
}
