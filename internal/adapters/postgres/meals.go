// Package postgres implements the meal store and connectivity probe over a direct Postgres connection.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/target/calorie-tracker/internal/domain/model"
	apperrors "github.com/target/calorie-tracker/internal/errors"
	"github.com/target/calorie-tracker/internal/ports"
)

// Querier is the subset of *pgxpool.Pool the adapters use.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const mealsTable = "meals"

var mealColumns = []string{
	"id::text",
	"food_name",
	"calories",
	"date::text",
	"created_at",
	"user_id::text",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// MealRepository stores meals in the meals table. Ownership is enforced by
// the user_id predicate on every statement.
type MealRepository struct {
	db Querier
}

var _ ports.MealRepository = (*MealRepository)(nil)

// NewMealRepository creates a new MealRepository.
func NewMealRepository(db Querier) *MealRepository {
	return &MealRepository{db: db}
}

func scanMeal(row pgx.Row) (model.Meal, error) {
	var m model.Meal
	err := row.Scan(&m.ID, &m.FoodName, &m.Calories, &m.Date, &m.CreatedAt, &m.UserID)
	return m, err
}

func (r *MealRepository) List(ctx context.Context, owner ports.Owner) ([]model.Meal, error) {
	if owner.UserID == "" {
		return nil, apperrors.Unauthorized("sign in to view meals")
	}
	query, args, err := psql.Select(mealColumns...).
		From(mealsTable).
		Where(sq.Eq{"user_id": owner.UserID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr(err, "Failed to load meals.")
	}
	defer rows.Close()

	meals := []model.Meal{}
	for rows.Next() {
		m, scanErr := scanMeal(rows)
		if scanErr != nil {
			return nil, storeErr(scanErr, "Failed to load meals.")
		}
		meals = append(meals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err, "Failed to load meals.")
	}
	return meals, nil
}

func (r *MealRepository) Create(ctx context.Context, owner ports.Owner, req model.CreateMealRequest) (model.Meal, error) {
	if owner.UserID == "" {
		return model.Meal{}, apperrors.Unauthorized("sign in to add meals")
	}
	query, args, err := psql.Insert(mealsTable).
		Columns("food_name", "calories", "date", "user_id").
		Values(req.FoodName, req.Calories, req.Date, owner.UserID).
		Suffix("RETURNING " + strings.Join(mealColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Meal{}, fmt.Errorf("build insert query: %w", err)
	}

	m, err := scanMeal(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Meal{}, apperrors.Store(err, "Failed to add meal.")
		}
		return model.Meal{}, storeErr(err, "Failed to add meal.")
	}
	return m, nil
}

func (r *MealRepository) Delete(ctx context.Context, owner ports.Owner, id string) error {
	if owner.UserID == "" {
		return apperrors.Unauthorized("sign in to delete meals")
	}
	if id == "" {
		return apperrors.NotFound("Meal not found")
	}
	query, args, err := psql.Delete(mealsTable).
		Where(sq.Eq{"id": id, "user_id": owner.UserID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return storeErr(err, "Failed to delete meal.")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("Meal not found")
	}
	return nil
}

// storeErr maps driver errors and labels anything unrecognized as a store failure.
func storeErr(err error, message string) error {
	return apperrors.EnsureCode(apperrors.MapDBError(err), apperrors.ErrCodeStore, message)
}
