package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/target/calorie-tracker/internal/domain/model"
	apperrors "github.com/target/calorie-tracker/internal/errors"
	"github.com/target/calorie-tracker/internal/ports"
)

// MealServiceOptions groups dependencies for MealService.
type MealServiceOptions struct {
	Repo   ports.MealRepository
	Logger *slog.Logger
	Now    func() time.Time // Optional; defaults to time.Now in local time
}

// MealService validates meal input and forwards it to the store.
type MealService struct {
	repo   ports.MealRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewMealService constructs a new MealService.
func NewMealService(opts MealServiceOptions) *MealService {
	if opts.Repo == nil {
		panic("MealService requires a repository")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &MealService{
		repo:   opts.Repo,
		logger: logger.With("component", "meal_service"),
		now:    now,
	}
}

// Today returns the current calendar date in the server's time zone.
func (s *MealService) Today() time.Time { return s.now() }

// List returns the owner's meals, newest first.
func (s *MealService) List(ctx context.Context, owner ports.Owner) ([]model.Meal, error) {
	meals, err := s.repo.List(ctx, owner)
	if err != nil {
		return nil, apperrors.EnsureCode(err, apperrors.ErrCodeStore, "Failed to load meals.")
	}
	return meals, nil
}

// Create validates req and inserts it. Validation failures never reach the store.
func (s *MealService) Create(ctx context.Context, owner ports.Owner, req model.CreateMealRequest) (model.Meal, error) {
	req.Normalize(s.now())
	if err := req.Validate(); err != nil {
		return model.Meal{}, validationError(err)
	}

	meal, err := s.repo.Create(ctx, owner, req)
	if err != nil {
		s.logger.WarnContext(ctx, "create meal failed", "user_id", owner.UserID, "error", err)
		return model.Meal{}, apperrors.EnsureCode(err, apperrors.ErrCodeStore, "Failed to add meal.")
	}
	return meal, nil
}

// Delete removes the meal with id from the owner's log.
func (s *MealService) Delete(ctx context.Context, owner ports.Owner, id string) error {
	if err := s.repo.Delete(ctx, owner, id); err != nil {
		if !apperrors.IsNotFound(err) {
			s.logger.WarnContext(ctx, "delete meal failed", "user_id", owner.UserID, "meal_id", id, "error", err)
		}
		return apperrors.EnsureCode(err, apperrors.ErrCodeStore, "Failed to delete meal.")
	}
	return nil
}

var mealFieldErrors = []struct {
	err     error
	field   string
	message string
}{
	{model.ErrFoodNameRequired, "food_name", "Food name is required"},
	{model.ErrFoodNameTooLong, "food_name", "Food name cannot exceed 255 characters"},
	{model.ErrCaloriesNegative, "calories", "Calories cannot be negative"},
	{model.ErrCaloriesNotNumber, "calories", "Calories must be a whole number"},
	{model.ErrDateInvalid, "date", "Date must be formatted as YYYY-MM-DD"},
}

// validationError maps a model validation error to a field-scoped AppError.
func validationError(err error) error {
	for _, fe := range mealFieldErrors {
		if errors.Is(err, fe.err) {
			return &apperrors.AppError{Code: apperrors.ErrCodeValidation, Message: fe.message, Field: fe.field, Cause: err}
		}
	}
	return apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid meal.")
}
