// Package testutil provides testing utilities and helpers for the calorie tracker.
package testutil

import (
	"fmt"
	"time"

	"github.com/target/calorie-tracker/internal/domain/model"
)

// MealBuilder provides a fluent interface for building model.Meal values for tests.
type MealBuilder struct {
	meal model.Meal
}

// NewMeal creates a MealBuilder with sensible defaults.
func NewMeal() *MealBuilder {
	return &MealBuilder{
		meal: model.Meal{
			ID:        "meal-1",
			FoodName:  "Apple",
			Calories:  95,
			Date:      "2024-01-01",
			CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
			UserID:    "user-1",
		},
	}
}

// WithID sets the meal id.
func (b *MealBuilder) WithID(id string) *MealBuilder {
	b.meal.ID = id
	return b
}

// WithFood sets the food name and calories.
func (b *MealBuilder) WithFood(name string, calories int) *MealBuilder {
	b.meal.FoodName = name
	b.meal.Calories = calories
	return b
}

// WithOwner sets the owning user id.
func (b *MealBuilder) WithOwner(userID string) *MealBuilder {
	b.meal.UserID = userID
	return b
}

// CreatedAt sets the creation timestamp.
func (b *MealBuilder) CreatedAt(t time.Time) *MealBuilder {
	b.meal.CreatedAt = t
	return b
}

// Build returns the meal.
func (b *MealBuilder) Build() model.Meal {
	return b.meal
}

// Meals returns n meals ordered newest first, with calories 100, 200, ... and ids meal-1..meal-n.
func Meals(n int) []model.Meal {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	out := make([]model.Meal, 0, n)
	for i := n; i >= 1; i-- {
		out = append(out, NewMeal().
			WithID(fmt.Sprintf("meal-%d", i)).
			WithFood(fmt.Sprintf("Food %d", i), i*100).
			CreatedAt(base.Add(time.Duration(i)*time.Minute)).
			Build())
	}
	return out
}
