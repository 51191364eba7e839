package viewmodel

import (
	"time"

	"github.com/target/calorie-tracker/internal/domain/model"
)

// MealForm is the add-meal overlay state.
type MealForm struct {
	Open     bool
	FoodName string
	Calories string
	Date     string
	Errors   map[string]string
}

// NewMealForm returns a closed, empty form dated today.
func NewMealForm(today time.Time) MealForm {
	draft := model.NewMealDraft(today)
	return MealForm{Date: draft.Date}
}

// FromDraft returns an open form holding the draft values.
func FromDraft(d model.MealDraft, errs map[string]string) MealForm {
	return MealForm{
		Open:     true,
		FoodName: d.FoodName,
		Calories: d.CaloriesText,
		Date:     d.Date,
		Errors:   errs,
	}
}

// MealsSection is the data behind the swappable meals section.
type MealsSection struct {
	Meals     []model.Meal
	Total     int
	Today     time.Time
	Form      MealForm
	InFlight  bool
	CSRFToken string // echoed into forms for non-HTMX posts
}

// DashboardStats holds the placeholder dashboard cards. The figures are fixed
// and not derived from stored meals.
type DashboardStats struct {
	TodayCalories int
	DailyGoal     int
	WeeklyAverage int
	StreakDays    int
}

// PlaceholderDashboardStats returns the static dashboard figures.
func PlaceholderDashboardStats() DashboardStats {
	return DashboardStats{
		TodayCalories: 0,
		DailyGoal:     2000,
		WeeklyAverage: 1850,
		StreakDays:    7,
	}
}
