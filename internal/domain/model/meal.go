//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	maxFoodNameLen = 255

	// DateLayout is the calendar date format used on the wire and in forms.
	DateLayout = "2006-01-02"
)

var (
	// ErrCaloriesNotNumber is returned when the calorie text has no leading integer.
	ErrCaloriesNotNumber = errors.New("calories must be a whole number")
	// ErrCaloriesNegative is returned for calorie counts below zero.
	ErrCaloriesNegative = errors.New("calories cannot be negative")
	// ErrFoodNameRequired is returned for an empty or blank food name.
	ErrFoodNameRequired = errors.New("food name is required")
	// ErrFoodNameTooLong is returned for food names over 255 characters.
	ErrFoodNameTooLong = errors.New("food name cannot exceed 255 characters")
	// ErrDateInvalid is returned when the date is not YYYY-MM-DD.
	ErrDateInvalid = errors.New("date must be formatted as YYYY-MM-DD")
)

// Meal is a single logged food entry owned by exactly one user.
// ID and CreatedAt are assigned by the store.
type Meal struct {
	ID        string    `json:"id"         db:"id"`
	FoodName  string    `json:"food_name"  db:"food_name"`
	Calories  int       `json:"calories"   db:"calories"`
	Date      string    `json:"date"       db:"date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UserID    string    `json:"user_id"    db:"user_id"`
}

// CreateMealRequest carries the fields a user supplies for a new meal.
type CreateMealRequest struct {
	FoodName string `json:"food_name"`
	Calories int    `json:"calories"`
	Date     string `json:"date"`
}

// Normalize trims the food name and fills an empty date with today.
func (r *CreateMealRequest) Normalize(today time.Time) {
	r.FoodName = strings.TrimSpace(r.FoodName)
	r.Date = strings.TrimSpace(r.Date)
	if r.Date == "" {
		r.Date = today.Format(DateLayout)
	}
}

// Validate validates CreateMealRequest. Call Normalize first.
func (r *CreateMealRequest) Validate() error {
	if r.FoodName == "" {
		return ErrFoodNameRequired
	}
	if utf8.RuneCountInString(r.FoodName) > maxFoodNameLen {
		return ErrFoodNameTooLong
	}
	if r.Calories < 0 {
		return ErrCaloriesNegative
	}
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return ErrDateInvalid
	}
	return nil
}

// MealDraft is the transient add-meal form state.
type MealDraft struct {
	FoodName     string
	CaloriesText string
	Date         string
}

// NewMealDraft returns an empty draft dated today.
func NewMealDraft(today time.Time) MealDraft {
	return MealDraft{Date: today.Format(DateLayout)}
}

// TotalCalories sums calories across meals.
func TotalCalories(meals []Meal) int {
	total := 0
	for _, m := range meals {
		total += m.Calories
	}
	return total
}

// ParseCalories reads the leading integer of s, ignoring anything after it:
// "95" and "95 kcal" give 95, "12.7" gives 12. Text without leading digits fails.
func ParseCalories(s string) (int, error) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, ErrCaloriesNotNumber
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, ErrCaloriesNotNumber
	}
	if n < 0 {
		return 0, ErrCaloriesNegative
	}
	return n, nil
}
