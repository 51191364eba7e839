package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCalories(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr error
	}{
		{in: "95", want: 95},
		{in: "  250", want: 250},
		{in: "95 kcal", want: 95},
		{in: "12.7", want: 12},
		{in: "+30", want: 30},
		{in: "0", want: 0},
		{in: "", wantErr: ErrCaloriesNotNumber},
		{in: "abc", wantErr: ErrCaloriesNotNumber},
		{in: "-", wantErr: ErrCaloriesNotNumber},
		{in: "-5", wantErr: ErrCaloriesNegative},
		{in: "99999999999999999999999", wantErr: ErrCaloriesNotNumber},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCalories(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateMealRequest_NormalizeAndValidate(t *testing.T) {
	today := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)

	req := CreateMealRequest{FoodName: "  Apple ", Calories: 95}
	req.Normalize(today)
	require.NoError(t, req.Validate())
	assert.Equal(t, "Apple", req.FoodName)
	assert.Equal(t, "2024-03-09", req.Date)

	cases := []struct {
		name string
		req  CreateMealRequest
		msg  string
	}{
		{name: "empty name", req: CreateMealRequest{FoodName: "   ", Calories: 1, Date: "2024-01-01"}, msg: "food name is required"},
		{name: "long name", req: CreateMealRequest{FoodName: strings.Repeat("a", 256), Calories: 1, Date: "2024-01-01"}, msg: "255"},
		{name: "negative calories", req: CreateMealRequest{FoodName: "x", Calories: -1, Date: "2024-01-01"}, msg: "negative"},
		{name: "bad date", req: CreateMealRequest{FoodName: "x", Calories: 1, Date: "01/02/2024"}, msg: "YYYY-MM-DD"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := c.req
			r.Normalize(today)
			err := r.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), c.msg)
		})
	}
}

func TestTotalCalories(t *testing.T) {
	meals := []Meal{{Calories: 95}, {Calories: 400}, {Calories: 0}}
	assert.Equal(t, 495, TotalCalories(meals))
	assert.Equal(t, 0, TotalCalories(nil))
}

func TestNewMealDraft(t *testing.T) {
	d := NewMealDraft(time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, MealDraft{Date: "2024-01-01"}, d)
}
