// Package uiutil formats domain values for display.
package uiutil

import (
	"time"

	"github.com/target/calorie-tracker/internal/domain/model"
)

// ShortDateLayout matches the browser's en-US toLocaleDateString output.
const ShortDateLayout = "1/2/2006"

// FormatShortDate renders t as M/D/YYYY.
func FormatShortDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(ShortDateLayout)
}

// FormatMealDate renders a stored YYYY-MM-DD calendar date as M/D/YYYY.
// Values that do not parse are returned unchanged.
func FormatMealDate(date string) string {
	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return date
	}
	return FormatShortDate(t)
}
