package httpx

import (
	"bytes"
	"testing"
	"time"

	"github.com/target/calorie-tracker/internal/http/ui/viewmodel"
	"github.com/target/calorie-tracker/internal/testutil"
)

// Ensures sectionTmpl maps known pages to expected content templates and defaults for unknown.
func TestTemplateHelpers_SectionTmpl_Mapping(t *testing.T) {
	tr := newTestRenderer(t)

	cloned, err := tr.t.Clone()
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	cloned, err = cloned.Parse(`{{define "probe"}}{{ sectionTmpl . }}{{end}}`)
	if err != nil {
		t.Fatalf("parse probe: %v", err)
	}

	cases := map[string]string{
		PageHome:       "home-content",
		PageDashboard:  "dashboard-content",
		PageMeals:      "meals-content",
		PageAuth:       "auth-content",
		PageDiagnostic: "diagnostic-content",
		PageLoader:     "loader-content",
		PageNotFound:   "not-found-content",
		"unknown":      "home-content",
	}
	for page, want := range cases {
		var buf bytes.Buffer
		if err := cloned.ExecuteTemplate(&buf, "probe", page); err != nil {
			t.Fatalf("execute probe(%s): %v", page, err)
		}
		if got := buf.String(); got != want {
			t.Fatalf("sectionTmpl(%s) => %q, want %q", page, got, want)
		}
		if cloned.Lookup(want) == nil {
			t.Fatalf("content template %q is not defined", want)
		}
	}
}

func TestTemplateHelpers_RenderSection(t *testing.T) {
	tr := newTestRenderer(t)

	cloned, err := tr.t.Clone()
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	cloned, err = cloned.Parse(`{{define "probe"}}{{ renderSection .Page .Data }}{{end}}`)
	if err != nil {
		t.Fatalf("parse probe: %v", err)
	}

	t.Run("dashboard renders the stat cards", func(t *testing.T) {
		var buf bytes.Buffer
		data := map[string]any{
			"Page": PageDashboard,
			"Data": map[string]any{"Stats": viewmodel.PlaceholderDashboardStats()},
		}
		if err := cloned.ExecuteTemplate(&buf, "probe", data); err != nil {
			t.Fatalf("execute probe(dashboard): %v", err)
		}
		if !containsAll(buf.String(), []string{`data-stat="today"`, "2,000", "1,850"}) {
			t.Fatalf("dashboard render missing expected substrings: %q", buf.String())
		}
	})

	t.Run("unknown page falls back to home", func(t *testing.T) {
		var buf bytes.Buffer
		data := map[string]any{"Page": "nope", "Data": map[string]any{}}
		if err := cloned.ExecuteTemplate(&buf, "probe", data); err != nil {
			t.Fatalf("execute probe(unknown): %v", err)
		}
		if !containsAll(buf.String(), []string{"Track Your Calories"}) {
			t.Fatalf("fallback render missing hero: %q", buf.String())
		}
	})
}

func TestMealsSectionTemplate(t *testing.T) {
	tr := newTestRenderer(t)

	section := viewmodel.MealsSection{
		Meals:     testutil.Meals(2),
		Total:     300,
		Today:     time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC),
		Form:      viewmodel.MealForm{Open: true, FoodName: "<b>Toast</b>", Calories: "120", Date: "2024-03-09", Errors: map[string]string{"calories": "Calories must be a whole number."}},
		CSRFToken: "tok",
	}

	var buf bytes.Buffer
	if err := tr.t.ExecuteTemplate(&buf, mealsSectionTemplate, section); err != nil {
		t.Fatalf("execute %s: %v", mealsSectionTemplate, err)
	}
	html := buf.String()

	if !containsAll(html, []string{
		`id="meals-section"`,
		`data-meal-id="meal-2"`,
		`data-meal-id="meal-1"`,
		`id="meal-form"`,
		"Calories must be a whole number.",
		`value="tok"`,
		"&lt;b&gt;Toast&lt;/b&gt;",
	}) {
		t.Fatalf("meals section missing expected content: %s", html)
	}
	if bytes.Contains(buf.Bytes(), []byte("<b>Toast</b>")) {
		t.Fatal("food name must be escaped")
	}
}
