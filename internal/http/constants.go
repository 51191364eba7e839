package httpx

// CurrentPage constants define the page identifiers used in templates and navigation.
// These constants ensure consistency across UI handlers and template mapping.
const (
	PageHome       = "home"
	PageDashboard  = "dashboard"
	PageMeals      = "meals"
	PageAuth       = "auth"
	PageDiagnostic = "diagnostic"
	PageLoader     = "loader"
	PageNotFound   = "not-found"
)

// Route paths referenced from more than one handler.
const (
	authPath      = "/auth"
	dashboardPath = "/dashboard"
	mealsPath     = "/meals"
)

// Template paths used for loading templates in tests and production.
const (
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
)

// User-facing messages raised as blocking alerts.
const (
	msgFillAllFields = "Please fill in all fields"
	msgAddFailed     = "Failed to add meal. Please try again."
	msgDeleteFailed  = "Failed to delete meal. Please try again."
	msgBusy          = "Another change is still in progress. Please wait."
	msgMealAdded     = "Meal added"
	msgMealDeleted   = "Meal deleted"
)

//nolint:gochecknoglobals // static read-only lookup for templates; avoids per-call allocations
var contentTemplates = map[string]string{
	PageHome:       "home-content",
	PageDashboard:  "dashboard-content",
	PageMeals:      "meals-content",
	PageAuth:       "auth-content",
	PageDiagnostic: "diagnostic-content",
	PageLoader:     "loader-content",
	PageNotFound:   "not-found-content",
}

// ContentTemplateFor returns the content template for the given CurrentPage.
// Falls back to home-content for unknown pages.
func ContentTemplateFor(currentPage string) string {
	if name, ok := contentTemplates[currentPage]; ok {
		return name
	}
	return "home-content"
}
