package httpx

import (
	"net/http"

	"github.com/target/calorie-tracker/internal/http/ui/viewmodel"
	"github.com/target/calorie-tracker/internal/service"
)

// Template data keys read by the page templates.
const (
	keySection    = "Section"
	keyStats      = "Stats"
	keyProbe      = "Probe"
	keyReloadPath = "ReloadPath"
	keyMessage    = "Message"
)

// TemplateDataBuilder assembles the data map for one page render.
// It starts from the layout fields every page needs (title, session state, CSRF token).
type TemplateDataBuilder struct {
	data map[string]any
}

// NewTemplateData creates a builder seeded with the layout fields for r.
func NewTemplateData(r *http.Request, meta PageMeta) *TemplateDataBuilder {
	return &TemplateDataBuilder{data: basePageData(r, meta)}
}

// WithError shows msg in the page's error banner.
func (b *TemplateDataBuilder) WithError(msg string) *TemplateDataBuilder {
	if msg == "" {
		return b
	}
	b.data["Error"] = true
	b.data["ErrorMessage"] = msg
	return b
}

// WithFieldErrors attaches per-field validation messages keyed by form field name.
func (b *TemplateDataBuilder) WithFieldErrors(errs map[string]string) *TemplateDataBuilder {
	if len(errs) > 0 {
		b.data["Errors"] = errs
	}
	return b
}

// WithMealsSection sets the meal list section and lifts its form errors to the page.
func (b *TemplateDataBuilder) WithMealsSection(section viewmodel.MealsSection) *TemplateDataBuilder {
	b.data[keySection] = section
	return b.WithFieldErrors(section.Form.Errors)
}

// WithStats sets the dashboard cards.
func (b *TemplateDataBuilder) WithStats(stats viewmodel.DashboardStats) *TemplateDataBuilder {
	b.data[keyStats] = stats
	return b
}

// WithProbe sets the connectivity check result for the diagnostic page.
func (b *TemplateDataBuilder) WithProbe(res service.ProbeResult) *TemplateDataBuilder {
	b.data[keyProbe] = res
	return b
}

// WithReloadPath sets the path the loader page polls.
func (b *TemplateDataBuilder) WithReloadPath(path string) *TemplateDataBuilder {
	b.data[keyReloadPath] = path
	return b
}

// WithMessage sets the body text of simple pages such as the 404 page.
func (b *TemplateDataBuilder) WithMessage(msg string) *TemplateDataBuilder {
	b.data[keyMessage] = msg
	return b
}

// With adds an arbitrary field.
func (b *TemplateDataBuilder) With(key string, value any) *TemplateDataBuilder {
	b.data[key] = value
	return b
}

// Build returns the data map.
func (b *TemplateDataBuilder) Build() map[string]any {
	return b.data
}
