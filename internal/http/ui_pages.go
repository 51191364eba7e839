package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/target/calorie-tracker/internal/http/ui/viewmodel"
)

const appName = "CalorieTracker"

// Index serves the landing page. Visitors see the marketing hero, signed-in
// users a welcome-back panel, and an undetermined session the loader.
func (h *UIHandlers) Index(w http.ResponseWriter, r *http.Request) {
	meta := PageMeta{Title: appName + " - Track Your Calories", CurrentPage: PageHome}
	if SessionContextFrom(r.Context()).IsLoading() {
		h.renderLoader(w, r, meta)
		return
	}
	h.renderPage(w, r, pageRender{Data: basePageData(r, meta)})
}

// Dashboard serves the gated dashboard with its placeholder figures.
func (h *UIHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	meta := PageMeta{Title: appName + " - Dashboard", CurrentPage: PageDashboard}
	if !h.gate(w, r, meta) {
		return
	}
	data := NewTemplateData(r, meta).
		WithStats(viewmodel.PlaceholderDashboardStats()).
		Build()
	h.renderPage(w, r, pageRender{Data: data})
}

// NotFound handles 404 errors.
// For browser requests, it renders an HTML error page.
// For API requests, it returns a JSON error response.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	if isAPIRequest(r) || h == nil || h.T == nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "not_found",
			Err:     errors.New("not found"),
		})
		return
	}

	data := NewTemplateData(r, PageMeta{Title: "Page Not Found - " + appName, CurrentPage: PageNotFound}).
		WithMessage("The page you're looking for doesn't exist.").
		Build()
	h.renderPage(w, r, pageRender{Data: data, Status: http.StatusNotFound})
}

// isAPIRequest reports whether the client expects JSON rather than HTML.
func isAPIRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}
