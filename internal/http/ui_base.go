package httpx

import (
	"context"
	"html"
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/target/calorie-tracker/internal/domain/auth"
	"github.com/target/calorie-tracker/internal/http/ui/viewmodel"
	"github.com/target/calorie-tracker/internal/mealview"
	"github.com/target/calorie-tracker/internal/ports"
	"github.com/target/calorie-tracker/internal/service"
)

// PasswordAuth is the slice of the auth service the /auth form needs.
type PasswordAuth interface {
	UsesPassword() bool
	SignIn(ctx context.Context, email, password string) (*domainauth.Session, error)
	SignUp(ctx context.Context, email, password string) (*domainauth.Session, error)
}

// MealViews hands out the per-session meal view.
type MealViews interface {
	Get(sessionID string, owner ports.Owner) *mealview.View
}

// Diagnostics runs the store connectivity probe.
type Diagnostics interface {
	Run(ctx context.Context) service.ProbeResult
}

// Compile-time interface assertions to ensure concrete services satisfy their UI interfaces.
var (
	_ PasswordAuth = (*service.AuthService)(nil)
	_ MealViews    = (*mealview.Registry)(nil)
	_ Diagnostics  = (*service.DiagnosticService)(nil)
)

// UIHandlers serves browser-facing routes.
type UIHandlers struct {
	T            *TemplateRenderer
	Auth         PasswordAuth
	Views        MealViews
	Diagnostics  Diagnostics
	CookieDomain string
	IsDev        bool             // Development mode flag for enhanced error reporting
	Now          func() time.Time // optional; defaults to time.Now
	Logger       *slog.Logger
}

// logger returns the configured logger or falls back to slog.Default().
func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *UIHandlers) today() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// PageMeta contains metadata for page rendering.
type PageMeta struct {
	Title       string
	CurrentPage string
}

// buildLayout constructs shared layout metadata from the request/session context.
func buildLayout(r *http.Request, meta PageMeta) viewmodel.Layout {
	sc := SessionContextFrom(r.Context())
	layout := viewmodel.Layout{
		Title:       meta.Title,
		CurrentPage: meta.CurrentPage,
		CSRFToken:   GetCSRFToken(r),
		IsLoading:   sc.IsLoading(),
	}

	if id, ok := sc.Identity(); ok {
		layout.User = &viewmodel.User{ID: id.UserID, Email: id.Email}
		layout.IsAuthenticated = true
	}

	return layout
}

// basePageData constructs the common page data map with user context.
func basePageData(r *http.Request, meta PageMeta) map[string]any {
	layout := buildLayout(r, meta)
	data := map[string]any{
		"Title":           layout.Title,
		"CurrentPage":     layout.CurrentPage,
		"IsAuthenticated": layout.IsAuthenticated,
		"IsLoading":       layout.IsLoading,
	}

	if layout.CSRFToken != "" {
		data["CSRFToken"] = layout.CSRFToken
	}
	if layout.User != nil {
		data["User"] = layout.User
	}

	return data
}

// pageRender describes one page response.
type pageRender struct {
	Data   map[string]any
	Status int // 0 means 200
}

// renderPage renders the layout for full loads and only the content for HTMX navigation.
func (h *UIHandlers) renderPage(w http.ResponseWriter, r *http.Request, p pageRender) {
	tmpl := LayoutTemplate
	if WantsPartial(r) {
		tmpl = PartialTemplate
		w.Header().Set("Vary", "HX-Request")
	}
	if err := h.T.Render(w, RenderOptions{Template: tmpl, Data: p.Data, Status: p.Status}); err != nil {
		h.logAndRenderTemplateError(w, r, err, "page render")
	}
}

// renderFragment renders a named template without the layout.
func (h *UIHandlers) renderFragment(w http.ResponseWriter, r *http.Request, opts RenderOptions) {
	w.Header().Set("Cache-Control", "no-store")
	if err := h.T.Render(w, opts); err != nil {
		h.logAndRenderTemplateError(w, r, err, "fragment "+opts.Template)
	}
}

// gate applies the session gate for a protected page. It returns true when the
// page should render; otherwise the loader or an auth redirect has been written.
func (h *UIHandlers) gate(w http.ResponseWriter, r *http.Request, meta PageMeta) bool {
	switch domainauth.Gate(SessionContextFrom(r.Context())) {
	case domainauth.GateRender:
		return true
	case domainauth.GateLoader:
		h.renderLoader(w, r, meta)
		return false
	default:
		redirectToAuth(w, r)
		return false
	}
}

// renderLoader renders the neutral loading page. It polls the requested page
// until the session resolves and never redirects on its own.
func (h *UIHandlers) renderLoader(w http.ResponseWriter, r *http.Request, meta PageMeta) {
	w.Header().Set("Cache-Control", "no-store")
	data := NewTemplateData(r, PageMeta{Title: meta.Title, CurrentPage: PageLoader}).
		WithReloadPath(r.URL.RequestURI()).
		Build()
	h.renderPage(w, r, pageRender{Data: data})
}

// logAndRenderTemplateError logs template errors and renders them in dev mode.
func (h *UIHandlers) logAndRenderTemplateError(w http.ResponseWriter, r *http.Request, err error, context string) {
	h.logger().Error("template rendering failed",
		"error", err,
		"context", context,
		"path", r.URL.Path,
		"method", r.Method,
	)

	if h.IsDev {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		body := `<div class="template-error"><h2>Template Rendering Error</h2>` +
			`<p><strong>Context:</strong> ` + html.EscapeString(context) + `</p>` +
			`<p><strong>Path:</strong> ` + html.EscapeString(r.URL.Path) + `</p>` +
			`<pre>` + html.EscapeString(err.Error()) + `</pre></div>`
		if _, writeErr := w.Write([]byte(body)); writeErr != nil {
			h.logger().Error("failed to write template error response", "error", writeErr)
		}
		return
	}

	http.Error(w, "internal server error", http.StatusInternalServerError)
}
