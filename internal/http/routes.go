package httpx

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"time"

	calorietracker "github.com/target/calorie-tracker"
)

// AuthFacade is everything the router needs from the auth service.
type AuthFacade interface {
	SessionResolver
	PasswordAuth
	AuthServiceInterface
}

// MealViewRegistry hands out per-session meal views and forgets them on sign-out.
type MealViewRegistry interface {
	MealViews
	ViewDropper
}

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth         AuthFacade
	Views        MealViewRegistry
	Diagnostics  Diagnostics      // optional; /test-supabase reports 404 when nil
	Query        MealQuerier      // optional; GET /api/meals?q= is rejected when nil
	Clock        func() time.Time // optional; supplies the new-meal form's default date
	CookieDomain string
	// Optional template source. Defaults to the embedded templates, or disk in dev mode.
	TemplateFS fs.FS
	// Optional static source. Defaults to the embedded assets, or disk in dev mode.
	StaticFS fs.FS
	// Compression
	CompressionEnabled bool
	CompressionLevel   int
	// Configuration
	IsDev  bool         // Development mode flag for hot reloading, etc.
	Logger *slog.Logger // Logger for template and HTTP errors (optional)
}

func (s RouterServices) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// NewRouter creates the HTTP handler: middleware chain, UI pages, auth flow and the JSON API.
// Template parse errors fail construction.
func NewRouter(services RouterServices) (http.Handler, error) {
	if services.Auth == nil {
		return nil, errors.New("router: auth service is required")
	}
	if services.Views == nil {
		return nil, errors.New("router: meal view registry is required")
	}

	uiHandlers, err := setupUIHandlers(services)
	if err != nil {
		return nil, err
	}
	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		Views:        services.Views,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	}
	apiHandlers := &MealAPIHandlers{Views: services.Views, Query: services.Query}

	mux := http.NewServeMux()
	csrf := CSRFProtection(CSRFConfig{CookieDomain: services.CookieDomain})

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /static/", staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS(services))))))

	registerUIRoutes(mux, uiHandlers, csrf)
	registerAuthRoutes(mux, authHandlers, csrf)
	registerMealAPIRoutes(mux, apiHandlers, csrf)

	var handler http.Handler = &notFoundHandler{mux: mux, uiHandlers: uiHandlers}
	handler = LoadSession(LoadSessionConfig{
		Sessions:     services.Auth,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	})(handler)
	handler = Recover(services.logger())(handler)
	handler = Logging(services.logger())(handler)
	if services.CompressionEnabled {
		handler = Compression(CompressionConfig{Level: services.CompressionLevel, Logger: services.Logger})(handler)
	}
	return handler, nil
}

// templateFS picks the template source: explicit, disk in dev mode, or embedded.
func templateFS(services RouterServices) fs.FS {
	if services.TemplateFS != nil {
		return services.TemplateFS
	}
	if services.IsDev {
		return os.DirFS(TemplatePathFromRoot)
	}
	sub, err := fs.Sub(calorietracker.TemplateFS, "frontend/templates")
	if err != nil {
		log.Printf("failed to create sub-filesystem for templates: %v; falling back to disk", err)
		return os.DirFS(TemplatePathFromRoot)
	}
	return sub
}

// staticFS picks the static asset source the same way templateFS does.
func staticFS(services RouterServices) fs.FS {
	if services.StaticFS != nil {
		return services.StaticFS
	}
	if services.IsDev {
		return os.DirFS("frontend/static")
	}
	sub, err := fs.Sub(calorietracker.StaticFS, "frontend/static")
	if err != nil {
		log.Printf("failed to create sub-filesystem for static assets: %v; falling back to disk", err)
		return os.DirFS("frontend/static")
	}
	return sub
}

// setupUIHandlers creates UI handlers with the template renderer.
// In dev mode templates are re-read from disk on every render.
func setupUIHandlers(services RouterServices) (*UIHandlers, error) {
	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: templateFS(services),
		DevMode:    services.IsDev && services.TemplateFS == nil,
		Logger:     services.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create template renderer: %w", err)
	}

	return &UIHandlers{
		T:            tr,
		Auth:         services.Auth,
		Views:        services.Views,
		Diagnostics:  services.Diagnostics,
		CookieDomain: services.CookieDomain,
		IsDev:        services.IsDev,
		Logger:       services.Logger,
		Now:          services.Clock,
	}, nil
}

// staticWithCacheHeaders wraps a static file handler to add appropriate cache headers.
func staticWithCacheHeaders(handler http.Handler) http.Handler {
	// Content-hashed filenames including optional .map (e.g., app.abc123de.js, app.abc123de.css.map)
	hashedFilePattern := regexp.MustCompile(`\.[a-f0-9]{8}\.(?:js|css)(?:\.map)?$`)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hashedFilePattern.MatchString(r.URL.Path) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}
		handler.ServeHTTP(w, r)
	})
}

// notFoundHandler wraps a ServeMux and renders the app's 404 page for
// requests no route matches. Handlers that answer 404 themselves keep their response.
type notFoundHandler struct {
	mux        *http.ServeMux
	uiHandlers *UIHandlers
}

// ServeHTTP implements http.Handler and provides custom 404 handling.
func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, pattern := h.mux.Handler(r); pattern == "" {
		h.uiHandlers.NotFound(w, r)
		return
	}
	h.mux.ServeHTTP(w, r)
}

func registerUIRoutes(mux *http.ServeMux, h *UIHandlers, csrf func(http.Handler) http.Handler) {
	mux.Handle("GET /{$}", csrf(http.HandlerFunc(h.Index)))
	mux.Handle("GET /dashboard", csrf(http.HandlerFunc(h.Dashboard)))
	mux.Handle("GET /meals", csrf(http.HandlerFunc(h.Meals)))
	mux.Handle("GET /meals/new", csrf(http.HandlerFunc(h.MealNew)))
	mux.Handle("POST /meals", csrf(http.HandlerFunc(h.MealCreate)))
	mux.Handle("POST /meals/{id}/delete", csrf(http.HandlerFunc(h.MealDelete)))
	mux.Handle("GET /auth", csrf(http.HandlerFunc(h.AuthPage)))
	mux.Handle("POST /auth", csrf(http.HandlerFunc(h.AuthSubmit)))
	mux.Handle("GET /test-supabase", csrf(http.HandlerFunc(h.Diagnostic)))
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, csrf func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.Handle("POST /auth/logout", csrf(http.HandlerFunc(h.Logout)))
	mux.HandleFunc("GET /api/auth/status", h.Status)
}

func registerMealAPIRoutes(mux *http.ServeMux, h *MealAPIHandlers, csrf func(http.Handler) http.Handler) {
	wrap := func(hf http.HandlerFunc) http.Handler {
		return csrf(RequireSessionJSON()(hf))
	}
	mux.Handle("GET /api/meals", wrap(h.List))
	mux.Handle("POST /api/meals", wrap(h.Create))
	mux.Handle("DELETE /api/meals/{id}", wrap(h.Delete))
}
