package httpx

import (
	"bytes"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	corefuncs "github.com/target/calorie-tracker/internal/http/templates/core"
)

//nolint:gochecknoglobals // parse patterns shared by startup and dev reloads
var templatePatterns = []string{
	"*.tmpl",
	"pages/*.tmpl",
	"partials/*.tmpl",
}

// TemplateRenderer renders HTML templates for UI responses.
type TemplateRenderer struct {
	t       *template.Template
	fsys    fs.FS
	devMode bool         // Re-parse templates on every render
	logger  *slog.Logger // For logging template errors
}

// TemplateRendererConfig holds configuration for creating a TemplateRenderer.
type TemplateRendererConfig struct {
	TemplateFS fs.FS        // Filesystem containing templates (required)
	DevMode    bool         // Enable hot reloading of templates from TemplateFS
	Logger     *slog.Logger // Logger for template errors (optional)
}

// NewTemplateRenderer constructs a renderer by parsing templates from the provided config.
// Parse errors are returned at startup in both modes.
func NewTemplateRenderer(cfg TemplateRendererConfig) (*TemplateRenderer, error) {
	if cfg.TemplateFS == nil {
		return nil, errors.New("TemplateFS is required")
	}

	t, err := parseTemplates(cfg.TemplateFS)
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Error("template parsing failed",
				slog.Any("error", err),
				slog.String("phase", "initialization"),
			)
		}
		return nil, err
	}

	return &TemplateRenderer{t: t, fsys: cfg.TemplateFS, devMode: cfg.DevMode, logger: cfg.Logger}, nil
}

func parseTemplates(fsys fs.FS) (*template.Template, error) {
	var t *template.Template
	funcs := corefuncs.Funcs(corefuncs.Deps{
		Template:           &t,
		ContentTemplateFor: ContentTemplateFor,
	})
	var err error
	t, err = template.New("root").Funcs(funcs).ParseFS(fsys, templatePatterns...)
	return t, err
}

// templates returns the parsed set, re-reading the filesystem in dev mode.
func (r *TemplateRenderer) templates() (*template.Template, error) {
	if !r.devMode {
		return r.t, nil
	}
	return parseTemplates(r.fsys)
}

// Template names shared between the renderer and page handlers.
const (
	LayoutTemplate  = "layout"
	ContentTemplate = "content"
	PartialTemplate = "partial" // <title> plus content, for HTMX navigation
	ErrorTemplate   = "error-layout"
)

// RenderOptions selects a template and the response status.
type RenderOptions struct {
	Template string
	Data     any
	Status   int // 0 means 200
}

// RenderFull renders the full page (layout + page content).
func (r *TemplateRenderer) RenderFull(w http.ResponseWriter, _ *http.Request, data any) error {
	return r.Render(w, RenderOptions{Template: LayoutTemplate, Data: data})
}

// RenderPartial renders only the main content area, preceded by a <title> so
// htmx updates document.title on swaps.
func (r *TemplateRenderer) RenderPartial(w http.ResponseWriter, _ *http.Request, data any) error {
	return r.Render(w, RenderOptions{Template: PartialTemplate, Data: data})
}

// RenderError renders an error page using the error template.
func (r *TemplateRenderer) RenderError(w http.ResponseWriter, _ *http.Request, data any) error {
	return r.Render(w, RenderOptions{Template: ErrorTemplate, Data: data, Status: http.StatusInternalServerError})
}

// Render executes opts.Template into a buffer and writes it with opts.Status.
// Nothing is written when execution fails, so callers can still send an error page.
func (r *TemplateRenderer) Render(w http.ResponseWriter, opts RenderOptions) error {
	templateName := opts.Template
	data := opts.Data
	t, err := r.templates()
	if err != nil {
		r.logTemplateError(templateName, err)
		return err
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, templateName, data); err != nil {
		r.logTemplateError(templateName, err)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if opts.Status != 0 && opts.Status != http.StatusOK {
		w.WriteHeader(opts.Status)
	}
	if _, err := buf.WriteTo(w); err != nil {
		if r.logger != nil {
			r.logger.Error("failed to write rendered template",
				slog.String("template", templateName),
				slog.Any("error", err),
			)
		}
		return err
	}

	return nil
}

// logTemplateError logs a template execution error with context.
func (r *TemplateRenderer) logTemplateError(templateName string, err error) {
	if r.logger == nil || err == nil {
		return
	}
	r.logger.Error("template execution failed",
		slog.String("template", templateName),
		slog.Any("error", err),
	)
}
