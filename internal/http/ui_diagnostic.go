package httpx

import "net/http"

// Diagnostic runs one store connectivity probe per request and renders the result.
// The page is public and never cached.
func (h *UIHandlers) Diagnostic(w http.ResponseWriter, r *http.Request) {
	if h.Diagnostics == nil {
		h.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	res := h.Diagnostics.Run(r.Context())
	data := NewTemplateData(r, PageMeta{Title: "Supabase Connection Test", CurrentPage: PageDiagnostic}).
		WithProbe(res).
		Build()
	h.renderPage(w, r, pageRender{Data: data})
}
