package httpx

import (
	"net/http"
	"strings"
)

// Client events handled by static/js/app.js.
const (
	// EventShowAlert raises a blocking window.alert.
	EventShowAlert = "showAlert"
	// EventShowToast shows a transient notification.
	EventShowToast = "showToast"
)

// HTMXResponse provides a fluent API for building HTMX responses.
type HTMXResponse struct {
	w http.ResponseWriter
}

// HTMX creates a new HTMXResponse for fluent response building.
func HTMX(w http.ResponseWriter) *HTMXResponse {
	return &HTMXResponse{w: w}
}

// Redirect instructs htmx to redirect the browser to the given URL.
// It sets the HX-Redirect header and returns a 204 No Content status.
// The handler should return immediately after calling this method to avoid
// accidental writes that would be ignored.
func (h *HTMXResponse) Redirect(url string) {
	SetHXRedirect(h.w, url)
	h.w.WriteHeader(http.StatusNoContent)
}

// Trigger triggers a client-side event after swap with optional payload.
// This method is chainable.
func (h *HTMXResponse) Trigger(event string, payload any) *HTMXResponse {
	SetHXTrigger(h.w, event, payload)
	return h
}

// Alert raises a blocking alert with message. Empty messages are ignored.
func (h *HTMXResponse) Alert(message string) *HTMXResponse {
	if strings.TrimSpace(message) == "" {
		return h
	}
	return h.Trigger(EventShowAlert, map[string]any{"message": message})
}

// Toast shows a non-blocking notification. Empty messages are ignored.
func (h *HTMXResponse) Toast(message, toastType string) *HTMXResponse {
	if strings.TrimSpace(message) == "" {
		return h
	}
	return h.Trigger(EventShowToast, map[string]any{
		"message": message,
		"type":    strings.TrimSpace(toastType),
	})
}

// Reswap overrides the swap strategy for this response.
// This method is chainable.
func (h *HTMXResponse) Reswap(mode string) *HTMXResponse {
	SetHXReswap(h.w, mode)
	return h
}

// PushURL pushes the given URL into the browser history for the new content.
// This method is chainable.
func (h *HTMXResponse) PushURL(url string) *HTMXResponse {
	SetHXPushURL(h.w, url)
	return h
}
