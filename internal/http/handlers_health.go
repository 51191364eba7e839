package httpx

import (
	"net/http"
)

// healthStatus is the /healthz body. Session echoes how the caller's cookie
// resolved, which tells a session store outage ("loading") apart from a
// missing cookie without signing in.
type healthStatus struct {
	Status  string `json:"status"`
	Session string `json:"session"`
}

// healthHandler answers liveness probes. It never touches the meal store.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		return
	}
	WriteJSON(w, http.StatusOK, healthStatus{
		Status:  "ok",
		Session: SessionContextFrom(r.Context()).State.String(),
	})
}
