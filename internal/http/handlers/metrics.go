package handlers

import "net/http"

// Metrics serves GET /v1/metrics with a snapshot of generation counters.
func (a *API) Metrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}
	writeJSON(w, http.StatusOK, a.metrics.Snapshot())
}
