package handlers

import "net/http"

func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}

	cacheBackend := "redis"
	if a.cache.UsingMemory() {
		cacheBackend = "memory"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"cache":  cacheBackend,
	})
}
