package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/trafficable/tia-backend/internal/service"
)

// Jobs dispatches /v1/jobs/{id}, /v1/jobs/{id}/stream and
// /v1/jobs/{id}/document based on the trailing path segment.
func (a *API) Jobs(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/jobs/"), "/")
	if rest == "" {
		writeError(w, r, http.StatusNotFound, "not_found", "job id is required")
		return
	}

	segments := strings.Split(rest, "/")
	jobID := segments[0]

	switch {
	case len(segments) == 1:
		a.jobStatus(w, r, jobID)
	case len(segments) == 2 && segments[1] == "stream":
		a.jobStream(w, r, jobID)
	case len(segments) == 2 && segments[1] == "document":
		a.jobDocument(w, r, jobID)
	default:
		writeError(w, r, http.StatusNotFound, "not_found", "unknown job resource")
	}
}

func (a *API) jobStatus(w http.ResponseWriter, r *http.Request, jobID string) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}

	view, err := a.jobs.Status(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			writeError(w, r, http.StatusNotFound, "job_not_found", "no job with that id")
			return
		}
		a.logger.Printf("handlers: job status failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "status_failed", "could not load the job")
		return
	}

	writeJSON(w, http.StatusOK, view)
}
