package handlers

import (
	"errors"
	"net/http"

	"github.com/trafficable/tia-backend/internal/domain"
	"github.com/trafficable/tia-backend/internal/service"
)

type submitResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// Reports handles POST /v1/reports: validate, maybe short-circuit on a
// cached report, otherwise enqueue a bulk job.
func (a *API) Reports(w http.ResponseWriter, r *http.Request) {
	a.submit(w, r, domain.JobModeBulk)
}

// ReportsStream handles POST /v1/reports/stream, enqueuing a progressive
// job whose sections are published as they complete.
func (a *API) ReportsStream(w http.ResponseWriter, r *http.Request) {
	a.submit(w, r, domain.JobModeProgressive)
}

func (a *API) submit(w http.ResponseWriter, r *http.Request, mode domain.JobMode) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	var doc domain.InputDocument
	if err := decodeJSON(r, &doc); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_payload", "request body must be a valid report document")
		return
	}

	jobID, status, err := a.jobs.Submit(r.Context(), doc, mode)
	if err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			writeError(w, r, http.StatusBadRequest, "validation_failed", "document is missing required fields", validationErr.Details...)
			return
		}
		a.logger.Printf("handlers: submit failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "submit_failed", "could not accept the report job")
		return
	}

	writeJSON(w, http.StatusAccepted, submitResponse{JobID: jobID, Status: status})
}
