package handlers

import (
	"net/http"
	"time"

	"github.com/trafficable/tia-backend/internal/document"
	"github.com/trafficable/tia-backend/internal/domain"
)

// jobDocument serves GET /v1/jobs/{id}/document: the finished report
// rendered as a downloadable Markdown file.
func (a *API) jobDocument(w http.ResponseWriter, r *http.Request, jobID string) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}

	status, found := a.cache.GetJobStatus(r.Context(), jobID)
	if !found {
		writeError(w, r, http.StatusNotFound, "job_not_found", "no job with that id")
		return
	}
	if status != domain.JobStatusFinished {
		writeError(w, r, http.StatusConflict, "job_not_finished", "the report is not ready yet")
		return
	}

	result, ok := a.cache.GetJobResult(r.Context(), jobID)
	if !ok {
		writeError(w, r, http.StatusNotFound, "result_missing", "the report result has expired")
		return
	}
	doc, _ := a.cache.GetJobInput(r.Context(), jobID)

	rendered, err := a.renderer.Render(result, doc)
	if err != nil {
		a.logger.Printf("handlers: rendering job %s failed: %v", jobID, err)
		writeError(w, r, http.StatusInternalServerError, "render_failed", "could not render the report document")
		return
	}

	filename := document.SuggestFilename(doc.ProjectDetails.ProjectTitle, time.Now())
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rendered)
}
