package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/trafficable/tia-backend/internal/domain"
)

// jobStream serves GET /v1/jobs/{id}/stream as Server-Sent Events. Each
// event's data is either a single-entry section object, a heartbeat, or a
// terminal status message.
func (a *API) jobStream(w http.ResponseWriter, r *http.Request, jobID string) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "streaming_unsupported", "response writer does not support streaming")
		return
	}

	// Subscribe before reading the status so a terminal update published
	// between the read and the wait loop cannot be missed.
	updates, cancel := a.cache.Subscribe(r.Context(), domain.UpdatesChannel(jobID))
	defer cancel()

	status, found := a.cache.GetJobStatus(r.Context(), jobID)
	if !found {
		writeError(w, r, http.StatusNotFound, "job_not_found", "no job with that id")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(payload string) {
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}

	if a.streamTerminal(r, send, jobID, status) {
		return
	}

	heartbeat := time.NewTicker(time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			send(fmt.Sprintf(`{"heartbeat":%d}`, time.Now().Unix()))
			// Pub/sub delivery is best effort; the bookkeeping keys are
			// the source of truth, so poll them on every tick.
			if current, ok := a.cache.GetJobStatus(r.Context(), jobID); ok {
				if a.streamTerminal(r, send, jobID, current) {
					return
				}
			}
		case payload, ok := <-updates:
			if !ok {
				return
			}
			send(payload)
			if isTerminal(payload) {
				return
			}
		}
	}
}

// streamTerminal replays the persisted outcome for a terminal status and
// reports whether the stream should close. A replayed section carries the
// same text a live update did, so clients keying on section ids are
// unaffected by duplicates.
func (a *API) streamTerminal(r *http.Request, send func(string), jobID string, status domain.JobStatus) bool {
	switch status {
	case domain.JobStatusFinished:
		if result, ok := a.cache.GetJobResult(r.Context(), jobID); ok {
			for _, sectionID := range domain.SectionIDs {
				text, ok := result[sectionID]
				if !ok {
					continue
				}
				if encoded, err := json.Marshal(map[string]string{sectionID: text}); err == nil {
					send(string(encoded))
				}
			}
		}
		send(`{"status":"complete"}`)
		return true
	case domain.JobStatusFailed:
		message, _ := a.cache.GetJobError(r.Context(), jobID)
		if encoded, err := json.Marshal(map[string]string{"status": "failed", "error": message}); err == nil {
			send(string(encoded))
		}
		return true
	}
	return false
}

// isTerminal reports whether a published payload closes the stream.
func isTerminal(payload string) bool {
	var message struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal([]byte(payload), &message); err != nil {
		return false
	}
	return message.Status == "complete" || message.Status == "failed"
}
