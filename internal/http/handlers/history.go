package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/trafficable/tia-backend/internal/archive"
)

type historyResponse struct {
	Items    []archive.Record `json:"items"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// History serves GET /v1/history: a paged listing of past reports with
// optional council and date-range filters.
func (a *API) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}

	query := r.URL.Query()
	filter := archive.Filter{
		Page:     parsePositiveInt(query.Get("page"), 1),
		PageSize: parsePositiveInt(query.Get("page_size"), 20),
		Council:  strings.TrimSpace(query.Get("council")),
	}

	from, err := parseOptionalDateTime(query.Get("from"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_payload", "from must be RFC 3339")
		return
	}
	filter.From = from

	to, err := parseOptionalDateTime(query.Get("to"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_payload", "to must be RFC 3339")
		return
	}
	filter.To = to

	records, total, err := a.archive.List(r.Context(), filter)
	if err != nil {
		a.logger.Printf("handlers: history listing failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "history_failed", "could not list report history")
		return
	}

	writeJSON(w, http.StatusOK, historyResponse{
		Items:    records,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
}

func parsePositiveInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func parseOptionalDateTime(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, errInvalidPayload
	}
	return &parsed, nil
}
