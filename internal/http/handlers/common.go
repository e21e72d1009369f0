// Package handlers implements the HTTP surface of the report API.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/trafficable/tia-backend/internal/archive"
	"github.com/trafficable/tia-backend/internal/cache"
	"github.com/trafficable/tia-backend/internal/document"
	"github.com/trafficable/tia-backend/internal/http/middleware"
	"github.com/trafficable/tia-backend/internal/metrics"
	"github.com/trafficable/tia-backend/internal/service"
)

var errInvalidPayload = errors.New("invalid payload")

// API bundles the dependencies the handlers need.
type API struct {
	jobs     *service.JobsService
	cache    *cache.ReportCache
	renderer *document.Renderer
	archive  archive.Archive
	metrics  *metrics.Collector
	logger   *log.Logger
}

type APIConfig struct {
	Jobs     *service.JobsService
	Cache    *cache.ReportCache
	Renderer *document.Renderer
	Archive  archive.Archive
	Metrics  *metrics.Collector
	Logger   *log.Logger
}

func NewAPI(cfg APIConfig) *API {
	return &API{
		jobs:     cfg.Jobs,
		cache:    cfg.Cache,
		renderer: cfg.Renderer,
		archive:  cfg.Archive,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}
}

type errorPayload struct {
	Error struct {
		Code    string   `json:"code"`
		Message string   `json:"message"`
		Details []string `json:"details,omitempty"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

func writeJSON(w http.ResponseWriter, statusCode int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string, details ...string) {
	payload := errorPayload{RequestID: middleware.GetRequestID(r.Context())}
	payload.Error.Code = code
	payload.Error.Message = message
	payload.Error.Details = details
	writeJSON(w, statusCode, payload)
}

// decodeJSON parses a request body. Unknown fields are ignored so richer or
// newer clients can still submit.
func decodeJSON(r *http.Request, value any) error {
	if err := json.NewDecoder(r.Body).Decode(value); err != nil {
		return errInvalidPayload
	}
	return nil
}
