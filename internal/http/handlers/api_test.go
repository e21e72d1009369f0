package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/trafficable/tia-backend/internal/archive"
	"github.com/trafficable/tia-backend/internal/cache"
	"github.com/trafficable/tia-backend/internal/document"
	"github.com/trafficable/tia-backend/internal/domain"
	"github.com/trafficable/tia-backend/internal/metrics"
	"github.com/trafficable/tia-backend/internal/service"
)

type stubProducer struct {
	mu       sync.Mutex
	messages []domain.QueueMessage
}

func (p *stubProducer) Enqueue(_ context.Context, message domain.QueueMessage) error {
	p.mu.Lock()
	p.messages = append(p.messages, message)
	p.mu.Unlock()
	return nil
}

func newTestAPI(t *testing.T) (*API, *cache.ReportCache, *stubProducer) {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	reportCache := cache.New(context.Background(), cache.Config{
		SectionTTL: time.Hour,
		ReportTTL:  time.Hour,
		JobTTL:     time.Hour,
		Logger:     logger,
	})
	producer := &stubProducer{}
	api := NewAPI(APIConfig{
		Jobs:     service.NewJobsService(reportCache, producer, logger),
		Cache:    reportCache,
		Renderer: document.NewRenderer(),
		Archive:  archive.NewMemoryArchive(),
		Metrics:  metrics.NewCollector(),
		Logger:   logger,
	})
	return api, reportCache, producer
}

func validBody(t *testing.T) *bytes.Reader {
	t.Helper()
	var doc domain.InputDocument
	doc.ProjectDetails.ProjectTitle = "Depot Redevelopment"
	doc.ProjectDetails.SiteAddress = "1 Smith St"
	doc.Introduction.Purpose = "assess traffic impacts"
	encoded, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	return bytes.NewReader(encoded)
}

func TestReportsRejectsInvalidDocument(t *testing.T) {
	api, _, producer := newTestAPI(t)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/v1/reports", strings.NewReader(`{}`))
	api.Reports(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
	var payload errorPayload
	if err := json.NewDecoder(recorder.Body).Decode(&payload); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if payload.Error.Code != "validation_failed" || len(payload.Error.Details) != 3 {
		t.Fatalf("unexpected error payload %+v", payload)
	}
	if len(producer.messages) != 0 {
		t.Fatalf("invalid document must not be enqueued")
	}
}

func TestReportsAcceptsValidDocument(t *testing.T) {
	api, _, producer := newTestAPI(t)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/v1/reports", validBody(t))
	api.Reports(recorder, request)

	if recorder.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var response submitResponse
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if response.JobID == "" || response.Status != "queued" {
		t.Fatalf("unexpected response %+v", response)
	}
	if len(producer.messages) != 1 || producer.messages[0].Mode != domain.JobModeBulk {
		t.Fatalf("expected one bulk message, got %+v", producer.messages)
	}
}

func TestReportsIgnoresUnknownFields(t *testing.T) {
	api, _, producer := newTestAPI(t)

	body := `{
		"project_details":{"project_title":"Depot Redevelopment","site_address":"1 Smith St"},
		"introduction":{"purpose":"assess traffic impacts"},
		"client_version":"2.3.0"
	}`
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/v1/reports", strings.NewReader(body))
	api.Reports(recorder, request)

	if recorder.Code != http.StatusAccepted {
		t.Fatalf("unknown fields must be ignored, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if len(producer.messages) != 1 {
		t.Fatalf("expected the document to be enqueued")
	}
}

func TestReportsStreamEnqueuesProgressiveMode(t *testing.T) {
	api, _, producer := newTestAPI(t)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/v1/reports/stream", validBody(t))
	api.ReportsStream(recorder, request)

	if recorder.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", recorder.Code)
	}
	if len(producer.messages) != 1 || producer.messages[0].Mode != domain.JobModeProgressive {
		t.Fatalf("expected one progressive message, got %+v", producer.messages)
	}
}

func TestJobStatusNotFound(t *testing.T) {
	api, _, _ := newTestAPI(t)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/v1/jobs/missing", nil)
	api.Jobs(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}
}

func TestJobStatusReturnsResultWhenFinished(t *testing.T) {
	api, reportCache, _ := newTestAPI(t)
	ctx := context.Background()

	reportCache.SetJobStatus(ctx, "job-1", domain.JobStatusFinished)
	reportCache.SetJobResult(ctx, "job-1", map[string]string{domain.SectionIntroductionPurpose: "text"})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/v1/jobs/job-1", nil)
	api.Jobs(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var view service.JobView
	if err := json.NewDecoder(recorder.Body).Decode(&view); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if view.Status != domain.JobStatusFinished || view.Result[domain.SectionIntroductionPurpose] != "text" {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestJobStreamReplaysFinishedJob(t *testing.T) {
	api, reportCache, _ := newTestAPI(t)
	ctx := context.Background()

	reportCache.SetJobStatus(ctx, "job-2", domain.JobStatusFinished)
	reportCache.SetJobResult(ctx, "job-2", map[string]string{
		domain.SectionIntroductionPurpose: "intro text",
		domain.SectionConclusionSummary:   "conclusion text",
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/v1/jobs/job-2/stream", nil)
	api.Jobs(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if got := recorder.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("expected event stream content type, got %q", got)
	}

	body := recorder.Body.String()
	introIndex := strings.Index(body, "intro text")
	conclusionIndex := strings.Index(body, "conclusion text")
	completeIndex := strings.Index(body, `{"status":"complete"}`)
	if introIndex < 0 || conclusionIndex < 0 || completeIndex < 0 {
		t.Fatalf("stream replay incomplete:\n%s", body)
	}
	if !(introIndex < conclusionIndex && conclusionIndex < completeIndex) {
		t.Fatalf("replay must follow document order and end with complete:\n%s", body)
	}
}

// streamRecorder is a flushable response writer safe to inspect while the
// handler is still running.
type streamRecorder struct {
	mu     sync.Mutex
	header http.Header
	code   int
	body   bytes.Buffer
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{header: make(http.Header)}
}

func (s *streamRecorder) Header() http.Header { return s.header }

func (s *streamRecorder) WriteHeader(code int) {
	s.mu.Lock()
	s.code = code
	s.mu.Unlock()
}

func (s *streamRecorder) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.body.Write(p)
}

func (s *streamRecorder) Flush() {}

func (s *streamRecorder) snapshot() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.body.String()
}

func TestJobStreamClosesWhenTerminalUpdateIsMissed(t *testing.T) {
	api, reportCache, _ := newTestAPI(t)
	ctx := context.Background()

	reportCache.SetJobStatus(ctx, "job-7", domain.JobStatusProcessing)

	requestCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	request := httptest.NewRequest(http.MethodGet, "/v1/jobs/job-7/stream", nil).WithContext(requestCtx)
	recorder := newStreamRecorder()

	done := make(chan struct{})
	go func() {
		api.Jobs(recorder, request)
		close(done)
	}()

	// Let the stream enter its wait loop, then finish the job without a
	// delivered publish, as if the pub/sub message had been dropped. The
	// status poll must still close the stream.
	time.Sleep(50 * time.Millisecond)
	reportCache.SetJobResult(ctx, "job-7", map[string]string{domain.SectionIntroductionPurpose: "intro text"})
	reportCache.SetJobStatus(ctx, "job-7", domain.JobStatusFinished)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("stream stayed open after the job finished")
	}

	body := recorder.snapshot()
	if !strings.Contains(body, "intro text") || !strings.Contains(body, `{"status":"complete"}`) {
		t.Fatalf("expected replayed result and completion marker, got:\n%s", body)
	}
}

func TestJobStreamReportsFailure(t *testing.T) {
	api, reportCache, _ := newTestAPI(t)
	ctx := context.Background()

	reportCache.SetJobStatus(ctx, "job-3", domain.JobStatusFailed)
	reportCache.SetJobError(ctx, "job-3", "model unavailable")

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/v1/jobs/job-3/stream", nil)
	api.Jobs(recorder, request)

	if !strings.Contains(recorder.Body.String(), `"status":"failed"`) {
		t.Fatalf("expected failed status in stream, got %s", recorder.Body.String())
	}
	if !strings.Contains(recorder.Body.String(), "model unavailable") {
		t.Fatalf("expected error message in stream")
	}
}

func TestJobDocumentRequiresFinishedJob(t *testing.T) {
	api, reportCache, _ := newTestAPI(t)
	ctx := context.Background()

	reportCache.SetJobStatus(ctx, "job-4", domain.JobStatusProcessing)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/v1/jobs/job-4/document", nil)
	api.Jobs(recorder, request)

	if recorder.Code != http.StatusConflict {
		t.Fatalf("expected 409 for unfinished job, got %d", recorder.Code)
	}
}

func TestJobDocumentDownloadsMarkdown(t *testing.T) {
	api, reportCache, _ := newTestAPI(t)
	ctx := context.Background()

	var doc domain.InputDocument
	doc.ProjectDetails.ProjectTitle = "Depot Redevelopment"
	reportCache.SetJobStatus(ctx, "job-5", domain.JobStatusFinished)
	reportCache.SetJobInput(ctx, "job-5", doc)
	reportCache.SetJobResult(ctx, "job-5", map[string]string{
		domain.SectionIntroductionPurpose: "intro text",
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/v1/jobs/job-5/document", nil)
	api.Jobs(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if !strings.Contains(recorder.Header().Get("Content-Disposition"), "attachment") {
		t.Fatalf("expected attachment disposition")
	}
	if !strings.Contains(recorder.Body.String(), "intro text") {
		t.Fatalf("document missing section text")
	}
}

func TestHistoryListsArchivedReports(t *testing.T) {
	api, _, _ := newTestAPI(t)
	_ = api.archive.Save(context.Background(), archive.Record{
		JobID:        "job-6",
		ProjectTitle: "Depot",
		Council:      "Yarra",
		Status:       "finished",
		SectionCount: 10,
		CreatedAt:    time.Now().UTC(),
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/v1/history?council=Yarra", nil)
	api.History(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var response historyResponse
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if response.Total != 1 || response.Items[0].JobID != "job-6" {
		t.Fatalf("unexpected history response %+v", response)
	}
}

func TestHealthReportsCacheBackend(t *testing.T) {
	api, _, _ := newTestAPI(t)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	api.Health(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), `"cache":"memory"`) {
		t.Fatalf("expected memory cache backend, got %s", recorder.Body.String())
	}
}
