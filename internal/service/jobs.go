// Package service holds the submission-side job logic shared by the HTTP
// handlers.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trafficable/tia-backend/internal/cache"
	"github.com/trafficable/tia-backend/internal/domain"
	"github.com/trafficable/tia-backend/internal/queue"
	"github.com/trafficable/tia-backend/internal/report"
)

// ErrJobNotFound is returned when a job id has no recorded status, either
// because it never existed or because its bookkeeping expired.
var ErrJobNotFound = errors.New("job not found")

// ValidationError carries the individual problems found in a submitted
// document.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "invalid document: " + strings.Join(e.Details, "; ")
}

// JobView is the status payload returned to clients polling a job.
type JobView struct {
	JobID  string            `json:"job_id"`
	Status domain.JobStatus  `json:"status"`
	Result map[string]string `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// JobsService validates submissions, short-circuits on cached reports and
// dispatches the rest to the worker queue.
type JobsService struct {
	cache    *cache.ReportCache
	producer queue.Producer
	logger   *log.Logger
}

func NewJobsService(reportCache *cache.ReportCache, producer queue.Producer, logger *log.Logger) *JobsService {
	return &JobsService{cache: reportCache, producer: producer, logger: logger}
}

// Submit validates the document and creates a job. When a matching report
// already exists in cache the job is finished on the spot and the returned
// status is "cached"; otherwise it is "queued".
func (s *JobsService) Submit(ctx context.Context, doc domain.InputDocument, mode domain.JobMode) (string, string, error) {
	if problems := report.Validate(doc); len(problems) > 0 {
		return "", "", &ValidationError{Details: problems}
	}

	jobID := uuid.NewString()

	if result, ok := s.cache.GetSimilarReport(ctx, doc); ok {
		s.cache.SetJobInput(ctx, jobID, doc)
		s.cache.SetJobResult(ctx, jobID, result)
		s.cache.SetJobStatus(ctx, jobID, domain.JobStatusFinished)
		s.logger.Printf("jobs: job %s served from report cache", jobID)
		return jobID, "cached", nil
	}

	s.cache.SetJobStatus(ctx, jobID, domain.JobStatusQueued)
	s.cache.SetJobInput(ctx, jobID, doc)

	message := domain.QueueMessage{
		JobID:       jobID,
		Mode:        mode,
		Document:    doc,
		RequestedAt: time.Now().UTC(),
	}
	if err := s.producer.Enqueue(ctx, message); err != nil {
		s.cache.SetJobError(ctx, jobID, "enqueue failed: "+err.Error())
		s.cache.SetJobStatus(ctx, jobID, domain.JobStatusFailed)
		return "", "", fmt.Errorf("enqueue job %s: %w", jobID, err)
	}

	return jobID, "queued", nil
}

// Status assembles the client-facing view of a job. The result mapping is
// attached only once the job is finished.
func (s *JobsService) Status(ctx context.Context, jobID string) (JobView, error) {
	status, ok := s.cache.GetJobStatus(ctx, jobID)
	if !ok {
		return JobView{}, ErrJobNotFound
	}

	view := JobView{JobID: jobID, Status: status}
	switch status {
	case domain.JobStatusFinished:
		if result, ok := s.cache.GetJobResult(ctx, jobID); ok {
			view.Result = result
		}
	case domain.JobStatusFailed:
		if message, ok := s.cache.GetJobError(ctx, jobID); ok {
			view.Error = message
		}
	}
	return view, nil
}
