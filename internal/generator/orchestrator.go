package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/trafficable/tia-backend/internal/cache"
	"github.com/trafficable/tia-backend/internal/domain"
	"github.com/trafficable/tia-backend/internal/metrics"
	"github.com/trafficable/tia-backend/internal/report"
)

// Orchestrator drives one report job end to end: status bookkeeping,
// section scheduling, result persistence and progressive publication.
type Orchestrator struct {
	cache     *cache.ReportCache
	scheduler *Scheduler
	metrics   *metrics.Collector
	logger    *log.Logger
}

func NewOrchestrator(reportCache *cache.ReportCache, scheduler *Scheduler, collector *metrics.Collector, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		cache:     reportCache,
		scheduler: scheduler,
		metrics:   collector,
		logger:    logger,
	}
}

// Run generates a full report for one job. In progressive mode each
// completed section is published on the job's updates channel as a
// single-entry JSON object, followed by a terminal status message.
func (o *Orchestrator) Run(ctx context.Context, jobID string, doc domain.InputDocument, mode domain.JobMode) (map[string]string, error) {
	started := time.Now()
	channel := domain.UpdatesChannel(jobID)

	o.cache.SetJobStatus(ctx, jobID, domain.JobStatusProcessing)
	o.cache.SetJobInput(ctx, jobID, doc)

	tasks := report.ExtractSections(doc)

	var result map[string]string
	if mode == domain.JobModeProgressive {
		result = o.scheduler.RunProgressive(ctx, tasks, func(sectionResult domain.SectionResult) {
			o.publishSection(ctx, channel, sectionResult)
		})
	} else {
		result = o.scheduler.RunBulk(ctx, tasks)
	}

	if err := ctx.Err(); err != nil {
		o.failJob(jobID, channel, mode, fmt.Sprintf("job interrupted: %v", err))
		return nil, err
	}

	// A document with no populated section inputs still finishes, with an
	// empty mapping.
	o.cache.SetJobResult(ctx, jobID, result)
	o.cache.SetJobStatus(ctx, jobID, domain.JobStatusFinished)

	// Persist the report under the exact document hash and, when the
	// document identifies a project, the fuzzy identity hash as well so a
	// resubmission with cosmetic edits still finds it. Empty reports are
	// not worth reusing.
	if len(result) > 0 {
		o.cache.SetReportByHash(ctx, cache.DocumentKey(doc), result)
		if cache.HasIdentity(doc) {
			o.cache.SetReportByHash(ctx, cache.FuzzyKey(doc), result)
		}
	}

	if mode == domain.JobModeProgressive {
		o.cache.Publish(ctx, channel, `{"status":"complete"}`)
	}

	o.metrics.RecordReportGenerated(time.Since(started), len(result))
	o.logger.Printf("orchestrator: job %s finished with %d sections in %s", jobID, len(result), time.Since(started).Round(time.Millisecond))
	return result, nil
}

func (o *Orchestrator) publishSection(ctx context.Context, channel string, sectionResult domain.SectionResult) {
	payload, err := json.Marshal(map[string]string{sectionResult.ID: sectionResult.Text})
	if err != nil {
		o.logger.Printf("orchestrator: encoding update for %s failed: %v", sectionResult.ID, err)
		return
	}
	o.cache.Publish(ctx, channel, string(payload))
	o.metrics.RecordProgressiveUpdate()
}

// failJob records the failed status and notifies stream listeners. It uses
// a fresh context so bookkeeping survives job-context cancellation.
func (o *Orchestrator) failJob(jobID, channel string, mode domain.JobMode, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	o.cache.SetJobError(ctx, jobID, message)
	o.cache.SetJobStatus(ctx, jobID, domain.JobStatusFailed)
	if mode == domain.JobModeProgressive {
		payload, err := json.Marshal(map[string]string{"status": "failed", "error": message})
		if err == nil {
			o.cache.Publish(ctx, channel, string(payload))
		}
	}
	o.logger.Printf("orchestrator: job %s failed: %s", jobID, message)
}
