// Package worker consumes report jobs from the queue and runs them through
// the generation orchestrator.
package worker

import (
	"context"
	"log"
	"time"

	"github.com/trafficable/tia-backend/internal/archive"
	"github.com/trafficable/tia-backend/internal/domain"
	"github.com/trafficable/tia-backend/internal/generator"
	"github.com/trafficable/tia-backend/internal/queue"
)

// Processor drives the consume loop. It reconnects with a short delay when
// the consumer errors out, and stops when the context ends.
type Processor struct {
	consumer     queue.Consumer
	orchestrator *generator.Orchestrator
	archive      archive.Archive
	logger       *log.Logger
}

func NewProcessor(
	consumer queue.Consumer,
	orchestrator *generator.Orchestrator,
	reportArchive archive.Archive,
	logger *log.Logger,
) *Processor {
	return &Processor{
		consumer:     consumer,
		orchestrator: orchestrator,
		archive:      reportArchive,
		logger:       logger,
	}
}

func (p *Processor) Start(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		err := p.consumer.Consume(ctx, p.processMessage)
		if err == nil || ctx.Err() != nil {
			return
		}
		p.logger.Printf("worker consume loop error: %v", err)

		timer := time.NewTimer(2 * time.Second)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (p *Processor) processMessage(ctx context.Context, message domain.QueueMessage) error {
	result, err := p.orchestrator.Run(ctx, message.JobID, message.Document, message.Mode)
	if err != nil {
		return err
	}

	// Archiving is best-effort; the report itself already lives in cache.
	record := archive.Record{
		JobID:           message.JobID,
		ProjectTitle:    message.Document.ProjectDetails.ProjectTitle,
		SiteAddress:     message.Document.ProjectDetails.SiteAddress,
		DevelopmentType: message.Document.ProjectDetails.DevelopmentType,
		Council:         message.Document.ProjectDetails.Council,
		Status:          string(domain.JobStatusFinished),
		SectionCount:    len(result),
		CreatedAt:       time.Now().UTC(),
	}
	if err := p.archive.Save(ctx, record); err != nil {
		p.logger.Printf("worker: archiving job %s failed: %v", message.JobID, err)
	}

	p.logger.Printf("job processed mode=%s job_id=%s sections=%d", message.Mode, message.JobID, len(result))
	return nil
}
