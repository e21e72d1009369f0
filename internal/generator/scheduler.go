package generator

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/trafficable/tia-backend/internal/domain"
)

// SectionRunner produces the text for one section task.
type SectionRunner interface {
	Generate(ctx context.Context, task domain.SectionTask) domain.SectionResult
}

// Scheduler runs a job's sections in priority tiers: all sections in a tier
// run concurrently, tiers run strictly in order. Concurrency within a tier
// is still bounded globally by the generation client.
type Scheduler struct {
	runner SectionRunner
	pause  time.Duration
	logger *log.Logger
}

// NewScheduler builds a tier scheduler. pause is the optional delay after
// each progressive tier, giving stream consumers a steadier cadence.
func NewScheduler(runner SectionRunner, pause time.Duration, logger *log.Logger) *Scheduler {
	return &Scheduler{runner: runner, pause: pause, logger: logger}
}

// tiers groups the tasks with input by ascending priority.
func tiers(tasks []domain.SectionTask) [][]domain.SectionTask {
	grouped := make(map[int][]domain.SectionTask)
	for _, task := range tasks {
		if task.Input == "" {
			continue
		}
		priority := domain.SectionPriority(task.ID)
		grouped[priority] = append(grouped[priority], task)
	}

	priorities := make([]int, 0, len(grouped))
	for priority := range grouped {
		priorities = append(priorities, priority)
	}
	sort.Ints(priorities)

	ordered := make([][]domain.SectionTask, 0, len(priorities))
	for _, priority := range priorities {
		ordered = append(ordered, grouped[priority])
	}
	return ordered
}

func (s *Scheduler) runTier(ctx context.Context, tier []domain.SectionTask) []domain.SectionResult {
	results := make([]domain.SectionResult, len(tier))
	var wg sync.WaitGroup
	for i, task := range tier {
		wg.Add(1)
		go func(i int, task domain.SectionTask) {
			defer wg.Done()
			results[i] = s.runner.Generate(ctx, task)
		}(i, task)
	}
	wg.Wait()
	return results
}

// RunBulk executes every tier and returns the aggregated section mapping.
// Sections that produced no text are omitted.
func (s *Scheduler) RunBulk(ctx context.Context, tasks []domain.SectionTask) map[string]string {
	return s.run(ctx, tasks, nil)
}

// RunProgressive executes every tier, invoking publish for each completed
// section so callers can stream results as they land.
func (s *Scheduler) RunProgressive(ctx context.Context, tasks []domain.SectionTask, publish func(domain.SectionResult)) map[string]string {
	return s.run(ctx, tasks, publish)
}

func (s *Scheduler) run(ctx context.Context, tasks []domain.SectionTask, publish func(domain.SectionResult)) map[string]string {
	output := make(map[string]string)
	tierList := tiers(tasks)

	for i, tier := range tierList {
		if ctx.Err() != nil {
			s.logger.Printf("scheduler: aborting before tier %d: %v", i+1, ctx.Err())
			return output
		}

		for _, result := range s.runTier(ctx, tier) {
			if strings.TrimSpace(result.Text) == "" {
				continue
			}
			output[result.ID] = result.Text
			if publish != nil {
				publish(result)
			}
		}

		if publish != nil && s.pause > 0 && i < len(tierList)-1 {
			select {
			case <-time.After(s.pause):
			case <-ctx.Done():
				return output
			}
		}
	}
	return output
}
