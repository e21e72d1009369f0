package generator

import (
	"context"
	"log"
	"time"

	"github.com/trafficable/tia-backend/internal/ai"
	"github.com/trafficable/tia-backend/internal/cache"
	"github.com/trafficable/tia-backend/internal/domain"
	"github.com/trafficable/tia-backend/internal/metrics"
	"github.com/trafficable/tia-backend/internal/prompts"
)

// ErrorMarker prefixes the text of a section whose generation failed. The
// marker keeps a single bad section from failing the whole report while
// staying visible in the output.
const ErrorMarker = "Error generating content: "

// SectionGenerator turns one section task into prose: cache lookup first,
// then a model call, then write-back.
type SectionGenerator struct {
	cache    *cache.ReportCache
	client   ai.Generator
	selector *ai.Selector
	metrics  *metrics.Collector
	logger   *log.Logger

	temperature      float64
	defaultMaxTokens int
}

// SectionGeneratorConfig wires a SectionGenerator.
type SectionGeneratorConfig struct {
	Cache    *cache.ReportCache
	Client   ai.Generator
	Selector *ai.Selector
	Metrics  *metrics.Collector
	Logger   *log.Logger

	Temperature      float64
	DefaultMaxTokens int
}

func NewSectionGenerator(cfg SectionGeneratorConfig) *SectionGenerator {
	if cfg.DefaultMaxTokens <= 0 {
		cfg.DefaultMaxTokens = 1000
	}
	return &SectionGenerator{
		cache:            cfg.Cache,
		client:           cfg.Client,
		selector:         cfg.Selector,
		metrics:          cfg.Metrics,
		logger:           cfg.Logger,
		temperature:      cfg.Temperature,
		defaultMaxTokens: cfg.DefaultMaxTokens,
	}
}

// Generate produces the text for one section. It never returns an error: a
// failed model call yields a result carrying the error marker instead, so
// sibling sections are unaffected.
func (g *SectionGenerator) Generate(ctx context.Context, task domain.SectionTask) domain.SectionResult {
	if task.Input == "" {
		return domain.SectionResult{ID: task.ID}
	}

	key := cache.SectionKey(task.ID, task.Input, task.Context)
	if text, ok := g.cache.GetSection(ctx, task.ID, key); ok {
		g.metrics.RecordCacheHit(task.ID)
		return domain.SectionResult{ID: task.ID, Text: text}
	}
	g.metrics.RecordCacheMiss(task.ID)

	model := g.selector.Select(task.ID, len(task.Input))
	req := ai.GenerateRequest{
		Model: model,
		Messages: []ai.Message{
			{Role: "system", Content: prompts.SystemPrompt(task.ID)},
			{Role: "user", Content: prompts.UserPrompt(task.ID, task.Input, task.Context)},
		},
		MaxTokens:   domain.SectionTokenBudget(task.ID, g.defaultMaxTokens),
		Temperature: g.temperature,
	}

	started := time.Now()
	result, err := g.client.Generate(ctx, req)
	if err != nil {
		g.metrics.RecordSectionFailure(task.ID)
		g.logger.Printf("generator: section %s failed on model %s: %v", task.ID, model, err)
		return domain.SectionResult{ID: task.ID, Text: ErrorMarker + err.Error()}
	}

	g.metrics.RecordSectionGenerated(task.ID, time.Since(started))
	g.cache.SetSection(ctx, task.ID, key, result.Text)
	return domain.SectionResult{ID: task.ID, Text: result.Text}
}
