package generator

import (
	"context"
	"io"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/trafficable/tia-backend/internal/ai"
	"github.com/trafficable/tia-backend/internal/cache"
	"github.com/trafficable/tia-backend/internal/domain"
	"github.com/trafficable/tia-backend/internal/metrics"
)

type fakeGenerator struct {
	mu    sync.Mutex
	calls []ai.GenerateRequest

	text string
	err  error
}

func (f *fakeGenerator) Generate(_ context.Context, req ai.GenerateRequest) (ai.GenerateResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.err != nil {
		return ai.GenerateResult{}, f.err
	}
	return ai.GenerateResult{Text: f.text, ModelID: req.Model}, nil
}

func (f *fakeGenerator) Available() bool { return true }

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestSectionGenerator(t *testing.T, client ai.Generator) (*SectionGenerator, *cache.ReportCache) {
	t.Helper()
	reportCache := cache.New(context.Background(), cache.Config{
		SectionTTL: time.Hour,
		ReportTTL:  time.Hour,
		JobTTL:     time.Hour,
		Logger:     testLogger(),
	})
	sectionGenerator := NewSectionGenerator(SectionGeneratorConfig{
		Cache:    reportCache,
		Client:   client,
		Selector: ai.NewSelector(ai.SelectorConfig{}),
		Metrics:  metrics.NewCollector(),
		Logger:   testLogger(),
	})
	return sectionGenerator, reportCache
}

func TestSectionGeneratorSkipsEmptyInput(t *testing.T) {
	client := &fakeGenerator{text: "generated"}
	sectionGenerator, _ := newTestSectionGenerator(t, client)

	result := sectionGenerator.Generate(context.Background(), domain.SectionTask{
		ID: domain.SectionIntroductionPurpose,
	})
	if result.Text != "" {
		t.Fatalf("expected empty result for empty input, got %q", result.Text)
	}
	if client.callCount() != 0 {
		t.Fatalf("empty input must not reach the model, got %d calls", client.callCount())
	}
}

func TestSectionGeneratorCachesResults(t *testing.T) {
	client := &fakeGenerator{text: "generated text"}
	sectionGenerator, _ := newTestSectionGenerator(t, client)

	task := domain.SectionTask{
		ID:      domain.SectionIntroductionPurpose,
		Input:   "assess traffic impacts",
		Context: domain.ProjectContext{ProjectTitle: "Depot"},
	}

	first := sectionGenerator.Generate(context.Background(), task)
	second := sectionGenerator.Generate(context.Background(), task)

	if first.Text != "generated text" || second.Text != "generated text" {
		t.Fatalf("unexpected results: %q / %q", first.Text, second.Text)
	}
	if client.callCount() != 1 {
		t.Fatalf("repeat generation must hit the cache, got %d calls", client.callCount())
	}
}

func TestSectionGeneratorMarksFailures(t *testing.T) {
	client := &fakeGenerator{err: &ai.Error{Kind: ai.KindServiceError, Status: 500, Message: "upstream broke"}}
	sectionGenerator, reportCache := newTestSectionGenerator(t, client)

	task := domain.SectionTask{
		ID:    domain.SectionIntroductionPurpose,
		Input: "assess traffic impacts",
	}
	result := sectionGenerator.Generate(context.Background(), task)

	if !strings.HasPrefix(result.Text, ErrorMarker) {
		t.Fatalf("expected error marker, got %q", result.Text)
	}

	// Failures must not be written back.
	key := cache.SectionKey(task.ID, task.Input, task.Context)
	if _, ok := reportCache.GetSection(context.Background(), task.ID, key); ok {
		t.Fatalf("failed generation must not be cached")
	}
}

func TestSectionGeneratorAppliesTokenBudget(t *testing.T) {
	client := &fakeGenerator{text: "generated"}
	sectionGenerator, _ := newTestSectionGenerator(t, client)

	sectionGenerator.Generate(context.Background(), domain.SectionTask{
		ID:    domain.SectionIntroductionPurpose,
		Input: "assess traffic impacts",
	})

	client.mu.Lock()
	defer client.mu.Unlock()
	if len(client.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(client.calls))
	}
	if client.calls[0].MaxTokens != 600 {
		t.Fatalf("expected introduction budget of 600, got %d", client.calls[0].MaxTokens)
	}
	if len(client.calls[0].Messages) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(client.calls[0].Messages))
	}
}
