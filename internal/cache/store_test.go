package cache

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/trafficable/tia-backend/internal/domain"
)

func newTestCache(t *testing.T, similarLookup bool) *ReportCache {
	t.Helper()
	return New(context.Background(), Config{
		SectionTTL:    time.Hour,
		ReportTTL:     time.Hour,
		JobTTL:        time.Hour,
		SimilarLookup: similarLookup,
		Logger:        log.New(io.Discard, "", 0),
	})
}

func TestCacheFallsBackToMemory(t *testing.T) {
	reportCache := newTestCache(t, false)
	if !reportCache.UsingMemory() {
		t.Fatalf("cache without redis address must use the memory store")
	}
}

func TestSectionRoundTrip(t *testing.T) {
	reportCache := newTestCache(t, false)
	ctx := context.Background()

	if _, ok := reportCache.GetSection(ctx, "introduction_purpose", "abc"); ok {
		t.Fatalf("unexpected hit on empty cache")
	}

	reportCache.SetSection(ctx, "introduction_purpose", "abc", "generated text")
	text, ok := reportCache.GetSection(ctx, "introduction_purpose", "abc")
	if !ok || text != "generated text" {
		t.Fatalf("expected stored section, got ok=%v text=%q", ok, text)
	}
}

func TestJobBookkeeping(t *testing.T) {
	reportCache := newTestCache(t, false)
	ctx := context.Background()

	if _, ok := reportCache.GetJobStatus(ctx, "missing"); ok {
		t.Fatalf("unexpected status for unknown job")
	}

	reportCache.SetJobStatus(ctx, "job-1", domain.JobStatusProcessing)
	status, ok := reportCache.GetJobStatus(ctx, "job-1")
	if !ok || status != domain.JobStatusProcessing {
		t.Fatalf("expected processing status, got ok=%v status=%s", ok, status)
	}

	result := map[string]string{"introduction_purpose": "text"}
	reportCache.SetJobResult(ctx, "job-1", result)
	stored, ok := reportCache.GetJobResult(ctx, "job-1")
	if !ok || stored["introduction_purpose"] != "text" {
		t.Fatalf("expected stored result, got ok=%v result=%v", ok, stored)
	}

	reportCache.SetJobError(ctx, "job-1", "boom")
	message, ok := reportCache.GetJobError(ctx, "job-1")
	if !ok || message != "boom" {
		t.Fatalf("expected stored error, got ok=%v message=%q", ok, message)
	}

	var doc domain.InputDocument
	doc.ProjectDetails.ProjectTitle = "Depot"
	reportCache.SetJobInput(ctx, "job-1", doc)
	loaded, ok := reportCache.GetJobInput(ctx, "job-1")
	if !ok || loaded.ProjectDetails.ProjectTitle != "Depot" {
		t.Fatalf("expected stored input, got ok=%v title=%q", ok, loaded.ProjectDetails.ProjectTitle)
	}
}

func TestSimilarReportExactAndFuzzy(t *testing.T) {
	reportCache := newTestCache(t, true)
	ctx := context.Background()

	var doc domain.InputDocument
	doc.ProjectDetails.ProjectTitle = "Depot"
	doc.ProjectDetails.SiteAddress = "1 Smith St"
	doc.Introduction.Purpose = "assess impacts"

	if _, ok := reportCache.GetSimilarReport(ctx, doc); ok {
		t.Fatalf("unexpected similar report on empty cache")
	}

	result := map[string]string{"introduction_purpose": "text"}
	reportCache.SetReportByHash(ctx, DocumentKey(doc), result)
	if _, ok := reportCache.GetSimilarReport(ctx, doc); !ok {
		t.Fatalf("expected exact match")
	}

	// A cosmetic edit misses the exact hash but hits the fuzzy one.
	reportCache.SetReportByHash(ctx, FuzzyKey(doc), result)
	edited := doc
	edited.Introduction.Purpose = "different wording"
	if _, ok := reportCache.GetSimilarReport(ctx, edited); !ok {
		t.Fatalf("expected fuzzy match after cosmetic edit")
	}
}

func TestSimilarReportDisabled(t *testing.T) {
	reportCache := newTestCache(t, false)
	ctx := context.Background()

	var doc domain.InputDocument
	doc.ProjectDetails.ProjectTitle = "Depot"

	reportCache.SetReportByHash(ctx, DocumentKey(doc), map[string]string{"a": "b"})
	if _, ok := reportCache.GetSimilarReport(ctx, doc); ok {
		t.Fatalf("similar lookup must be disabled")
	}
}

func TestMemoryPubSubDeliversInOrder(t *testing.T) {
	reportCache := newTestCache(t, false)
	ctx := context.Background()

	updates, cancel := reportCache.Subscribe(ctx, "tia:updates:job-1")
	defer cancel()

	reportCache.Publish(ctx, "tia:updates:job-1", "first")
	reportCache.Publish(ctx, "tia:updates:job-1", "second")

	for _, want := range []string{"first", "second"} {
		select {
		case got := <-updates:
			if got != want {
				t.Fatalf("expected %q, got %q", want, got)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func TestMemoryPubSubUnsubscribeClosesChannel(t *testing.T) {
	reportCache := newTestCache(t, false)

	updates, cancel := reportCache.Subscribe(context.Background(), "tia:updates:job-2")
	cancel()

	select {
	case _, open := <-updates:
		if open {
			t.Fatalf("expected closed channel after cancel")
		}
	case <-time.After(time.Second):
		t.Fatalf("channel not closed after cancel")
	}
}

func TestMemoryEntriesExpire(t *testing.T) {
	reportCache := New(context.Background(), Config{
		SectionTTL: time.Millisecond,
		Logger:     log.New(io.Discard, "", 0),
	})
	ctx := context.Background()

	reportCache.SetSection(ctx, "introduction_purpose", "abc", "text")
	time.Sleep(5 * time.Millisecond)
	if _, ok := reportCache.GetSection(ctx, "introduction_purpose", "abc"); ok {
		t.Fatalf("expected entry to expire")
	}
}
