package metrics

import (
	"sync"
	"time"
)

// ModelStats aggregates the calls made against one model.
type ModelStats struct {
	Calls       int64   `json:"calls"`
	Failures    int64   `json:"failures"`
	TotalTokens int64   `json:"total_tokens"`
	AvgLatency  float64 `json:"avg_latency_seconds"`

	totalLatency time.Duration
}

// SectionStats aggregates cache and generation outcomes for one section.
type SectionStats struct {
	CacheHits   int64   `json:"cache_hits"`
	CacheMisses int64   `json:"cache_misses"`
	Generated   int64   `json:"generated"`
	Failures    int64   `json:"failures"`
	AvgLatency  float64 `json:"avg_latency_seconds"`

	totalLatency time.Duration
}

// Snapshot is the read-only view returned to the metrics endpoint.
type Snapshot struct {
	Models             map[string]ModelStats   `json:"models"`
	Sections           map[string]SectionStats `json:"sections"`
	ProgressiveUpdates int64                   `json:"progressive_updates"`
	ReportsGenerated   int64                   `json:"reports_generated"`
	AvgReportLatency   float64                 `json:"avg_report_latency_seconds"`
	AvgReportSections  float64                 `json:"avg_report_sections"`
}

// Collector accumulates generation metrics in process. All methods are safe
// on a nil receiver so callers never need to guard instrumentation.
type Collector struct {
	mu sync.Mutex

	models   map[string]*ModelStats
	sections map[string]*SectionStats

	progressiveUpdates int64
	reportsGenerated   int64
	reportLatency      time.Duration
	reportSections     int64
}

func NewCollector() *Collector {
	return &Collector{
		models:   make(map[string]*ModelStats),
		sections: make(map[string]*SectionStats),
	}
}

func (c *Collector) modelStats(model string) *ModelStats {
	stats, ok := c.models[model]
	if !ok {
		stats = &ModelStats{}
		c.models[model] = stats
	}
	return stats
}

func (c *Collector) sectionStats(section string) *SectionStats {
	stats, ok := c.sections[section]
	if !ok {
		stats = &SectionStats{}
		c.sections[section] = stats
	}
	return stats
}

// RecordAPICall counts one successful model call.
func (c *Collector) RecordAPICall(model string, duration time.Duration, tokens int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.modelStats(model)
	stats.Calls++
	stats.TotalTokens += int64(tokens)
	stats.totalLatency += duration
}

// RecordAPIFailure counts one failed model call.
func (c *Collector) RecordAPIFailure(model string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.modelStats(model)
	stats.Calls++
	stats.Failures++
}

// RecordCacheHit counts a section served from cache.
func (c *Collector) RecordCacheHit(section string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.sectionStats(section).CacheHits++
	c.mu.Unlock()
}

// RecordCacheMiss counts a section that had to be generated.
func (c *Collector) RecordCacheMiss(section string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.sectionStats(section).CacheMisses++
	c.mu.Unlock()
}

// RecordSectionGenerated counts one freshly generated section.
func (c *Collector) RecordSectionGenerated(section string, duration time.Duration) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.sectionStats(section)
	stats.Generated++
	stats.totalLatency += duration
}

// RecordSectionFailure counts a section whose generation failed.
func (c *Collector) RecordSectionFailure(section string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.sectionStats(section).Failures++
	c.mu.Unlock()
}

// RecordProgressiveUpdate counts one published section update.
func (c *Collector) RecordProgressiveUpdate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.progressiveUpdates++
	c.mu.Unlock()
}

// RecordReportGenerated counts one completed report.
func (c *Collector) RecordReportGenerated(duration time.Duration, sectionCount int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reportsGenerated++
	c.reportLatency += duration
	c.reportSections += int64(sectionCount)
}

// Snapshot copies the current counters.
func (c *Collector) Snapshot() Snapshot {
	snap := Snapshot{
		Models:   make(map[string]ModelStats),
		Sections: make(map[string]SectionStats),
	}
	if c == nil {
		return snap
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for model, stats := range c.models {
		view := *stats
		if succeeded := stats.Calls - stats.Failures; succeeded > 0 {
			view.AvgLatency = stats.totalLatency.Seconds() / float64(succeeded)
		}
		snap.Models[model] = view
	}
	for section, stats := range c.sections {
		view := *stats
		if stats.Generated > 0 {
			view.AvgLatency = stats.totalLatency.Seconds() / float64(stats.Generated)
		}
		snap.Sections[section] = view
	}

	snap.ProgressiveUpdates = c.progressiveUpdates
	snap.ReportsGenerated = c.reportsGenerated
	if c.reportsGenerated > 0 {
		snap.AvgReportLatency = c.reportLatency.Seconds() / float64(c.reportsGenerated)
		snap.AvgReportSections = float64(c.reportSections) / float64(c.reportsGenerated)
	}
	return snap
}
