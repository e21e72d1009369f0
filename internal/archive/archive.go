// Package archive keeps a durable history of completed report jobs for the
// history endpoint. The section text itself lives in the cache; the archive
// stores only the metadata needed to list and filter past reports.
package archive

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Record is one archived report job.
type Record struct {
	JobID           string    `json:"job_id"`
	ProjectTitle    string    `json:"project_title"`
	SiteAddress     string    `json:"site_address"`
	DevelopmentType string    `json:"development_type"`
	Council         string    `json:"council"`
	Status          string    `json:"status"`
	SectionCount    int       `json:"section_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// Filter narrows and pages a history listing.
type Filter struct {
	Page     int
	PageSize int
	From     *time.Time
	To       *time.Time
	Council  string
}

// Archive stores and lists report history.
type Archive interface {
	Save(ctx context.Context, record Record) error
	List(ctx context.Context, filter Filter) ([]Record, int, error)
}

// MemoryArchive is the fallback when no database is configured.
type MemoryArchive struct {
	mu      sync.Mutex
	records []Record
}

func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{records: make([]Record, 0)}
}

func (a *MemoryArchive) Save(_ context.Context, record Record) error {
	a.mu.Lock()
	a.records = append(a.records, record)
	a.mu.Unlock()
	return nil
}

func (a *MemoryArchive) List(_ context.Context, filter Filter) ([]Record, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	matched := make([]Record, 0, len(a.records))
	for _, record := range a.records {
		if filter.From != nil && record.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && record.CreatedAt.After(*filter.To) {
			continue
		}
		if filter.Council != "" && record.Council != filter.Council {
			continue
		}
		matched = append(matched, record)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (filter.Page - 1) * filter.PageSize
	if start >= total {
		return []Record{}, total, nil
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}
