package cache

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trafficable/tia-backend/internal/domain"
)

// Config holds the knobs for the report cache.
type Config struct {
	Addr     string
	Password string
	DB       int

	SectionTTL time.Duration
	ReportTTL  time.Duration
	JobTTL     time.Duration

	// SimilarLookup enables whole-report reuse on submission.
	SimilarLookup bool

	Logger *log.Logger
}

// ReportCache stores generated sections, whole reports and per-job
// bookkeeping, and carries the pub/sub channel for progressive updates.
//
// Every method degrades instead of failing: a Redis error is logged and
// treated as a cache miss or a no-op, so generation never stalls on the
// cache layer.
type ReportCache struct {
	client *redis.Client
	memory *memoryStore
	cfg    Config
	logger *log.Logger
}

// New connects to Redis and falls back to an in-process store when the
// server is unreachable.
func New(ctx context.Context, cfg Config) *ReportCache {
	cache := &ReportCache{cfg: cfg, logger: cfg.Logger}

	if cfg.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			cache.client = client
			cache.logger.Printf("cache: connected to redis at %s", cfg.Addr)
			return cache
		}
		cache.logger.Printf("cache: redis unavailable (%v), using in-memory store", err)
		_ = client.Close()
	} else {
		cache.logger.Printf("cache: no redis address configured, using in-memory store")
	}

	cache.memory = newMemoryStore()
	return cache
}

// UsingMemory reports whether the cache fell back to the in-process store.
func (c *ReportCache) UsingMemory() bool {
	return c.client == nil
}

// Close releases the Redis connection if one exists.
func (c *ReportCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func sectionStorageKey(sectionID, contentKey string) string {
	return "tia:section:" + sectionID + ":" + contentKey
}

func reportStorageKey(hash string) string {
	return "tia:report:" + hash
}

func jobStorageKey(jobID, field string) string {
	return "tia:job:" + jobID + ":" + field
}

func (c *ReportCache) get(ctx context.Context, key string) (string, bool) {
	if c.client == nil {
		return c.memory.get(key)
	}
	value, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		c.logger.Printf("cache: get %s failed: %v", key, err)
		return "", false
	}
	return value, true
}

func (c *ReportCache) set(ctx context.Context, key, value string, ttl time.Duration) {
	if c.client == nil {
		c.memory.set(key, value, ttl)
		return
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Printf("cache: set %s failed: %v", key, err)
	}
}

// GetSection looks up a previously generated section by its content key.
func (c *ReportCache) GetSection(ctx context.Context, sectionID, contentKey string) (string, bool) {
	return c.get(ctx, sectionStorageKey(sectionID, contentKey))
}

// SetSection stores a generated section under its content key.
func (c *ReportCache) SetSection(ctx context.Context, sectionID, contentKey, text string) {
	c.set(ctx, sectionStorageKey(sectionID, contentKey), text, c.cfg.SectionTTL)
}

// GetReportByHash returns a whole cached report keyed by a document hash.
func (c *ReportCache) GetReportByHash(ctx context.Context, hash string) (map[string]string, bool) {
	raw, ok := c.get(ctx, reportStorageKey(hash))
	if !ok {
		return nil, false
	}
	var result map[string]string
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		c.logger.Printf("cache: report %s is not valid JSON: %v", hash, err)
		return nil, false
	}
	return result, true
}

// SetReportByHash stores a whole report under a document hash.
func (c *ReportCache) SetReportByHash(ctx context.Context, hash string, result map[string]string) {
	encoded, err := json.Marshal(result)
	if err != nil {
		c.logger.Printf("cache: encoding report %s failed: %v", hash, err)
		return
	}
	c.set(ctx, reportStorageKey(hash), string(encoded), c.cfg.ReportTTL)
}

// GetSimilarReport tries an exact document match first, then the fuzzy
// identity match when the document carries identifying fields. Disabled
// entirely when SimilarLookup is off.
func (c *ReportCache) GetSimilarReport(ctx context.Context, doc domain.InputDocument) (map[string]string, bool) {
	if !c.cfg.SimilarLookup {
		return nil, false
	}
	if result, ok := c.GetReportByHash(ctx, DocumentKey(doc)); ok {
		return result, true
	}
	if !HasIdentity(doc) {
		return nil, false
	}
	return c.GetReportByHash(ctx, FuzzyKey(doc))
}

// SetJobStatus records the current lifecycle state of a job.
func (c *ReportCache) SetJobStatus(ctx context.Context, jobID string, status domain.JobStatus) {
	c.set(ctx, jobStorageKey(jobID, "status"), string(status), c.cfg.JobTTL)
}

// GetJobStatus returns a job's lifecycle state.
func (c *ReportCache) GetJobStatus(ctx context.Context, jobID string) (domain.JobStatus, bool) {
	value, ok := c.get(ctx, jobStorageKey(jobID, "status"))
	if !ok {
		return "", false
	}
	return domain.JobStatus(value), true
}

// SetJobResult stores the finished section mapping for a job.
func (c *ReportCache) SetJobResult(ctx context.Context, jobID string, result map[string]string) {
	encoded, err := json.Marshal(result)
	if err != nil {
		c.logger.Printf("cache: encoding result for job %s failed: %v", jobID, err)
		return
	}
	c.set(ctx, jobStorageKey(jobID, "result"), string(encoded), c.cfg.JobTTL)
}

// GetJobResult returns the finished section mapping for a job.
func (c *ReportCache) GetJobResult(ctx context.Context, jobID string) (map[string]string, bool) {
	raw, ok := c.get(ctx, jobStorageKey(jobID, "result"))
	if !ok {
		return nil, false
	}
	var result map[string]string
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		c.logger.Printf("cache: result for job %s is not valid JSON: %v", jobID, err)
		return nil, false
	}
	return result, true
}

// SetJobError records why a job failed.
func (c *ReportCache) SetJobError(ctx context.Context, jobID, message string) {
	c.set(ctx, jobStorageKey(jobID, "error"), message, c.cfg.JobTTL)
}

// GetJobError returns a failed job's error message.
func (c *ReportCache) GetJobError(ctx context.Context, jobID string) (string, bool) {
	return c.get(ctx, jobStorageKey(jobID, "error"))
}

// SetJobInput keeps the submitted document around for document rendering.
func (c *ReportCache) SetJobInput(ctx context.Context, jobID string, doc domain.InputDocument) {
	encoded, err := json.Marshal(doc)
	if err != nil {
		c.logger.Printf("cache: encoding input for job %s failed: %v", jobID, err)
		return
	}
	c.set(ctx, jobStorageKey(jobID, "input"), string(encoded), c.cfg.JobTTL)
}

// GetJobInput returns the document a job was submitted with.
func (c *ReportCache) GetJobInput(ctx context.Context, jobID string) (domain.InputDocument, bool) {
	raw, ok := c.get(ctx, jobStorageKey(jobID, "input"))
	if !ok {
		return domain.InputDocument{}, false
	}
	var doc domain.InputDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		c.logger.Printf("cache: input for job %s is not valid JSON: %v", jobID, err)
		return domain.InputDocument{}, false
	}
	return doc, true
}

// Publish sends a payload on a pub/sub channel. Delivery is best-effort;
// failures are logged and otherwise ignored so generation is never blocked
// by a slow or absent listener.
func (c *ReportCache) Publish(ctx context.Context, channel, payload string) {
	if c.client == nil {
		c.memory.publish(channel, payload)
		return
	}
	if err := c.client.Publish(ctx, channel, payload).Err(); err != nil {
		c.logger.Printf("cache: publish on %s failed: %v", channel, err)
	}
}

// Subscribe returns a channel of payloads published on the named channel
// and a cancel function releasing the subscription. The channel closes when
// the context ends or cancel is called.
func (c *ReportCache) Subscribe(ctx context.Context, channel string) (<-chan string, func()) {
	if c.client == nil {
		return c.memory.subscribe(channel)
	}

	pubsub := c.client.Subscribe(ctx, channel)
	out := make(chan string, 16)
	done := make(chan struct{})

	go func() {
		defer close(out)
		source := pubsub.Channel()
		for {
			select {
			case msg, ok := <-source:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				case <-ctx.Done():
					return
				case <-done:
					return
				}
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			if err := pubsub.Close(); err != nil {
				c.logger.Printf("cache: closing subscription on %s failed: %v", channel, err)
			}
		})
	}
	return out, cancel
}
