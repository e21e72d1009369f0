package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/trafficable/tia-backend/internal/metrics"
)

// Message is one chat turn sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateRequest describes one completion call.
type GenerateRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// TokenUsage mirrors the usage block of a completion response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerateResult is a successful completion.
type GenerateResult struct {
	Text    string
	ModelID string
	Usage   TokenUsage
}

// Generator produces section text from a prompt. Implementations must be
// safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
	Available() bool
}

// ClientConfig configures the HTTP generation client.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration

	// MaxAttempts is the total number of tries per call, first attempt
	// included.
	MaxAttempts int
	// Concurrency caps in-flight calls across the whole process.
	Concurrency int64
	// RetryBaseDelay seeds the exponential backoff between attempts.
	RetryBaseDelay time.Duration

	HTTPClient *http.Client
	Metrics    *metrics.Collector
	Logger     *log.Logger
}

// Client calls an OpenAI-compatible chat completions endpoint. A weighted
// semaphore bounds concurrent calls process-wide, so the cap holds no matter
// how many jobs or tiers fan out at once.
type Client struct {
	cfg     ClientConfig
	http    *http.Client
	sem     *semaphore.Weighted
	metrics *metrics.Collector
	logger  *log.Logger
}

const (
	defaultBaseURL     = "https://api.openai.com/v1"
	defaultMaxAttempts = 3
	defaultConcurrency = 5
	maxBackoff         = 10 * time.Second
)

// NewClient builds a generation client, filling unset fields with defaults.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		cfg:     cfg,
		http:    httpClient,
		sem:     semaphore.NewWeighted(cfg.Concurrency),
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
}

// Available reports whether the client has credentials to call out with.
func (c *Client) Available() bool {
	return c.cfg.APIKey != ""
}

// Generate runs one completion call. A concurrency slot is held only for
// the duration of each attempt and released during backoff, so one caller's
// rate-limit wait never parks a slot other callers could use.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	if !c.Available() {
		return GenerateResult{}, &Error{Kind: KindServiceError, Message: "no API key configured"}
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return GenerateResult{}, fmt.Errorf("acquiring generation slot: %w", err)
		}
		result, err := c.attempt(ctx, req)
		c.sem.Release(1)
		if err == nil {
			return result, nil
		}
		lastErr = err
		c.metrics.RecordAPIFailure(req.Model)

		if !IsRetryable(err) || attempt == c.cfg.MaxAttempts {
			break
		}

		delay := c.cfg.RetryBaseDelay << (attempt - 1)
		if delay > maxBackoff {
			delay = maxBackoff
		}
		if c.logger != nil {
			c.logger.Printf("ai: attempt %d/%d for model %s failed (%v), retrying in %s",
				attempt, c.cfg.MaxAttempts, req.Model, err, delay)
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return GenerateResult{}, ctx.Err()
		}
	}
	return GenerateResult{}, lastErr
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage TokenUsage `json:"usage"`
}

func (c *Client) attempt(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	body, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return GenerateResult{}, &Error{Kind: KindUnknown, Message: err.Error()}
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return GenerateResult{}, &Error{Kind: KindUnknown, Message: err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	started := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return GenerateResult{}, ctx.Err()
		}
		return GenerateResult{}, &Error{Kind: KindConnectionFailed, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		drainBody(resp.Body)
		return GenerateResult{}, &Error{Kind: KindRateLimited, Status: resp.StatusCode, Message: "rate limited"}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return GenerateResult{}, &Error{
			Kind:    KindServiceError,
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(detail)),
		}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return GenerateResult{}, &Error{Kind: KindUnknown, Message: "decoding response: " + err.Error()}
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return GenerateResult{}, &Error{Kind: KindUnknown, Message: "empty completion"}
	}

	modelID := parsed.Model
	if modelID == "" {
		modelID = req.Model
	}
	c.metrics.RecordAPICall(modelID, time.Since(started), parsed.Usage.TotalTokens)

	return GenerateResult{
		Text:    strings.TrimSpace(parsed.Choices[0].Message.Content),
		ModelID: modelID,
		Usage:   parsed.Usage,
	}, nil
}

func drainBody(body io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
}
