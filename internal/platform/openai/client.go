package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/envutil"
	"github.com/yungbote/roadmap-backend/internal/platform/httpx"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type Config struct {
	APIKey     string
	BaseURL    string
	EmbedModel string
	Timeout    time.Duration

	MaxRetries   int
	RetryBackoff time.Duration
	MaxBackoff   time.Duration

	// RateLimit is requests per second across the process; <= 0 disables limiting.
	RateLimit float64
	Burst     int

	BreakerFailures uint32
	BreakerCooldown time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:          envutil.String("OPENAI_API_KEY", ""),
		BaseURL:         envutil.String("OPENAI_BASE_URL", "https://api.openai.com"),
		EmbedModel:      envutil.String("OPENAI_EMBED_MODEL", "text-embedding-3-small"),
		Timeout:         envutil.Duration("OPENAI_TIMEOUT_SECONDS", 30*time.Second),
		MaxRetries:      envutil.Int("OPENAI_MAX_RETRIES", 3),
		RetryBackoff:    envutil.Duration("OPENAI_RETRY_BACKOFF", time.Second),
		MaxBackoff:      envutil.Duration("OPENAI_MAX_BACKOFF", 10*time.Second),
		RateLimit:       envutil.Float("OPENAI_EMBED_QPS", 20),
		Burst:           envutil.Int("OPENAI_EMBED_BURST", 5),
		BreakerFailures: uint32(envutil.Int("OPENAI_BREAKER_FAILURES", 5)),
		BreakerCooldown: envutil.Duration("OPENAI_BREAKER_COOLDOWN", 30*time.Second),
	}
}

// Client is the embeddings client used by goal matching and catalog import.
type Client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	embedModel string
	httpClient *http.Client

	maxRetries int
	backoff    time.Duration
	maxBackoff time.Duration

	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

func NewClient(log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	model := strings.TrimSpace(cfg.EmbedModel)
	if model == "" {
		model = "text-embedding-3-small"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}

	c := &Client{
		log:        log.With("service", "OpenAIEmbeddings"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		embedModel: model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.RetryBackoff,
		maxBackoff: cfg.MaxBackoff,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	failures := cfg.BreakerFailures
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "openai-embeddings",
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: breakerSuccess,
	})
	return c, nil
}

func (c *Client) Model() string { return c.embedModel }

// breakerSuccess keeps caller cancellations and request errors (4xx other than
// 408/429) from tripping the breaker.
func breakerSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var sc httpx.HTTPStatusCoder
	if errors.As(err, &sc) {
		code := sc.HTTPStatusCode()
		return code >= 400 && code < 500 && !httpx.IsRetryableHTTPStatus(code)
	}
	return false
}

type openAIHTTPError struct {
	StatusCode int
	Body       string
}

func (e *openAIHTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func (e *openAIHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *Client) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

// do runs one logical request through the breaker; retries happen inside it so
// a request that exhausts its retries counts as a single failure.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	start := time.Now()
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.doWithRetry(ctx, method, path, body, out)
	})
	if metrics := observability.Current(); metrics != nil {
		metrics.ObserveEmbedding(c.embedModel, statusFromErr(err), time.Since(start))
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("openai embeddings unavailable: %w", err)
	}
	return err
}

func (c *Client) doWithRetry(ctx context.Context, method, path string, body any, out any) error {
	backoff := c.backoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		resp, raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("openai decode error: %w", uErr)
			}
			return nil
		}

		if !httpx.IsRetryableError(err) || attempt == c.maxRetries {
			return err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, c.maxBackoff)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("OpenAI request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return err
		}
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}

func statusFromErr(err error) string {
	if err == nil {
		return "success"
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "breaker_open"
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var sc httpx.HTTPStatusCoder
	if errors.As(err, &sc) {
		return strconv.Itoa(sc.HTTPStatusCode())
	}
	return "error"
}
