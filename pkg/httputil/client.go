package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wonny/fundscope/pkg/config"
	"github.com/wonny/fundscope/pkg/logger"
	"github.com/wonny/fundscope/pkg/ratelimit"
	"github.com/wonny/fundscope/pkg/redis"
)

// Client is the outbound HTTP client shared by every upstream collaborator.
// ⭐ SSOT: all outbound requests go through this client
//
// Each request passes the optional local Gate and the optional distributed
// limiter before it is sent. Non-2xx responses surface as *FetchError and are
// never retried here; retry policy belongs to the caller.
type Client struct {
	httpClient   *http.Client
	logger       *logger.Logger
	userAgent    string
	gate         *ratelimit.Gate
	rateLimiter  *redis.RateLimiter
	rateLimitCfg *redis.RateLimitConfig
}

// New creates a client carrying the configured regulator User-Agent
func New(cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.OrNop(log).WithModule("httputil"),
		userAgent:  cfg.SEC.UserAgent,
	}
}

// NewWithTimeout creates a client with a custom request timeout
func NewWithTimeout(cfg *config.Config, log *logger.Logger, timeout time.Duration) *Client {
	c := New(cfg, log)
	c.httpClient.Timeout = timeout
	return c
}

// WithUserAgent overrides the User-Agent header
func (c *Client) WithUserAgent(ua string) *Client {
	c.userAgent = ua
	return c
}

// WithGate spaces requests through g
func (c *Client) WithGate(g *ratelimit.Gate) *Client {
	c.gate = g
	return c
}

// WithRateLimiter adds a cross-process budget on top of the local gate
func (c *Client) WithRateLimiter(limiter *redis.RateLimiter, cfg redis.RateLimitConfig) *Client {
	c.rateLimiter = limiter
	c.rateLimitCfg = &cfg
	return c
}

// FetchError is returned for any non-2xx response
type FetchError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Status)
}

// Retryable reports whether a caller-side retry may succeed
func (e *FetchError) Retryable() bool {
	return IsRetryableError(e.StatusCode)
}

// IsRetryableError checks if a status code is worth retrying
func IsRetryableError(statusCode int) bool {
	return statusCode >= 500 || statusCode == http.StatusTooManyRequests
}

// IsStatus reports whether err is a *FetchError with the given status code
func IsStatus(err error, statusCode int) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.StatusCode == statusCode
}

// Get performs a GET request. The caller owns the response body and must check
// the status code; use GetBytes or GetJSON for typed failures.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GET request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req)
}

// GetBytes performs a GET and returns the body, or *FetchError on non-2xx
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

// GetJSON performs a GET and decodes the body into dest
func (c *Client) GetJSON(ctx context.Context, url string, dest interface{}) error {
	body, err := c.GetBytes(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	url := req.URL.String()

	if c.gate != nil {
		if err := c.gate.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if c.rateLimiter != nil && c.rateLimitCfg != nil {
		if err := c.rateLimiter.Wait(ctx, *c.rateLimitCfg); err != nil {
			return nil, fmt.Errorf("rate limit wait failed: %w", err)
		}
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"method":   req.Method,
			"url":      url,
			"duration": duration,
		}).WithError(err).Error("HTTP request failed")
		return nil, fmt.Errorf("request %s: %w", url, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"method":      req.Method,
		"url":         url,
		"status_code": resp.StatusCode,
		"duration":    duration,
	}).Debug("HTTP request completed")

	return resp, nil
}
