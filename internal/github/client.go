// Package github provides read-only access to the GitHub REST API: recent
// activity windows for users and repositories, and contributor discovery for
// repositories and organizations.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://api.github.com"
	defaultUserAgent = "signal-agent/1.0"

	// GitHub allows 5000 authed requests/hour; stay comfortably under it
	// even when several discovery runs overlap.
	defaultRequestsPerSecond = 1
	defaultBurst             = 5
)

// RetryConfig holds configuration for exponential backoff retries around
// transient upstream failures.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
	Jitter         bool
}

// DefaultRetryConfig returns sensible defaults for GitHub API retries.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
		Jitter:         true,
	}
}

// backoffFor calculates the backoff before the given retry attempt. A
// Retry-After hint from the server wins, slightly padded.
func backoffFor(cfg RetryConfig, attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return retryAfter + 500*time.Millisecond
	}

	backoff := cfg.InitialBackoff
	for i := 0; i < attempt; i++ {
		backoff = time.Duration(float64(backoff) * cfg.Multiplier)
		if backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
			break
		}
	}

	if cfg.Jitter && backoff > 0 {
		backoff += time.Duration(rand.Int63n(int64(backoff / 4)))
	}
	return backoff
}

// Options configures a Client.
type Options struct {
	Token             string // optional; raises rate limits
	BaseURL           string
	UserAgent         string
	RequestsPerSecond float64
	Burst             int
	Retry             *RetryConfig
	HTTPClient        *http.Client
}

// Client is a GitHub REST API client with connection pooling, client-side
// rate limiting, and bounded retry.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	userAgent  string
	limiter    *rate.Limiter
	retry      RetryConfig
}

// NewClient creates a Client. A nil or zero Options uses defaults and an
// unauthenticated connection.
func NewClient(opts *Options) *Client {
	if opts == nil {
		opts = &Options{}
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = defaultBurst
	}
	retry := DefaultRetryConfig()
	if opts.Retry != nil {
		retry = *opts.Retry
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = newPooledHTTPClient()
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      opts.Token,
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		retry:      retry,
	}
}

// newPooledHTTPClient builds an HTTP client with keep-alive and pooling
// tuned for repeated calls against a single API host.
func newPooledHTTPClient() *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}
}

// getJSON performs a rate-limited GET against the API and decodes the JSON
// response into out. Transient failures (rate limit, 5xx, transport errors)
// are retried with exponential backoff up to the configured cap; 404 fails
// immediately with NotFoundError.
func (c *Client) getJSON(ctx context.Context, path, target string, out any) error {
	var lastErr error

	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := backoffFor(c.retry, attempt-1, retryAfterFromError(lastErr))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		err := c.doGet(ctx, path, target, out)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err
	}

	if re, ok := lastErr.(*retryableError); ok {
		return re.err
	}
	return lastErr
}

// retryableError wraps a transient failure and optionally carries the
// server's Retry-After hint.
type retryableError struct {
	err        error
	retryAfter time.Duration
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func isRetryable(err error) bool {
	_, ok := err.(*retryableError)
	return ok
}

func retryAfterFromError(err error) time.Duration {
	if re, ok := err.(*retryableError); ok {
		return re.retryAfter
	}
	return 0
}

func (c *Client) doGet(ctx context.Context, path, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &retryableError{err: fmt.Errorf("github: request failed for %s: %w", target, err)}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("github: failed to decode response for %s: %w", target, err)
		}
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return &NotFoundError{Target: target}
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		// Secondary rate limits send Retry-After; primary limits send
		// X-RateLimit-Reset. Surface as RateLimitError once retries are
		// exhausted.
		return &retryableError{
			err:        &RateLimitError{Target: target},
			retryAfter: parseRetryAfter(resp),
		}
	case resp.StatusCode >= 500:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &retryableError{err: &APIError{Target: target, StatusCode: resp.StatusCode, Message: string(body)}}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{Target: target, StatusCode: resp.StatusCode, Message: string(body)}
	}
}

func parseRetryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
