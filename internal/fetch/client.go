// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/worldsense/internal/logging"
	"github.com/tomtom215/worldsense/internal/metrics"
	"github.com/tomtom215/worldsense/internal/models"
)

// maxErrorBody caps how much of an error response body is kept.
const maxErrorBody = 512

// maxResponseBody caps a decoded upstream response.
const maxResponseBody = 32 << 20

// Fetcher performs one GET against an upstream endpoint and decodes the body.
// Map results are *models.FeatureCollection, stats *models.StatsResponse and
// search *models.SearchResponse.
type Fetcher interface {
	Fetch(ctx context.Context, ep Endpoint, url string) (any, error)
}

// ClientConfig configures HTTPClient.
type ClientConfig struct {
	Timeout        time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	RequestsPerSec float64
	Burst          int
	BreakerEnabled bool
}

// HTTPClient fetches from the GDELT REST API with client-side rate limiting,
// bounded retry for transient failures and an optional circuit breaker.
type HTTPClient struct {
	client     *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	maxRetries int
	retryDelay time.Duration
}

// NewHTTPClient creates an upstream client.
func NewHTTPClient(cfg ClientConfig) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	limit := rate.Inf
	if cfg.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.RequestsPerSec)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	c := &HTTPClient{
		client:     &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
		maxRetries: cfg.RetryAttempts,
		retryDelay: cfg.RetryDelay,
	}
	if cfg.BreakerEnabled {
		c.breaker = newBreaker()
	}
	return c
}

// Fetch implements Fetcher.
func (c *HTTPClient) Fetch(ctx context.Context, ep Endpoint, reqURL string) (any, error) {
	start := time.Now()
	body, err := c.get(ctx, ep, reqURL)
	metrics.RecordUpstreamRequest(string(ep), statusLabel(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	return decode(ep, body)
}

func (c *HTTPClient) get(ctx context.Context, ep Endpoint, reqURL string) ([]byte, error) {
	if c.breaker == nil {
		return c.getWithRetry(ctx, ep, reqURL)
	}
	// A superseded fetch is cancelled by its orchestrator; that is not an
	// upstream failure and must not reach the shared breaker.
	if err := ctx.Err(); err != nil {
		return nil, &NetworkError{Endpoint: ep, Err: err}
	}
	body, err := executeBreaker(c.breaker, func() ([]byte, error) {
		body, err := c.getWithRetry(ctx, ep, reqURL)
		if err != nil && ctx.Err() != nil {
			return nil, &abandonedError{err: err}
		}
		return body, err
	})
	var abandoned *abandonedError
	if errors.As(err, &abandoned) {
		return nil, abandoned.err
	}
	return body, err
}

// getWithRetry retries network failures, 429 and 5xx with exponential backoff.
// A Retry-After header (seconds) on 429 overrides the computed delay.
func (c *HTTPClient) getWithRetry(ctx context.Context, ep Endpoint, reqURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &NetworkError{Endpoint: ep, Err: err}
		}

		body, retryAfter, err := c.doOnce(ctx, ep, reqURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable(err) || ctx.Err() != nil || attempt == c.maxRetries {
			break
		}

		delay := c.retryDelay * time.Duration(1<<uint(attempt))
		if retryAfter > 0 {
			delay = retryAfter
		}
		metrics.UpstreamRetries.WithLabelValues(string(ep)).Inc()
		logging.Ctx(ctx).Debug().
			Str("endpoint", string(ep)).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Err(err).
			Msg("Retrying upstream request")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, &NetworkError{Endpoint: ep, Err: ctx.Err()}
		}
	}
	return nil, lastErr
}

func (c *HTTPClient) doOnce(ctx context.Context, ep Endpoint, reqURL string) ([]byte, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, &NetworkError{Endpoint: ep, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var retryAfter time.Duration
		if resp.StatusCode == http.StatusTooManyRequests {
			if secs, perr := strconv.Atoi(resp.Header.Get("Retry-After")); perr == nil && secs > 0 {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		return nil, retryAfter, &HTTPError{Endpoint: ep, StatusCode: resp.StatusCode, Body: readBodyForError(resp.Body)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, 0, &NetworkError{Endpoint: ep, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, 0, nil
}

func retryable(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Temporary()
	}
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// readBodyForError reads a bounded, single-line excerpt of an error body.
func readBodyForError(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(string(data)), " ")
}

func decode(ep Endpoint, body []byte) (any, error) {
	var (
		out any
		err error
	)
	switch ep {
	case EndpointMap:
		var fc models.FeatureCollection
		err = json.Unmarshal(body, &fc)
		out = &fc
	case EndpointStats:
		var st models.StatsResponse
		err = json.Unmarshal(body, &st)
		out = &st
	case EndpointSearch:
		var sr models.SearchResponse
		err = json.Unmarshal(body, &sr)
		out = &sr
	default:
		return nil, fmt.Errorf("unknown endpoint %q", ep)
	}
	if err != nil {
		return nil, &NetworkError{Endpoint: ep, Err: fmt.Errorf("decode response: %w", err)}
	}
	return out, nil
}

func statusLabel(err error) string {
	if err == nil {
		return "success"
	}
	if errors.Is(err, ErrCircuitOpen) {
		return "rejected"
	}
	return ErrorKind(err)
}

// BreakerState reports the upstream circuit breaker state: closed, open,
// half-open, or disabled when no breaker is configured.
func (c *HTTPClient) BreakerState() string {
	if c.breaker == nil {
		return "disabled"
	}
	return stateToString(c.breaker.State())
}
