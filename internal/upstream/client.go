// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

// Package upstream implements the resilient Battle.net API client: OAuth
// token acquisition with per-region coalescing, bounded exponential-backoff
// retry, a circuit breaker around the transport, and client-side rate
// limiting. Every domain fetch in the service flows through FetchJSON.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/drantham/gladius/internal/config"
	"github.com/drantham/gladius/internal/logging"
	"github.com/drantham/gladius/internal/metrics"
)

// RequestOptions qualifies a single upstream fetch. Zero-valued fields fall
// back to the client's configured defaults.
type RequestOptions struct {
	Region    string
	Locale    string
	Namespace string
}

// Client is the resilient upstream HTTP client. It is safe for concurrent
// use and intended to be constructed once at startup.
type Client struct {
	cfg        config.UpstreamConfig
	httpClient *http.Client
	tokens     *TokenProvider
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	policy     RetryPolicy

	// baseURL overrides the per-region API hostname. Tests only.
	baseURL string
}

// NewClient builds a client from configuration. The same underlying
// http.Client serves both token exchanges and resource fetches.
func NewClient(cfg config.UpstreamConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	c := &Client{
		cfg:        cfg,
		httpClient: httpClient,
		tokens:     NewTokenProvider(cfg.ClientID, cfg.ClientSecret, httpClient),
		policy:     NewBackoffPolicy(cfg.MaxRetries, cfg.RetryBaseDelay, cfg.RetryMaxDelay),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	if !cfg.BreakerDisabled {
		c.breaker = newBreaker("upstream")
	}
	return c
}

// Tokens exposes the token provider for diagnostics.
func (c *Client) Tokens() *TokenProvider {
	return c.tokens
}

// FetchJSON fetches path from the upstream API and decodes the response
// into out. path may be a bare API path ("/data/wow/...") or an absolute
// URL as handed back by upstream pagination; either way, locale and
// namespace query parameters are added only when absent.
//
// Retryable failures (408/425/429, 5xx, transport errors) are retried per
// the configured policy; a context cancellation aborts immediately. A 404
// surfaces as ErrNotFound on the first attempt.
func (c *Client) FetchJSON(ctx context.Context, path string, opts RequestOptions, out interface{}) error {
	region := c.region(opts)
	target, err := c.buildURL(path, region, opts)
	if err != nil {
		return err
	}

	var body []byte
	err = Retry(ctx, c.policy, func(ctx context.Context, attempt int) error {
		var attemptErr error
		body, attemptErr = c.fetchOnce(ctx, target, region, attempt)
		return attemptErr
	})
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode upstream response from %s: %w", target, err)
	}
	return nil
}

// fetchOnce performs a single attempt through the limiter and breaker,
// recording its outcome.
func (c *Client) fetchOnce(ctx context.Context, target, region string, attempt int) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	do := func() ([]byte, error) { return c.doRequest(ctx, target, region) }

	var (
		body []byte
		err  error
	)
	if c.breaker != nil {
		body, err = c.breaker.Execute(do)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.BreakerRequests.WithLabelValues("upstream", "rejected").Inc()
		}
	} else {
		body, err = do()
	}

	elapsed := time.Since(start)
	metrics.RecordUpstreamAttempt(region, attemptOutcome(err, attempt, c.cfg.MaxRetries), elapsed)

	if err != nil && !errors.Is(err, ErrNotFound) {
		logging.Debug().
			Err(err).
			Str("url", target).
			Int("attempt", attempt).
			Dur("duration", elapsed).
			Msg("upstream request attempt failed")
	}
	return body, err
}

// doRequest issues one HTTP GET with a bearer token and classifies the
// response.
func (c *Client) doRequest(ctx context.Context, target, region string) ([]byte, error) {
	token, err := c.tokens.AccessToken(ctx, region)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, target)
	case resp.StatusCode == http.StatusUnauthorized:
		// The safety margin makes this rare; drop the token so the retry
		// exchanges a fresh one.
		c.tokens.Invalidate(region)
		return nil, &StatusError{Status: resp.StatusCode, Body: truncateBody(body), URL: target}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{Status: resp.StatusCode, Body: truncateBody(body), URL: target}
	}
	return body, nil
}

func (c *Client) region(opts RequestOptions) string {
	if opts.Region != "" {
		return opts.Region
	}
	return c.cfg.Region
}

// buildURL resolves path against the region's API hostname and adds locale
// and namespace parameters only when the URL does not already carry them,
// so pagination-provided hrefs pass through unchanged.
func (c *Client) buildURL(path, region string, opts RequestOptions) (string, error) {
	raw := path
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		base := c.baseURL
		if base == "" {
			base = fmt.Sprintf("https://%s.api.blizzard.com", region)
		}
		raw = base + "/" + strings.TrimPrefix(path, "/")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid upstream url %q: %w", raw, err)
	}

	q := u.Query()
	if locale := c.locale(opts); locale != "" && q.Get("locale") == "" {
		q.Set("locale", locale)
	}
	if opts.Namespace != "" && q.Get("namespace") == "" {
		q.Set("namespace", opts.Namespace)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) locale(opts RequestOptions) string {
	if opts.Locale != "" {
		return opts.Locale
	}
	return c.cfg.Locale
}

// attemptOutcome labels an attempt for metrics: success, not_found, retry
// (another attempt will follow) or failure (terminal).
func attemptOutcome(err error, attempt, maxRetries int) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case attempt <= maxRetries && IsRetryable(err):
		return "retry"
	default:
		return "failure"
	}
}

// Namespace builds a Battle.net namespace value such as "dynamic-us" or
// "static-eu".
func Namespace(kind, region string) string {
	return kind + "-" + region
}
