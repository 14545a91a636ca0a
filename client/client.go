// Package client provides an HTTP client for registry APIs with retry,
// circuit breaking, and DNS caching.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cenk/backoff"
	"github.com/rs/dnscache"
)

// ErrUpstreamDown is returned when a registry host is unavailable, either
// because it answered with a server error or its circuit breaker is open.
var ErrUpstreamDown = errors.New("upstream registry unavailable")

// HTTPError represents an HTTP error response.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// IsNotFound returns true if the error represents a 404 response.
func (e *HTTPError) IsNotFound() bool {
	return e.StatusCode == 404
}

// RateLimitError is returned when the registry rate limits requests.
type RateLimitError struct {
	RetryAfter int // seconds
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %d seconds", e.RetryAfter)
}

// Client is an HTTP client for registry APIs. Requests are retried with
// exponential backoff on 429 and 5xx responses, and each registry host is
// guarded by a circuit breaker.
type Client struct {
	http       *http.Client
	userAgent  string
	maxRetries int
	baseDelay  time.Duration
	breakers   *hostBreakers
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.http.Timeout = d
	}
}

// WithMaxRetries sets the maximum number of retries.
func WithMaxRetries(n int) Option {
	return func(cl *Client) {
		cl.maxRetries = n
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// WithBaseDelay sets the base delay for exponential backoff.
func WithBaseDelay(d time.Duration) Option {
	return func(cl *Client) {
		cl.baseDelay = d
	}
}

// WithoutCircuitBreaker disables per-host circuit breaking.
func WithoutCircuitBreaker() Option {
	return func(cl *Client) {
		cl.breakers = nil
	}
}

// DefaultClient returns a client with sensible defaults:
// - 30s timeout
// - 5 retries with exponential backoff
// - Retry on 429 and 5xx responses
func DefaultClient() *Client {
	return NewClient()
}

// NewClient creates a new client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:       newHTTPClient(),
		userAgent:  "depfence/1.0",
		maxRetries: 5,
		baseDelay:  500 * time.Millisecond,
		breakers:   newHostBreakers(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newHTTPClient builds an http.Client with a DNS-cached transport.
func newHTTPClient() *http.Client {
	resolver := &dnscache.Resolver{}
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			resolver.Refresh(true)
		}
	}()

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				host, port, err := net.SplitHostPort(addr)
				if err != nil {
					return nil, err
				}
				ips, err := resolver.LookupHost(ctx, host)
				if err != nil {
					return nil, err
				}
				for _, ip := range ips {
					conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
					if err == nil {
						return conn, nil
					}
				}
				return nil, fmt.Errorf("failed to dial any resolved IP")
			},
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// GetJSON performs a GET request and decodes the JSON response body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	body, err := c.get(ctx, url, "application/json")
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}
	return nil
}

// GetText performs a GET request and returns the response body as a string.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	body, err := c.get(ctx, url, "*/*")
	if err != nil {
		return "", err
	}
	defer body.Close()

	b, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	return string(b), nil
}

func (c *Client) get(ctx context.Context, url, accept string) (io.ReadCloser, error) {
	breaker := c.breakers.forURL(url)
	if breaker != nil && !breaker.Ready() {
		return nil, fmt.Errorf("circuit open for %s: %w", hostOf(url), ErrUpstreamDown)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.baseDelay
	bo.Reset()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(bo.NextBackOff()):
			}
		}

		body, err := c.doGet(ctx, url, accept)
		if breaker != nil {
			if err != nil && retryable(err) {
				breaker.Fail()
			} else if err == nil {
				breaker.Success()
			}
		}
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !retryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) doGet(ctx context.Context, url, accept string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return resp.Body, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		_ = resp.Body.Close()
		retryAfter := 0
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if n, err := strconv.Atoi(ra); err == nil {
				retryAfter = n
			}
		}
		return nil, &RateLimitError{RetryAfter: retryAfter}

	case resp.StatusCode >= 500:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("status %d from %s: %w", resp.StatusCode, url, ErrUpstreamDown)

	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		_ = resp.Body.Close()
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url, Body: string(body)}
	}
}

// retryable reports whether an error is worth another attempt.
// Not-found and other client errors are final.
func retryable(err error) bool {
	var rateErr *RateLimitError
	if errors.As(err, &rateErr) {
		return true
	}
	if errors.Is(err, ErrUpstreamDown) {
		return true
	}
	return false
}
