// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package opd is a client for the TIPO OPD result-file API. The workflow it
// supports is linear: Authenticate once, then per case ResolveCase, ListFiles,
// and DownloadFile, all under bearer auth with a shared bounded-retry policy.
package opd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/opd-fetch/internal/httputil"
)

const (
	// DefaultBaseURL is the TIPO OPD API base URL.
	DefaultBaseURL = "https://tiponet.tipo.gov.tw/S092_API/opd1"
	// DefaultUserAgent identifies this tool to the API.
	DefaultUserAgent = "opd-fetch/0.1"
	// DefaultCaseDelay is the fixed delay between consecutive cases.
	DefaultCaseDelay = 250 * time.Millisecond
)

// Client is an HTTP client for the OPD API. It holds the bearer token
// obtained by Authenticate and a rate limiter that paces consecutive cases.
// The token is fetched once and reused for the entire run; there is no
// refresh-on-expiry.
type Client struct {
	BaseURL     string
	UserAgent   string
	HTTPClient  *http.Client
	Limiter     *rate.Limiter
	MaxAttempts int

	token string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API base URL (no trailing slash).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.BaseURL = strings.TrimSuffix(u, "/") }
}

// WithUserAgent sets the User-Agent header sent with requests.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.UserAgent = ua }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// WithMaxAttempts sets the bounded-retry attempt count for API calls.
func WithMaxAttempts(n int) Option {
	return func(c *Client) { c.MaxAttempts = n }
}

// WithCaseDelay sets the fixed delay the limiter enforces between cases.
// A non-positive delay disables throttling.
func WithCaseDelay(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			c.Limiter = nil
			return
		}
		c.Limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// NewClient creates an OPD client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		BaseURL:   DefaultBaseURL,
		UserAgent: DefaultUserAgent,
		Limiter:   rate.NewLimiter(rate.Every(DefaultCaseDelay), 1),
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the bearer token obtained by Authenticate, or "" before
// authentication.
func (c *Client) Token() string { return c.token }

// Throttle blocks until the inter-case delay has elapsed since the previous
// call. The first call in a run does not block. It respects context
// cancellation.
func (c *Client) Throttle(ctx context.Context) error {
	if c.Limiter == nil {
		return nil
	}
	return c.Limiter.Wait(ctx)
}

// newRequest builds a GET request with the User-Agent and, once
// authenticated, the bearer Authorization header.
func (c *Client) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// getJSON performs a retried GET and decodes the response body into v.
func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	req, err := c.newRequest(ctx, url)
	if err != nil {
		return &RequestError{URL: url, Err: err}
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTPClient, req, c.MaxAttempts)
	if err != nil {
		return &RequestError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &RequestError{URL: url, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &RequestError{URL: url, Err: fmt.Errorf("parsing response: %w", err)}
	}
	return nil
}

// stringValue coerces a decoded JSON value to a trimmed string. Numeric
// values (the API sometimes returns case numbers and file ids as JSON
// numbers) are formatted without an exponent.
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// firstString returns the first non-empty string value of keys in m.
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringValue(m[k]); s != "" {
			return s
		}
	}
	return ""
}
