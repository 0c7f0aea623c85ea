// Package churchtools talks to the REST API of a ChurchTools installation.
package churchtools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"
)

const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxRetries   = 5
	DefaultRetryBackoff = time.Second
	userAgent           = "ctsong"
)

var ErrNoCSRFToken = errors.New("no CSRF token in response")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := truncateBody(strings.TrimSpace(e.Body), maxErrorBody)
	return fmt.Sprintf("%s %s: %d - %s", e.Method, e.URL, e.StatusCode, body)
}

const maxErrorBody = 512

// truncateBody cuts body to at most limit bytes without splitting a rune.
func truncateBody(body string, limit int) string {
	if len(body) <= limit {
		return body
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut] + "..."
}

// Client is an authenticated session against one API base URL. It is not
// safe for concurrent use.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	limiter      *rate.Limiter
	token        string
	csrfToken    string
	pageSize     int
	maxRetries   int
	retryBackoff time.Duration
	sleep        func(context.Context, time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithToken authenticates every request with a login token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithPageSize sets the limit parameter of paginated requests.
func WithPageSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithRetries configures how often rate-limited requests are retried.
func WithRetries(maxRetries int, backoff time.Duration) Option {
	return func(c *Client) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		if backoff > 0 {
			c.retryBackoff = backoff
		}
	}
}

// WithRateLimit paces requests to at most perSecond. Zero disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates a client for the API rooted at baseURL, e.g.
// https://example.church.tools/api.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("api url required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	client := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: DefaultTimeout, Jar: jar},
		limiter:      rate.NewLimiter(rate.Inf, 1),
		maxRetries:   DefaultMaxRetries,
		retryBackoff: DefaultRetryBackoff,
		sleep:        sleepContext,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// JoinPath appends segments to base with exactly one separator between each.
func JoinPath(base string, segments ...string) string {
	for _, segment := range segments {
		base = strings.TrimRight(base, "/") + "/" + strings.TrimLeft(segment, "/")
	}
	return base
}

func (c *Client) endpointURL(path string, query url.Values) string {
	endpoint := JoinPath(c.baseURL, path)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return endpoint
}

// send executes one API call, retrying on 429 and 503 responses. The
// response body is returned for 2xx responses.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, contentType string) ([]byte, error) {
	endpoint := c.endpointURL(path, query)

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Login "+c.token)
		}
		if c.csrfToken != "" {
			req.Header.Set("CSRF-Token", c.csrfToken)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
		}
		respBody, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("read response of %s %s: %w", method, endpoint, readErr)
		}

		if isRetryable(resp.StatusCode) && attempt < c.maxRetries {
			wait := retryDelay(resp.Header.Get("Retry-After"), c.retryBackoff, attempt)
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &StatusError{
				Method:     method,
				URL:        endpoint,
				StatusCode: resp.StatusCode,
				Body:       string(respBody),
			}
		}
		return respBody, nil
	}
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.send(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return err
	}
	return decode(body, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in any, out any) error {
	var payload []byte
	contentType := ""
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = encoded
		contentType = "application/json"
	}
	body, err := c.send(ctx, method, path, nil, payload, contentType)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(body, out)
}

func decode(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func isRetryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

func retryDelay(retryAfter string, backoff time.Duration, attempt int) time.Duration {
	if seconds, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return backoff << attempt
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
