// Package legistar is a client for the Legistar Web API
// (webapi.legistar.com), the upstream source of hearing records.
//
// The API is OData-flavored: list endpoints accept $top/$skip paging and
// a $filter expression. The client pages through results until a short
// page, retries transient failures with exponential backoff, and paces
// requests with a rate limiter so scheduled runs stay polite.
package legistar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://webapi.legistar.com/v1"

// DefaultPageSize is the $top value used when paging list endpoints.
// Legistar caps responses at 1000 records.
const DefaultPageSize = 1000

// Client talks to the Legistar Web API for one client jurisdiction
// (e.g. "nyc").
type Client struct {
	baseURL    string
	clientID   string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	retries    int
	backoff    time.Duration
	logger     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Tests point this at a local
// httptest server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit overrides the request pacing (requests per second).
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// WithRetries overrides the number of attempts per request.
func WithRetries(n int) Option {
	return func(c *Client) { c.retries = n }
}

// WithBackoff overrides the initial retry backoff (doubled per attempt).
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// New creates a client for the given jurisdiction. The token may be
// empty; most read endpoints are public.
func New(clientID, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:  defaultBaseURL,
		clientID: clientID,
		token:    token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(2), 1), // 2 req/s
		retries: 3,
		backoff: time.Second,
		logger:  slog.Default().With("component", "legistar"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs one rate-limited, retried GET against an API endpoint and
// decodes the JSON response into out.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	u := fmt.Sprintf("%s/%s/%s", c.baseURL, c.clientID, endpoint)
	if params == nil {
		params = url.Values{}
	}
	if c.token != "" {
		params.Set("token", c.token)
	}
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var lastErr error
	backoff := c.backoff
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("retrying request", "endpoint", endpoint, "attempt", attempt, "err", lastErr)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		lastErr = c.doOnce(ctx, u, out)
		if lastErr == nil {
			return nil
		}
		// Client-side errors won't improve with retries.
		var se *statusError
		if errors.As(lastErr, &se) && se.code >= 400 && se.code < 500 && se.code != http.StatusTooManyRequests {
			return lastErr
		}
	}
	return fmt.Errorf("request to %s failed after %d attempts: %w", endpoint, c.retries, lastErr)
}

func (c *Client) doOnce(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{code: resp.StatusCode, body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// statusError is a non-200 API response.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("legistar API returned %d: %s", e.code, e.body)
}
