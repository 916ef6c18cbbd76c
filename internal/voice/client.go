package voice

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client is the shared HTTP client for synthesis backends. It applies
// a request rate limit and a per-call timeout; retry policy lives with
// the caller. Safe for concurrent use.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	timeout time.Duration
}

// NewClient creates a synthesis HTTP client. limitPerSec caps outgoing
// requests per second; zero or negative disables limiting.
func NewClient(limitPerSec float64) *Client {
	limit := rate.Inf
	if limitPerSec > 0 {
		limit = rate.Limit(limitPerSec)
	}
	return &Client{
		http:    &http.Client{},
		limiter: rate.NewLimiter(limit, 1),
		timeout: synthTimeout,
	}
}

// post sends a JSON request and returns the response body. Network
// failures and timeouts come back as transient errors; non-2xx
// responses are permanent.
func (c *Client) post(ctx context.Context, url string, headers map[string]string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			// The whole run was cancelled, not just this call.
			return nil, ctx.Err()
		}
		return nil, &transientError{err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &transientError{err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("synthesis API error %d: %s", resp.StatusCode, truncateBody(data))
	}
	if len(data) == 0 {
		return nil, &transientError{err: fmt.Errorf("empty response body")}
	}
	return data, nil
}

// truncateBody keeps error messages readable when a backend returns a
// large payload.
func truncateBody(data []byte) string {
	const max = 300
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}
