// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/strato-cloud/strato/lib/clock"
)

// maxResponseSize bounds response body reads: 64 MB. API replies are
// orders of magnitude smaller; the bound only guards against a
// pathological server exhausting memory.
const maxResponseSize int64 = 64 << 20

// Doer submits one request and returns the response or a typed error.
// Implementations must be safe for concurrent use; the batcher shares
// one Doer across goroutines.
type Doer interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// ObserveFunc sees every request outcome (after retries). Either
// response or err is nil. Used for user-visible error mapping and
// debug logging; must not mutate its arguments.
type ObserveFunc func(req *Request, resp *Response, err error)

// Options configures a Client.
type Options struct {
	// TokenSource supplies bearer tokens. Nil sends unauthenticated
	// requests (tests, emulators).
	TokenSource oauth2.TokenSource

	// UserAgent defaults to "strato".
	UserAgent string

	// Timeout is the per-request timeout. Defaults to 60s.
	Timeout time.Duration

	// MaxRetries bounds GET retries on connection errors and 5xx
	// replies. Defaults to 5.
	MaxRetries int

	// InitialBackoff is the first retry delay, doubled per attempt
	// with ±20% jitter. Defaults to 500ms.
	InitialBackoff time.Duration

	// Clock defaults to the real clock.
	Clock clock.Clock

	// Observe, when set, sees every request outcome.
	Observe ObserveFunc

	// HTTPClient overrides the underlying client (tests). The
	// Timeout option is not applied to an injected client.
	HTTPClient *http.Client
}

// Client is the production Doer.
type Client struct {
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
	userAgent   string
	maxRetries  int
	backoff     time.Duration
	clk         clock.Clock
	observe     ObserveFunc
	// invocationID tags every request from this process for
	// server-side correlation.
	invocationID string
}

// NewClient builds a Client from options.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "strato"
	}
	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = 5
	}
	backoff := opts.InitialBackoff
	if backoff == 0 {
		backoff = 500 * time.Millisecond
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}
	return &Client{
		httpClient:   httpClient,
		tokenSource:  opts.TokenSource,
		userAgent:    userAgent,
		maxRetries:   maxRetries,
		backoff:      backoff,
		clk:          clk,
		observe:      opts.Observe,
		invocationID: uuid.NewString(),
	}
}

// Do submits the request. GETs are retried on connection errors and
// 5xx replies with jittered exponential backoff, at most maxRetries
// times. Non-2xx replies become typed errors (AuthError, QuotaError,
// HTTPError).
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	retryable := req.Method == http.MethodGet
	backoff := c.backoff

	var resp *Response
	var err error
	for attempt := 0; ; attempt++ {
		resp, err = c.once(ctx, req)
		if err == nil || !retryable || attempt >= c.maxRetries || !transient(err) {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
		case <-c.clk.After(jitter(backoff)):
			backoff *= 2
			continue
		}
		break
	}

	if c.observe != nil {
		c.observe(req, resp, err)
	}
	return resp, err
}

// once performs a single HTTP exchange.
func (c *Client) once(ctx context.Context, req *Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s request: %w", req.Label, err)
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.fullURL(), body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-Id", uuid.NewString())
	httpReq.Header.Set("X-Invocation-Id", c.invocationID)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.tokenSource != nil {
		token, err := c.tokenSource.Token()
		if err != nil {
			return nil, &AuthError{&HTTPError{
				StatusCode: 401,
				Message:    fmt.Sprintf("obtaining credentials: %v", err),
				Label:      req.Label,
			}}
		}
		token.SetAuthHeader(httpReq)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &connError{err}
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, &connError{fmt.Errorf("reading response: %w", err)}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, classifyStatus(httpResp.StatusCode, data, req.Label)
	}
	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}

// connError marks a network-level failure as distinct from an HTTP
// status error.
type connError struct{ err error }

func (e *connError) Error() string { return e.err.Error() }
func (e *connError) Unwrap() error { return e.err }

// transient reports whether a failed attempt is worth retrying:
// connection errors and 5xx replies.
func transient(err error) bool {
	if _, ok := err.(*connError); ok {
		return true
	}
	if httpErr, ok := err.(*HTTPError); ok {
		return httpErr.StatusCode >= 500
	}
	return false
}

// jitter spreads a delay by ±20% so concurrent retries don't align.
func jitter(d time.Duration) time.Duration {
	spread := 0.8 + 0.4*rand.Float64()
	return time.Duration(float64(d) * spread)
}
