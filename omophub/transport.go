package omophub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Request describes one outbound call.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Query  Params
	// Body is JSON-encoded when non-nil.
	Body any
}

// Response is the fully-buffered result of an HTTP exchange. Any status
// code is a valid Response; only transport failures produce an error.
type Response struct {
	Body       []byte
	StatusCode int
	Header     http.Header
}

// Transport issues HTTP requests with a timeout and retries connection
// failures with exponential backoff. It is safe for concurrent use and
// reuses one *http.Client until Close.
type Transport struct {
	timeout       time.Duration
	maxRetries    int
	retryDelay    time.Duration
	maxRetryDelay time.Duration
	userAgent     string
	base          *http.Client
	logger        zerolog.Logger

	// sleep waits between attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error

	mu     sync.Mutex
	client *http.Client
}

// NewTransport creates a Transport. The underlying client is created on the
// first request.
func NewTransport(opts ...Option) *Transport {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newTransport(o)
}

func newTransport(o clientOptions) *Transport {
	return &Transport{
		timeout:       o.timeout,
		maxRetries:    o.maxRetries,
		retryDelay:    o.retryDelay,
		maxRetryDelay: o.maxRetryDelay,
		userAgent:     o.userAgent,
		base:          o.httpClient,
		logger:        o.logger,
		sleep:         sleepContext,
	}
}

// httpClient returns the shared client, creating it on first use.
func (t *Transport) httpClient() *http.Client {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client == nil {
		if t.base != nil {
			c := *t.base
			c.Timeout = t.timeout
			t.client = &c
		} else {
			t.client = &http.Client{Timeout: t.timeout}
		}
	}
	return t.client
}

// Close releases idle connections. It is safe to call more than once; a
// request made after Close creates a fresh client.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client != nil {
		t.client.CloseIdleConnections()
		t.client = nil
	}
	return nil
}

// Do performs the request. Connection failures are retried up to the
// configured limit; timeouts and HTTP error statuses are not retried.
func (t *Transport) Do(ctx context.Context, req *Request) (*Response, error) {
	var payload []byte
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = b
	}

	client := t.httpClient()
	for attempt := 0; ; attempt++ {
		start := time.Now()
		resp, err := t.roundTrip(ctx, client, req, payload)
		if err == nil {
			t.logger.Debug().
				Str("method", req.Method).
				Str("url", req.URL).
				Int("status", resp.StatusCode).
				Int("attempt", attempt+1).
				Dur("elapsed", time.Since(start)).
				Msg("OMOPHub request completed")
			return resp, nil
		}

		failure, retryable := transportFailure(ctx, err)
		if !retryable || attempt >= t.maxRetries {
			return nil, failure
		}

		delay := t.backoff(attempt)
		t.logger.Warn().
			Err(err).
			Str("method", req.Method).
			Str("url", req.URL).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("OMOPHub request failed, retrying")

		if err := t.sleep(ctx, delay); err != nil {
			f, _ := transportFailure(ctx, err)
			return nil, f
		}
	}
}

func (t *Transport) roundTrip(ctx context.Context, client *http.Client, req *Request, payload []byte) (*Response, error) {
	target := req.URL
	if len(req.Query) > 0 {
		if q := req.Query.Encode(); q != "" {
			target += "?" + q
		}
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", t.userAgent)
	for key, values := range req.Header {
		httpReq.Header[key] = values
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		Body:       data,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
	}, nil
}

// backoff returns the delay before retry number attempt+1.
func (t *Transport) backoff(attempt int) time.Duration {
	delay := t.retryDelay
	for i := 0; i < attempt && delay < t.maxRetryDelay; i++ {
		delay *= 2
	}
	if t.maxRetryDelay > 0 && delay > t.maxRetryDelay {
		delay = t.maxRetryDelay
	}
	return delay
}

// transportFailure maps a client error to a timeout or connection error and
// reports whether another attempt is allowed.
func transportFailure(ctx context.Context, err error) (*Error, bool) {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return newTimeoutError(err), false
	case errors.As(err, &netErr) && netErr.Timeout():
		return newTimeoutError(err), false
	case errors.Is(err, context.Canceled), ctx.Err() != nil:
		return newConnectionError(err), false
	default:
		return newConnectionError(err), true
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
