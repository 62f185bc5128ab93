package omophub

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// Requester is the entry point the resources use: it adds authentication,
// builds URLs from the base URL, and turns responses into payloads or typed
// errors. It holds no per-call state and is safe for concurrent use.
type Requester struct {
	transport    *Transport
	baseURL      string
	apiKey       string
	vocabVersion string
}

// NewRequester creates a Requester over t. A single trailing slash on
// baseURL is ignored.
func NewRequester(t *Transport, baseURL, apiKey, vocabVersion string) *Requester {
	return &Requester{
		transport:    t,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		apiKey:       apiKey,
		vocabVersion: vocabVersion,
	}
}

// Get issues a GET and returns the unwrapped data payload.
func (r *Requester) Get(ctx context.Context, path string, params Params) (json.RawMessage, error) {
	return payloadOf(r.transport.Do(ctx, r.newRequest(http.MethodGet, path, params, nil)))
}

// Post issues a POST with a JSON body and returns the unwrapped data payload.
func (r *Requester) Post(ctx context.Context, path string, body any, params Params) (json.RawMessage, error) {
	return payloadOf(r.transport.Do(ctx, r.newRequest(http.MethodPost, path, params, body)))
}

// GetRaw issues a GET and returns the whole envelope, keeping pagination
// metadata and the request id.
func (r *Requester) GetRaw(ctx context.Context, path string, params Params) (*RawResponse, error) {
	return rawOf(r.transport.Do(ctx, r.newRequest(http.MethodGet, path, params, nil)))
}

func (r *Requester) buildURL(path string) string {
	return r.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (r *Requester) newRequest(method, path string, params Params, body any) *Request {
	header := make(http.Header, 2)
	header.Set("Authorization", "Bearer "+r.apiKey)
	if r.vocabVersion != "" {
		header.Set("X-Vocab-Version", r.vocabVersion)
	}
	return &Request{
		Method: method,
		URL:    r.buildURL(path),
		Header: header,
		Query:  params,
		Body:   body,
	}
}

func payloadOf(resp *Response, err error) (json.RawMessage, error) {
	if err != nil {
		return nil, err
	}
	env := decodeResponse(resp)
	if env.failure != nil {
		return nil, env.failure
	}
	return env.payload(), nil
}

func rawOf(resp *Response, err error) (*RawResponse, error) {
	if err != nil {
		return nil, err
	}
	env := decodeResponse(resp)
	if env.failure != nil {
		return nil, env.failure
	}
	return env.raw(resp.Header), nil
}

// AsyncRequester is the concurrent form of Requester. Every call returns a
// Future immediately; many calls may be in flight over one instance.
type AsyncRequester struct {
	requester *Requester
	transport *AsyncTransport
}

// NewAsyncRequester creates an AsyncRequester sharing r's configuration and
// Transport.
func NewAsyncRequester(r *Requester) *AsyncRequester {
	return &AsyncRequester{requester: r, transport: r.transport.Async()}
}

// Get issues a GET and resolves to the unwrapped data payload.
func (a *AsyncRequester) Get(ctx context.Context, path string, params Params) *Future[json.RawMessage] {
	req := a.requester.newRequest(http.MethodGet, path, params, nil)
	return then(a.transport.Send(ctx, req), payloadOf)
}

// Post issues a POST and resolves to the unwrapped data payload.
func (a *AsyncRequester) Post(ctx context.Context, path string, body any, params Params) *Future[json.RawMessage] {
	req := a.requester.newRequest(http.MethodPost, path, params, body)
	return then(a.transport.Send(ctx, req), payloadOf)
}

// GetRaw issues a GET and resolves to the whole envelope.
func (a *AsyncRequester) GetRaw(ctx context.Context, path string, params Params) *Future[*RawResponse] {
	req := a.requester.newRequest(http.MethodGet, path, params, nil)
	return then(a.transport.Send(ctx, req), rawOf)
}

// then derives a Future by applying fn to f's result once it is ready.
func then[T, U any](f *Future[T], fn func(T, error) (U, error)) *Future[U] {
	return Go(func() (U, error) {
		<-f.done
		return fn(f.value, f.err)
	})
}
