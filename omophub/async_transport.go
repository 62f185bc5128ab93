package omophub

import "context"

// AsyncTransport is the concurrent form of Transport: Send returns at once
// and the exchange, including any retry backoff, runs on its own goroutine.
// Retry, timeout and header behavior are those of the wrapped Transport.
type AsyncTransport struct {
	transport *Transport
}

// NewAsyncTransport creates an AsyncTransport with its own Transport.
func NewAsyncTransport(opts ...Option) *AsyncTransport {
	return &AsyncTransport{transport: NewTransport(opts...)}
}

// Async shares t with a concurrent front end, so both models use one
// connection pool.
func (t *Transport) Async() *AsyncTransport {
	return &AsyncTransport{transport: t}
}

// Send starts the request and returns its Future.
func (a *AsyncTransport) Send(ctx context.Context, req *Request) *Future[*Response] {
	return Go(func() (*Response, error) {
		return a.transport.Do(ctx, req)
	})
}

// Close releases the shared client. It is safe to call more than once.
func (a *AsyncTransport) Close() error {
	return a.transport.Close()
}
