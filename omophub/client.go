package omophub

import (
	"fmt"
	"net/url"
	"os"

	"github.com/rs/zerolog"
)

// Client is a blocking OMOPHub client. It is safe for concurrent use and
// should be closed when no longer needed.
type Client struct {
	transport *Transport
	requester *Requester
	logger    zerolog.Logger

	Concepts      *Concepts
	Search        *Search
	Hierarchy     *Hierarchy
	Mappings      *Mappings
	Relationships *Relationships
	Vocabularies  *Vocabularies
	Domains       *Domains
}

// AsyncClient is the concurrent OMOPHub client: every resource method
// returns a Future and paginated listings return a Stream.
type AsyncClient struct {
	transport *Transport
	requester *AsyncRequester

	Concepts      *AsyncConcepts
	Search        *AsyncSearch
	Hierarchy     *AsyncHierarchy
	Mappings      *AsyncMappings
	Relationships *AsyncRelationships
	Vocabularies  *AsyncVocabularies
	Domains       *AsyncDomains
}

// NewClient creates a Client. When apiKey is empty the OMOPHUB_API_KEY
// environment variable is read, once, here.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	o, apiKey, err := configure(apiKey, opts)
	if err != nil {
		return nil, err
	}
	transport := newTransport(o)
	return newClient(transport, NewRequester(transport, o.baseURL, apiKey, o.vocabVersion), o.logger), nil
}

// NewAsyncClient creates an AsyncClient with its own connection pool.
func NewAsyncClient(apiKey string, opts ...Option) (*AsyncClient, error) {
	c, err := NewClient(apiKey, opts...)
	if err != nil {
		return nil, err
	}
	return c.Async(), nil
}

func newClient(transport *Transport, r *Requester, logger zerolog.Logger) *Client {
	return &Client{
		transport:     transport,
		requester:     r,
		logger:        logger,
		Concepts:      &Concepts{r: r},
		Search:        &Search{r: r},
		Hierarchy:     &Hierarchy{r: r},
		Mappings:      &Mappings{r: r},
		Relationships: &Relationships{r: r},
		Vocabularies:  &Vocabularies{r: r},
		Domains:       &Domains{r: r},
	}
}

func configure(apiKey string, opts []Option) (clientOptions, string, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if apiKey == "" {
		apiKey = os.Getenv(APIKeyEnv)
	}
	if apiKey == "" {
		return o, "", fmt.Errorf("%w: pass one to NewClient or set %s", ErrMissingAPIKey, APIKeyEnv)
	}

	u, err := url.Parse(o.baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return o, "", fmt.Errorf("%w: base URL %q must be an absolute http(s) URL", ErrInvalidConfig, o.baseURL)
	}
	if o.timeout <= 0 {
		return o, "", fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidConfig, o.timeout)
	}
	if o.retryDelay < 0 {
		return o, "", fmt.Errorf("%w: retry delay must not be negative, got %s", ErrInvalidConfig, o.retryDelay)
	}
	return o, apiKey, nil
}

// Async returns a concurrent client sharing c's configuration and
// connection pool. Closing either closes both.
func (c *Client) Async() *AsyncClient {
	a := NewAsyncRequester(c.requester)
	return &AsyncClient{
		transport:     c.transport,
		requester:     a,
		Concepts:      &AsyncConcepts{a: a},
		Search:        &AsyncSearch{a: a},
		Hierarchy:     &AsyncHierarchy{a: a},
		Mappings:      &AsyncMappings{a: a},
		Relationships: &AsyncRelationships{a: a},
		Vocabularies:  &AsyncVocabularies{a: a},
		Domains:       &AsyncDomains{a: a},
	}
}

// Requester exposes the request façade for endpoints without a resource
// method.
func (c *Client) Requester() *Requester {
	return c.requester
}

// Close releases pooled connections. It is safe to call more than once, and
// a later call lazily opens a new pool.
func (c *Client) Close() error {
	c.logger.Debug().Msg("Closing OMOPHub client")
	return c.transport.Close()
}

// Requester exposes the concurrent request façade.
func (c *AsyncClient) Requester() *AsyncRequester {
	return c.requester
}

// Close releases pooled connections. It is safe to call more than once.
func (c *AsyncClient) Close() error {
	return c.transport.Close()
}
