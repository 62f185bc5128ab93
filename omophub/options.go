package omophub

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the versioned root of the hosted service.
	DefaultBaseURL = "https://api.omophub.com/v1"
	// DefaultTimeout bounds a single request, connect and read combined.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRetries is the number of extra attempts after a connection failure.
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the first backoff delay; it doubles per attempt.
	DefaultRetryDelay = 500 * time.Millisecond
	// DefaultMaxRetryDelay caps the backoff delay.
	DefaultMaxRetryDelay = 8 * time.Second

	// APIKeyEnv is read once by NewClient when no key is passed.
	APIKeyEnv = "OMOPHUB_API_KEY"
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	baseURL       string
	timeout       time.Duration
	maxRetries    int
	retryDelay    time.Duration
	maxRetryDelay time.Duration
	vocabVersion  string
	userAgent     string
	httpClient    *http.Client
	logger        zerolog.Logger
}

func defaultOptions() clientOptions {
	return clientOptions{
		baseURL:       DefaultBaseURL,
		timeout:       DefaultTimeout,
		maxRetries:    DefaultMaxRetries,
		retryDelay:    DefaultRetryDelay,
		maxRetryDelay: DefaultMaxRetryDelay,
		userAgent:     UserAgent(),
		logger:        zerolog.Nop(),
	}
}

// WithBaseURL overrides the service root, e.g. a staging deployment.
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		o.baseURL = baseURL
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = timeout
	}
}

// WithMaxRetries sets the maximum number of retry attempts.
func WithMaxRetries(retries int) Option {
	return func(o *clientOptions) {
		if retries >= 0 {
			o.maxRetries = retries
		}
	}
}

// WithRetryDelay sets the delay before the first retry.
func WithRetryDelay(delay time.Duration) Option {
	return func(o *clientOptions) {
		o.retryDelay = delay
	}
}

// WithMaxRetryDelay caps the exponential backoff.
func WithMaxRetryDelay(delay time.Duration) Option {
	return func(o *clientOptions) {
		o.maxRetryDelay = delay
	}
}

// WithVocabVersion pins every request to a vocabulary release, e.g. "2024.4".
func WithVocabVersion(version string) Option {
	return func(o *clientOptions) {
		o.vocabVersion = version
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}

// WithHTTPClient supplies the underlying *http.Client. Its Timeout is
// replaced by the configured timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithLogger sets the logger used for request and retry diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}
