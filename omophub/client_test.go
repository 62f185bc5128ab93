package omophub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/omophub/internal/fakeapi"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		env     string
		opts    []Option
		wantErr error
		wantKey string
	}{
		{
			name:    "explicit key",
			apiKey:  "oh_explicit",
			wantKey: "oh_explicit",
		},
		{
			name:    "key from environment",
			env:     "oh_from_env",
			wantKey: "oh_from_env",
		},
		{
			name:    "explicit key wins over environment",
			apiKey:  "oh_explicit",
			env:     "oh_from_env",
			wantKey: "oh_explicit",
		},
		{
			name:    "missing key",
			wantErr: ErrMissingAPIKey,
		},
		{
			name:    "relative base URL",
			apiKey:  "k",
			opts:    []Option{WithBaseURL("api.omophub.com/v1")},
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "unsupported scheme",
			apiKey:  "k",
			opts:    []Option{WithBaseURL("ftp://api.omophub.com")},
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "zero timeout",
			apiKey:  "k",
			opts:    []Option{WithTimeout(0)},
			wantErr: ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(APIKeyEnv, tt.env)

			client, err := NewClient(tt.apiKey, tt.opts...)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, client)
				return
			}
			require.NoError(t, err)
			defer client.Close()
			assert.Equal(t, tt.wantKey, client.requester.apiKey)
		})
	}
}

func TestClientReadsEnvironmentOnce(t *testing.T) {
	t.Setenv(APIKeyEnv, "oh_first")
	client, err := NewClient("")
	require.NoError(t, err)
	defer client.Close()

	t.Setenv(APIKeyEnv, "oh_second")
	assert.Equal(t, "oh_first", client.requester.apiKey)
}

func TestClientOptions(t *testing.T) {
	client, err := NewClient("k",
		WithBaseURL("https://staging.omophub.test/v1/"),
		WithTimeout(5*time.Second),
		WithMaxRetries(1),
		WithVocabVersion("2024.1"),
		WithUserAgent("my-app/1.0"),
	)
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, "https://staging.omophub.test/v1", client.requester.baseURL)
	assert.Equal(t, "2024.1", client.requester.vocabVersion)
	assert.Equal(t, 5*time.Second, client.transport.timeout)
	assert.Equal(t, 1, client.transport.maxRetries)
	assert.Equal(t, "my-app/1.0", client.transport.userAgent)

	async := client.Async()
	assert.Same(t, client.transport, async.transport, "both models share one transport")
}

func TestClientCloseIsIdempotent(t *testing.T) {
	fake := fakeapi.New()
	defer fake.Close()

	client, err := NewClient(fakeapi.APIKey, WithBaseURL(fake.BaseURL()))
	require.NoError(t, err)

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	c, err := client.Concepts.Get(context.Background(), 201826, nil)
	require.NoError(t, err, "a closed client reopens its pool on demand")
	assert.Equal(t, "Type 2 diabetes mellitus", c.ConceptName)

	async, err := NewAsyncClient(fakeapi.APIKey, WithBaseURL(fake.BaseURL()))
	require.NoError(t, err)
	require.NoError(t, async.Close())
	require.NoError(t, async.Close())
}
