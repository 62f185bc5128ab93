package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/omophub/omophub"
)

func validConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:    omophub.DefaultBaseURL,
			Timeout:    30 * time.Second,
			MaxRetries: 3,
		},
		Output:  OutputConfig{Format: "table"},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing base url",
			mutate:  func(c *Config) { c.API.BaseURL = "" },
			wantErr: "api.base_url is required",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.API.Timeout = 0 },
			wantErr: "api.timeout must be positive",
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.API.MaxRetries = -1 },
			wantErr: "api.max_retries must not be negative",
		},
		{
			name:    "unknown output",
			mutate:  func(c *Config) { c.Output.Format = "xml" },
			wantErr: "invalid output format: xml",
		},
		{
			name:    "unknown level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "invalid logging level: verbose",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "logfmt" },
			wantErr: "invalid logging format: logfmt",
		},
		{
			name: "empty preset",
			mutate: func(c *Config) {
				c.Filter.Presets = map[string]string{"standard": "  "}
			},
			wantErr: `filter preset "standard" is empty`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  key: oh_file_key
  timeout: 10s
  vocab_version: "2024.2"
output:
  format: json
filter:
  presets:
    standard: standard_concept == "S"
logging:
  level: debug
`), 0o600))

	t.Setenv("OMOPHUB_API_KEY", "")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "oh_file_key", cfg.API.Key)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, omophub.DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, omophub.DefaultMaxRetries, cfg.API.MaxRetries)
	assert.Equal(t, "2024.2", cfg.API.VocabVersion)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, `standard_concept == "S"`, cfg.Filter.Presets["standard"])
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Len(t, cfg.ClientOptions(), 4)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  key: oh_file_key\n"), 0o600))

	t.Setenv("OMOPHUB_API_KEY", "oh_env_key")
	t.Setenv("OMOPHUB_BASE_URL", "https://staging.omophub.test/v1")
	t.Setenv("OMOPHUB_OUTPUT_FORMAT", "yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "oh_env_key", cfg.API.Key)
	assert.Equal(t, "https://staging.omophub.test/v1", cfg.API.BaseURL)
	assert.Equal(t, "yaml", cfg.Output.Format)
}

func TestLoadWithoutFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "table", cfg.Output.Format)
	assert.Equal(t, omophub.DefaultTimeout, cfg.API.Timeout)
	assert.Len(t, cfg.ClientOptions(), 3)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config")
}
