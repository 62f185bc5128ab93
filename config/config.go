package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/s0up4200/omophub/omophub"
)

var (
	outputFormats = []string{"table", "json", "yaml"}
	logLevels     = []string{"trace", "debug", "info", "warn", "error"}
	logFormats    = []string{"console", "json"}
)

// searchPaths lists the directories searched for config.yaml, in order.
func searchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".omophub"))
	}
	return append(paths, "/etc/omophub/")
}

// Load reads configPath, or config.yaml from the search paths when
// configPath is empty, then applies OMOPHUB_* environment variables over
// it. Only an explicitly named file has to exist: every setting has a
// default and the API key can come from OMOPHUB_API_KEY.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("OMOPHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The library's own variable names take precedence over the nested ones.
	_ = v.BindEnv("api.key", omophub.APIKeyEnv)
	_ = v.BindEnv("api.base_url", "OMOPHUB_BASE_URL", "OMOPHUB_API_BASE_URL")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, dir := range searchPaths() {
			v.AddConfigPath(dir)
		}
	}

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
	case configPath == "" && errors.As(err, &notFound):
	default:
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := map[string]any{
		"api.key":           "",
		"api.base_url":      omophub.DefaultBaseURL,
		"api.timeout":       omophub.DefaultTimeout,
		"api.max_retries":   omophub.DefaultMaxRetries,
		"api.vocab_version": "",
		"output.format":     "table",
		"output.color":      true,
		"filter.presets":    map[string]string{},
		"logging.level":     "warn",
		"logging.format":    "console",
		"logging.color":     true,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

func validate(cfg *Config) error {
	switch {
	case cfg.API.BaseURL == "":
		return errors.New("api.base_url is required")
	case cfg.API.Timeout <= 0:
		return fmt.Errorf("api.timeout must be positive, got %s", cfg.API.Timeout)
	case cfg.API.MaxRetries < 0:
		return fmt.Errorf("api.max_retries must not be negative, got %d", cfg.API.MaxRetries)
	case !slices.Contains(outputFormats, cfg.Output.Format):
		return fmt.Errorf("invalid output format: %s (must be %s)", cfg.Output.Format, strings.Join(outputFormats, ", "))
	case !slices.Contains(logLevels, cfg.Logging.Level):
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	case !slices.Contains(logFormats, cfg.Logging.Format):
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	for _, name := range slices.Sorted(maps.Keys(cfg.Filter.Presets)) {
		if strings.TrimSpace(cfg.Filter.Presets[name]) == "" {
			return fmt.Errorf("filter preset %q is empty", name)
		}
	}
	return nil
}

// ClientOptions converts the API section into client options.
func (c *Config) ClientOptions() []omophub.Option {
	opts := []omophub.Option{
		omophub.WithBaseURL(c.API.BaseURL),
		omophub.WithTimeout(c.API.Timeout),
		omophub.WithMaxRetries(c.API.MaxRetries),
	}
	if c.API.VocabVersion != "" {
		opts = append(opts, omophub.WithVocabVersion(c.API.VocabVersion))
	}
	return opts
}
