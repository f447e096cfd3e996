// Package config handles loading and persisting configuration for
// codeaudit. Configuration is stored in ~/.codeaudit/config.json and
// can be overridden per value with CODEAUDIT_* environment variables.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const (
	dirName  = ".codeaudit"
	fileName = "config.json"

	defaultModel       = "codellama"
	defaultUpstreamURL = "http://localhost:11434/api/generate"
	defaultAddr        = ":3001"
	defaultReadTimeout = 60 * time.Second

	envKeyModel       = "CODEAUDIT_MODEL"
	envKeyUpstreamURL = "CODEAUDIT_UPSTREAM_URL"
	envKeyAddr        = "CODEAUDIT_ADDR"
	envKeyReadTimeout = "CODEAUDIT_READ_TIMEOUT"
)

// Config holds the service configuration.
type Config struct {
	Model       string `json:"model"`
	UpstreamURL string `json:"upstream_url"`
	Addr        string `json:"addr"`
	// ReadTimeout is a Go duration string ("45s", "2m"). Invalid or
	// non-positive values fall back to the default.
	ReadTimeout string `json:"read_timeout,omitempty"`
}

// Dir returns the configuration directory path.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, dirName)
}

func configPath() string {
	return filepath.Join(Dir(), fileName)
}

func defaults() *Config {
	return &Config{
		Model:       defaultModel,
		UpstreamURL: defaultUpstreamURL,
		Addr:        defaultAddr,
	}
}

// Load reads the configuration from disk and environment variables.
// A missing or unreadable file is not an error; defaults apply.
func Load() (*Config, error) {
	cfg := readFile()

	if v := os.Getenv(envKeyModel); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv(envKeyUpstreamURL); v != "" {
		cfg.UpstreamURL = v
	}
	if v := os.Getenv(envKeyAddr); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv(envKeyReadTimeout); v != "" {
		cfg.ReadTimeout = v
	}

	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.UpstreamURL == "" {
		cfg.UpstreamURL = defaultUpstreamURL
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}

	return cfg, nil
}

// Timeout returns the upstream read timeout.
func (c *Config) Timeout() time.Duration {
	if c.ReadTimeout == "" {
		return defaultReadTimeout
	}
	d, err := time.ParseDuration(c.ReadTimeout)
	if err != nil || d <= 0 {
		return defaultReadTimeout
	}
	return d
}

func readFile() *Config {
	cfg := defaults()
	data, err := os.ReadFile(configPath())
	if err == nil {
		_ = json.Unmarshal(data, cfg)
	}
	return cfg
}

// save persists the config to disk.
func save(cfg *Config) error {
	if err := os.MkdirAll(Dir(), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath(), data, 0o600)
}

// SetModel saves the model name to the config file.
func SetModel(model string) error {
	cfg := readFile()
	cfg.Model = model
	return save(cfg)
}

// SetUpstreamURL saves the inference endpoint to the config file.
func SetUpstreamURL(url string) error {
	cfg := readFile()
	cfg.UpstreamURL = url
	return save(cfg)
}

// SetReadTimeout saves the upstream read timeout to the config file.
func SetReadTimeout(d time.Duration) error {
	cfg := readFile()
	cfg.ReadTimeout = d.String()
	return save(cfg)
}
