// Package config loads CLI defaults for reqflow.
//
// A config file supplies the request settings a user does not want to
// repeat on every invocation: timeout, retry budget, proxy, default
// headers. Both JSON and YAML files are accepted.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/reqflow/packages/httpclient"
)

// Config mirrors the engine's per-client settings plus CLI conveniences.
type Config struct {
	Timeout         int               `json:"timeout,omitempty" yaml:"timeout,omitempty"` // seconds
	Retries         int               `json:"retries,omitempty" yaml:"retries,omitempty"`
	RetryDelay      float64           `json:"retryDelay,omitempty" yaml:"retryDelay,omitempty"` // seconds
	FollowRedirects *bool             `json:"followRedirects,omitempty" yaml:"followRedirects,omitempty"`
	ValidateSSL     *bool             `json:"validateSSL,omitempty" yaml:"validateSSL,omitempty"`
	Proxy           string            `json:"proxy,omitempty" yaml:"proxy,omitempty"`
	Headers         map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	DefaultSession  string            `json:"defaultSession,omitempty" yaml:"defaultSession,omitempty"`
	NoColor         *bool             `json:"noColor,omitempty" yaml:"noColor,omitempty"`
}

// boolPtr returns a pointer to a bool value
func boolPtr(b bool) *bool {
	return &b
}

func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects returns the redirect setting, defaulting to true.
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, true)
}

// GetValidateSSL returns the SSL verification setting, defaulting to true.
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetNoColor returns the color suppression setting, defaulting to false.
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Timeout:         httpclient.DefaultTimeoutSeconds,
		Retries:         httpclient.DefaultMaxRetries,
		RetryDelay:      httpclient.DefaultRetryDelaySeconds,
		FollowRedirects: boolPtr(true),
		ValidateSSL:     boolPtr(true),
		DefaultSession:  "default",
	}
}

// ConfigFilenames contains the possible config file names, checked in order.
var ConfigFilenames = []string{
	".reqflow.config.json",
	"reqflow.config.json",
	".reqflow.yaml",
	".reqflow.yml",
}

// Load loads configuration from the specified path, or searches the
// current directory when path is empty. A missing config file yields the
// defaults, not an error.
func Load(path string) (*Config, error) {
	if path != "" {
		return loadFromFile(path)
	}
	return FindAndLoad(".")
}

// FindAndLoad searches a directory for a recognized config file.
func FindAndLoad(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadFromFile(configPath)
		}
	}
	return DefaultConfig(), nil
}

func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return config, nil
}

// Merge merges another config into this one, with other taking precedence.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.Retries > 0 {
		result.Retries = other.Retries
	}
	if other.RetryDelay > 0 {
		result.RetryDelay = other.RetryDelay
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.DefaultSession != "" {
		result.DefaultSession = other.DefaultSession
	}

	if other.FollowRedirects != nil {
		result.FollowRedirects = other.FollowRedirects
	}
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	if len(other.Headers) > 0 {
		merged := make(map[string]string, len(c.Headers)+len(other.Headers))
		for k, v := range c.Headers {
			merged[k] = v
		}
		for k, v := range other.Headers {
			merged[k] = v
		}
		result.Headers = merged
	}

	return &result
}

// ClientConfig converts CLI-level settings into the engine's client config.
func (c *Config) ClientConfig() httpclient.Config {
	return httpclient.Config{
		TimeoutSeconds:    c.Timeout,
		VerifySSL:         c.GetValidateSSL(),
		AllowRedirects:    c.GetFollowRedirects(),
		ProxyURL:          c.Proxy,
		MaxRetries:        c.Retries,
		RetryDelaySeconds: c.RetryDelay,
		DefaultHeaders:    c.Headers,
	}
}
