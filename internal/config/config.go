// Package config provides configuration loading and validation for the CLI
// and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the agent configuration that can be loaded from a JSON
// file. All fields are optional; missing values fall back to environment
// variables or CLI flags.
type Config struct {
	// Credentials
	GithubToken  string `json:"github_token,omitempty"`   // GitHub personal access token
	GeminiAPIKey string `json:"gemini_api_key,omitempty"` // Gemini API key
	DatabaseURL  string `json:"database_url,omitempty"`   // PostgreSQL connection URL

	// Identity
	SourceHandle string `json:"source_handle,omitempty"` // GitHub handle of the person reaching out
	Goal         string `json:"goal,omitempty"`          // Outreach goal, e.g. "find Rust developers"

	// Server
	Port int `json:"port,omitempty"` // HTTP listen port

	// Limits
	GithubRequestsPerSecond float64 `json:"github_requests_per_second,omitempty"`
	DiscoveryLimit          int     `json:"discovery_limit,omitempty"` // Max ranked candidates returned

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config from environment variables only. Used when no
// config file is supplied.
func FromEnv() *Config {
	return &Config{
		GithubToken:  os.Getenv("GITHUB_TOKEN"),
		GeminiAPIKey: firstNonEmpty(os.Getenv("GEMINI_API_KEY"), os.Getenv("GOOGLE_API_KEY")),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		SourceHandle: os.Getenv("SOURCE_GITHUB_HANDLE"),
		Goal:         os.Getenv("OUTREACH_GOAL"),
	}
}

// Validate checks that the configuration has valid values.
// Required fields are enforced by the callers that need them.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' out of range: %d", c.Port)
	}
	if c.GithubRequestsPerSecond < 0 {
		return fmt.Errorf("config error: 'github_requests_per_second' must be non-negative")
	}
	if c.DiscoveryLimit < 0 {
		return fmt.Errorf("config error: 'discovery_limit' must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This is used to apply environment values as defaults for
// config-file and CLI-flag settings.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.GithubToken == "" {
		result.GithubToken = defaults.GithubToken
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.SourceHandle == "" {
		result.SourceHandle = defaults.SourceHandle
	}
	if result.Goal == "" {
		result.Goal = defaults.Goal
	}

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.GithubRequestsPerSecond == 0 {
		result.GithubRequestsPerSecond = defaults.GithubRequestsPerSecond
	}
	if result.DiscoveryLimit == 0 {
		result.DiscoveryLimit = defaults.DiscoveryLimit
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
