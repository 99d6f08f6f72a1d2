package ratelimit

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule is the quota for one endpoint: Limit requests per Window, with up to
// Burst of them back to back. A path ending in "/" matches as a prefix.
type Rule struct {
	Method string
	Path   string
	Limit  int
	Window time.Duration
	Burst  int
}

// Config is the limiter's full configuration.
type Config struct {
	Enabled       bool
	DefaultLimit  int
	DefaultWindow time.Duration
	SweepInterval time.Duration
	Whitelist     map[string]bool
	Blacklist     map[string]bool
	Rules         []Rule
}

// LoadConfig builds the limiter configuration from the environment, with
// the built-in endpoint rules attached.
func LoadConfig() *Config {
	if !envBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:       true,
		DefaultLimit:  envInt("RATE_LIMIT_DEFAULT_LIMIT", 1000),
		DefaultWindow: envDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		SweepInterval: envDuration("RATE_LIMIT_SWEEP_INTERVAL", 5*time.Minute),
		Whitelist:     splitClientList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:     splitClientList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		Rules:         DefaultRules(),
	}
}

// DefaultRules returns the built-in per-endpoint quotas. Reads not listed
// here fall through to the default limit; /health is exempt in the matcher.
func DefaultRules() []Rule {
	return []Rule{
		// Each of these can cost up to three generation calls plus GitHub
		// quota per target, so they are the tightest tier.
		{Method: http.MethodPost, Path: "/analyze", Limit: 60, Window: time.Hour, Burst: 5},
		{Method: http.MethodGet, Path: "/analyze-watchlist", Limit: 20, Window: time.Hour, Burst: 2},
		{Method: http.MethodPost, Path: "/discover", Limit: 60, Window: time.Hour, Burst: 5},

		// Credential endpoints, throttled against brute force.
		{Method: http.MethodPost, Path: "/auth/register", Limit: 20, Window: time.Minute, Burst: 5},
		{Method: http.MethodPost, Path: "/auth/login", Limit: 20, Window: time.Minute, Burst: 5},

		// Plain writes.
		{Method: http.MethodPost, Path: "/watchlist", Limit: 100, Window: time.Minute, Burst: 10},
		{Method: http.MethodPatch, Path: "/watchlist/", Limit: 100, Window: time.Minute, Burst: 10},
		{Method: http.MethodDelete, Path: "/watchlist/", Limit: 100, Window: time.Minute, Burst: 10},
		{Method: http.MethodPost, Path: "/engagement", Limit: 100, Window: time.Minute, Burst: 10},
	}
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// splitClientList parses a comma-separated client ID (IP) list.
func splitClientList(list string) map[string]bool {
	out := make(map[string]bool)
	for _, entry := range strings.Split(list, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			out[entry] = true
		}
	}
	return out
}
