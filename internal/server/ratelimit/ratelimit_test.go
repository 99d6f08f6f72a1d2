package ratelimit

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(rules []Rule) *Config {
	return &Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{},
		Blacklist:     map[string]bool{},
		Rules:         rules,
	}
}

func TestLimiterBurstThenDeny(t *testing.T) {
	l := NewLimiter(testConfig([]Rule{
		{Method: http.MethodPost, Path: "/analyze", Limit: 60, Window: time.Hour, Burst: 3},
	}))
	defer l.Stop()

	for i := 0; i < 3; i++ {
		allowed, info := l.Allow("1.2.3.4", "/analyze", http.MethodPost)
		require.True(t, allowed, "request %d within burst", i)
		assert.Equal(t, 60, info.Limit)
	}

	allowed, info := l.Allow("1.2.3.4", "/analyze", http.MethodPost)
	assert.False(t, allowed)
	assert.Positive(t, info.RetryAfter)
	assert.True(t, info.ResetTime.After(time.Now()))
}

func TestLimiterIsolatesClients(t *testing.T) {
	l := NewLimiter(testConfig([]Rule{
		{Method: http.MethodPost, Path: "/analyze", Limit: 60, Window: time.Hour, Burst: 1},
	}))
	defer l.Stop()

	allowed, _ := l.Allow("1.1.1.1", "/analyze", http.MethodPost)
	require.True(t, allowed)
	allowed, _ = l.Allow("1.1.1.1", "/analyze", http.MethodPost)
	require.False(t, allowed)

	// A different client has its own bucket.
	allowed, _ = l.Allow("2.2.2.2", "/analyze", http.MethodPost)
	assert.True(t, allowed)
}

func TestLimiterDisabled(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false})
	defer l.Stop()

	for i := 0; i < 50; i++ {
		allowed, _ := l.Allow("1.2.3.4", "/analyze", http.MethodPost)
		require.True(t, allowed)
	}
}

func TestLimiterWhitelistAndBlacklist(t *testing.T) {
	cfg := testConfig([]Rule{
		{Method: http.MethodPost, Path: "/analyze", Limit: 60, Window: time.Hour, Burst: 1},
	})
	cfg.Whitelist["10.0.0.1"] = true
	cfg.Blacklist["10.0.0.9"] = true
	l := NewLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 5; i++ {
		allowed, _ := l.Allow("10.0.0.1", "/analyze", http.MethodPost)
		require.True(t, allowed, "whitelisted client is never throttled")
	}

	allowed, _ := l.Allow("10.0.0.9", "/health", http.MethodPost)
	assert.False(t, allowed, "blacklisted client is always refused")
}

func TestMatchRule(t *testing.T) {
	rules := DefaultRules()

	t.Run("exact match", func(t *testing.T) {
		rule := MatchRule("/analyze", http.MethodPost, rules)
		require.NotNil(t, rule)
		assert.Equal(t, 60, rule.Limit)
	})

	t.Run("prefix match for templated routes", func(t *testing.T) {
		rule := MatchRule("/watchlist/42", http.MethodDelete, rules)
		require.NotNil(t, rule)
		assert.Equal(t, 100, rule.Limit)
	})

	t.Run("method mismatch falls through", func(t *testing.T) {
		assert.Nil(t, MatchRule("/analyze", http.MethodGet, rules))
	})

	t.Run("unlisted read uses default", func(t *testing.T) {
		assert.Nil(t, MatchRule("/history", http.MethodGet, rules))
	})

	t.Run("health check is unlimited", func(t *testing.T) {
		rule := MatchRule("/health", http.MethodGet, rules)
		require.NotNil(t, rule)
		assert.Zero(t, rule.Limit)
	})
}

func TestLimiterSweepDropsIdleVisitors(t *testing.T) {
	l := NewLimiter(testConfig(nil))
	defer l.Stop()

	l.Allow("1.2.3.4", "/history", http.MethodGet)
	require.Len(t, l.visitors, 1)

	for _, v := range l.visitors {
		v.lastSeen = time.Now().Add(-2 * idleTTL)
	}
	l.sweep()
	assert.Empty(t, l.visitors)
}
