// Package ratelimit enforces per-client request quotas over the HTTP API.
// Assessment and discovery endpoints burn GitHub and generation quota on
// every call, so they carry much tighter limits than plain reads.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Info reports the quota state behind one Allow decision, for the
// X-RateLimit-* response headers.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// visitor is one live bucket plus the access time the sweeper keys off.
type visitor struct {
	limiter  *rate.Limiter
	rule     Rule
	lastSeen time.Time
}

// Limiter hands out a token bucket per (client, method, path) triple.
// Buckets idle longer than idleTTL are swept to keep the map bounded.
type Limiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	config   *Config
	sweeper  *time.Ticker
	done     chan struct{}
}

const idleTTL = time.Hour

// NewLimiter creates a Limiter. A nil config falls back to a rule-less
// default with generous limits.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:       true,
			DefaultLimit:  1000,
			DefaultWindow: time.Minute,
			SweepInterval: 5 * time.Minute,
			Whitelist:     map[string]bool{},
			Blacklist:     map[string]bool{},
		}
	}

	l := &Limiter{
		visitors: make(map[string]*visitor),
		config:   config,
	}

	if config.Enabled && config.SweepInterval > 0 {
		l.sweeper = time.NewTicker(config.SweepInterval)
		l.done = make(chan struct{})
		go l.sweepLoop()
	}
	return l
}

// Allow reports whether a request from clientID against method+path fits
// within its quota, consuming one token when it does.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	rule := MatchRule(path, method, l.config.Rules)
	if rule == nil {
		rule = &Rule{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	}
	if rule.Limit <= 0 {
		// Unlimited, e.g. the health check.
		return true, Info{Allowed: true}
	}

	v := l.visitor(clientID+":"+method+":"+path, *rule)

	now := time.Now()
	if v.limiter.Allow() {
		return true, l.infoFor(v, now, true, 0)
	}

	// Denied: ask the bucket when a token would next be available, without
	// actually holding the reservation.
	res := v.limiter.Reserve()
	retryAfter := res.Delay()
	res.Cancel()

	return false, l.infoFor(v, now, false, retryAfter)
}

func (l *Limiter) infoFor(v *visitor, now time.Time, allowed bool, retryAfter time.Duration) Info {
	tokens := v.limiter.Tokens()
	if tokens < 0 {
		tokens = 0
	}

	burst := float64(v.limiter.Burst())
	reset := now
	if tokens < burst {
		secondsUntilFull := (burst - tokens) / float64(v.limiter.Limit())
		reset = now.Add(time.Duration(secondsUntilFull * float64(time.Second)))
	}

	return Info{
		Allowed:    allowed,
		Limit:      v.rule.Limit,
		Remaining:  int(tokens),
		ResetTime:  reset,
		RetryAfter: retryAfter,
	}
}

// visitor returns the bucket for key, creating it on first sight.
func (l *Limiter) visitor(key string, rule Rule) *visitor {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[key]
	if !ok {
		burst := rule.Burst
		if burst <= 0 {
			burst = rule.Limit
		}
		perSecond := rate.Limit(float64(rule.Limit) / rule.Window.Seconds())
		v = &visitor{
			limiter: rate.NewLimiter(perSecond, burst),
			rule:    rule,
		}
		l.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v
}

func (l *Limiter) sweepLoop() {
	for {
		select {
		case <-l.sweeper.C:
			l.sweep()
		case <-l.done:
			return
		}
	}
}

func (l *Limiter) sweep() {
	cutoff := time.Now().Add(-idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, key)
		}
	}
}

// Stop shuts the sweeper down.
func (l *Limiter) Stop() {
	if l.sweeper != nil {
		l.sweeper.Stop()
	}
	if l.done != nil {
		close(l.done)
	}
}
