package ratelimit

import (
	"net/http"
	"strings"
)

// unlimited marks an endpoint exempt from rate limiting.
var unlimited = Rule{}

// MatchRule finds the rule governing a method+path. Exact path matches win;
// rules whose path ends in "/" match as prefixes, covering templated routes
// like /watchlist/{id}. Returns nil when only the default limit applies.
func MatchRule(path, method string, rules []Rule) *Rule {
	// The health check answers load balancer probes; never throttle it.
	if path == "/health" && method == http.MethodGet {
		return &unlimited
	}

	for i := range rules {
		if rules[i].Method == method && rules[i].Path == path {
			return &rules[i]
		}
	}

	for i := range rules {
		if rules[i].Method != method || !strings.HasSuffix(rules[i].Path, "/") {
			continue
		}
		if strings.HasPrefix(path, rules[i].Path) {
			return &rules[i]
		}
	}

	return nil
}
