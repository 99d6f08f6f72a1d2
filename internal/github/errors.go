package github

import "fmt"

// NotFoundError indicates the upstream source has no such user, org, or
// repository. Non-fatal in batch context: callers catch it per target.
type NotFoundError struct {
	Target string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("github: %s not found", e.Target)
}

// RateLimitError indicates the upstream quota is exhausted (403/429).
// Non-fatal in batch context; retried out-of-band by the caller, not here.
type RateLimitError struct {
	Target string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github: rate limited while fetching %s", e.Target)
}

// APIError represents any other non-2xx response from the GitHub API.
type APIError struct {
	Target     string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("github: API error %d for %s: %s", e.StatusCode, e.Target, e.Message)
	}
	return fmt.Sprintf("github: API error %d for %s", e.StatusCode, e.Target)
}
