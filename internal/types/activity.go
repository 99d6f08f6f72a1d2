// Package types provides type definitions for structured data used throughout the signal-agent system.
package types

import (
	"fmt"
	"strings"
	"time"
)

// EventKind classifies an observed GitHub action.
type EventKind string

// Known event kinds. Anything the provider reports that does not map to one
// of the first three is normalized to EventOther.
const (
	EventPush        EventKind = "push"
	EventIssue       EventKind = "issue"
	EventPullRequest EventKind = "pull_request"
	EventOther       EventKind = "other"
)

// ActivityEvent is one observed action by an actor, normalized from the
// provider's event feed. Events are ephemeral: produced fresh per fetch and
// never persisted directly.
type ActivityEvent struct {
	Kind       EventKind `json:"kind"`
	Repository string    `json:"repository"`
	Message    string    `json:"message,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// IsRepositoryTarget reports whether an identifier names a repository
// ("owner/name") rather than a bare user or org handle.
func IsRepositoryTarget(identifier string) bool {
	return strings.Contains(identifier, "/")
}

// RelativeTime renders a timestamp as a short human-readable age relative to
// now ("5 minutes ago", "3 days ago"). Used to annotate activity windows
// before they are embedded in prompts.
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	case d < 7*24*time.Hour:
		return plural(int(d.Hours()/24), "day")
	case d < 30*24*time.Hour:
		return plural(int(d.Hours()/(24*7)), "week")
	default:
		return plural(int(d.Hours()/(24*30)), "month")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
