package types

import "time"

// Candidate is a person discovered by resolving a watch target. Candidates
// are created during discovery, scored by the ranker, and either promoted to
// assessment or discarded; they are never persisted.
type Candidate struct {
	Handle              string    `json:"handle"`
	OriginRepository    string    `json:"origin_repository,omitempty"`
	LastActivityMessage string    `json:"last_activity_message,omitempty"`
	LastActivityTime    time.Time `json:"last_activity_time,omitempty"`
	AvatarURL           string    `json:"avatar_url,omitempty"`
	ProfileURL          string    `json:"profile_url,omitempty"`

	// Enrichment fields, populated on demand.
	Bio           string `json:"bio,omitempty"`
	FollowerCount int    `json:"follower_count,omitempty"`
	Email         string `json:"email,omitempty"`
	Website       string `json:"website,omitempty"`

	// HeuristicScore is filled in by the ranker, 0-100.
	HeuristicScore int `json:"heuristic_score"`
}

// HasEmail reports whether the candidate exposes a public contact email.
func (c *Candidate) HasEmail() bool { return c.Email != "" }

// HasWebsite reports whether the candidate exposes a website or blog URL.
func (c *Candidate) HasWebsite() bool { return c.Website != "" }
