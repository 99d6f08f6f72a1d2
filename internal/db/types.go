package db

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user profile
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	GithubHandle string    `json:"github_handle,omitempty"`
	Goal         string    `json:"goal,omitempty"`
	PasswordHash string    `json:"-"` // Never serialize to JSON
	PasswordSet  bool      `json:"password_set"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// WatchTarget is a watchlist entry owned by a user. TargetValue is stored
// lowercase so lookups are case-insensitive.
type WatchTarget struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	TargetType  string    `json:"target_type"` // username, org, repo
	TargetValue string    `json:"target_value"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// EngagementLog records an outreach action the user actually took.
type EngagementLog struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	TargetHandle string    `json:"target_handle"`
	Action       string    `json:"action"` // message_sent, skipped, dismissed
	Message      string    `json:"message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
