package types

import "github.com/go-playground/validator/v10"

// TargetType classifies a watch target.
type TargetType string

// Watch target types. A username resolves to itself, an org to its most
// recently pushed repositories' contributors, a repo to its recent commit
// authors.
const (
	TargetUsername     TargetType = "username"
	TargetOrganization TargetType = "org"
	TargetRepository   TargetType = "repo"
)

// AddWatchTargetRequest is the request body for adding a watch target.
type AddWatchTargetRequest struct {
	TargetType  TargetType `json:"target_type" validate:"required,oneof=username org repo"`
	TargetValue string     `json:"target_value" validate:"required,min=1"`
}

// BulkAddWatchTargetsRequest adds several watch targets at once, e.g. after
// a discovery run promotes multiple candidates.
type BulkAddWatchTargetsRequest struct {
	Targets []AddWatchTargetRequest `json:"targets" validate:"required,min=1,dive"`
}

// ToggleWatchTargetRequest activates or deactivates a watch target without
// removing it.
type ToggleWatchTargetRequest struct {
	IsActive bool `json:"is_active"`
}

// EngagementRequest records an outreach action taken by the user against a
// target (message sent, skipped, dismissed).
type EngagementRequest struct {
	Target  string `json:"target" validate:"required,min=1"`
	Action  string `json:"action" validate:"required,oneof=message_sent skipped dismissed"`
	Message string `json:"message,omitempty"`
}

// Validate validates the AddWatchTargetRequest using the validator.
func (r *AddWatchTargetRequest) Validate() error {
	return validator.New().Struct(r)
}

// Validate validates the BulkAddWatchTargetsRequest using the validator.
func (r *BulkAddWatchTargetsRequest) Validate() error {
	return validator.New().Struct(r)
}

// Validate validates the EngagementRequest using the validator.
func (r *EngagementRequest) Validate() error {
	return validator.New().Struct(r)
}
