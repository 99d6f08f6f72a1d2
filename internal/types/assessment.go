package types

import (
	"time"

	"github.com/google/uuid"
)

// ActivityPattern is the coarse activity classification produced by the
// research stage.
type ActivityPattern string

// Activity patterns, least to most active.
const (
	PatternIdle         ActivityPattern = "idle"
	PatternActive       ActivityPattern = "active"
	PatternHighlyActive ActivityPattern = "highly_active"
)

// ReadinessLevel buckets a readiness score.
type ReadinessLevel string

// Readiness levels.
const (
	ReadinessLow    ReadinessLevel = "low"
	ReadinessMedium ReadinessLevel = "medium"
	ReadinessHigh   ReadinessLevel = "high"
)

// ResearchReport is the structured output of the research stage: factual,
// evidence-based signals extracted from a target's raw activity window.
type ResearchReport struct {
	Summary             string          `json:"recent_activity_summary"`
	PrimaryTechnologies []string        `json:"primary_technologies"`
	ActivityPattern     ActivityPattern `json:"activity_pattern"`
	NotableSignals      []string        `json:"notable_signals"`
}

// ReadinessStrategy is the structured output of the strategy stage: whether
// this is a good moment to reach out, and the strongest connection point.
type ReadinessStrategy struct {
	ReadinessScore int            `json:"readiness_score"`
	ReadinessLevel ReadinessLevel `json:"readiness_level"`
	TimingAnalysis string         `json:"timing_analysis"`
	Bridge         string         `json:"bridge"`
	TheHook        string         `json:"the_hook"`
	Reasoning      string         `json:"reasoning"`
	Confidence     string         `json:"confidence"`
}

// Decision is the outreach status computed by the decision policy.
type Decision string

// Outreach decisions.
const (
	DecisionEngage   Decision = "ENGAGE"
	DecisionWait     Decision = "WAIT"
	DecisionIgnore   Decision = "IGNORE"
	DecisionNoChange Decision = "NO_CHANGE"
)

// Priority orders decisions for presentation: ENGAGE sorts before WAIT,
// WAIT before IGNORE, IGNORE before NO_CHANGE. Unknown decisions sort last.
func (d Decision) Priority() int {
	switch d {
	case DecisionEngage:
		return 0
	case DecisionWait:
		return 1
	case DecisionIgnore:
		return 2
	case DecisionNoChange:
		return 3
	default:
		return 99
	}
}

// Valid reports whether d is one of the four known decisions.
func (d Decision) Valid() bool {
	return d.Priority() != 99
}

// AssessmentSnapshot is the persisted last-known state for one
// (user, target) pair. At most one live row exists per pair; each completed
// pipeline run upserts it.
type AssessmentSnapshot struct {
	UserID              uuid.UUID `json:"user_id"`
	TargetHandle        string    `json:"target_handle"`
	ActivityFingerprint string    `json:"activity_fingerprint"`
	ReadinessScore      int       `json:"readiness_score"`
	ReadinessLevel      ReadinessLevel `json:"readiness_level"`
	Decision            Decision  `json:"decision"`
	Bridge              string    `json:"bridge,omitempty"`
	Reasoning           string    `json:"reasoning,omitempty"`
	FocusAreas          []string  `json:"focus_areas,omitempty"`
	Icebreaker          string    `json:"icebreaker,omitempty"`
	NextStep            string    `json:"next_step,omitempty"`
	LastCheckedAt       time.Time `json:"last_checked_at"`
}

// AssessmentTrace carries the intermediate stage outputs for debugging and
// history logging.
type AssessmentTrace struct {
	Researcher  *ResearchReport    `json:"researcher,omitempty"`
	Strategist  *ReadinessStrategy `json:"strategist,omitempty"`
	Ghostwriter string             `json:"ghostwriter,omitempty"`
}

// AssessmentHistoryEntry is one append-only row per completed pipeline run.
// Write-only from the pipeline's point of view; never read back by it.
type AssessmentHistoryEntry struct {
	ID             uuid.UUID        `json:"id"`
	UserID         uuid.UUID        `json:"user_id"`
	TargetHandle   string           `json:"target_handle"`
	Timestamp      time.Time        `json:"timestamp"`
	ReadinessScore int              `json:"readiness_score"`
	Decision       Decision         `json:"decision"`
	Reasoning      string           `json:"reasoning,omitempty"`
	Bridge         string           `json:"bridge,omitempty"`
	Trace          *AssessmentTrace `json:"trace,omitempty"`
}

// AssessmentResult is what one completed pipeline run returns to the caller.
type AssessmentResult struct {
	Target         string           `json:"target"`
	Decision       Decision         `json:"decision"`
	Score          int              `json:"score"`
	ReadinessLevel ReadinessLevel   `json:"readiness_level"`
	Reasoning      string           `json:"reasoning,omitempty"`
	Bridge         string           `json:"bridge,omitempty"`
	FocusAreas     []string         `json:"focus_areas,omitempty"`
	Icebreaker     string           `json:"icebreaker,omitempty"`
	NextStep       string           `json:"next_step,omitempty"`
	Cached         bool             `json:"cached,omitempty"`
	Trace          *AssessmentTrace `json:"trace,omitempty"`
}

// TargetError records a per-target failure inside a batch run. A failed
// target is reported distinctly from a low-score IGNORE so callers never
// conflate "could not assess" with "assessed and not worth engaging".
type TargetError struct {
	Target    string    `json:"target"`
	Message   string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}
