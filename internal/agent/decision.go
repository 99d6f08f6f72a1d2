package agent

import (
	"time"

	"github.com/signal-now/signal-agent/internal/fingerprint"
	"github.com/signal-now/signal-agent/internal/types"
)

// Decision policy thresholds. The ENGAGE branch is deliberately checked
// before NO_CHANGE: a score at or above the engage threshold always engages,
// even when unchanged from the previous run, so NO_CHANGE is only reachable
// for sub-engage scores with small deltas.
const (
	engageThreshold = 70
	waitThreshold   = 40
	noChangeDelta   = 5
)

// Decide maps a fresh readiness score plus the previous snapshot onto one of
// the four outreach statuses. Pure function of its inputs; `now` is passed
// in so freshness is testable.
func Decide(score int, previous *types.AssessmentSnapshot, now time.Time) types.Decision {
	if score >= engageThreshold {
		return types.DecisionEngage
	}

	if previous != nil && fingerprint.Fresh(previous.LastCheckedAt, now) {
		delta := score - previous.ReadinessScore
		if delta < 0 {
			delta = -delta
		}
		if delta < noChangeDelta {
			return types.DecisionNoChange
		}
	}

	if score >= waitThreshold {
		return types.DecisionWait
	}
	return types.DecisionIgnore
}

// LevelFor buckets a score into a readiness level, used when the model's
// self-reported level is absent or inconsistent with its score.
func LevelFor(score int) types.ReadinessLevel {
	switch {
	case score >= engageThreshold:
		return types.ReadinessHigh
	case score >= waitThreshold:
		return types.ReadinessMedium
	default:
		return types.ReadinessLow
	}
}

// NextStepFor renders the follow-up instruction shown alongside a decision.
func NextStepFor(decision types.Decision) string {
	switch decision {
	case types.DecisionEngage:
		return "Send the message now"
	case types.DecisionWait:
		return "Check again soon"
	case types.DecisionNoChange:
		return "No action needed"
	default:
		return "Move on"
	}
}
