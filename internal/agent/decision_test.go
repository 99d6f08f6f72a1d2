package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/signal-now/signal-agent/internal/types"
)

func snapshotAt(score int, checkedAt time.Time) *types.AssessmentSnapshot {
	return &types.AssessmentSnapshot{
		ReadinessScore: score,
		LastCheckedAt:  checkedAt,
	}
}

func TestDecide(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fresh := now.Add(-10 * time.Minute)
	stale := now.Add(-2 * time.Hour)

	tests := []struct {
		name     string
		score    int
		previous *types.AssessmentSnapshot
		want     types.Decision
	}{
		{"engage at threshold no history", 70, nil, types.DecisionEngage},
		{"engage above threshold", 85, nil, types.DecisionEngage},
		{"engage beats no-change", 71, snapshotAt(69, fresh), types.DecisionEngage},
		{"engage after stale snapshot", 71, snapshotAt(65, stale), types.DecisionEngage},
		{"no change on small delta", 50, snapshotAt(48, fresh), types.DecisionNoChange},
		{"no change at delta boundary minus one", 50, snapshotAt(46, fresh), types.DecisionNoChange},
		{"wait when delta reaches threshold", 50, snapshotAt(45, fresh), types.DecisionWait},
		{"wait when snapshot stale", 50, snapshotAt(48, stale), types.DecisionWait},
		{"wait at threshold no history", 40, nil, types.DecisionWait},
		{"ignore below wait", 39, nil, types.DecisionIgnore},
		{"ignore small delta but stale", 20, snapshotAt(22, stale), types.DecisionIgnore},
		{"no change below wait with fresh history", 20, snapshotAt(22, fresh), types.DecisionNoChange},
		{"ignore zero score", 0, nil, types.DecisionIgnore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.score, tt.previous, now))
		})
	}
}

func TestDecideNegativeDelta(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fresh := now.Add(-5 * time.Minute)

	// A drop is a change too once it clears the delta.
	assert.Equal(t, types.DecisionWait, Decide(45, snapshotAt(60, fresh), now))
	assert.Equal(t, types.DecisionNoChange, Decide(58, snapshotAt(60, fresh), now))
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, types.ReadinessHigh, LevelFor(70))
	assert.Equal(t, types.ReadinessHigh, LevelFor(100))
	assert.Equal(t, types.ReadinessMedium, LevelFor(40))
	assert.Equal(t, types.ReadinessMedium, LevelFor(69))
	assert.Equal(t, types.ReadinessLow, LevelFor(39))
	assert.Equal(t, types.ReadinessLow, LevelFor(0))
}

func TestNextStepFor(t *testing.T) {
	assert.Equal(t, "Send the message now", NextStepFor(types.DecisionEngage))
	assert.Equal(t, "Check again soon", NextStepFor(types.DecisionWait))
	assert.Equal(t, "No action needed", NextStepFor(types.DecisionNoChange))
	assert.Equal(t, "Move on", NextStepFor(types.DecisionIgnore))
}
