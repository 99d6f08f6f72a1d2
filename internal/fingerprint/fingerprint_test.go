package fingerprint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/signal-now/signal-agent/internal/types"
)

func makeEvents(n int, base time.Time) []types.ActivityEvent {
	events := make([]types.ActivityEvent, n)
	for i := range events {
		events[i] = types.ActivityEvent{
			Kind:       types.EventPush,
			Repository: "octocat/hello-world",
			Timestamp:  base.Add(-time.Duration(i) * time.Hour),
		}
	}
	return events
}

func TestComputeDeterministic(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	events := makeEvents(5, base)

	a := Compute(events)
	b := Compute(events)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64, "sha256 hex digest")
}

func TestComputeSensitivity(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	original := Compute(makeEvents(3, base))

	t.Run("kind change", func(t *testing.T) {
		events := makeEvents(3, base)
		events[1].Kind = types.EventIssue
		assert.NotEqual(t, original, Compute(events))
	})

	t.Run("repository change", func(t *testing.T) {
		events := makeEvents(3, base)
		events[0].Repository = "octocat/other"
		assert.NotEqual(t, original, Compute(events))
	})

	t.Run("timestamp change", func(t *testing.T) {
		events := makeEvents(3, base)
		events[2].Timestamp = events[2].Timestamp.Add(time.Second)
		assert.NotEqual(t, original, Compute(events))
	})

	t.Run("order change", func(t *testing.T) {
		events := makeEvents(3, base)
		events[0], events[1] = events[1], events[0]
		assert.NotEqual(t, original, Compute(events))
	})
}

func TestComputeTimezoneNormalized(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	est := time.FixedZone("EST", -5*3600)

	utcEvents := makeEvents(2, base)
	estEvents := makeEvents(2, base)
	for i := range estEvents {
		estEvents[i].Timestamp = estEvents[i].Timestamp.In(est)
	}

	assert.Equal(t, Compute(utcEvents), Compute(estEvents))
}

func TestComputeWindow(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ten := makeEvents(10, base)
	twelve := makeEvents(12, base)
	assert.Equal(t, Compute(ten), Compute(twelve),
		"events beyond the window must not affect the digest")

	// Mutating an event inside the window still changes it.
	changed := makeEvents(12, base)
	changed[9].Repository = "octocat/inside-window"
	assert.NotEqual(t, Compute(ten), Compute(changed))

	// Mutating an event outside the window does not.
	ignored := makeEvents(12, base)
	ignored[11].Repository = "octocat/outside-window"
	assert.Equal(t, Compute(ten), Compute(ignored))
}

func TestComputeEmpty(t *testing.T) {
	assert.Equal(t, Compute(nil), Compute([]types.ActivityEvent{}))
}

func TestFresh(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, Fresh(now.Add(-time.Minute), now))
	assert.True(t, Fresh(now.Add(-FreshFor+time.Second), now))
	assert.False(t, Fresh(now.Add(-FreshFor), now), "TTL boundary is stale")
	assert.False(t, Fresh(now.Add(-2*time.Hour), now))
}
