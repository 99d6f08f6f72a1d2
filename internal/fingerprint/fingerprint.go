// Package fingerprint detects whether a target's recent activity has
// materially changed since the last assessment.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/signal-now/signal-agent/internal/types"
)

// window is how many of the most recent events participate in the
// fingerprint. Changes below this horizon do not count as change.
const window = 10

// FreshFor is the TTL on a stored snapshot. A snapshot older than this
// forces a recompute even when the fingerprint is unchanged.
const FreshFor = 30 * time.Minute

// Compute returns a stable hex digest over the first `window` events
// (already most-recent-first). Identical input always yields an identical
// digest across runs and process restarts; any change to the kind,
// repository, or timestamp of an event within the window changes it.
func Compute(events []types.ActivityEvent) string {
	n := len(events)
	if n > window {
		n = window
	}

	var sb strings.Builder
	for i := 0; i < n; i++ {
		e := events[i]
		sb.WriteString(string(e.Kind))
		sb.WriteByte(':')
		sb.WriteString(e.Repository)
		sb.WriteByte(':')
		sb.WriteString(e.Timestamp.UTC().Format(time.RFC3339))
		sb.WriteByte('|')
	}

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

// Fresh reports whether a snapshot checked at lastCheckedAt is still within
// the TTL at the given instant. Freshness is independent of fingerprint
// equality; only the combination of fresh AND fingerprint-equal allows the
// pipeline to short-circuit to the cached decision.
func Fresh(lastCheckedAt, now time.Time) bool {
	return now.Sub(lastCheckedAt) < FreshFor
}
