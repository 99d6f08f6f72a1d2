package ranking

import (
	"strings"

	"github.com/signal-now/signal-agent/internal/types"
)

// Per-component caps. Each sub-score is clamped to its cap before summing;
// the final score is clamped to [0,100].
const (
	pointsPerKeyword   = 10
	bioRelevanceCap    = 40
	commitRelevanceCap = 30
	socialProofCap     = 20
	contactabilityCap  = 10
	contactPoints      = 5
	maxScore           = 100
)

// Score computes the heuristic relevance score for one candidate against a
// set of goal keywords. Pure and deterministic: no I/O, no side effects.
func Score(candidate *types.Candidate, keywords []string) int {
	score := bioRelevance(candidate.Bio, keywords) +
		commitRelevance(candidate.LastActivityMessage, keywords) +
		socialProof(candidate.FollowerCount) +
		contactability(candidate)

	return clamp(score, 0, maxScore)
}

// bioRelevance awards points per distinct goal keyword found as a
// case-insensitive substring of the bio.
func bioRelevance(bio string, keywords []string) int {
	return clamp(keywordHits(bio, keywords)*pointsPerKeyword, 0, bioRelevanceCap)
}

// commitRelevance awards points per distinct goal keyword found in the
// candidate's last activity message.
func commitRelevance(message string, keywords []string) int {
	return clamp(keywordHits(message, keywords)*pointsPerKeyword, 0, commitRelevanceCap)
}

// socialProof awards one point per ten followers.
func socialProof(followers int) int {
	return clamp(followers/10, 0, socialProofCap)
}

// contactability awards points for each reachable channel.
func contactability(candidate *types.Candidate) int {
	points := 0
	if candidate.HasEmail() {
		points += contactPoints
	}
	if candidate.HasWebsite() {
		points += contactPoints
	}
	return clamp(points, 0, contactabilityCap)
}

func keywordHits(text string, keywords []string) int {
	if text == "" || len(keywords) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	hits := 0
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			hits++
		}
	}
	return hits
}

func clamp(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
