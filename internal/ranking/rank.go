package ranking

import (
	"sort"

	"github.com/signal-now/signal-agent/internal/types"
)

// Rank deduplicates candidates by handle (first occurrence wins), scores
// each against the goal, and returns them sorted by score descending,
// truncated to limit. The sort is stable so ties preserve discovery order.
// An empty goal yields zero keyword scores and ranking degrades to social
// proof plus contactability.
func Rank(candidates []types.Candidate, goalText string, limit int) []types.Candidate {
	keywords := GoalKeywords(goalText)

	seen := make(map[string]bool, len(candidates))
	ranked := make([]types.Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Handle == "" || seen[candidate.Handle] {
			continue
		}
		seen[candidate.Handle] = true
		candidate.HeuristicScore = Score(&candidate, keywords)
		ranked = append(ranked, candidate)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].HeuristicScore > ranked[j].HeuristicScore
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
