// Package discovery resolves watch targets (people, organizations,
// repositories) into ranked candidate lists and orchestrates batch
// assessments over them.
package discovery

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/signal-now/signal-agent/internal/ranking"
	"github.com/signal-now/signal-agent/internal/types"
)

// Per-target candidate caps.
const (
	repoCandidateLimit = 5
	orgCandidateLimit  = 10
)

// Target is one watch target to resolve.
type Target struct {
	Type  types.TargetType `json:"type"`
	Value string           `json:"value"`
}

// CandidateSource discovers and enriches candidates from the upstream
// activity source.
type CandidateSource interface {
	RepoContributors(ctx context.Context, repoFullName string, limit int) ([]types.Candidate, error)
	OrgContributors(ctx context.Context, orgName string, limit int) ([]types.Candidate, error)
	EnrichCandidates(ctx context.Context, candidates []types.Candidate) []types.Candidate
}

// Resolver turns watch targets into deduplicated, ranked candidates.
type Resolver struct {
	source CandidateSource
	now    func() time.Time
}

// NewResolver creates a Resolver over the given source.
func NewResolver(source CandidateSource) *Resolver {
	return &Resolver{source: source, now: time.Now}
}

// Resolve maps each watch target to its candidates concurrently. One
// failing target never aborts the batch: its failure is collected as a
// warning and the rest proceed. Candidates are deduplicated globally by
// handle, first-seen (in input target order) winning.
func (r *Resolver) Resolve(ctx context.Context, targets []Target) ([]types.Candidate, []types.TargetError) {
	perTarget := make([][]types.Candidate, len(targets))
	failures := make([]*types.TargetError, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	for i, target := range targets {
		g.Go(func() error {
			candidates, err := r.resolveOne(gctx, target)
			if err != nil {
				failures[i] = &types.TargetError{
					Target:    target.Value,
					Message:   err.Error(),
					Timestamp: r.now(),
				}
				return nil
			}
			perTarget[i] = candidates
			return nil
		})
	}
	_ = g.Wait() // individual errors are captured per target

	seen := make(map[string]bool)
	var merged []types.Candidate
	var warnings []types.TargetError
	for i := range targets {
		if failures[i] != nil {
			warnings = append(warnings, *failures[i])
			continue
		}
		for _, candidate := range perTarget[i] {
			if candidate.Handle == "" || seen[candidate.Handle] {
				continue
			}
			seen[candidate.Handle] = true
			merged = append(merged, candidate)
		}
	}
	return merged, warnings
}

func (r *Resolver) resolveOne(ctx context.Context, target Target) ([]types.Candidate, error) {
	switch target.Type {
	case types.TargetRepository:
		return r.source.RepoContributors(ctx, target.Value, repoCandidateLimit)
	case types.TargetOrganization:
		return r.source.OrgContributors(ctx, target.Value, orgCandidateLimit)
	default:
		// A direct handle resolves to itself.
		return []types.Candidate{{Handle: target.Value}}, nil
	}
}

// Discover resolves, enriches, and ranks candidates against the goal,
// returning at most limit of them plus any per-target warnings.
func (r *Resolver) Discover(ctx context.Context, targets []Target, goalText string, limit int) ([]types.Candidate, []types.TargetError) {
	candidates, warnings := r.Resolve(ctx, targets)
	candidates = r.source.EnrichCandidates(ctx, candidates)
	return ranking.Rank(candidates, goalText, limit), warnings
}
