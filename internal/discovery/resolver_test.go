package discovery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signal-now/signal-agent/internal/types"
)

// fakeCandidateSource serves canned contributor lists per repo/org.
type fakeCandidateSource struct {
	repos map[string][]types.Candidate
	orgs  map[string][]types.Candidate
	errs  map[string]error

	enriched bool
}

func (f *fakeCandidateSource) RepoContributors(_ context.Context, repo string, limit int) ([]types.Candidate, error) {
	if err := f.errs[repo]; err != nil {
		return nil, err
	}
	return capped(f.repos[repo], limit), nil
}

func (f *fakeCandidateSource) OrgContributors(_ context.Context, org string, limit int) ([]types.Candidate, error) {
	if err := f.errs[org]; err != nil {
		return nil, err
	}
	return capped(f.orgs[org], limit), nil
}

func (f *fakeCandidateSource) EnrichCandidates(_ context.Context, candidates []types.Candidate) []types.Candidate {
	f.enriched = true
	return candidates
}

func capped(candidates []types.Candidate, limit int) []types.Candidate {
	if len(candidates) > limit {
		return candidates[:limit]
	}
	return candidates
}

func handles(candidates []types.Candidate) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Handle)
	}
	return out
}

func TestResolveMergesAndDeduplicates(t *testing.T) {
	source := &fakeCandidateSource{
		repos: map[string][]types.Candidate{
			"acme/gateway": {{Handle: "alice"}, {Handle: "bob"}},
		},
		orgs: map[string][]types.Candidate{
			"acme": {{Handle: "bob"}, {Handle: "carol"}},
		},
	}
	r := NewResolver(source)

	candidates, warnings := r.Resolve(context.Background(), []Target{
		{Type: types.TargetRepository, Value: "acme/gateway"},
		{Type: types.TargetOrganization, Value: "acme"},
		{Type: types.TargetUsername, Value: "dave"},
	})

	assert.Empty(t, warnings)
	assert.Equal(t, []string{"alice", "bob", "carol", "dave"}, handles(candidates))
}

func TestResolveIsolatesFailures(t *testing.T) {
	source := &fakeCandidateSource{
		repos: map[string][]types.Candidate{
			"acme/gateway": {{Handle: "alice"}},
		},
		errs: map[string]error{
			"acme/deleted": errors.New("repository not found"),
		},
	}
	r := NewResolver(source)

	candidates, warnings := r.Resolve(context.Background(), []Target{
		{Type: types.TargetRepository, Value: "acme/deleted"},
		{Type: types.TargetRepository, Value: "acme/gateway"},
	})

	assert.Equal(t, []string{"alice"}, handles(candidates))
	require.Len(t, warnings, 1)
	assert.Equal(t, "acme/deleted", warnings[0].Target)
	assert.Contains(t, warnings[0].Message, "not found")
	assert.False(t, warnings[0].Timestamp.IsZero())
}

func TestResolveSkipsEmptyHandles(t *testing.T) {
	source := &fakeCandidateSource{
		repos: map[string][]types.Candidate{
			"acme/gateway": {{Handle: ""}, {Handle: "alice"}},
		},
	}
	r := NewResolver(source)

	candidates, warnings := r.Resolve(context.Background(), []Target{
		{Type: types.TargetRepository, Value: "acme/gateway"},
	})

	assert.Empty(t, warnings)
	assert.Equal(t, []string{"alice"}, handles(candidates))
}

func TestDiscoverEnrichesAndRanks(t *testing.T) {
	source := &fakeCandidateSource{
		repos: map[string][]types.Candidate{
			"acme/gateway": {
				{Handle: "lurker", Bio: "hi"},
				{Handle: "rustacean", Bio: "rust compiler work", Email: "r@example.com"},
			},
		},
	}
	r := NewResolver(source)

	candidates, warnings := r.Discover(context.Background(), []Target{
		{Type: types.TargetRepository, Value: "acme/gateway"},
	}, "looking for rust contributors", 1)

	assert.Empty(t, warnings)
	assert.True(t, source.enriched)
	require.Len(t, candidates, 1)
	assert.Equal(t, "rustacean", candidates[0].Handle)
	assert.Positive(t, candidates[0].HeuristicScore)
}
