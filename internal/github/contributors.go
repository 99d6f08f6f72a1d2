package github

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/signal-now/signal-agent/internal/types"
)

// orgRepoFanOut is how many of an org's most recently pushed repositories
// are mined for contributors.
const orgRepoFanOut = 3

// orgRepo mirrors the wire shape of the /orgs/{name}/repos listing.
type orgRepo struct {
	FullName string `json:"full_name"`
}

// userProfile mirrors the wire shape of /users/{handle}.
type userProfile struct {
	Login     string `json:"login"`
	Bio       string `json:"bio"`
	Followers int    `json:"followers"`
	Email     string `json:"email"`
	Blog      string `json:"blog"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

// RepoContributors returns the repository's most recently active unique
// commit authors, capped at limit. Recent commits are used instead of the
// all-time contributor list so the result reflects who is active now.
func (c *Client) RepoContributors(ctx context.Context, repoFullName string, limit int) ([]types.Candidate, error) {
	commits, err := c.fetchRepoCommits(ctx, repoFullName, repoActivityLimit)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	candidates := make([]types.Candidate, 0, limit)
	for _, commit := range commits {
		author := commit.Author
		if author == nil || author.Login == "" || author.Type != "User" {
			continue
		}
		if seen[author.Login] {
			continue
		}
		seen[author.Login] = true
		candidates = append(candidates, types.Candidate{
			Handle:              author.Login,
			OriginRepository:    repoFullName,
			LastActivityMessage: firstLine(commit.Commit.Message),
			LastActivityTime:    commit.Commit.Author.Date,
			AvatarURL:           author.AvatarURL,
			ProfileURL:          author.HTMLURL,
		})
		if len(candidates) >= limit {
			break
		}
	}
	return candidates, nil
}

// OrgContributors returns candidates from the organization's most recently
// pushed repositories, fetched concurrently, deduplicated by handle with
// first-seen ordering preserved, and capped at limit.
func (c *Client) OrgContributors(ctx context.Context, orgName string, limit int) ([]types.Candidate, error) {
	var repos []orgRepo
	path := fmt.Sprintf("/orgs/%s/repos?sort=pushed&direction=desc&per_page=%d", orgName, orgRepoFanOut)
	if err := c.getJSON(ctx, path, orgName, &repos); err != nil {
		return nil, err
	}

	perRepo := make([][]types.Candidate, len(repos))
	g, gctx := errgroup.WithContext(ctx)
	for i, repo := range repos {
		g.Go(func() error {
			list, err := c.RepoContributors(gctx, repo.FullName, orgRepoFanOut)
			if err != nil {
				// One unreadable repo should not sink the whole org.
				return nil
			}
			perRepo[i] = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var merged []types.Candidate
	for _, list := range perRepo {
		for _, candidate := range list {
			if seen[candidate.Handle] {
				continue
			}
			seen[candidate.Handle] = true
			merged = append(merged, candidate)
		}
	}

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// EnrichCandidate fills in the candidate's profile fields (bio, followers,
// contact) from their public profile. Enrichment failures leave the
// candidate unchanged; the ranker degrades to activity-only signals.
func (c *Client) EnrichCandidate(ctx context.Context, candidate *types.Candidate) error {
	var profile userProfile
	path := fmt.Sprintf("/users/%s", candidate.Handle)
	if err := c.getJSON(ctx, path, candidate.Handle, &profile); err != nil {
		return err
	}

	candidate.Bio = profile.Bio
	candidate.FollowerCount = profile.Followers
	candidate.Email = profile.Email
	candidate.Website = profile.Blog
	if candidate.AvatarURL == "" {
		candidate.AvatarURL = profile.AvatarURL
	}
	if candidate.ProfileURL == "" {
		candidate.ProfileURL = profile.HTMLURL
	}
	return nil
}

// EnrichCandidates enriches a batch of candidates concurrently. Failures
// are silently skipped per candidate.
func (c *Client) EnrichCandidates(ctx context.Context, candidates []types.Candidate) []types.Candidate {
	var wg sync.WaitGroup
	for i := range candidates {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.EnrichCandidate(ctx, &candidates[i])
		}()
	}
	wg.Wait()
	return candidates
}
