package github

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/signal-now/signal-agent/internal/types"
)

// repoActivityLimit bounds the commit window fetched for repository targets.
const repoActivityLimit = 30

// userEvent mirrors the wire shape of the /users/{handle}/events feed.
type userEvent struct {
	Type string `json:"type"`
	Repo struct {
		Name string `json:"name"`
	} `json:"repo"`
	Payload struct {
		Commits []struct {
			Message string `json:"message"`
		} `json:"commits"`
	} `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// repoCommit mirrors the wire shape of the /repos/{owner}/{name}/commits feed.
type repoCommit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Date time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	Author *struct {
		Login     string `json:"login"`
		AvatarURL string `json:"avatar_url"`
		HTMLURL   string `json:"html_url"`
		Type      string `json:"type"`
	} `json:"author"`
}

// FetchEvents returns the bounded recent-activity window for a target,
// most recent first. Identifiers containing a path separator are treated as
// "owner/name" repositories; everything else as a user or org handle.
func (c *Client) FetchEvents(ctx context.Context, identifier string) ([]types.ActivityEvent, error) {
	if types.IsRepositoryTarget(identifier) {
		return c.fetchRepoEvents(ctx, identifier)
	}
	return c.fetchUserEvents(ctx, identifier)
}

func (c *Client) fetchUserEvents(ctx context.Context, handle string) ([]types.ActivityEvent, error) {
	var raw []userEvent
	path := fmt.Sprintf("/users/%s/events", handle)
	if err := c.getJSON(ctx, path, handle, &raw); err != nil {
		return nil, err
	}

	events := make([]types.ActivityEvent, 0, len(raw))
	for _, e := range raw {
		events = append(events, types.ActivityEvent{
			Kind:       normalizeEventKind(e.Type),
			Repository: e.Repo.Name,
			Message:    firstCommitMessage(e),
			Timestamp:  e.CreatedAt,
		})
	}
	return events, nil
}

// fetchRepoEvents synthesizes an activity window for a repository from its
// recent commits, since repositories have no event feed of their own.
func (c *Client) fetchRepoEvents(ctx context.Context, repoFullName string) ([]types.ActivityEvent, error) {
	commits, err := c.fetchRepoCommits(ctx, repoFullName, repoActivityLimit)
	if err != nil {
		return nil, err
	}

	events := make([]types.ActivityEvent, 0, len(commits))
	for _, commit := range commits {
		events = append(events, types.ActivityEvent{
			Kind:       types.EventPush,
			Repository: repoFullName,
			Message:    firstLine(commit.Commit.Message),
			Timestamp:  commit.Commit.Author.Date,
		})
	}
	return events, nil
}

func (c *Client) fetchRepoCommits(ctx context.Context, repoFullName string, limit int) ([]repoCommit, error) {
	var commits []repoCommit
	path := fmt.Sprintf("/repos/%s/commits?per_page=%d", repoFullName, limit)
	if err := c.getJSON(ctx, path, repoFullName, &commits); err != nil {
		return nil, err
	}
	return commits, nil
}

// normalizeEventKind maps raw GitHub event types onto the small kind enum
// the rest of the system works with.
func normalizeEventKind(eventType string) types.EventKind {
	switch eventType {
	case "PushEvent":
		return types.EventPush
	case "IssuesEvent", "IssueCommentEvent":
		return types.EventIssue
	case "PullRequestEvent", "PullRequestReviewEvent", "PullRequestReviewCommentEvent":
		return types.EventPullRequest
	default:
		return types.EventOther
	}
}

// firstCommitMessage extracts the first commit message from a push event, or
// falls back to the raw event type so non-push events still carry a label.
func firstCommitMessage(e userEvent) string {
	if len(e.Payload.Commits) > 0 && e.Payload.Commits[0].Message != "" {
		return firstLine(e.Payload.Commits[0].Message)
	}
	return "Action: " + e.Type
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
