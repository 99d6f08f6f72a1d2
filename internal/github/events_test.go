package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signal-now/signal-agent/internal/types"
)

const userEventsBody = `[
  {
    "type": "PushEvent",
    "repo": {"name": "alice/parser"},
    "payload": {"commits": [{"message": "Fix lexer panic on empty input\n\nLonger body here."}]},
    "created_at": "2026-03-01T11:00:00Z"
  },
  {
    "type": "IssueCommentEvent",
    "repo": {"name": "acme/gateway"},
    "payload": {},
    "created_at": "2026-03-01T10:00:00Z"
  },
  {
    "type": "PullRequestReviewEvent",
    "repo": {"name": "acme/gateway"},
    "payload": {},
    "created_at": "2026-03-01T09:00:00Z"
  },
  {
    "type": "WatchEvent",
    "repo": {"name": "someone/starred"},
    "payload": {},
    "created_at": "2026-03-01T08:00:00Z"
  }
]`

const repoCommitsBody = `[
  {
    "sha": "abc123",
    "commit": {
      "message": "Add streaming decoder\n\nDetails.",
      "author": {"date": "2026-03-01T11:30:00Z"}
    },
    "author": {"login": "alice", "avatar_url": "https://avatars.example/alice", "html_url": "https://github.com/alice", "type": "User"}
  },
  {
    "sha": "def456",
    "commit": {
      "message": "Bump deps",
      "author": {"date": "2026-03-01T10:30:00Z"}
    },
    "author": {"login": "alice", "avatar_url": "https://avatars.example/alice", "html_url": "https://github.com/alice", "type": "User"}
  },
  {
    "sha": "0a1b2c",
    "commit": {
      "message": "Apply automated formatting",
      "author": {"date": "2026-03-01T09:30:00Z"}
    },
    "author": {"login": "format-bot", "avatar_url": "", "html_url": "", "type": "Bot"}
  },
  {
    "sha": "3d4e5f",
    "commit": {
      "message": "Document retry semantics",
      "author": {"date": "2026-03-01T08:30:00Z"}
    },
    "author": {"login": "bob", "avatar_url": "https://avatars.example/bob", "html_url": "https://github.com/bob", "type": "User"}
  }
]`

func newStubAPI(t *testing.T, routes map[string]string) *Client {
	t.Helper()
	mux := http.NewServeMux()
	for path, body := range routes {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		})
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return testClient(server.URL, 0)
}

func TestFetchEventsUser(t *testing.T) {
	client := newStubAPI(t, map[string]string{
		"/users/alice/events": userEventsBody,
	})

	events, err := client.FetchEvents(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, events, 4)

	assert.Equal(t, types.EventPush, events[0].Kind)
	assert.Equal(t, "alice/parser", events[0].Repository)
	assert.Equal(t, "Fix lexer panic on empty input", events[0].Message, "only the first commit line")
	assert.Equal(t, time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC), events[0].Timestamp)

	assert.Equal(t, types.EventIssue, events[1].Kind)
	assert.Equal(t, "Action: IssueCommentEvent", events[1].Message)
	assert.Equal(t, types.EventPullRequest, events[2].Kind)
	assert.Equal(t, types.EventOther, events[3].Kind)
}

func TestFetchEventsRepository(t *testing.T) {
	client := newStubAPI(t, map[string]string{
		"/repos/acme/gateway/commits": repoCommitsBody,
	})

	events, err := client.FetchEvents(context.Background(), "acme/gateway")
	require.NoError(t, err)
	require.Len(t, events, 4)

	for _, e := range events {
		assert.Equal(t, types.EventPush, e.Kind)
		assert.Equal(t, "acme/gateway", e.Repository)
	}
	assert.Equal(t, "Add streaming decoder", events[0].Message)
	assert.Equal(t, time.Date(2026, 3, 1, 11, 30, 0, 0, time.UTC), events[0].Timestamp)
}

func TestFetchEventsUnknownUser(t *testing.T) {
	client := newStubAPI(t, nil)

	_, err := client.FetchEvents(context.Background(), "nobody")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nobody", notFound.Target)
}

func TestRepoContributors(t *testing.T) {
	client := newStubAPI(t, map[string]string{
		"/repos/acme/gateway/commits": repoCommitsBody,
	})

	candidates, err := client.RepoContributors(context.Background(), "acme/gateway", 5)
	require.NoError(t, err)

	// alice deduplicated, the bot dropped.
	require.Len(t, candidates, 2)
	assert.Equal(t, "alice", candidates[0].Handle)
	assert.Equal(t, "acme/gateway", candidates[0].OriginRepository)
	assert.Equal(t, "Add streaming decoder", candidates[0].LastActivityMessage)
	assert.Equal(t, "https://github.com/alice", candidates[0].ProfileURL)
	assert.Equal(t, "bob", candidates[1].Handle)
}

func TestRepoContributorsLimit(t *testing.T) {
	client := newStubAPI(t, map[string]string{
		"/repos/acme/gateway/commits": repoCommitsBody,
	})

	candidates, err := client.RepoContributors(context.Background(), "acme/gateway", 1)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "alice", candidates[0].Handle)
}

func TestOrgContributors(t *testing.T) {
	client := newStubAPI(t, map[string]string{
		"/orgs/acme/repos":            `[{"full_name": "acme/gateway"}, {"full_name": "acme/archived"}]`,
		"/repos/acme/gateway/commits": repoCommitsBody,
		// acme/archived 404s; the org fan-out tolerates it.
	})

	candidates, err := client.OrgContributors(context.Background(), "acme", 10)
	require.NoError(t, err)

	require.Len(t, candidates, 2)
	assert.Equal(t, "alice", candidates[0].Handle)
	assert.Equal(t, "bob", candidates[1].Handle)
}

func TestEnrichCandidate(t *testing.T) {
	client := newStubAPI(t, map[string]string{
		"/users/alice": `{
			"login": "alice",
			"bio": "Compilers and coffee",
			"followers": 412,
			"email": "alice@example.com",
			"blog": "https://alice.dev",
			"avatar_url": "https://avatars.example/alice",
			"html_url": "https://github.com/alice"
		}`,
	})

	candidate := types.Candidate{Handle: "alice"}
	require.NoError(t, client.EnrichCandidate(context.Background(), &candidate))

	assert.Equal(t, "Compilers and coffee", candidate.Bio)
	assert.Equal(t, 412, candidate.FollowerCount)
	assert.Equal(t, "alice@example.com", candidate.Email)
	assert.Equal(t, "https://alice.dev", candidate.Website)
	assert.Equal(t, "https://avatars.example/alice", candidate.AvatarURL)
}

func TestEnrichCandidatesSkipsFailures(t *testing.T) {
	client := newStubAPI(t, map[string]string{
		"/users/alice": `{"login": "alice", "bio": "Here", "followers": 7}`,
	})

	candidates := client.EnrichCandidates(context.Background(), []types.Candidate{
		{Handle: "alice"},
		{Handle: "gone"},
	})

	require.Len(t, candidates, 2)
	assert.Equal(t, "Here", candidates[0].Bio)
	assert.Empty(t, candidates[1].Bio, "missing profile leaves the candidate unchanged")
}
