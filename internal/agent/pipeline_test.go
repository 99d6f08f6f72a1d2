package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signal-now/signal-agent/internal/llm"
	"github.com/signal-now/signal-agent/internal/types"
)

// fakeSource serves canned activity windows per identifier.
type fakeSource struct {
	mu     sync.Mutex
	events map[string][]types.ActivityEvent
	errs   map[string]error
	calls  []string
}

func (f *fakeSource) FetchEvents(_ context.Context, identifier string) ([]types.ActivityEvent, error) {
	f.mu.Lock()
	f.calls = append(f.calls, identifier)
	f.mu.Unlock()
	if err, ok := f.errs[identifier]; ok {
		return nil, err
	}
	return f.events[identifier], nil
}

// fakeLLM replays scripted responses per role and counts calls.
type fakeLLM struct {
	responses map[llm.Role]string
	errs      map[llm.Role]error
	calls     map[llm.Role]int
}

func newFakeLLM() *fakeLLM {
	return &fakeLLM{
		responses: map[llm.Role]string{},
		errs:      map[llm.Role]error{},
		calls:     map[llm.Role]int{},
	}
}

func (f *fakeLLM) generate(role llm.Role) (string, error) {
	f.calls[role]++
	if err := f.errs[role]; err != nil {
		return "", err
	}
	return f.responses[role], nil
}

func (f *fakeLLM) GenerateContent(_ context.Context, _ string, role llm.Role) (string, error) {
	return f.generate(role)
}

func (f *fakeLLM) GenerateJSON(_ context.Context, _ string, role llm.Role) (string, error) {
	return f.generate(role)
}

func (f *fakeLLM) GetModel(llm.Role) string { return "fake-model" }

func (f *fakeLLM) Close() error { return nil }

func (f *fakeLLM) totalCalls() int {
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// fakeStore is an in-memory SnapshotStore keyed by (user, target).
type fakeStore struct {
	snapshots map[string]*types.AssessmentSnapshot
	history   []*types.AssessmentHistoryEntry

	getErr    error
	upsertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{snapshots: map[string]*types.AssessmentSnapshot{}}
}

func storeKey(userID uuid.UUID, target string) string {
	return userID.String() + "/" + target
}

func (f *fakeStore) GetSnapshot(_ context.Context, userID uuid.UUID, target string) (*types.AssessmentSnapshot, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.snapshots[storeKey(userID, target)], nil
}

func (f *fakeStore) UpsertSnapshot(_ context.Context, snapshot *types.AssessmentSnapshot) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.snapshots[storeKey(snapshot.UserID, snapshot.TargetHandle)] = snapshot
	return nil
}

func (f *fakeStore) AppendHistory(_ context.Context, entry *types.AssessmentHistoryEntry) error {
	f.history = append(f.history, entry)
	return nil
}

func activeEvents(n int, base time.Time) []types.ActivityEvent {
	events := make([]types.ActivityEvent, n)
	for i := range events {
		events[i] = types.ActivityEvent{
			Kind:       types.EventPush,
			Repository: "target/repo",
			Message:    fmt.Sprintf("commit %d", i),
			Timestamp:  base.Add(-time.Duration(i) * time.Hour),
		}
	}
	return events
}

const researcherJSON = `{
  "recent_activity_summary": "Shipping a Rust parser rewrite.",
  "primary_technologies": ["Rust", "WASM"],
  "activity_pattern": "highly_active",
  "notable_signals": ["migration to a new crate layout"]
}`

const idleResearcherJSON = `{
  "recent_activity_summary": "Nothing recent.",
  "primary_technologies": [],
  "activity_pattern": "idle",
  "notable_signals": []
}`

func strategistJSON(score int, level string) string {
	return fmt.Sprintf(`{
  "readiness_score": %d,
  "readiness_level": %q,
  "timing_analysis": "active right now",
  "bridge": "you both work on parsers",
  "the_hook": "the crate migration",
  "reasoning": "stack overlap and fresh activity",
  "confidence": "high"
}`, score, level)
}

func testPipeline(t *testing.T, source *fakeSource, client *fakeLLM, store SnapshotStore, now time.Time) *Pipeline {
	t.Helper()
	p, err := New(Options{
		Source: source,
		LLM:    client,
		Store:  store,
		Now:    func() time.Time { return now },
	})
	require.NoError(t, err)
	return p
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Options{LLM: newFakeLLM()})
	var missing *MissingConfigurationError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "activity source", missing.What)

	_, err = New(Options{Source: &fakeSource{}})
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "LLM client", missing.What)
}

func TestAnalyzeValidatesRequest(t *testing.T) {
	p := testPipeline(t, &fakeSource{}, newFakeLLM(), nil, time.Now())

	_, err := p.Analyze(context.Background(), AnalyzeRequest{SourceHandle: "me"})
	var missing *MissingConfigurationError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "target", missing.What)

	_, err = p.Analyze(context.Background(), AnalyzeRequest{Target: "them"})
	require.ErrorAs(t, err, &missing)
}

func TestAnalyzeEngageEndToEnd(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{events: map[string][]types.ActivityEvent{
		"them": activeEvents(4, now),
		"me":   activeEvents(2, now),
	}}
	client := newFakeLLM()
	client.responses[llm.RoleResearcher] = researcherJSON
	client.responses[llm.RoleStrategist] = strategistJSON(85, "high")
	client.responses[llm.RoleGhostwriter] = "Hey, saw the crate migration land.\n"
	store := newFakeStore()

	userID := uuid.New()
	p := testPipeline(t, source, client, store, now)
	result, err := p.Analyze(context.Background(), AnalyzeRequest{
		UserID:       userID,
		SourceHandle: "me",
		Target:       "them",
		Goal:         "find rust developers",
	})
	require.NoError(t, err)

	assert.Equal(t, types.DecisionEngage, result.Decision)
	assert.Equal(t, 85, result.Score)
	assert.Equal(t, types.ReadinessHigh, result.ReadinessLevel)
	assert.Equal(t, "Hey, saw the crate migration land.", result.Icebreaker)
	assert.Equal(t, []string{"Rust", "WASM"}, result.FocusAreas)
	assert.Equal(t, "Send the message now", result.NextStep)
	assert.False(t, result.Cached)
	require.NotNil(t, result.Trace)
	assert.Equal(t, types.PatternHighlyActive, result.Trace.Researcher.ActivityPattern)

	assert.Equal(t, 1, client.calls[llm.RoleResearcher])
	assert.Equal(t, 1, client.calls[llm.RoleStrategist])
	assert.Equal(t, 1, client.calls[llm.RoleGhostwriter])

	stored := store.snapshots[storeKey(userID, "them")]
	require.NotNil(t, stored)
	assert.Equal(t, types.DecisionEngage, stored.Decision)
	assert.NotEmpty(t, stored.ActivityFingerprint)
	assert.Equal(t, now, stored.LastCheckedAt)
	require.Len(t, store.history, 1)
	assert.Equal(t, "them", store.history[0].TargetHandle)
}

func TestAnalyzeSkipsGhostwriterBelowEngage(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{events: map[string][]types.ActivityEvent{
		"them": activeEvents(3, now),
		"me":   nil,
	}}
	client := newFakeLLM()
	client.responses[llm.RoleResearcher] = researcherJSON
	client.responses[llm.RoleStrategist] = strategistJSON(55, "medium")

	p := testPipeline(t, source, client, nil, now)
	result, err := p.Analyze(context.Background(), AnalyzeRequest{SourceHandle: "me", Target: "them"})
	require.NoError(t, err)

	assert.Equal(t, types.DecisionWait, result.Decision)
	assert.Empty(t, result.Icebreaker)
	assert.Zero(t, client.calls[llm.RoleGhostwriter])
}

func TestAnalyzeCacheShortCircuit(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	events := activeEvents(4, now)
	source := &fakeSource{events: map[string][]types.ActivityEvent{
		"them": events,
		"me":   nil,
	}}
	client := newFakeLLM()
	client.responses[llm.RoleResearcher] = researcherJSON
	client.responses[llm.RoleStrategist] = strategistJSON(85, "high")
	client.responses[llm.RoleGhostwriter] = "draft"
	store := newFakeStore()

	userID := uuid.New()
	p := testPipeline(t, source, client, store, now)
	req := AnalyzeRequest{UserID: userID, SourceHandle: "me", Target: "them"}

	first, err := p.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	firstCalls := client.totalCalls()
	assert.Equal(t, 3, firstCalls)

	// Same fingerprint inside the TTL: no generation calls at all.
	second, err := p.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Decision, second.Decision)
	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Icebreaker, second.Icebreaker)
	assert.Equal(t, firstCalls, client.totalCalls())
	assert.Len(t, store.history, 1, "cached runs do not append history")
}

func TestAnalyzeStaleSnapshotRecomputes(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{events: map[string][]types.ActivityEvent{
		"them": activeEvents(4, now),
		"me":   nil,
	}}
	client := newFakeLLM()
	client.responses[llm.RoleResearcher] = researcherJSON
	client.responses[llm.RoleStrategist] = strategistJSON(50, "medium")
	store := newFakeStore()

	userID := uuid.New()
	p := testPipeline(t, source, client, store, now)
	req := AnalyzeRequest{UserID: userID, SourceHandle: "me", Target: "them"}

	_, err := p.Analyze(context.Background(), req)
	require.NoError(t, err)
	callsAfterFirst := client.totalCalls()

	// Age the snapshot past the TTL; the unchanged fingerprint no longer
	// shields the run.
	store.snapshots[storeKey(userID, "them")].LastCheckedAt = now.Add(-time.Hour)

	result, err := p.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.Cached)
	assert.Greater(t, client.totalCalls(), callsAfterFirst)
}

func TestAnalyzeSnapshotUpsertReplaces(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{events: map[string][]types.ActivityEvent{
		"them": activeEvents(4, now),
		"me":   nil,
	}}
	client := newFakeLLM()
	client.responses[llm.RoleResearcher] = researcherJSON
	client.responses[llm.RoleStrategist] = strategistJSON(50, "medium")
	store := newFakeStore()

	userID := uuid.New()
	p := testPipeline(t, source, client, store, now)
	req := AnalyzeRequest{UserID: userID, SourceHandle: "me", Target: "them"}

	_, err := p.Analyze(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, store.snapshots, 1)

	// Age the snapshot past the TTL and change the model's answer; the
	// second run must replace the (user, target) row, not add another.
	store.snapshots[storeKey(userID, "them")].LastCheckedAt = now.Add(-time.Hour)
	client.responses[llm.RoleStrategist] = strategistJSON(62, "medium")

	_, err = p.Analyze(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, store.snapshots, 1, "one live row per (user, target)")
	stored := store.snapshots[storeKey(userID, "them")]
	assert.Equal(t, 62, stored.ReadinessScore)
	assert.Equal(t, now, stored.LastCheckedAt)
	assert.Len(t, store.history, 2, "history stays append-only")
}

func TestAnalyzeEmptyWindowWaitsWithoutStages(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{events: map[string][]types.ActivityEvent{}}
	client := newFakeLLM()
	store := newFakeStore()

	p := testPipeline(t, source, client, store, now)
	result, err := p.Analyze(context.Background(), AnalyzeRequest{
		UserID: uuid.New(), SourceHandle: "me", Target: "ghost",
	})
	require.NoError(t, err)

	assert.Equal(t, types.DecisionWait, result.Decision)
	assert.Zero(t, result.Score)
	assert.Equal(t, types.ReadinessLow, result.ReadinessLevel)
	assert.Zero(t, client.totalCalls())
	require.Len(t, store.history, 1)
}

func TestAnalyzeIdlePatternStopsAfterResearch(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{events: map[string][]types.ActivityEvent{
		"them": activeEvents(2, now.Add(-60*24*time.Hour)),
		"me":   nil,
	}}
	client := newFakeLLM()
	client.responses[llm.RoleResearcher] = idleResearcherJSON

	p := testPipeline(t, source, client, nil, now)
	result, err := p.Analyze(context.Background(), AnalyzeRequest{SourceHandle: "me", Target: "them"})
	require.NoError(t, err)

	assert.Equal(t, types.DecisionWait, result.Decision)
	assert.Zero(t, result.Score)
	assert.Equal(t, 1, client.calls[llm.RoleResearcher])
	assert.Zero(t, client.calls[llm.RoleStrategist])
	assert.Zero(t, client.calls[llm.RoleGhostwriter])
}

func TestAnalyzeMalformedStageOutput(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{events: map[string][]types.ActivityEvent{
		"them": activeEvents(2, now),
		"me":   nil,
	}}
	client := newFakeLLM()
	client.responses[llm.RoleResearcher] = `{"recent_activity_summary": "x"}` // missing required fields

	p := testPipeline(t, source, client, nil, now)
	_, err := p.Analyze(context.Background(), AnalyzeRequest{SourceHandle: "me", Target: "them"})

	var malformed *MalformedOutputError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "researcher", malformed.Stage)
}

func TestAnalyzeStageFailurePropagates(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{events: map[string][]types.ActivityEvent{
		"them": activeEvents(2, now),
		"me":   nil,
	}}
	client := newFakeLLM()
	client.responses[llm.RoleResearcher] = researcherJSON
	client.errs[llm.RoleStrategist] = errors.New("quota exhausted")

	p := testPipeline(t, source, client, nil, now)
	_, err := p.Analyze(context.Background(), AnalyzeRequest{SourceHandle: "me", Target: "them"})

	var stage *StageError
	require.ErrorAs(t, err, &stage)
	assert.Equal(t, "strategist", stage.Stage)
}

func TestAnalyzeTargetFetchFailureIsFatal(t *testing.T) {
	source := &fakeSource{
		events: map[string][]types.ActivityEvent{"me": nil},
		errs:   map[string]error{"them": errors.New("boom")},
	}
	p := testPipeline(t, source, newFakeLLM(), nil, time.Now())

	_, err := p.Analyze(context.Background(), AnalyzeRequest{SourceHandle: "me", Target: "them"})
	require.Error(t, err)
}

func TestAnalyzeRequesterFetchFailureDegrades(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{
		events: map[string][]types.ActivityEvent{"them": activeEvents(2, now)},
		errs:   map[string]error{"me": errors.New("flaky")},
	}
	client := newFakeLLM()
	client.responses[llm.RoleResearcher] = researcherJSON
	client.responses[llm.RoleStrategist] = strategistJSON(45, "medium")

	p := testPipeline(t, source, client, nil, now)
	result, err := p.Analyze(context.Background(), AnalyzeRequest{SourceHandle: "me", Target: "them"})
	require.NoError(t, err)
	assert.Equal(t, types.DecisionWait, result.Decision)
}

func TestAnalyzeStoreFailuresDegrade(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{events: map[string][]types.ActivityEvent{
		"them": activeEvents(2, now),
		"me":   nil,
	}}
	client := newFakeLLM()
	client.responses[llm.RoleResearcher] = researcherJSON
	client.responses[llm.RoleStrategist] = strategistJSON(45, "medium")
	store := newFakeStore()
	store.getErr = errors.New("db down")
	store.upsertErr = errors.New("db down")

	p := testPipeline(t, source, client, store, now)
	result, err := p.Analyze(context.Background(), AnalyzeRequest{
		UserID: uuid.New(), SourceHandle: "me", Target: "them",
	})
	require.NoError(t, err)
	assert.Equal(t, types.DecisionWait, result.Decision)
}

func TestAnalyzePrefetchedRequesterEvents(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{events: map[string][]types.ActivityEvent{
		"them": activeEvents(2, now),
	}}
	client := newFakeLLM()
	client.responses[llm.RoleResearcher] = researcherJSON
	client.responses[llm.RoleStrategist] = strategistJSON(45, "medium")

	p := testPipeline(t, source, client, nil, now)
	_, err := p.Analyze(context.Background(), AnalyzeRequest{
		Target:          "them",
		RequesterEvents: activeEvents(1, now),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"them"}, source.calls, "requester window must not be re-fetched")
}
