// Package agent implements the three-stage outreach assessment pipeline:
// factual research over a target's recent activity, readiness scoring
// against the requester's goal, and message drafting when the decision is to
// engage. Stages run strictly in order; stage 3 is conditional.
package agent

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/signal-now/signal-agent/internal/fingerprint"
	"github.com/signal-now/signal-agent/internal/llm"
	"github.com/signal-now/signal-agent/internal/types"
)

// ActivitySource supplies the bounded recent-activity window for a target
// identifier (user handle or "owner/name" repository path).
type ActivitySource interface {
	FetchEvents(ctx context.Context, identifier string) ([]types.ActivityEvent, error)
}

// SnapshotStore persists the last-known assessment per (user, target) pair
// and the append-only assessment history. Implementations must make
// UpsertSnapshot idempotent on the (user, target) key.
type SnapshotStore interface {
	GetSnapshot(ctx context.Context, userID uuid.UUID, targetHandle string) (*types.AssessmentSnapshot, error)
	UpsertSnapshot(ctx context.Context, snapshot *types.AssessmentSnapshot) error
	AppendHistory(ctx context.Context, entry *types.AssessmentHistoryEntry) error
}

// Options wires the pipeline's collaborators. Source and LLM are required;
// Store may be nil, in which case every run is uncached and unlogged.
type Options struct {
	Source ActivitySource
	LLM    llm.Client
	Store  SnapshotStore

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// Pipeline runs assessments. Collaborators are injected explicitly; there
// are no package-level singletons.
type Pipeline struct {
	source ActivitySource
	llm    llm.Client
	store  SnapshotStore
	now    func() time.Time
}

// New creates a Pipeline from Options.
func New(opts Options) (*Pipeline, error) {
	if opts.Source == nil {
		return nil, &MissingConfigurationError{What: "activity source"}
	}
	if opts.LLM == nil {
		return nil, &MissingConfigurationError{What: "LLM client"}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		source: opts.Source,
		llm:    opts.LLM,
		store:  opts.Store,
		now:    now,
	}, nil
}

// AnalyzeRequest describes one assessment run.
type AnalyzeRequest struct {
	UserID       uuid.UUID
	SourceHandle string // the requester's own handle on the activity source
	Target       string // user handle or owner/name repository path
	Goal         string // may be empty; shifts scoring to timing-led weighting

	// RequesterEvents, when non-nil, skips re-fetching the requester's own
	// activity. Batch runs fetch it once and share it across targets.
	RequesterEvents []types.ActivityEvent
}

// Analyze runs the full pipeline for one target: fetch, change detection,
// the three stages, the decision policy, and persistence. Store failures
// degrade to an uncached, unlogged run rather than failing the assessment.
func (p *Pipeline) Analyze(ctx context.Context, req AnalyzeRequest) (*types.AssessmentResult, error) {
	if req.Target == "" {
		return nil, &MissingConfigurationError{What: "target"}
	}
	if req.SourceHandle == "" && req.RequesterEvents == nil {
		return nil, &MissingConfigurationError{What: "source identity (github handle)"}
	}

	targetEvents, myEvents, err := p.fetchActivity(ctx, req)
	if err != nil {
		return nil, err
	}

	fp := fingerprint.Compute(targetEvents)
	previous := p.loadSnapshot(ctx, req.UserID, req.Target)

	// Unchanged within the TTL: reuse the stored decision without touching
	// the generation service at all.
	if previous != nil && previous.ActivityFingerprint == fp && fingerprint.Fresh(previous.LastCheckedAt, p.now()) {
		return cachedResult(req.Target, previous), nil
	}

	// Stage 1. An empty window or an idle pattern ends the run immediately.
	if len(targetEvents) == 0 {
		return p.finish(ctx, req, fp, nil, idleStrategy("no recent public activity"), types.DecisionWait, "")
	}

	report, err := p.runResearcher(ctx, targetEvents)
	if err != nil {
		return nil, err
	}
	if report.ActivityPattern == types.PatternIdle {
		return p.finish(ctx, req, fp, report, idleStrategy("target is idle"), types.DecisionWait, "")
	}

	// Stage 2.
	strategy, err := p.runStrategist(ctx, report, myEvents, req.Goal, previous)
	if err != nil {
		return nil, err
	}

	decision := Decide(strategy.ReadinessScore, previous, p.now())

	// Stage 3, only worth the call when we are actually going to reach out.
	icebreaker := ""
	if decision == types.DecisionEngage {
		icebreaker, err = p.runGhostwriter(ctx, strategy)
		if err != nil {
			return nil, err
		}
	}

	return p.finish(ctx, req, fp, report, strategy, decision, icebreaker)
}

// fetchActivity retrieves the target's and the requester's windows
// concurrently. A target failure is fatal to this run; the requester fetch
// degrades to an empty window so one flaky call does not sink the target.
func (p *Pipeline) fetchActivity(ctx context.Context, req AnalyzeRequest) (targetEvents, myEvents []types.ActivityEvent, err error) {
	if req.RequesterEvents != nil {
		targetEvents, err = p.source.FetchEvents(ctx, req.Target)
		return targetEvents, req.RequesterEvents, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var fetchErr error
		targetEvents, fetchErr = p.source.FetchEvents(gctx, req.Target)
		return fetchErr
	})
	g.Go(func() error {
		events, fetchErr := p.source.FetchEvents(gctx, req.SourceHandle)
		if fetchErr != nil {
			log.Printf("requester activity fetch failed for %s: %v", req.SourceHandle, fetchErr)
			return nil
		}
		myEvents = events
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return targetEvents, myEvents, nil
}

func (p *Pipeline) loadSnapshot(ctx context.Context, userID uuid.UUID, target string) *types.AssessmentSnapshot {
	if p.store == nil {
		return nil
	}
	previous, err := p.store.GetSnapshot(ctx, userID, target)
	if err != nil {
		// Store outage: proceed without cache rather than failing the run.
		log.Printf("snapshot read failed for %s: %v", target, err)
		return nil
	}
	return previous
}

// finish assembles the result, persists the snapshot and history entry, and
// returns. Persistence failures are logged and otherwise ignored.
func (p *Pipeline) finish(ctx context.Context, req AnalyzeRequest, fp string, report *types.ResearchReport, strategy *types.ReadinessStrategy, decision types.Decision, icebreaker string) (*types.AssessmentResult, error) {
	now := p.now()

	level := strategy.ReadinessLevel
	if level == "" {
		level = LevelFor(strategy.ReadinessScore)
	}

	var focus []string
	if report != nil {
		focus = report.PrimaryTechnologies
	}

	result := &types.AssessmentResult{
		Target:         req.Target,
		Decision:       decision,
		Score:          strategy.ReadinessScore,
		ReadinessLevel: level,
		Reasoning:      strategy.Reasoning,
		Bridge:         strategy.Bridge,
		FocusAreas:     focus,
		Icebreaker:     icebreaker,
		NextStep:       NextStepFor(decision),
		Trace: &types.AssessmentTrace{
			Researcher:  report,
			Strategist:  strategy,
			Ghostwriter: icebreaker,
		},
	}

	if p.store != nil {
		snapshot := &types.AssessmentSnapshot{
			UserID:              req.UserID,
			TargetHandle:        req.Target,
			ActivityFingerprint: fp,
			ReadinessScore:      strategy.ReadinessScore,
			ReadinessLevel:      level,
			Decision:            decision,
			Bridge:              strategy.Bridge,
			Reasoning:           strategy.Reasoning,
			FocusAreas:          focus,
			Icebreaker:          icebreaker,
			NextStep:            result.NextStep,
			LastCheckedAt:       now,
		}
		if err := p.store.UpsertSnapshot(ctx, snapshot); err != nil {
			log.Printf("snapshot upsert failed for %s: %v", req.Target, err)
		}

		entry := &types.AssessmentHistoryEntry{
			ID:             uuid.New(),
			UserID:         req.UserID,
			TargetHandle:   req.Target,
			Timestamp:      now,
			ReadinessScore: strategy.ReadinessScore,
			Decision:       decision,
			Reasoning:      strategy.Reasoning,
			Bridge:         strategy.Bridge,
			Trace:          result.Trace,
		}
		if err := p.store.AppendHistory(ctx, entry); err != nil {
			log.Printf("history append failed for %s: %v", req.Target, err)
		}
	}

	return result, nil
}

// idleStrategy is the synthetic stage-2 output for short-circuited runs.
func idleStrategy(reason string) *types.ReadinessStrategy {
	return &types.ReadinessStrategy{
		ReadinessScore: 0,
		ReadinessLevel: types.ReadinessLow,
		TimingAnalysis: reason,
		Reasoning:      reason,
		Confidence:     "high",
	}
}

// cachedResult maps a fresh, fingerprint-identical snapshot back onto the
// result shape without re-running any stage.
func cachedResult(target string, snapshot *types.AssessmentSnapshot) *types.AssessmentResult {
	return &types.AssessmentResult{
		Target:         target,
		Decision:       snapshot.Decision,
		Score:          snapshot.ReadinessScore,
		ReadinessLevel: snapshot.ReadinessLevel,
		Reasoning:      snapshot.Reasoning,
		Bridge:         snapshot.Bridge,
		FocusAreas:     snapshot.FocusAreas,
		Icebreaker:     snapshot.Icebreaker,
		NextStep:       snapshot.NextStep,
		Cached:         true,
	}
}
