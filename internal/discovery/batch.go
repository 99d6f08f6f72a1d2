package discovery

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/signal-now/signal-agent/internal/agent"
	"github.com/signal-now/signal-agent/internal/types"
)

// maxConcurrentAssessments bounds how many pipeline runs are in flight at
// once within a batch; each run costs up to three generation calls.
const maxConcurrentAssessments = 3

// Assessor runs one assessment; satisfied by *agent.Pipeline.
type Assessor interface {
	Analyze(ctx context.Context, req agent.AnalyzeRequest) (*types.AssessmentResult, error)
}

// Batch fans assessments out over a set of targets with bounded
// concurrency and per-target error isolation.
type Batch struct {
	pipeline Assessor
	source   agent.ActivitySource
	now      func() time.Time
}

// NewBatch creates a Batch over the given pipeline and activity source.
func NewBatch(pipeline Assessor, source agent.ActivitySource) *Batch {
	return &Batch{pipeline: pipeline, source: source, now: time.Now}
}

// Outcome is the aggregate of one batch run. Errors are kept apart from
// results so a target that could not be assessed is never mistaken for one
// assessed and found not worth engaging.
type Outcome struct {
	Results []*types.AssessmentResult `json:"results"`
	Errors  []types.TargetError       `json:"errors,omitempty"`
}

// Assess runs the pipeline for every identifier, at most
// maxConcurrentAssessments at a time. The requester's own activity is
// fetched once and shared across all runs. Results come back sorted by
// decision priority (ENGAGE first), then score descending.
func (b *Batch) Assess(ctx context.Context, userID uuid.UUID, sourceHandle, goal string, identifiers []string) (*Outcome, error) {
	if sourceHandle == "" {
		return nil, &agent.MissingConfigurationError{What: "source identity (github handle)"}
	}

	// A failed requester fetch degrades to an empty shared window; each
	// target still gets assessed on its own activity.
	myEvents, err := b.source.FetchEvents(ctx, sourceHandle)
	if err != nil {
		myEvents = []types.ActivityEvent{}
	}

	results := make([]*types.AssessmentResult, len(identifiers))
	failures := make([]*types.TargetError, len(identifiers))

	sem := semaphore.NewWeighted(maxConcurrentAssessments)
	var wg sync.WaitGroup
	for i, identifier := range identifiers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				failures[i] = &types.TargetError{Target: identifier, Message: err.Error(), Timestamp: b.now()}
				return
			}
			defer sem.Release(1)

			result, err := b.pipeline.Analyze(ctx, agent.AnalyzeRequest{
				UserID:          userID,
				SourceHandle:    sourceHandle,
				Target:          identifier,
				Goal:            goal,
				RequesterEvents: myEvents,
			})
			if err != nil {
				failures[i] = &types.TargetError{Target: identifier, Message: err.Error(), Timestamp: b.now()}
				return
			}
			results[i] = result
		}()
	}
	wg.Wait()

	outcome := &Outcome{}
	for i := range identifiers {
		if failures[i] != nil {
			outcome.Errors = append(outcome.Errors, *failures[i])
			continue
		}
		if results[i] != nil {
			outcome.Results = append(outcome.Results, results[i])
		}
	}

	sort.SliceStable(outcome.Results, func(i, j int) bool {
		pi, pj := outcome.Results[i].Decision.Priority(), outcome.Results[j].Decision.Priority()
		if pi != pj {
			return pi < pj
		}
		return outcome.Results[i].Score > outcome.Results[j].Score
	})

	return outcome, nil
}
