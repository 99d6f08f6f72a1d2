package agent

import (
	"context"
	"encoding/json"
	"time"

	"github.com/signal-now/signal-agent/internal/llm"
	"github.com/signal-now/signal-agent/internal/prompts"
	"github.com/signal-now/signal-agent/internal/schemas"
	"github.com/signal-now/signal-agent/internal/types"
)

// targetWindowLimit bounds how much of the target's activity the researcher
// sees; anything older adds prompt cost without adding signal.
const targetWindowLimit = 15

// promptEvent is the compact event shape embedded in prompts: message text
// kept, exact timestamps replaced with relative ages.
type promptEvent struct {
	Kind       types.EventKind `json:"kind"`
	Repository string          `json:"repo"`
	Message    string          `json:"msg,omitempty"`
	Age        string          `json:"age"`
}

func toPromptEvents(events []types.ActivityEvent, limit int, now time.Time) []promptEvent {
	if len(events) > limit {
		events = events[:limit]
	}
	out := make([]promptEvent, 0, len(events))
	for _, e := range events {
		out = append(out, promptEvent{
			Kind:       e.Kind,
			Repository: e.Repository,
			Message:    e.Message,
			Age:        types.RelativeTime(e.Timestamp, now),
		})
	}
	return out
}

// runResearcher executes stage 1: factual extraction over the target's
// activity window. Output is schema-validated before anything downstream
// sees it.
func (p *Pipeline) runResearcher(ctx context.Context, events []types.ActivityEvent) (*types.ResearchReport, error) {
	window := toPromptEvents(events, targetWindowLimit, p.now())
	data, err := json.MarshalIndent(window, "", "  ")
	if err != nil {
		return nil, err
	}

	prompt := prompts.Format(prompts.MustGet("agents.json", "researcher"), map[string]string{
		"TargetActivity": string(data),
	})

	raw, err := p.llm.GenerateJSON(ctx, prompt, llm.RoleResearcher)
	if err != nil {
		return nil, &StageError{Stage: "researcher", Cause: err}
	}

	if err := schemas.Validate(schemas.ResearchReport, []byte(raw)); err != nil {
		return nil, &MalformedOutputError{Stage: "researcher", Raw: raw, Cause: err}
	}

	var report types.ResearchReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil, &MalformedOutputError{Stage: "researcher", Raw: raw, Cause: err}
	}
	return &report, nil
}
