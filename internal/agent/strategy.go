package agent

import (
	"context"
	"encoding/json"

	"github.com/signal-now/signal-agent/internal/llm"
	"github.com/signal-now/signal-agent/internal/prompts"
	"github.com/signal-now/signal-agent/internal/schemas"
	"github.com/signal-now/signal-agent/internal/types"
)

// requesterWindowLimit bounds how much of the requester's own activity the
// strategist sees when looking for the bridge.
const requesterWindowLimit = 10

// runStrategist executes stage 2: comparing the researcher's report with the
// requester's own activity and goal to score outreach readiness.
func (p *Pipeline) runStrategist(ctx context.Context, report *types.ResearchReport, myEvents []types.ActivityEvent, goal string, previous *types.AssessmentSnapshot) (*types.ReadinessStrategy, error) {
	reportJSON, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, err
	}

	myWindow := toPromptEvents(myEvents, requesterWindowLimit, p.now())
	myJSON, err := json.MarshalIndent(myWindow, "", "  ")
	if err != nil {
		return nil, err
	}

	prevJSON := "none"
	if previous != nil {
		b, err := json.MarshalIndent(previous, "", "  ")
		if err != nil {
			return nil, err
		}
		prevJSON = string(b)
	}

	goalText := goal
	if goalText == "" {
		// No goal shifts the strategist onto timing-led weighting.
		goalText = "(no goal configured; weight timing and stack overlap instead)"
	}

	prompt := prompts.Format(prompts.MustGet("agents.json", "strategist"), map[string]string{
		"TargetProfile":      string(reportJSON),
		"MyActivity":         string(myJSON),
		"Goal":               goalText,
		"PreviousAssessment": prevJSON,
	})

	raw, err := p.llm.GenerateJSON(ctx, prompt, llm.RoleStrategist)
	if err != nil {
		return nil, &StageError{Stage: "strategist", Cause: err}
	}

	if err := schemas.Validate(schemas.ReadinessStrategy, []byte(raw)); err != nil {
		return nil, &MalformedOutputError{Stage: "strategist", Raw: raw, Cause: err}
	}

	var strategy types.ReadinessStrategy
	if err := json.Unmarshal([]byte(raw), &strategy); err != nil {
		return nil, &MalformedOutputError{Stage: "strategist", Raw: raw, Cause: err}
	}
	return &strategy, nil
}
