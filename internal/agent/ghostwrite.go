package agent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/signal-now/signal-agent/internal/llm"
	"github.com/signal-now/signal-agent/internal/prompts"
	"github.com/signal-now/signal-agent/internal/types"
)

// runGhostwriter executes stage 3: drafting the outreach message. Only runs
// after the decision policy has yielded ENGAGE.
func (p *Pipeline) runGhostwriter(ctx context.Context, strategy *types.ReadinessStrategy) (string, error) {
	strategyJSON, err := json.MarshalIndent(strategy, "", "  ")
	if err != nil {
		return "", err
	}

	prompt := prompts.Format(prompts.MustGet("agents.json", "ghostwriter"), map[string]string{
		"Strategy": string(strategyJSON),
	})

	message, err := p.llm.GenerateContent(ctx, prompt, llm.RoleGhostwriter)
	if err != nil {
		return "", &StageError{Stage: "ghostwriter", Cause: err}
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return "", &MalformedOutputError{Stage: "ghostwriter", Raw: message}
	}
	return message, nil
}
