package llm

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Client is an abstraction over LLM providers.
type Client interface {
	// GenerateContent generates plain text content for the given role.
	GenerateContent(ctx context.Context, prompt string, role Role) (string, error)
	// GenerateJSON generates JSON content for the given role. The result
	// has any markdown fencing already stripped but is NOT guaranteed to
	// parse; callers validate at their boundary.
	GenerateJSON(ctx context.Context, prompt string, role Role) (string, error)
	// GetModel returns the underlying provider model for a role.
	GetModel(role Role) string
	// Close releases any resources held by the client.
	Close() error
}

// NewClient creates a new LLM client based on configuration.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return NewGeminiClient(ctx, config, apiKey)
	}
}

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// Generation retry bounds. Stage outputs are relatively cheap to retry; a
// burst of 429s or a flaky 5xx should not fail an assessment outright.
const (
	maxGenerateAttempts  = 3
	generateRetryBackoff = 2 * time.Second
)

// GenerateContent generates plain text content for the given role.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, role Role) (string, error) {
	modelName := c.config.GetModel(role)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for role %s", role)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(0.1) // Low temperature for consistent output

	resp, err := c.generateWithRetry(ctx, model, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(resp)
}

// GenerateJSON generates JSON content for the given role.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, role Role) (string, error) {
	modelName := c.config.GetModel(role)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for role %s", role)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(0.1) // Low temperature for consistent output
	model.ResponseMIMEType = "application/json"

	resp, err := c.generateWithRetry(ctx, model, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", err
	}

	return CleanJSONBlock(text), nil
}

// generateWithRetry calls the model, retrying rate limits and server
// errors with doubling backoff plus jitter.
func (c *GeminiClient) generateWithRetry(ctx context.Context, model *genai.GenerativeModel, prompt string) (*genai.GenerateContentResponse, error) {
	var lastErr error
	backoff := generateRetryBackoff

	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		if attempt > 0 {
			wait := backoff + time.Duration(rand.Int63n(int64(backoff/4)))
			backoff *= 2
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err == nil {
			return resp, nil
		}
		if !isTransientGenerateError(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func isTransientGenerateError(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429 || apiErr.Code >= 500
	}
	return false
}

// GetModel returns the model name for a role.
func (c *GeminiClient) GetModel(role Role) string {
	return c.config.GetModel(role)
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from a Gemini API response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
