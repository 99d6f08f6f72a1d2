// Package llm provides centralized LLM configuration and client abstractions
// for the assessment agents.
package llm

// Role identifies which assessment agent a generation call serves. Each role
// can be pinned to its own model.
type Role string

// Agent roles.
const (
	// RoleResearcher extracts factual signals from raw activity.
	RoleResearcher Role = "researcher"
	// RoleStrategist scores outreach readiness and finds the bridge.
	RoleStrategist Role = "strategist"
	// RoleGhostwriter drafts the outreach message.
	RoleGhostwriter Role = "ghostwriter"
)

// Provider represents an LLM provider.
type Provider string

// Provider constants define supported LLM providers.
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is the OpenAI provider (future)
	ProviderOpenAI Provider = "openai"
	// ProviderAnthropic is the Anthropic/Claude provider (future)
	ProviderAnthropic Provider = "anthropic"
)

// Config holds the model configuration for the application.
type Config struct {
	Provider Provider
	Models   map[Role]string
}

// DefaultConfig returns the default configuration (currently Gemini).
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration. All three
// roles run on flash; pin the strategist to a stronger model via WithModel
// when cost allows.
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[Role]string{
			RoleResearcher:  "gemini-2.5-flash",
			RoleStrategist:  "gemini-2.5-flash",
			RoleGhostwriter: "gemini-2.5-flash",
		},
	}
}

// GetModel returns the model name for a given role, falling back to the
// researcher model for unknown roles.
func (c *Config) GetModel(role Role) string {
	if model, ok := c.Models[role]; ok {
		return model
	}
	if model, ok := c.Models[RoleResearcher]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a role.
func (c *Config) WithModel(role Role, model string) *Config {
	newConfig := &Config{
		Provider: c.Provider,
		Models:   make(map[Role]string),
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[role] = model
	return newConfig
}
