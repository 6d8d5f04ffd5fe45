// Package llm provides model configuration and client abstractions over the
// generative-text providers used for resume synthesis.
package llm

import "time"

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: style analysis, classification
	TierLite ModelTier = "lite"
	// TierStandard is for structured output: resume field generation
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long-context reasoning: experience extraction, profile updates
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

const (
	// ProviderGemini uses the github.com/google/generative-ai-go SDK
	ProviderGemini Provider = "gemini"
	// ProviderGenAI uses the google.golang.org/genai SDK
	ProviderGenAI Provider = "genai"
)

// Providers lists the supported providers
var Providers = []Provider{ProviderGemini, ProviderGenAI}

// Config holds the model configuration for the application
type Config struct {
	Provider        Provider
	Models          map[ModelTier]string
	Temperature     float32
	MaxOutputTokens int32
	Timeout         time.Duration
	MaxAttempts     int
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature:     0.3,
		MaxOutputTokens: 2000,
		Timeout:         300 * time.Second,
		MaxAttempts:     1,
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok && model != "" {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok && model != "" {
		return model
	}
	if model, ok := c.Models[TierLite]; ok && model != "" {
		return model
	}
	return ""
}

// WithModel returns a copy of the config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := *c
	newConfig.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return &newConfig
}

// WithAllModels returns a copy of the config using one model for every tier
func (c *Config) WithAllModels(model string) *Config {
	newConfig := c
	for _, tier := range []ModelTier{TierLite, TierStandard, TierAdvanced} {
		newConfig = newConfig.WithModel(tier, model)
	}
	return newConfig
}
