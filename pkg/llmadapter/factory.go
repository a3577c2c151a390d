package llmadapter

import (
	"context"
	"fmt"
	"os"

	"github.com/gl4d3/powerpulse/pkg/config"
)

// NewFromConfig builds the Adapter selected by cfg.AIService, resolving its API key
// from the environment variable named by APIKeyEnv. Selection is by
// configuration, never by call-site type assertions.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Adapter, error) {
	providerCfg, err := cfg.ActiveLLMProvider()
	if err != nil {
		return nil, err
	}

	var apiKey string
	if providerCfg.APIKeyEnv != "" {
		apiKey = os.Getenv(providerCfg.APIKeyEnv)
	}

	switch providerCfg.Type {
	case config.LLMProviderGemini:
		provider, err := NewGeminiProvider(ctx, apiKey, providerCfg.Model)
		if err != nil {
			return nil, err
		}
		return New(provider), nil
	case config.LLMProviderOpenAI:
		return New(NewOpenAIProvider(apiKey, providerCfg.Model, providerCfg.BaseURL)), nil
	default:
		return nil, fmt.Errorf("llmadapter: unsupported provider type %q", providerCfg.Type)
	}
}
