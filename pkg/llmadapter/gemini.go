package llmadapter

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider calls Google's Gemini models through google.golang.org/genai.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider builds a provider bound to one model name. apiKey is
// resolved by the caller from the configured APIKeyEnv (pkg/config).
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}
	return &GeminiProvider{client: client, model: model}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

// Call sends one prompt and returns the model's raw text plus token usage
// when Gemini reports it.
func (p *GeminiProvider) Call(ctx context.Context, prompt string) (string, *Usage, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), nil)
	if err != nil {
		return "", nil, fmt.Errorf("gemini: generate content: %w", err)
	}

	var usage *Usage
	if resp.UsageMetadata != nil {
		promptTokens := int(resp.UsageMetadata.PromptTokenCount)
		responseTokens := int(resp.UsageMetadata.CandidatesTokenCount)
		usage = &Usage{PromptTokens: &promptTokens, ResponseTokens: &responseTokens}
	}

	return resp.Text(), usage, nil
}
