package llmadapter

import (
	"context"
	"fmt"

	sdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAIProvider calls an OpenAI-compatible chat completions endpoint
// through github.com/openai/openai-go/v2. BaseURL lets it target a
// self-hosted OpenAI-compatible server instead of api.openai.com.
type OpenAIProvider struct {
	client  sdk.Client
	model   string
	baseURL string
}

// NewOpenAIProvider builds a provider bound to one model name. apiKey is
// resolved by the caller from the configured APIKeyEnv (pkg/config).
func NewOpenAIProvider(apiKey, model, baseURL string) *OpenAIProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIProvider{client: sdk.NewClient(opts...), model: model, baseURL: baseURL}
}

func (p *OpenAIProvider) Name() string { return "openai" }

// Call sends one prompt as a single user message and returns the first
// choice's content plus token usage when the provider reports it.
func (p *OpenAIProvider) Call(ctx context.Context, prompt string) (string, *Usage, error) {
	params := sdk.ChatCompletionNewParams{
		Model: sdk.ChatModel(p.model),
		Messages: []sdk.ChatCompletionMessageParamUnion{
			sdk.UserMessage(prompt),
		},
	}

	comp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", nil, fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(comp.Choices) == 0 {
		return "", nil, fmt.Errorf("openai: empty response")
	}

	promptTokens := int(comp.Usage.PromptTokens)
	responseTokens := int(comp.Usage.CompletionTokens)
	usage := &Usage{PromptTokens: &promptTokens, ResponseTokens: &responseTokens}

	return comp.Choices[0].Message.Content, usage, nil
}
