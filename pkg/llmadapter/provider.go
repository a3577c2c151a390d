// Package llmadapter is C5: it builds one prompt over a batch of daily
// units, hands it to a configured Provider, and parses the response with
// fallback substitution whenever it deviates from the strict JSON contract.
package llmadapter

import "context"

// Usage reports LLM token accounting for one batch call. Either field is
// nil when the provider doesn't report it.
type Usage struct {
	PromptTokens   *int
	ResponseTokens *int
}

// Provider is the transport-level capability each concrete LLM backend
// implements: send one already-built prompt, get back raw text plus usage.
// Prompt construction and response parsing are shared across providers
// (prompt.go, parse.go); only the wire call differs per backend, so
// selection between variants happens by configuration
// (pkg/config.LLMProviderConfig.Type), not by dynamic type dispatch at call
// sites.
type Provider interface {
	Name() string
	Call(ctx context.Context, prompt string) (raw string, usage *Usage, err error)
}
