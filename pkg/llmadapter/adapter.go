package llmadapter

import (
	"context"
	"fmt"

	"github.com/gl4d3/powerpulse/pkg/models"
)

// Result is one unit's outcome, positionally mapped to the input batch.
// Fallback is true when the element required substitution.
type Result struct {
	Metrics  models.AIMetrics
	Fallback bool
}

// Adapter is the concrete capability C5 exposes to the job scheduler (C6):
// analyze_daily_batch(units) -> (results, usage). It is the same regardless
// of which Provider backs it; only Provider.Call differs per vendor.
type Adapter struct {
	provider Provider
}

// New wires an Adapter to a concrete Provider, selected by configuration
// (see pkg/config.LLMProviderConfig.Type) rather than by call-site dispatch.
func New(provider Provider) *Adapter {
	return &Adapter{provider: provider}
}

// AnyFallback reports whether any result in a batch required fallback
// substitution, the signal C6 uses to mark the owning job failed per §4.6's
// failure-isolation rule.
func AnyFallback(results []Result) bool {
	for _, r := range results {
		if r.Fallback {
			return true
		}
	}
	return false
}

// AnalyzeDailyBatch builds one prompt for the whole batch, issues a single
// provider call, and parses the response with fallback substitution. A
// non-nil error means the provider call itself failed (network, 5xx,
// rate-limit) -- a transient failure it is the caller's (C6's)
// responsibility to retry. A malformed response never surfaces as an error:
// it resolves to per-unit fallback records instead, per §4.5.
func (a *Adapter) AnalyzeDailyBatch(ctx context.Context, units []models.DailyUnit) ([]Result, *Usage, error) {
	if len(units) == 0 {
		return nil, nil, nil
	}

	prompt := BuildPrompt(units)
	raw, usage, err := a.provider.Call(ctx, prompt)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", a.provider.Name(), err)
	}

	results, _ := ParseResponse(raw, len(units))
	return results, usage, nil
}
