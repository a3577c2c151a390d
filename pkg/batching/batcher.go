// Package batching estimates LLM token cost for daily units and packs them
// into job-sized batches (C4).
package batching

import (
	"github.com/gl4d3/powerpulse/pkg/models"
)

// charsPerToken is the rough character-to-token ratio used for the
// estimate in SPEC_FULL ยง4.4: ceil(total_character_length / 4).
const charsPerToken = 4

// EstimateTokens returns the estimated token cost of one daily unit.
func EstimateTokens(unit models.DailyUnit) int {
	return ceilDiv(unit.TextLength(), charsPerToken)
}

func ceilDiv(n, d int) int {
	if n <= 0 {
		return 0
	}
	return (n + d - 1) / d
}

// Batch is one first-fit group of daily units destined for a single job,
// along with its total estimated token cost.
type Batch struct {
	Units      []models.DailyUnit
	TokenCount int
}

// Batcher packs daily units into batches honoring MAX_TOKENS_PER_JOB and
// BATCH_SIZE (SPEC_FULL ยง4.4).
type Batcher struct {
	MaxTokensPerJob int64
	BatchSize       int64
}

// NewBatcher builds a Batcher from the configured limits.
func NewBatcher(maxTokensPerJob, batchSize int64) *Batcher {
	return &Batcher{MaxTokensPerJob: maxTokensPerJob, BatchSize: batchSize}
}

// Pack groups units via first-fit: it appends a unit to the current batch
// if doing so would not exceed either limit, otherwise closes the batch and
// starts a new one. A unit that alone exceeds MaxTokensPerJob is still
// emitted, alone, in its own oversized batch, since splitting a single
// unit's messages is not supported.
func (b *Batcher) Pack(units []models.DailyUnit) []Batch {
	if len(units) == 0 {
		return nil
	}

	var batches []Batch
	var current []models.DailyUnit
	var currentTokens int

	flush := func() {
		if len(current) == 0 {
			return
		}
		batches = append(batches, Batch{Units: current, TokenCount: currentTokens})
		current = nil
		currentTokens = 0
	}

	for _, unit := range units {
		tokens := EstimateTokens(unit)

		fitsAlone := len(current) == 0
		withinTokens := int64(currentTokens+tokens) <= b.MaxTokensPerJob
		withinSize := int64(len(current)+1) <= b.BatchSize

		if !fitsAlone && (!withinTokens || !withinSize) {
			flush()
		}

		current = append(current, unit)
		currentTokens += tokens
	}
	flush()

	return batches
}
