package llmadapter

import (
	"encoding/json"
	"strings"

	"github.com/gl4d3/powerpulse/pkg/models"
)

// fallbackAnalysisError is the sentinel error string stamped on every
// fallback record, per the §4.5 parsing contract.
const fallbackAnalysisError = "analysis_failed"

// FallbackMetrics is the canned record substituted whenever the model's
// response (or one element of it) deviates from the strict JSON contract.
func FallbackMetrics() models.AIMetrics {
	return models.AIMetrics{
		SentimentScore:     5,
		SentimentShift:     0,
		ResolutionAchieved: 5,
		FCRScore:           5,
		CES:                4,
		Error:              fallbackAnalysisError,
	}
}

// rawElement is the wire shape of one batch element before range checks.
// Pointers distinguish "field absent" from "field present but zero".
type rawElement struct {
	SentimentScore     *float64 `json:"sentiment_score"`
	SentimentShift     *float64 `json:"sentiment_shift"`
	ResolutionAchieved *float64 `json:"resolution_achieved"`
	FCRScore           *float64 `json:"fcr_score"`
	CES                *float64 `json:"ces"`
}

func (e rawElement) valid() bool {
	return inRange(e.SentimentScore, 0, 10) &&
		inRange(e.SentimentShift, -5, 5) &&
		inRange(e.ResolutionAchieved, 0, 10) &&
		inRange(e.FCRScore, 0, 10) &&
		inRange(e.CES, 1, 7)
}

func inRange(v *float64, lo, hi float64) bool {
	if v == nil {
		return false
	}
	return *v >= lo && *v <= hi
}

func (e rawElement) toMetrics() models.AIMetrics {
	return models.AIMetrics{
		SentimentScore:     float32(*e.SentimentScore),
		SentimentShift:     float32(*e.SentimentShift),
		ResolutionAchieved: float32(*e.ResolutionAchieved),
		FCRScore:           float32(*e.FCRScore),
		CES:                float32(*e.CES),
	}
}

// ParseResponse enforces §4.5's parsing contract: the response must decode
// as a JSON array of exactly n elements. Non-JSON or wrong length cannot be
// mapped positionally, so every unit falls back. Once the array's length is
// confirmed, each element is checked independently: a well-formed element
// keeps its real values, a malformed one (missing keys, out-of-range) falls
// back on its own, leaving its siblings untouched. anyDeviation reports
// whether fallback substitution happened anywhere, which the caller (C6)
// uses to decide whether the owning job is marked failed.
func ParseResponse(raw string, n int) (results []Result, anyDeviation bool) {
	results = make([]Result, n)

	var elements []rawElement
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &elements); err != nil || len(elements) != n {
		for i := range results {
			results[i] = Result{Metrics: FallbackMetrics(), Fallback: true}
		}
		return results, true
	}

	for i, e := range elements {
		if !e.valid() {
			results[i] = Result{Metrics: FallbackMetrics(), Fallback: true}
			anyDeviation = true
			continue
		}
		results[i] = Result{Metrics: e.toMetrics(), Fallback: false}
	}
	return results, anyDeviation
}
