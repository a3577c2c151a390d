package models

// AIMetrics holds the five micro-metrics an LLM call returns for one
// DailyAnalysis unit (SPEC_FULL ยง4.5).
type AIMetrics struct {
	SentimentScore      float32 `json:"sentiment_score"`
	SentimentShift      float32 `json:"sentiment_shift"`
	ResolutionAchieved  float32 `json:"resolution_achieved"`
	FCRScore            float32 `json:"fcr_score"`
	CES                 float32 `json:"ces"`
	Error               string  `json:"error,omitempty"`
}

// TimeMetrics holds the three deterministic time-derived micro-metrics
// computed by C7. A nil pointer means "null" per spec.md ยง4.7.
type TimeMetrics struct {
	FirstResponseTime *float64 // seconds
	AvgResponseTime   *float64 // seconds
	TotalHandlingTime *float64 // minutes
}

// Pillars holds the four 0-10 pillar scores computed by C8. A nil pointer
// means the pillar is null because every contributing input was null.
type Pillars struct {
	Effectiveness *float32
	Effort        *float32
	Efficiency    *float32
	Empathy       *float32
}

// ScoreResult is the final output of C7+C8 for one DailyAnalysis unit.
type ScoreResult struct {
	Time    TimeMetrics
	Pillars Pillars
	CSI     *float32 // 0-100, nil if every pillar is null
}
