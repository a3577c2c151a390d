package metrics

import "github.com/gl4d3/powerpulse/pkg/models"

// TimeThresholds configures the piecewise-linear normalization curves used
// by the Efficiency pillar (SPEC_FULL ยง4.8). Each curve scores 10 at or
// below Good and 0 at or above Bad, linear in between.
type TimeThresholds struct {
	Good, Bad float64
}

// DefaultFirstResponseThresholds is the default first_response_time curve:
// 10 at <=60s, 0 at >=1800s.
var DefaultFirstResponseThresholds = TimeThresholds{Good: 60, Bad: 1800}

// DefaultAvgResponseThresholds is the default avg_response_time curve:
// 10 at <=120s, 0 at >=3600s.
var DefaultAvgResponseThresholds = TimeThresholds{Good: 120, Bad: 3600}

// DefaultTotalHandlingThresholds is the default total_handling_time curve:
// 10 at <=5min, 0 at >=60min.
var DefaultTotalHandlingThresholds = TimeThresholds{Good: 5, Bad: 60}

// PillarThresholds bundles the three configurable efficiency curves.
type PillarThresholds struct {
	FirstResponse TimeThresholds
	AvgResponse   TimeThresholds
	TotalHandling TimeThresholds
}

// DefaultPillarThresholds returns the SPEC_FULL ยง4.8 default curves.
func DefaultPillarThresholds() PillarThresholds {
	return PillarThresholds{
		FirstResponse: DefaultFirstResponseThresholds,
		AvgResponse:   DefaultAvgResponseThresholds,
		TotalHandling: DefaultTotalHandlingThresholds,
	}
}

// normalize maps a raw time value to a 0-10 goodness score via a
// monotonically decreasing piecewise-linear curve.
func (th TimeThresholds) normalize(t float64) float64 {
	if t <= th.Good {
		return 10
	}
	if t >= th.Bad {
		return 0
	}
	frac := (t - th.Good) / (th.Bad - th.Good)
	return clip(10*(1-frac), 0, 10)
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ComputePillars derives the four 0-10 pillar scores from the LLM's AI
// metrics and C7's time metrics (SPEC_FULL ยง4.8).
func ComputePillars(ai models.AIMetrics, t models.TimeMetrics, thresholds PillarThresholds) models.Pillars {
	return models.Pillars{
		Effectiveness: effectiveness(ai),
		Effort:        effort(ai),
		Efficiency:    efficiency(t, thresholds),
		Empathy:       empathy(ai),
	}
}

func effectiveness(ai models.AIMetrics) *float32 {
	v := float32(clip(float64(ai.ResolutionAchieved+ai.FCRScore)/2, 0, 10))
	return &v
}

func effort(ai models.AIMetrics) *float32 {
	v := float32(clip((7-float64(ai.CES))/6*10, 0, 10))
	return &v
}

func efficiency(t models.TimeMetrics, thresholds PillarThresholds) *float32 {
	var sum float64
	var count int

	if t.FirstResponseTime != nil {
		sum += thresholds.FirstResponse.normalize(*t.FirstResponseTime)
		count++
	}
	if t.AvgResponseTime != nil {
		sum += thresholds.AvgResponse.normalize(*t.AvgResponseTime)
		count++
	}
	if t.TotalHandlingTime != nil {
		sum += thresholds.TotalHandling.normalize(*t.TotalHandlingTime)
		count++
	}

	if count == 0 {
		return nil
	}
	v := float32(sum / float64(count))
	return &v
}

func empathy(ai models.AIMetrics) *float32 {
	v := float32(clip(0.4*float64(ai.SentimentScore)+0.6*((float64(ai.SentimentShift)+5)/10*10), 0, 10))
	return &v
}

// pillarWeight is the CSI contribution of each pillar (SPEC_FULL ยง4.8).
type pillarWeight struct {
	value  *float32
	weight float64
}

// ComputeCSI combines the four pillars into the 0-100 CSI score, omitting
// any null pillar and renormalizing the remaining weights to sum to 1. If
// every pillar is null, CSI is null.
func ComputeCSI(p models.Pillars) *float32 {
	weights := []pillarWeight{
		{p.Effectiveness, 0.40},
		{p.Effort, 0.25},
		{p.Efficiency, 0.15},
		{p.Empathy, 0.20},
	}

	var weightedSum, totalWeight float64
	for _, w := range weights {
		if w.value == nil {
			continue
		}
		weightedSum += float64(*w.value) * w.weight
		totalWeight += w.weight
	}

	if totalWeight == 0 {
		return nil
	}

	csi := float32(10 * (weightedSum / totalWeight))
	return &csi
}

// ComputeScore is the combined C7+C8 entry point: given a daily unit's
// ordered messages and the LLM's micro-metrics, it returns the full
// ScoreResult.
func ComputeScore(messages []models.NormalizedMessage, ai models.AIMetrics, thresholds PillarThresholds) models.ScoreResult {
	t := ComputeTimeMetrics(messages)
	pillars := ComputePillars(ai, t, thresholds)
	csi := ComputeCSI(pillars)
	return models.ScoreResult{Time: t, Pillars: pillars, CSI: csi}
}
