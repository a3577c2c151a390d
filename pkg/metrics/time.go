// Package metrics computes the deterministic time metrics (C7) and the
// pillar/CSI scores (C8) from a daily unit's messages and an LLM's
// micro-metrics.
package metrics

import (
	"sort"

	"github.com/gl4d3/powerpulse/pkg/models"
)

// ComputeTimeMetrics derives first_response_time, avg_response_time, and
// total_handling_time from one day's ordered messages (SPEC_FULL ยง4.7).
// Messages need not be pre-sorted; ComputeTimeMetrics sorts a copy by
// SocialCreateTime first.
func ComputeTimeMetrics(messages []models.NormalizedMessage) models.TimeMetrics {
	ordered := make([]models.NormalizedMessage, len(messages))
	copy(ordered, messages)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SocialCreateTime.Before(ordered[j].SocialCreateTime)
	})

	return models.TimeMetrics{
		FirstResponseTime: firstResponseTime(ordered),
		AvgResponseTime:   avgResponseTime(ordered),
		TotalHandlingTime: totalHandlingTime(ordered),
	}
}

func firstResponseTime(ordered []models.NormalizedMessage) *float64 {
	firstCompanyIdx := -1
	for i, m := range ordered {
		if m.Direction == models.DirectionToCompany {
			firstCompanyIdx = i
			break
		}
	}
	if firstCompanyIdx == -1 {
		return nil
	}

	for i := firstCompanyIdx + 1; i < len(ordered); i++ {
		if ordered[i].Direction == models.DirectionToClient {
			gap := ordered[i].SocialCreateTime.Sub(ordered[firstCompanyIdx].SocialCreateTime).Seconds()
			return &gap
		}
	}
	return nil
}

func avgResponseTime(ordered []models.NormalizedMessage) *float64 {
	var total float64
	var count int

	for i := 1; i < len(ordered); i++ {
		if ordered[i].Direction != models.DirectionToClient {
			continue
		}
		if ordered[i-1].Direction != models.DirectionToCompany {
			continue
		}
		total += ordered[i].SocialCreateTime.Sub(ordered[i-1].SocialCreateTime).Seconds()
		count++
	}

	if count == 0 {
		return nil
	}
	avg := total / float64(count)
	return &avg
}

func totalHandlingTime(ordered []models.NormalizedMessage) *float64 {
	if len(ordered) < 2 {
		return nil
	}
	first := ordered[0].SocialCreateTime
	last := ordered[len(ordered)-1].SocialCreateTime
	minutes := last.Sub(first).Minutes()
	return &minutes
}
