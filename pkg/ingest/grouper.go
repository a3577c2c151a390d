package ingest

import (
	"sort"
	"time"

	"github.com/gl4d3/powerpulse/pkg/models"
)

// Grouper buckets a chat's normalized messages by UTC calendar day and
// derives the conversation-level summary the persistence gateway (C3)
// upserts (SPEC_FULL ยง4.2).
type Grouper struct{}

// NewGrouper returns a ready-to-use Grouper. It holds no state.
func NewGrouper() *Grouper {
	return &Grouper{}
}

// Group orders a chat's messages by social_create_time (ties broken by
// original position) and splits them into one DailyUnit per UTC calendar
// date, plus the conversation-level summary across all of them.
func (g *Grouper) Group(chatID string, messages []models.NormalizedMessage) ([]models.DailyUnit, models.ConversationSummary) {
	ordered := make([]models.NormalizedMessage, len(messages))
	copy(ordered, messages)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SocialCreateTime.Before(ordered[j].SocialCreateTime)
	})

	summary := models.ConversationSummary{ChatID: chatID}

	byDate := make(map[time.Time][]models.NormalizedMessage)
	var dateOrder []time.Time

	for i, m := range ordered {
		summary.TotalMessages++
		switch m.Direction {
		case models.DirectionToCompany:
			summary.CustomerMessages++
		case models.DirectionToClient:
			summary.AgentMessages++
		}
		if i == 0 {
			summary.FirstMessageTime = m.SocialCreateTime
		}
		summary.LastMessageTime = m.SocialCreateTime

		day := utcDate(m.SocialCreateTime)
		if _, ok := byDate[day]; !ok {
			dateOrder = append(dateOrder, day)
		}
		byDate[day] = append(byDate[day], m)
	}

	units := make([]models.DailyUnit, 0, len(dateOrder))
	for _, day := range dateOrder {
		units = append(units, models.DailyUnit{
			ChatID:       chatID,
			AnalysisDate: day,
			Messages:     byDate[day],
		})
	}

	return units, summary
}

func utcDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
