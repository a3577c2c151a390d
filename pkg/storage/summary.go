package storage

import (
	"context"
	"fmt"

	"github.com/gl4d3/powerpulse/ent"
	"github.com/gl4d3/powerpulse/ent/dailyanalysis"
)

// SummaryStore exposes the read-side aggregation helpers a future CSV
// export or dashboard layer would call. These are thin ent queries, not a
// UI or transport concern.
type SummaryStore struct {
	client *ent.Client
}

// NewSummaryStore creates a new SummaryStore.
func NewSummaryStore(client *ent.Client) *SummaryStore {
	return &SummaryStore{client: client}
}

// ConversationReport is one conversation's completed-analysis rollup.
type ConversationReport struct {
	ConversationID string
	ChatID         string
	DaysAnalyzed   int
	AvgCSI         *float64
}

// ConversationSummary aggregates every completed DailyAnalysis row for one
// conversation into its day count and mean CSI.
func (s *SummaryStore) ConversationSummary(ctx context.Context, conversationID string) (*ConversationReport, error) {
	conv, err := s.client.Conversation.Get(ctx, conversationID)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	analyses, err := s.client.DailyAnalysis.Query().
		Where(
			dailyanalysis.ConversationIDEQ(conversationID),
			dailyanalysis.StatusEQ(dailyanalysis.StatusCompleted),
		).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily analyses: %w", err)
	}

	report := &ConversationReport{
		ConversationID: conversationID,
		ChatID:         conv.ChatID,
		DaysAnalyzed:   len(analyses),
	}

	var sum float64
	var count int
	for _, a := range analyses {
		if a.CsiScore != nil {
			sum += float64(*a.CsiScore)
			count++
		}
	}
	if count > 0 {
		avg := sum / float64(count)
		report.AvgCSI = &avg
	}

	return report, nil
}

// SystemReport is a system-wide rollup across every completed analysis.
type SystemReport struct {
	TotalConversations int
	TotalDaysAnalyzed  int
	AvgCSI             *float64
}

// SystemSummary aggregates every completed DailyAnalysis in the system into
// a total conversation count, total analyzed-day count, and mean CSI.
func (s *SummaryStore) SystemSummary(ctx context.Context) (*SystemReport, error) {
	totalConvs, err := s.client.Conversation.Query().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count conversations: %w", err)
	}

	analyses, err := s.client.DailyAnalysis.Query().
		Where(dailyanalysis.StatusEQ(dailyanalysis.StatusCompleted)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily analyses: %w", err)
	}

	report := &SystemReport{
		TotalConversations: totalConvs,
		TotalDaysAnalyzed:  len(analyses),
	}

	var sum float64
	var count int
	for _, a := range analyses {
		if a.CsiScore != nil {
			sum += float64(*a.CsiScore)
			count++
		}
	}
	if count > 0 {
		avg := sum / float64(count)
		report.AvgCSI = &avg
	}

	return report, nil
}
