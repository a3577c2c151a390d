package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gl4d3/powerpulse/ent"
	"github.com/gl4d3/powerpulse/ent/dailyanalysis"
	"github.com/gl4d3/powerpulse/pkg/models"
)

// AnalysisStore manages DailyAnalysis rows.
type AnalysisStore struct {
	client *ent.Client
}

// NewAnalysisStore creates a new AnalysisStore.
func NewAnalysisStore(client *ent.Client) *AnalysisStore {
	return &AnalysisStore{client: client}
}

// CreateDailyAnalysis creates an empty, pending DailyAnalysis row for
// (conversationID, date) within tx. Idempotent on that pair: if one already
// exists it is returned unchanged rather than duplicated.
func CreateDailyAnalysis(ctx context.Context, tx *ent.Tx, conversationID string, date time.Time) (*ent.DailyAnalysis, error) {
	existing, err := tx.DailyAnalysis.Query().
		Where(
			dailyanalysis.ConversationIDEQ(conversationID),
			dailyanalysis.AnalysisDateEQ(date),
		).
		Only(ctx)
	if err == nil {
		return existing, nil
	}
	if !ent.IsNotFound(err) {
		return nil, fmt.Errorf("failed to query daily analysis: %w", err)
	}

	created, err := tx.DailyAnalysis.Create().
		SetID(uuid.New().String()).
		SetConversationID(conversationID).
		SetAnalysisDate(date).
		SetStatus(dailyanalysis.StatusPending).
		Save(ctx)
	if err != nil {
		if ent.IsConstraintError(err) {
			existing, queryErr := tx.DailyAnalysis.Query().
				Where(
					dailyanalysis.ConversationIDEQ(conversationID),
					dailyanalysis.AnalysisDateEQ(date),
				).
				Only(ctx)
			if queryErr != nil {
				return nil, fmt.Errorf("failed to query daily analysis after constraint error: %w", queryErr)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create daily analysis: %w", err)
	}
	return created, nil
}

// AnalysisResult is the full set of computed values written back to a
// DailyAnalysis row on successful job completion.
type AnalysisResult struct {
	AI    models.AIMetrics
	Score models.ScoreResult
}

// UpdateDailyAnalysisSuccess writes the full computed result for one unit
// and marks it completed. Called exactly once per DailyAnalysis, by the job
// that owns it.
func (s *AnalysisStore) UpdateDailyAnalysisSuccess(ctx context.Context, id string, result AnalysisResult) error {
	builder := s.client.DailyAnalysis.UpdateOneID(id).
		SetStatus(dailyanalysis.StatusCompleted).
		SetSentimentScore(result.AI.SentimentScore).
		SetSentimentShift(result.AI.SentimentShift).
		SetResolutionAchieved(result.AI.ResolutionAchieved).
		SetFcrScore(result.AI.FCRScore).
		SetCes(result.AI.CES)

	if result.Score.Time.FirstResponseTime != nil {
		builder = builder.SetFirstResponseTime(*result.Score.Time.FirstResponseTime)
	}
	if result.Score.Time.AvgResponseTime != nil {
		builder = builder.SetAvgResponseTime(*result.Score.Time.AvgResponseTime)
	}
	if result.Score.Time.TotalHandlingTime != nil {
		builder = builder.SetTotalHandlingTime(*result.Score.Time.TotalHandlingTime)
	}
	if result.Score.Pillars.Effectiveness != nil {
		builder = builder.SetEffectivenessScore(*result.Score.Pillars.Effectiveness)
	}
	if result.Score.Pillars.Effort != nil {
		builder = builder.SetEffortScore(*result.Score.Pillars.Effort)
	}
	if result.Score.Pillars.Efficiency != nil {
		builder = builder.SetEfficiencyScore(*result.Score.Pillars.Efficiency)
	}
	if result.Score.Pillars.Empathy != nil {
		builder = builder.SetEmpathyScore(*result.Score.Pillars.Empathy)
	}
	if result.Score.CSI != nil {
		builder = builder.SetCsiScore(*result.Score.CSI)
	}

	if _, err := builder.Save(ctx); err != nil {
		return fmt.Errorf("failed to update daily analysis: %w", err)
	}
	return nil
}

// UpdateDailyAnalysisFailure marks one DailyAnalysis row failed, recording
// errMsg and leaving its metrics null.
func (s *AnalysisStore) UpdateDailyAnalysisFailure(ctx context.Context, id string, errMsg string) error {
	_, err := s.client.DailyAnalysis.UpdateOneID(id).
		SetStatus(dailyanalysis.StatusFailed).
		SetError(errMsg).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark daily analysis failed: %w", err)
	}
	return nil
}

// GetDailyAnalysis returns one DailyAnalysis row by id.
func (s *AnalysisStore) GetDailyAnalysis(ctx context.Context, id string) (*ent.DailyAnalysis, error) {
	a, err := s.client.DailyAnalysis.Get(ctx, id)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get daily analysis: %w", err)
	}
	return a, nil
}
