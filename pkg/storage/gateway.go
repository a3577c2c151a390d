package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/gl4d3/powerpulse/ent"
	"github.com/gl4d3/powerpulse/ent/conversation"
	"github.com/gl4d3/powerpulse/ent/dailyanalysis"
	"github.com/gl4d3/powerpulse/ent/message"
	"github.com/gl4d3/powerpulse/pkg/models"
)

// Gateway is the single entry point the orchestrator (C10) uses to reach
// persistence. It composes the per-aggregate stores and owns C3's
// transaction boundaries: one transaction per chat's raw ingest, and one
// transaction per job's result write. An upload's chats are not ingested in
// one shared transaction; chats committed before a later chat fails stay
// committed.
type Gateway struct {
	client *ent.Client

	Conversations *ConversationStore
	Messages      *MessageStore
	Analyses      *AnalysisStore
	Jobs          *JobStore
	Processed     *ProcessedChatStore
	Metrics       *MetricStore
	Summaries     *SummaryStore
}

// NewGateway builds a Gateway over an ent client.
func NewGateway(client *ent.Client) *Gateway {
	return &Gateway{
		client:        client,
		Conversations: NewConversationStore(client),
		Messages:      NewMessageStore(client),
		Analyses:      NewAnalysisStore(client),
		Jobs:          NewJobStore(client),
		Processed:     NewProcessedChatStore(client),
		Metrics:       NewMetricStore(client),
		Summaries:     NewSummaryStore(client),
	}
}

// IngestResult is what PersistChat returns: the stored conversation plus
// one empty, pending DailyAnalysis id per UTC calendar day it touched.
type IngestResult struct {
	ConversationID   string
	DailyAnalysisIDs map[time.Time]string // keyed by UTC-midnight analysis_date
}

// PersistChat writes one chat's validated messages, its conversation
// summary, and an empty DailyAnalysis row per day it spans, all within a
// single transaction (one chat's raw ingest is one unit of work; the
// orchestrator processes chats independently of one another).
func (g *Gateway) PersistChat(ctx context.Context, chatID string, summary models.ConversationSummary, units []models.DailyUnit) (*IngestResult, error) {
	tx, err := g.client.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	conv, err := upsertConversationTx(ctx, tx, summary)
	if err != nil {
		return nil, err
	}

	seq, err := tx.Message.Query().
		Where(message.ChatIDEQ(chatID)).
		Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count existing messages: %w", err)
	}

	result := &IngestResult{ConversationID: conv.ID, DailyAnalysisIDs: map[time.Time]string{}}

	for _, unit := range units {
		if err := InsertMessages(ctx, tx, conv.ID, chatID, unit.Messages, seq); err != nil {
			return nil, err
		}
		seq += len(unit.Messages)

		da, err := CreateDailyAnalysis(ctx, tx, conv.ID, unit.AnalysisDate)
		if err != nil {
			return nil, err
		}
		result.DailyAnalysisIDs[unit.AnalysisDate] = da.ID
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit chat ingest: %w", err)
	}

	return result, nil
}

// JobOutcome is one unit's result within a completed or failed job, keyed by
// its DailyAnalysis id.
type JobOutcome struct {
	DailyAnalysisID string
	Success         bool
	Result          AnalysisResult
	Error           string
}

// CompleteJobResults writes every unit's outcome to its DailyAnalysis row
// and marks the job itself completed or failed, all within one transaction
// (a job's result write is its own unit of work, independent of its peers).
// Per §4.6's failure-isolation rule, the job is marked failed as soon as any
// one of its outcomes is unsuccessful (fallback substitution, transient
// retries exhausted, or cancellation), even though every outcome still
// writes its own DailyAnalysis row individually. An unsuccessful outcome's
// row is marked failed with its error and gets the AI metric values carried
// in its Result (the fallback values, for scheduler-produced outcomes).
func (g *Gateway) CompleteJobResults(ctx context.Context, jobID string, outcomes []JobOutcome, summary map[string]any) error {
	tx, err := g.client.Tx(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	analyses := NewAnalysisStore(tx.Client())
	jobSucceeded := true
	for _, o := range outcomes {
		if o.Success {
			if err := analyses.UpdateDailyAnalysisSuccess(ctx, o.DailyAnalysisID, o.Result); err != nil {
				return err
			}
			continue
		}
		jobSucceeded = false
		if err := analyses.UpdateDailyAnalysisFailure(ctx, o.DailyAnalysisID, o.Error); err != nil {
			return err
		}
		ai := o.Result.AI
		if _, err := tx.DailyAnalysis.UpdateOneID(o.DailyAnalysisID).
			SetSentimentScore(ai.SentimentScore).
			SetSentimentShift(ai.SentimentShift).
			SetResolutionAchieved(ai.ResolutionAchieved).
			SetFcrScore(ai.FCRScore).
			SetCes(ai.CES).
			Save(ctx); err != nil {
			return fmt.Errorf("failed to write fallback metrics: %w", err)
		}
	}

	jobs := NewJobStore(tx.Client())
	if jobSucceeded {
		if err := jobs.CompleteJob(ctx, jobID, summary); err != nil {
			return err
		}
	} else {
		if err := jobs.FailJob(ctx, jobID, summary); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit job completion: %w", err)
	}
	return nil
}

// RefreshSystemMetrics recomputes the system-level CSI cache entry as the
// mean CSI across every completed DailyAnalysis row (one sample per day,
// not per conversation, per ยง4.8), and upserts it into the Metric cache.
// Called once at the end of a successful upload.
func (g *Gateway) RefreshSystemMetrics(ctx context.Context) error {
	rows, err := g.client.DailyAnalysis.Query().
		Where(
			dailyanalysis.StatusEQ(dailyanalysis.StatusCompleted),
			dailyanalysis.CsiScoreNotNil(),
		).
		All(ctx)
	if err != nil {
		return fmt.Errorf("failed to load daily analyses for system metrics: %w", err)
	}

	if len(rows) == 0 {
		return nil
	}

	var sum float32
	for _, r := range rows {
		sum += *r.CsiScore
	}
	mean := float64(sum) / float64(len(rows))

	tx, err := g.client.Tx(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := ReplaceMetrics(ctx, tx, []NamedMetric{
		{Name: "system_csi", Value: mean, Metadata: map[string]any{"sample_count": len(rows)}},
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit system metrics refresh: %w", err)
	}
	return nil
}

// upsertConversationTx mirrors ConversationStore.UpsertConversation but
// runs inside an existing transaction, so a chat's conversation row and its
// messages/daily analyses either all land or none do.
func upsertConversationTx(ctx context.Context, tx *ent.Tx, summary models.ConversationSummary) (*ent.Conversation, error) {
	existing, err := tx.Conversation.Query().
		Where(conversation.ChatIDEQ(summary.ChatID)).
		Only(ctx)
	if err != nil && !ent.IsNotFound(err) {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}

	if existing != nil {
		updated, err := existing.Update().
			SetTotalMessages(existing.TotalMessages + summary.TotalMessages).
			SetCustomerMessages(existing.CustomerMessages + summary.CustomerMessages).
			SetAgentMessages(existing.AgentMessages + summary.AgentMessages).
			SetLastMessageTime(latestOf(existing.LastMessageTime, summary.LastMessageTime)).
			Save(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to update conversation: %w", err)
		}
		return updated, nil
	}

	created, err := tx.Conversation.Create().
		SetID(newID()).
		SetChatID(summary.ChatID).
		SetTotalMessages(summary.TotalMessages).
		SetCustomerMessages(summary.CustomerMessages).
		SetAgentMessages(summary.AgentMessages).
		SetFirstMessageTime(summary.FirstMessageTime).
		SetLastMessageTime(summary.LastMessageTime).
		Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return created, nil
}
