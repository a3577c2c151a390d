package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gl4d3/powerpulse/ent"
	"github.com/gl4d3/powerpulse/pkg/config"
	"github.com/gl4d3/powerpulse/pkg/llmadapter"
	"github.com/gl4d3/powerpulse/pkg/metrics"
	"github.com/gl4d3/powerpulse/pkg/models"
	"github.com/gl4d3/powerpulse/pkg/storage"
)

// Scheduler is C6: a single background executor, shared across every
// upload's pipeline, that dispatches jobs through the LLM adapter (C5) no
// more than AIConcurrency at a time.
type Scheduler struct {
	gateway    *storage.Gateway
	adapter    *llmadapter.Adapter
	cfg        *config.JobConfig
	thresholds metrics.PillarThresholds
	sem        chan struct{}
}

// NewScheduler wires a Scheduler over one gateway and one LLM adapter. The
// semaphore capacity is process-wide: every concurrent RunUpload call draws
// from the same channel, so AI_CONCURRENCY bounds in-flight LLM calls across
// uploads, not just within one.
func NewScheduler(gateway *storage.Gateway, adapter *llmadapter.Adapter, cfg *config.JobConfig) *Scheduler {
	return &Scheduler{
		gateway:    gateway,
		adapter:    adapter,
		cfg:        cfg,
		thresholds: metrics.DefaultPillarThresholds(),
		sem:        make(chan struct{}, cfg.AIConcurrency),
	}
}

// RunUpload claims and executes every pending job for uploadID, in creation
// order, until none remain or ctx is cancelled. It blocks until every job it
// dispatched has finished (successfully, failed, or cancelled). Once ctx is
// cancelled, every job still pending for uploadID is claimed and aborted
// with reason "cancelled".
func (s *Scheduler) RunUpload(ctx context.Context, uploadID string) ([]JobResult, error) {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []JobResult
	)

	for {
		if ctx.Err() != nil {
			break
		}

		job, err := s.gateway.Jobs.ClaimNextJob(ctx, uploadID)
		if err != nil {
			if errors.Is(err, storage.ErrNoJobsAvailable) || ctx.Err() != nil {
				break
			}
			wg.Wait()
			return results, err
		}

		wg.Add(1)
		go func(j *ent.Job) {
			defer wg.Done()
			r := s.executeJob(ctx, j)
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		}(job)
	}

	wg.Wait()
	if ctx.Err() != nil {
		for {
			job, err := s.gateway.Jobs.ClaimNextJob(context.Background(), uploadID)
			if err != nil {
				break
			}
			results = append(results, s.abort(job, nil, "cancelled"))
		}
	}
	return results, ctx.Err()
}

// executeJob runs one job end to end: acquire the semaphore, pause
// MinInterCallDelay, reload its units, call the LLM adapter with retry, then
// compute and persist each unit's result. Any of these may observe
// cancellation -- the named suspension points of §4.6.
func (s *Scheduler) executeJob(ctx context.Context, job *ent.Job) JobResult {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return s.abort(job, nil, "cancelled")
	}
	defer func() { <-s.sem }()

	if err := sleepOrCancel(ctx, s.cfg.MinInterCallDelay); err != nil {
		return s.abort(job, nil, "cancelled")
	}

	analyses, err := s.gateway.Jobs.LoadDailyAnalyses(ctx, job)
	if err != nil {
		return s.abort(job, nil, "analysis_failed")
	}

	daIDs := make([]string, len(analyses))
	units := make([]models.DailyUnit, len(analyses))
	for i, da := range analyses {
		daIDs[i] = da.ID
		unit, err := s.reloadUnit(ctx, da)
		if err != nil {
			return s.abort(job, daIDs, "analysis_failed")
		}
		units[i] = unit
	}

	aiResults, usage, err := s.callWithRetry(ctx, units)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return s.abort(job, daIDs, "cancelled")
		}
		return s.abort(job, daIDs, "analysis_failed")
	}

	outcomes := make([]storage.JobOutcome, len(units))
	for i, unit := range units {
		score := metrics.ComputeScore(unit.Messages, aiResults[i].Metrics, s.thresholds)
		outcomes[i] = storage.JobOutcome{
			DailyAnalysisID: daIDs[i],
			Success:         !aiResults[i].Fallback,
			Error:           aiResults[i].Metrics.Error,
			Result:          storage.AnalysisResult{AI: aiResults[i].Metrics, Score: score},
		}
	}

	summary := map[string]any{"units": len(units), "fallback": llmadapter.AnyFallback(aiResults)}
	var tokensUsed int
	if usage != nil {
		if usage.PromptTokens != nil {
			summary["prompt_tokens"] = *usage.PromptTokens
			tokensUsed += *usage.PromptTokens
		}
		if usage.ResponseTokens != nil {
			summary["response_tokens"] = *usage.ResponseTokens
			tokensUsed += *usage.ResponseTokens
		}
	}

	if err := s.gateway.CompleteJobResults(context.Background(), job.ID, outcomes, summary); err != nil {
		return JobResult{JobID: job.ID, UnitCount: len(units), Error: err.Error()}
	}

	return JobResult{JobID: job.ID, UnitCount: len(units), TokensUsed: tokensUsed, Succeeded: !llmadapter.AnyFallback(aiResults)}
}

// callWithRetry issues the LLM call, retrying only transient failures with
// exponential backoff (base=RetryBaseDelay, factor=2, up to
// RetryMaxAttempts). A malformed response is never an error at this layer
// (llmadapter already resolved it to fallback records), so it is never
// retried here either.
func (s *Scheduler) callWithRetry(ctx context.Context, units []models.DailyUnit) ([]llmadapter.Result, *llmadapter.Usage, error) {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.RetryMaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		callCtx, cancel := context.WithTimeout(ctx, s.cfg.LLMCallTimeout)
		results, usage, err := s.adapter.AnalyzeDailyBatch(callCtx, units)
		cancel()
		if err == nil {
			return results, usage, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		if !isTransient(err) || attempt == s.cfg.RetryMaxAttempts {
			return nil, nil, lastErr
		}
		if err := sleepOrCancel(ctx, backoff(s.cfg.RetryBaseDelay, 2, attempt)); err != nil {
			return nil, nil, err
		}
	}
	return nil, nil, lastErr
}

// reloadUnit reconstructs one DailyAnalysis's messages from storage, since a
// Job only carries DailyAnalysis ids, not the original message payload.
func (s *Scheduler) reloadUnit(ctx context.Context, da *ent.DailyAnalysis) (models.DailyUnit, error) {
	conv, err := s.gateway.Conversations.GetByID(ctx, da.ConversationID)
	if err != nil {
		return models.DailyUnit{}, fmt.Errorf("failed to load conversation: %w", err)
	}

	start, end := dayWindow(da.AnalysisDate)
	msgs, err := s.gateway.Messages.ListByConversationAndDate(ctx, da.ConversationID, start, end)
	if err != nil {
		return models.DailyUnit{}, err
	}

	normalized := make([]models.NormalizedMessage, len(msgs))
	for i, m := range msgs {
		normalized[i] = models.NormalizedMessage{
			ChatID:           m.ChatID,
			MessageContent:   m.MessageContent,
			Direction:        models.Direction(m.Direction),
			SocialCreateTime: m.SocialCreateTime,
			AgentInfo:        m.AgentInfo,
		}
	}

	return models.DailyUnit{ChatID: conv.ChatID, AnalysisDate: da.AnalysisDate, Messages: normalized}, nil
}

// abort marks every known DailyAnalysis row for job with the fallback
// values and reason, and marks the job itself failed, per §4.6's
// failure-isolation and cancellation rules. Uses a background context since
// ctx may already be cancelled and writes must still land.
func (s *Scheduler) abort(job *ent.Job, daIDs []string, reason string) JobResult {
	if daIDs == nil {
		if loaded, err := s.gateway.Jobs.LoadDailyAnalyses(context.Background(), job); err == nil {
			daIDs = make([]string, len(loaded))
			for i, da := range loaded {
				daIDs[i] = da.ID
			}
		}
	}

	fallback := llmadapter.FallbackMetrics()
	fallback.Error = reason
	outcomes := make([]storage.JobOutcome, len(daIDs))
	for i, id := range daIDs {
		outcomes[i] = storage.JobOutcome{
			DailyAnalysisID: id,
			Success:         false,
			Error:           reason,
			Result:          storage.AnalysisResult{AI: fallback},
		}
	}

	_ = s.gateway.CompleteJobResults(context.Background(), job.ID, outcomes, map[string]any{"error": reason})
	return JobResult{JobID: job.ID, UnitCount: len(daIDs), Error: reason}
}
