// Package orchestrator implements C10: the boundary between the HTTP
// transport and the ingest/batching/scoring core. Accept runs
// synchronously and returns immediately; everything past that point runs
// in a background goroutine tracked through the progress package.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gl4d3/powerpulse/pkg/batching"
	"github.com/gl4d3/powerpulse/pkg/config"
	"github.com/gl4d3/powerpulse/pkg/ingest"
	"github.com/gl4d3/powerpulse/pkg/llmadapter"
	"github.com/gl4d3/powerpulse/pkg/models"
	"github.com/gl4d3/powerpulse/pkg/progress"
	"github.com/gl4d3/powerpulse/pkg/queue"
	"github.com/gl4d3/powerpulse/pkg/storage"
)

// ErrFileTooLarge is returned synchronously from Accept when the payload
// exceeds the configured MaxFileSize.
var ErrFileTooLarge = fmt.Errorf("upload exceeds max file size")

// ErrInvalidPayload is returned synchronously from Accept when the body is
// not a JSON object of chat_id -> message array.
var ErrInvalidPayload = fmt.Errorf("upload is not a valid chat payload")

// Orchestrator wires C1 (ingest.Validator), C2 (ingest.Grouper), C3
// (storage.Gateway), C4 (batching.Batcher), and C6 (queue.Scheduler, which
// internally drives C5) into the one pipeline a POST /api/upload-json call
// triggers, and reports its progress through C9.
type Orchestrator struct {
	gateway   *storage.Gateway
	tracker   *progress.Tracker
	scheduler *queue.Scheduler
	cancels   *queue.CancelRegistry
	validator *ingest.Validator
	grouper   *ingest.Grouper
	batcher   *batching.Batcher
	cfg       *config.Config
	logger    *slog.Logger
}

// New wires an Orchestrator from its dependencies. adapter is C5's LLM
// adapter, already resolved from cfg's active provider.
func New(gateway *storage.Gateway, tracker *progress.Tracker, cancels *queue.CancelRegistry, adapter *llmadapter.Adapter, cfg *config.Config, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		gateway:   gateway,
		tracker:   tracker,
		scheduler: queue.NewScheduler(gateway, adapter, cfg.Job),
		cancels:   cancels,
		validator: ingest.NewValidator(cfg.AutoresponseSentence, cfg.AutoresponseSubstringMatch),
		grouper:   ingest.NewGrouper(),
		batcher:   batching.NewBatcher(int64(cfg.MaxTokensPerJob), int64(cfg.BatchSize)),
		cfg:       cfg,
		logger:    logger,
	}
}

// Accept is the synchronous half of C10: validate size, parse JSON,
// register the upload with the progress tracker, and kick off the
// background pipeline. It never blocks on ingest, batching, or the LLM.
func (o *Orchestrator) Accept(raw []byte, forceReprocess bool) (models.UploadAcceptedResponse, error) {
	if int64(len(raw)) > o.cfg.MaxFileSize {
		return models.UploadAcceptedResponse{}, ErrFileTooLarge
	}

	var payload models.UploadPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return models.UploadAcceptedResponse{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	uploadID := newUploadID()
	o.tracker.Register(uploadID, len(payload))

	ctx, cancel := context.WithTimeout(context.Background(), o.cfg.Job.UploadTimeout)
	o.cancels.Register(uploadID, cancel)

	go o.run(ctx, uploadID, payload, forceReprocess)

	return models.UploadAcceptedResponse{
		UploadID:               uploadID,
		Success:                true,
		ConversationsProcessed: 0,
		MessagesProcessed:      0,
	}, nil
}

// Cancel aborts uploadID's background pipeline, if it is still running.
func (o *Orchestrator) Cancel(uploadID string) bool {
	return o.cancels.Cancel(uploadID)
}

// persistedUnit pairs one DailyUnit with the DailyAnalysis row C3 already
// created for it, so C4's batcher and C6's job creation can be driven off
// the same slice without re-deriving the mapping.
type persistedUnit struct {
	unit models.DailyUnit
	daID string
}

func (o *Orchestrator) run(ctx context.Context, uploadID string, payload models.UploadPayload, forceReprocess bool) {
	defer o.cancels.Unregister(uploadID)

	o.tracker.SetStage(uploadID, models.StageValidating)
	o.tracker.SetStage(uploadID, models.StageFilteringConversations)

	var units []persistedUnit
	var messagesProcessed int

	for chatID, rawMessages := range payload {
		if ctx.Err() != nil {
			o.tracker.Complete(uploadID, models.UploadStatusCancelled)
			return
		}

		if !forceReprocess {
			processed, err := o.gateway.Processed.IsChatProcessed(ctx, chatID)
			if err != nil {
				o.tracker.AddError(uploadID, fmt.Sprintf("chat %s: %v", chatID, err))
				continue
			}
			if processed {
				continue
			}
		}

		normalized, autoCount, invalidCount := o.filterMessages(chatID, rawMessages)
		o.tracker.RecordFiltered(uploadID, autoCount, invalidCount)
		if len(normalized) == 0 {
			continue
		}

		o.tracker.SetStage(uploadID, models.StagePersisting)
		dailyUnits, summary := o.grouper.Group(chatID, normalized)

		result, err := o.gateway.PersistChat(ctx, chatID, summary, dailyUnits)
		if err != nil {
			o.logger.Error("failed to persist chat", "upload_id", uploadID, "chat_id", chatID, "error", err)
			o.tracker.AddError(uploadID, fmt.Sprintf("chat %s: failed to persist: %v", chatID, err))
			continue
		}

		o.tracker.IncrementProcessedConversations(uploadID, 1)
		messagesProcessed += len(normalized)

		for _, u := range dailyUnits {
			daID, ok := result.DailyAnalysisIDs[u.AnalysisDate]
			if !ok {
				continue
			}
			units = append(units, persistedUnit{unit: u, daID: daID})
		}
	}

	if len(units) == 0 {
		o.tracker.Complete(uploadID, models.UploadStatusCompleted)
		return
	}

	o.tracker.SetStage(uploadID, models.StageBatching)
	jobCount, err := o.createJobs(ctx, uploadID, units)
	if err != nil {
		o.logger.Error("failed to create jobs", "upload_id", uploadID, "error", err)
		o.tracker.AddError(uploadID, fmt.Sprintf("failed to create jobs: %v", err))
		o.tracker.Complete(uploadID, models.UploadStatusFailed)
		return
	}
	o.tracker.SetTotalJobs(uploadID, jobCount)

	o.tracker.SetStage(uploadID, models.StageAIAnalysis)
	results, err := o.scheduler.RunUpload(ctx, uploadID)
	for _, r := range results {
		o.tracker.RecordJobCompletion(uploadID, r.Succeeded, r.TokensUsed)
		if !r.Succeeded && r.Error != "" {
			o.tracker.AddError(uploadID, fmt.Sprintf("job %s: %s", r.JobID, r.Error))
		}
	}

	o.tracker.SetStage(uploadID, models.StageFinalizing)

	if err != nil {
		o.tracker.Complete(uploadID, models.UploadStatusCancelled)
		return
	}

	o.finalize(uploadID, units)
	o.tracker.Complete(uploadID, models.UploadStatusCompleted)
}

// filterMessages runs every raw message through the validator, returning
// the normalized survivors plus the autoresponse/invalid rejection counts
// for the progress statistics.
func (o *Orchestrator) filterMessages(chatID string, rawMessages []models.RawMessage) ([]models.NormalizedMessage, int, int) {
	normalized := make([]models.NormalizedMessage, 0, len(rawMessages))
	var autoCount, invalidCount int

	for _, raw := range rawMessages {
		msg, reason := o.validator.Validate(chatID, raw)
		switch reason {
		case ingest.RejectNone:
			normalized = append(normalized, msg)
		case ingest.RejectAutoresponse:
			autoCount++
		default:
			invalidCount++
		}
	}

	return normalized, autoCount, invalidCount
}

// createJobs packs every persisted unit into token/size-bounded batches (C4)
// and creates one Job per batch (C3), returning how many jobs were created.
func (o *Orchestrator) createJobs(ctx context.Context, uploadID string, units []persistedUnit) (int, error) {
	daIDByUnit := make(map[string]string, len(units))
	plain := make([]models.DailyUnit, len(units))
	for i, pu := range units {
		plain[i] = pu.unit
		daIDByUnit[unitKey(pu.unit)] = pu.daID
	}

	batches := o.batcher.Pack(plain)
	for _, batch := range batches {
		daIDs := make([]string, len(batch.Units))
		for i, u := range batch.Units {
			daIDs[i] = daIDByUnit[unitKey(u)]
		}
		if _, err := o.gateway.Jobs.CreateJob(ctx, uploadID, daIDs); err != nil {
			return 0, err
		}
	}

	return len(batches), nil
}

func unitKey(u models.DailyUnit) string {
	return u.ChatID + "|" + u.AnalysisDate.Format(time.RFC3339)
}

// finalize marks every processed chat as a ProcessedChat (so future uploads
// skip it unless force_reprocess is set) and refreshes the system-wide CSI
// metric cache. Runs only after a successful pipeline, never on
// cancellation or job-creation failure.
func (o *Orchestrator) finalize(uploadID string, units []persistedUnit) {
	seen := make(map[string]int)
	for _, pu := range units {
		seen[pu.unit.ChatID] += len(pu.unit.Messages)
	}

	for chatID, count := range seen {
		if err := o.gateway.Processed.MarkProcessed(context.Background(), chatID, count); err != nil {
			o.logger.Error("failed to mark chat processed", "upload_id", uploadID, "chat_id", chatID, "error", err)
			o.tracker.AddError(uploadID, fmt.Sprintf("chat %s: failed to mark processed: %v", chatID, err))
		}
	}

	if err := o.gateway.RefreshSystemMetrics(context.Background()); err != nil {
		o.logger.Error("failed to refresh system metrics", "upload_id", uploadID, "error", err)
		o.tracker.AddError(uploadID, fmt.Sprintf("failed to refresh metrics: %v", err))
	}
}
