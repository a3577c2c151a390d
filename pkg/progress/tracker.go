// Package progress implements C9, the in-process upload progress tracker.
// Each upload gets one record, mutated by the orchestrator as it moves
// through the pipeline and polled by the progress endpoint. The tracker
// does not persist across restarts; it lives only for the process's
// lifetime.
package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/gl4d3/powerpulse/pkg/models"
)

const maxErrors = 50

// entry is the tracker's internal, mutable state for one upload. Snapshot
// copies it into the read-only models.ProgressSnapshot returned to callers.
type entry struct {
	status                 models.UploadStatus
	stage                  models.UploadStage
	processedConversations int
	totalConversations     int
	startTime              time.Time
	lastUpdate             time.Time
	details                string
	stats                  models.ProgressStatistics
	errors                 []string
	totalJobs              int
	completedJobs          int
}

// Tracker holds one entry per upload_id, guarded by a per-upload-free lock.
// Mirrors the teacher's in-memory session Manager: a map plus one
// sync.RWMutex, snapshot-on-read so callers never see a record mutate
// underneath them.
type Tracker struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{entries: make(map[string]*entry)}
}

// Register starts tracking uploadID as pending, with totalConversations
// known up front (0 for an empty-object upload).
func (t *Tracker) Register(uploadID string, totalConversations int) {
	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[uploadID] = &entry{
		status:             models.UploadStatusPending,
		stage:              models.StageReceiving,
		totalConversations: totalConversations,
		startTime:          now,
		lastUpdate:         now,
	}
}

// SetStage moves uploadID into a new pipeline stage and marks it processing.
func (t *Tracker) SetStage(uploadID string, stage models.UploadStage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[uploadID]
	if !ok {
		return
	}
	e.stage = stage
	e.status = models.UploadStatusProcessing
	e.lastUpdate = time.Now()
}

// SetTotalJobs records how many jobs ai_analysis will dispatch, enabling
// progress_percentage to be derived once jobs start completing.
func (t *Tracker) SetTotalJobs(uploadID string, totalJobs int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[uploadID]
	if !ok {
		return
	}
	e.totalJobs = totalJobs
}

// IncrementProcessedConversations bumps the processed-conversation counter
// by delta, called as each chat is persisted.
func (t *Tracker) IncrementProcessedConversations(uploadID string, delta int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[uploadID]
	if !ok {
		return
	}
	e.processedConversations += delta
	e.lastUpdate = time.Now()
}

// RecordFiltered adds to the filtered-autoresponse and filtered-invalid
// counters.
func (t *Tracker) RecordFiltered(uploadID string, autoresponses, invalid int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[uploadID]
	if !ok {
		return
	}
	e.stats.FilteredAutoresponses += autoresponses
	e.stats.FilteredInvalid += invalid
	e.lastUpdate = time.Now()
}

// RecordJobCompletion accounts for one finished job: bumps ai_calls_made,
// optionally ai_failures and tokens_used, and advances completedJobs so
// progress_percentage moves forward.
func (t *Tracker) RecordJobCompletion(uploadID string, succeeded bool, tokensUsed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[uploadID]
	if !ok {
		return
	}
	e.stats.AICallsMade++
	if !succeeded {
		e.stats.AIFailures++
	}
	e.stats.TokensUsed += tokensUsed
	e.completedJobs++
	e.lastUpdate = time.Now()
}

// AddError appends msg to the bounded error list, dropping the oldest entry
// once the list reaches maxErrors so a pathological upload can't grow the
// tracker without bound.
func (t *Tracker) AddError(uploadID, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[uploadID]
	if !ok {
		return
	}
	e.errors = append(e.errors, msg)
	if len(e.errors) > maxErrors {
		e.errors = e.errors[len(e.errors)-maxErrors:]
	}
	e.lastUpdate = time.Now()
}

// SetDetails overwrites the free-form details string shown alongside the stage.
func (t *Tracker) SetDetails(uploadID, details string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[uploadID]
	if !ok {
		return
	}
	e.details = details
	e.lastUpdate = time.Now()
}

// Complete marks uploadID terminal. If processedConversations is still 0 --
// whether because every chat was filtered out or because the upload was
// empty to start with -- the terminal status is forced to
// completed_with_filters regardless of the status passed in, per §4.9's
// "never report completed with zero processed conversations" rule and the
// empty-object-upload scenario in §8, which ends completed_with_filters too.
func (t *Tracker) Complete(uploadID string, status models.UploadStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[uploadID]
	if !ok {
		return
	}

	if status == models.UploadStatusCompleted && e.processedConversations == 0 {
		status = models.UploadStatusCompletedWithFilters
	}
	e.status = status
	e.stage = models.StageFinalizing
	e.lastUpdate = time.Now()
}

// Get returns a point-in-time snapshot of uploadID's progress.
func (t *Tracker) Get(uploadID string) (models.ProgressSnapshot, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.entries[uploadID]
	if !ok {
		return models.ProgressSnapshot{}, fmt.Errorf("upload not found: %s", uploadID)
	}
	return e.snapshot(uploadID), nil
}

func (e *entry) snapshot(uploadID string) models.ProgressSnapshot {
	errs := make([]string, len(e.errors))
	copy(errs, e.errors)

	return models.ProgressSnapshot{
		UploadID:               uploadID,
		Status:                 e.status,
		CurrentStage:           e.stage,
		ProcessedConversations: e.processedConversations,
		TotalConversations:     e.totalConversations,
		StartTime:              e.startTime,
		LastUpdate:             e.lastUpdate,
		Details:                e.details,
		Statistics:             e.stats,
		Errors:                 errs,
		ProgressPercentage:     e.percentage(),
	}
}

// percentage derives progress_percentage per §4.9: 0 before ai_analysis
// starts, (completedJobs/totalJobs)*100 during it, 100 once completed.
// failed and cancelled keep the job-derived percentage.
//
// completed_with_filters is reached two different ways and they report
// different percentages (§8 scenario 1 vs. the "all messages filtered"
// boundary behavior): an upload that was empty from the start
// (total_conversations = 0) reports 100, matching invariant 5's
// `processed_conversations > 0 ∨ total_conversations = 0` escape hatch;
// one where every chat was filtered out after conversations existed
// reports the job-derived percentage (0 when no jobs ever ran).
func (e *entry) percentage() float64 {
	switch e.status {
	case models.UploadStatusCompleted:
		return 100
	case models.UploadStatusCompletedWithFilters:
		if e.totalConversations == 0 {
			return 100
		}
		if e.totalJobs == 0 {
			return 0
		}
		return 100 * float64(e.completedJobs) / float64(e.totalJobs)
	case models.UploadStatusFailed, models.UploadStatusCancelled:
		if e.totalJobs == 0 {
			return 0
		}
		return 100 * float64(e.completedJobs) / float64(e.totalJobs)
	}

	if e.totalJobs == 0 {
		return 0
	}
	return 100 * float64(e.completedJobs) / float64(e.totalJobs)
}
