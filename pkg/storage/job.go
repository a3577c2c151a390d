package storage

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/gl4d3/powerpulse/ent"
	"github.com/gl4d3/powerpulse/ent/job"
)

// ErrNoJobsAvailable is returned by ClaimNextJob when no pending job exists.
var ErrNoJobsAvailable = fmt.Errorf("no pending jobs available")

// JobStore manages Job rows.
type JobStore struct {
	client *ent.Client
}

// NewJobStore creates a new JobStore.
func NewJobStore(client *ent.Client) *JobStore {
	return &JobStore{client: client}
}

// CreateJob creates a pending job for uploadID, linked to the given
// DailyAnalysis ids (the weak many-to-many job_daily_analyses edge).
func (s *JobStore) CreateJob(ctx context.Context, uploadID string, dailyAnalysisIDs []string) (*ent.Job, error) {
	if uploadID == "" {
		return nil, NewValidationError("upload_id", "required")
	}

	j, err := s.client.Job.Create().
		SetID(uuid.New().String()).
		SetUploadID(uploadID).
		SetStatus(job.StatusPending).
		AddDailyAnalysisIDs(dailyAnalysisIDs...).
		Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return j, nil
}

// ClaimNextJob atomically claims the oldest pending job for uploadID using
// FOR UPDATE SKIP LOCKED, so multiple dispatcher goroutines (or process
// restarts) never race on the same job.
func (s *JobStore) ClaimNextJob(ctx context.Context, uploadID string) (*ent.Job, error) {
	tx, err := s.client.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	pending, err := tx.Job.Query().
		Where(
			job.UploadIDEQ(uploadID),
			job.StatusEQ(job.StatusPending),
		).
		Order(ent.Asc(job.FieldCreatedAt)).
		Limit(1).
		ForUpdate(sql.WithLockAction(sql.SkipLocked)).
		First(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNoJobsAvailable
		}
		return nil, fmt.Errorf("failed to query pending job: %w", err)
	}

	claimed, err := pending.Update().
		SetStatus(job.StatusInProgress).
		Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit claim: %w", err)
	}
	return claimed, nil
}

// CompleteJob marks a job completed with its per-item result payload.
func (s *JobStore) CompleteJob(ctx context.Context, id string, result map[string]any) error {
	now := time.Now()
	_, err := s.client.Job.UpdateOneID(id).
		SetStatus(job.StatusCompleted).
		SetCompletedAt(now).
		SetResult(result).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}
	return nil
}

// FailJob marks a job failed, recording the error (and optional traceback)
// in its result payload. Peer jobs for the same upload are unaffected.
func (s *JobStore) FailJob(ctx context.Context, id string, result map[string]any) error {
	now := time.Now()
	_, err := s.client.Job.UpdateOneID(id).
		SetStatus(job.StatusFailed).
		SetCompletedAt(now).
		SetResult(result).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("failed to fail job: %w", err)
	}
	return nil
}

// LoadDailyAnalyses returns the DailyAnalysis rows linked to j via the weak
// job_daily_analyses edge, used by the scheduler to reconstruct each unit's
// messages before calling the LLM adapter.
func (s *JobStore) LoadDailyAnalyses(ctx context.Context, j *ent.Job) ([]*ent.DailyAnalysis, error) {
	analyses, err := j.QueryDailyAnalyses().All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load job's daily analyses: %w", err)
	}
	return analyses, nil
}

// ListByUpload returns every job created for uploadID, oldest first.
func (s *JobStore) ListByUpload(ctx context.Context, uploadID string) ([]*ent.Job, error) {
	jobs, err := s.client.Job.Query().
		Where(job.UploadIDEQ(uploadID)).
		Order(ent.Asc(job.FieldCreatedAt)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// CountPending returns how many jobs for uploadID are still pending or
// in_progress.
func (s *JobStore) CountPending(ctx context.Context, uploadID string) (int, error) {
	n, err := s.client.Job.Query().
		Where(
			job.UploadIDEQ(uploadID),
			job.StatusIn(job.StatusPending, job.StatusInProgress),
		).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending jobs: %w", err)
	}
	return n, nil
}
