package models

import "time"

// UploadStatus is the terminal/non-terminal state of one upload (C9).
type UploadStatus string

const (
	UploadStatusPending             UploadStatus = "pending"
	UploadStatusProcessing          UploadStatus = "processing"
	UploadStatusCompleted           UploadStatus = "completed"
	UploadStatusCompletedWithFilters UploadStatus = "completed_with_filters"
	UploadStatusFailed              UploadStatus = "failed"
	UploadStatusCancelled           UploadStatus = "cancelled"
)

// UploadStage is the current pipeline stage an upload is passing through.
type UploadStage string

const (
	StageReceiving              UploadStage = "receiving"
	StageValidating             UploadStage = "validating"
	StageFilteringConversations UploadStage = "filtering_conversations"
	StagePersisting             UploadStage = "persisting"
	StageBatching               UploadStage = "batching"
	StageAIAnalysis             UploadStage = "ai_analysis"
	StageFinalizing             UploadStage = "finalizing"
)

// ProgressStatistics holds the per-upload counters surfaced by the progress
// endpoint (SPEC_FULL ยง4.9).
type ProgressStatistics struct {
	FilteredAutoresponses int `json:"filtered_autoresponses"`
	FilteredInvalid       int `json:"filtered_invalid"`
	AICallsMade           int `json:"ai_calls_made"`
	AIFailures            int `json:"ai_failures"`
	TokensUsed            int `json:"tokens_used"`
}

// ProgressSnapshot is the read-only view returned by GET /api/progress/{upload_id}.
type ProgressSnapshot struct {
	UploadID               string             `json:"upload_id"`
	Status                 UploadStatus       `json:"status"`
	CurrentStage           UploadStage        `json:"current_stage"`
	ProcessedConversations int                `json:"processed_conversations"`
	TotalConversations     int                `json:"total_conversations"`
	StartTime              time.Time          `json:"start_time"`
	LastUpdate             time.Time          `json:"last_update"`
	Details                string             `json:"details"`
	Statistics             ProgressStatistics `json:"statistics"`
	Errors                 []string           `json:"errors"`
	ProgressPercentage     float64            `json:"progress_percentage"`
}
