package orchestrator

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gl4d3/powerpulse/pkg/config"
	"github.com/gl4d3/powerpulse/pkg/llmadapter"
	"github.com/gl4d3/powerpulse/pkg/models"
	"github.com/gl4d3/powerpulse/pkg/progress"
	"github.com/gl4d3/powerpulse/pkg/queue"
	"github.com/gl4d3/powerpulse/pkg/storage"
	testdb "github.com/gl4d3/powerpulse/test/database"
)

// fakeProvider returns one well-formed result element per unit embedded in
// the prompt, so it works regardless of how the batcher happened to pack
// the upload's units into jobs.
type fakeProvider struct{}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Call(ctx context.Context, prompt string) (string, *llmadapter.Usage, error) {
	n := strings.Count(prompt, "chat_id=")
	if n == 0 {
		n = 1
	}
	element := `{"sentiment_score":7,"sentiment_shift":1,"resolution_achieved":8,"fcr_score":7,"ces":3}`
	elements := make([]string, n)
	for i := range elements {
		elements[i] = element
	}
	return "[" + strings.Join(elements, ",") + "]", nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		AIService:                  "fake",
		MaxTokensPerJob:            16000,
		BatchSize:                  20,
		MaxFileSize:                52428800,
		AutoresponseSentence:       "Thank you for reaching out! Did you know that you can now dial *977# to report a power outage or get your last three tokens instantly?",
		AutoresponseSubstringMatch: false,
		Job: &config.JobConfig{
			AIConcurrency:     2,
			MinInterCallDelay: 1 * time.Millisecond,
			LLMCallTimeout:    5 * time.Second,
			UploadTimeout:     5 * time.Second,
			RetryBaseDelay:    1 * time.Millisecond,
			RetryMaxAttempts:  2,
		},
	}
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, *progress.Tracker) {
	client := testdb.NewTestClient(t)
	gw := storage.NewGateway(client.Client)
	tracker := progress.NewTracker()
	cancels := queue.NewCancelRegistry()
	adapter := llmadapter.New(&fakeProvider{})

	o := New(gw, tracker, cancels, adapter, testConfig(), nil)
	return o, tracker
}

func waitForTerminal(t *testing.T, tracker *progress.Tracker, uploadID string) models.ProgressSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := tracker.Get(uploadID)
		require.NoError(t, err)
		switch snap.Status {
		case models.UploadStatusCompleted, models.UploadStatusCompletedWithFilters, models.UploadStatusFailed, models.UploadStatusCancelled:
			return snap
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("upload %s never reached a terminal status", uploadID)
	return models.ProgressSnapshot{}
}

func TestOrchestrator_Accept_EmptyObjectUpload(t *testing.T) {
	o, tracker := newTestOrchestrator(t)

	resp, err := o.Accept([]byte(`{}`), false)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.UploadID)

	snap := waitForTerminal(t, tracker, resp.UploadID)
	assert.Equal(t, models.UploadStatusCompletedWithFilters, snap.Status)
	assert.Equal(t, float64(100), snap.ProgressPercentage)
}

func TestOrchestrator_Accept_OversizedUploadRejectedSynchronously(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	o.cfg.MaxFileSize = 4

	_, err := o.Accept([]byte(`{"a":[]}`), false)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestOrchestrator_Accept_InvalidJSONRejectedSynchronously(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	_, err := o.Accept([]byte(`not json`), false)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestOrchestrator_Accept_SingleDayChatCompletes(t *testing.T) {
	o, tracker := newTestOrchestrator(t)

	payload := models.UploadPayload{
		"chat-orch-1": []models.RawMessage{
			{MessageContent: strp("hi"), Direction: "to_company", SocialCreateTime: "2026-03-01T10:00:00Z"},
			{MessageContent: strp("hello"), Direction: "to_client", SocialCreateTime: "2026-03-01T10:01:00Z"},
		},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := o.Accept(raw, false)
	require.NoError(t, err)

	snap := waitForTerminal(t, tracker, resp.UploadID)
	assert.Equal(t, models.UploadStatusCompleted, snap.Status)
	assert.Equal(t, 1, snap.ProcessedConversations)
	assert.Equal(t, float64(100), snap.ProgressPercentage)
}

func TestOrchestrator_Accept_AllAutoresponsesFiltersChat(t *testing.T) {
	o, tracker := newTestOrchestrator(t)
	sentence := o.cfg.AutoresponseSentence

	payload := models.UploadPayload{
		"chat-orch-2": []models.RawMessage{
			{MessageContent: strp(sentence), Direction: "to_company", SocialCreateTime: "2026-03-01T10:00:00Z"},
		},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := o.Accept(raw, false)
	require.NoError(t, err)

	snap := waitForTerminal(t, tracker, resp.UploadID)
	assert.Equal(t, models.UploadStatusCompletedWithFilters, snap.Status)
	assert.Equal(t, 1, snap.Statistics.FilteredAutoresponses)
	assert.Equal(t, 0, snap.ProcessedConversations)
	// A chat existed and was filtered out (unlike the empty-object case),
	// so progress_percentage stays 0 rather than jumping to 100.
	assert.Equal(t, float64(0), snap.ProgressPercentage)
}

func TestOrchestrator_Accept_SpansTwoUTCDaysProducesTwoAnalyses(t *testing.T) {
	o, tracker := newTestOrchestrator(t)

	payload := models.UploadPayload{
		"chat-orch-3": []models.RawMessage{
			{MessageContent: strp("hi"), Direction: "to_company", SocialCreateTime: "2026-03-01T23:59:00Z"},
			{MessageContent: strp("hello"), Direction: "to_client", SocialCreateTime: "2026-03-02T00:01:00Z"},
		},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := o.Accept(raw, false)
	require.NoError(t, err)

	snap := waitForTerminal(t, tracker, resp.UploadID)
	assert.Equal(t, models.UploadStatusCompleted, snap.Status)
	// Both days' units are small enough to land in a single batched job,
	// so the LLM is called once even though two DailyAnalysis rows exist.
	assert.Equal(t, 1, snap.Statistics.AICallsMade)
}

func TestOrchestrator_Accept_ForceReprocessReanalyzesAlreadyProcessedChat(t *testing.T) {
	o, tracker := newTestOrchestrator(t)

	payload := models.UploadPayload{
		"chat-orch-4": []models.RawMessage{
			{MessageContent: strp("hi"), Direction: "to_company", SocialCreateTime: "2026-03-01T10:00:00Z"},
		},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	first, err := o.Accept(raw, false)
	require.NoError(t, err)
	waitForTerminal(t, tracker, first.UploadID)

	rerun, err := o.Accept(raw, false)
	require.NoError(t, err)
	snap := waitForTerminal(t, tracker, rerun.UploadID)
	assert.Equal(t, models.UploadStatusCompletedWithFilters, snap.Status)
	assert.Equal(t, 0, snap.ProcessedConversations)

	forced, err := o.Accept(raw, true)
	require.NoError(t, err)
	forcedSnap := waitForTerminal(t, tracker, forced.UploadID)
	assert.Equal(t, models.UploadStatusCompleted, forcedSnap.Status)
	assert.Equal(t, 1, forcedSnap.ProcessedConversations)
}

// structuralFailureProvider always returns a malformed response, forcing
// every unit in every job through C5's fallback path.
type structuralFailureProvider struct{}

func (p *structuralFailureProvider) Name() string { return "broken" }

func (p *structuralFailureProvider) Call(ctx context.Context, prompt string) (string, *llmadapter.Usage, error) {
	return "not json", nil, nil
}

func TestOrchestrator_Accept_LLMStructuralFailureStillCompletesWithFallback(t *testing.T) {
	client := testdb.NewTestClient(t)
	gw := storage.NewGateway(client.Client)
	tracker := progress.NewTracker()
	cancels := queue.NewCancelRegistry()
	adapter := llmadapter.New(&structuralFailureProvider{})

	o := New(gw, tracker, cancels, adapter, testConfig(), nil)

	payload := models.UploadPayload{
		"chat-orch-5": []models.RawMessage{
			{MessageContent: strp("hi"), Direction: "to_company", SocialCreateTime: "2026-03-01T10:00:00Z"},
		},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := o.Accept(raw, false)
	require.NoError(t, err)

	snap := waitForTerminal(t, tracker, resp.UploadID)
	assert.Equal(t, models.UploadStatusCompleted, snap.Status)
	assert.Equal(t, 1, snap.Statistics.AICallsMade)
	assert.Equal(t, 1, snap.Statistics.AIFailures)
}

func strp(s string) *string { return &s }
