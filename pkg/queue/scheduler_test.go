package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gl4d3/powerpulse/pkg/config"
	"github.com/gl4d3/powerpulse/pkg/llmadapter"
	"github.com/gl4d3/powerpulse/pkg/models"
	"github.com/gl4d3/powerpulse/pkg/storage"
	testdb "github.com/gl4d3/powerpulse/test/database"
)

type stubProvider struct {
	raw     string
	err     error
	onCall  func()
	callCnt int32
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Call(ctx context.Context, prompt string) (string, *llmadapter.Usage, error) {
	atomic.AddInt32(&p.callCnt, 1)
	if p.onCall != nil {
		p.onCall()
	}
	if p.err != nil {
		return "", nil, p.err
	}
	return p.raw, nil, nil
}

func testJobConfig() *config.JobConfig {
	return &config.JobConfig{
		AIConcurrency:      2,
		MinInterCallDelay:  1 * time.Millisecond,
		LLMCallTimeout:     5 * time.Second,
		RetryBaseDelay:     1 * time.Millisecond,
		RetryMaxAttempts:   3,
	}
}

func seedOneDayChat(t *testing.T, gw *storage.Gateway, chatID string, day time.Time) string {
	units := []models.DailyUnit{{
		ChatID:       chatID,
		AnalysisDate: day,
		Messages: []models.NormalizedMessage{
			{ChatID: chatID, MessageContent: "hi", Direction: models.DirectionToCompany, SocialCreateTime: day.Add(10 * time.Hour)},
			{ChatID: chatID, MessageContent: "hello", Direction: models.DirectionToClient, SocialCreateTime: day.Add(10*time.Hour + time.Minute)},
		},
	}}
	summary := models.ConversationSummary{
		ChatID: chatID, TotalMessages: 2, CustomerMessages: 1, AgentMessages: 1,
		FirstMessageTime: day.Add(10 * time.Hour), LastMessageTime: day.Add(10*time.Hour + time.Minute),
	}

	result, err := gw.PersistChat(context.Background(), chatID, summary, units)
	require.NoError(t, err)
	return result.DailyAnalysisIDs[day]
}

func TestScheduler_RunUpload_SuccessfulJobCompletes(t *testing.T) {
	client := testdb.NewTestClient(t)
	gw := storage.NewGateway(client.Client)
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	daID := seedOneDayChat(t, gw, "chat-sched-1", day)
	job, err := gw.Jobs.CreateJob(context.Background(), "upload-sched-1", []string{daID})
	require.NoError(t, err)
	_ = job

	provider := &stubProvider{raw: `[{"sentiment_score":8,"sentiment_shift":1,"resolution_achieved":9,"fcr_score":7,"ces":2}]`}
	adapter := llmadapter.New(provider)
	sched := NewScheduler(gw, adapter, testJobConfig())

	results, err := sched.RunUpload(context.Background(), "upload-sched-1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Succeeded)

	analysis, err := gw.Analyses.GetDailyAnalysis(context.Background(), daID)
	require.NoError(t, err)
	assert.Equal(t, "completed", string(analysis.Status))
	require.NotNil(t, analysis.CsiScore)
}

func TestScheduler_RunUpload_MalformedResponseMarksJobFailedButWritesFallback(t *testing.T) {
	client := testdb.NewTestClient(t)
	gw := storage.NewGateway(client.Client)
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	daID := seedOneDayChat(t, gw, "chat-sched-2", day)
	_, err := gw.Jobs.CreateJob(context.Background(), "upload-sched-2", []string{daID})
	require.NoError(t, err)

	provider := &stubProvider{raw: "not json at all"}
	adapter := llmadapter.New(provider)
	sched := NewScheduler(gw, adapter, testJobConfig())

	results, err := sched.RunUpload(context.Background(), "upload-sched-2")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Succeeded)

	analysis, err := gw.Analyses.GetDailyAnalysis(context.Background(), daID)
	require.NoError(t, err)
	assert.Equal(t, "failed", string(analysis.Status))
	require.NotNil(t, analysis.Error)
	assert.Equal(t, "analysis_failed", *analysis.Error)

	jobs, err := gw.Jobs.ListByUpload(context.Background(), "upload-sched-2")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "failed", string(jobs[0].Status))
}

func TestScheduler_RunUpload_TransientErrorRetriesThenSucceeds(t *testing.T) {
	client := testdb.NewTestClient(t)
	gw := storage.NewGateway(client.Client)
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	daID := seedOneDayChat(t, gw, "chat-sched-3", day)
	_, err := gw.Jobs.CreateJob(context.Background(), "upload-sched-3", []string{daID})
	require.NoError(t, err)

	provider := &stubProvider{
		raw: `[{"sentiment_score":6,"sentiment_shift":0,"resolution_achieved":6,"fcr_score":6,"ces":3}]`,
	}
	// First call fails transiently, every call after succeeds.
	provider.onCall = func() {
		if atomic.LoadInt32(&provider.callCnt) == 1 {
			provider.err = errors.New("503 service unavailable")
		} else {
			provider.err = nil
		}
	}

	adapter := llmadapter.New(provider)
	sched := NewScheduler(gw, adapter, testJobConfig())

	results, err := sched.RunUpload(context.Background(), "upload-sched-3")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Succeeded)
	assert.GreaterOrEqual(t, int(atomic.LoadInt32(&provider.callCnt)), 2)
}

func TestScheduler_RunUpload_CancelledContextAbortsJob(t *testing.T) {
	client := testdb.NewTestClient(t)
	gw := storage.NewGateway(client.Client)
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	daID := seedOneDayChat(t, gw, "chat-sched-4", day)
	_, err := gw.Jobs.CreateJob(context.Background(), "upload-sched-4", []string{daID})
	require.NoError(t, err)

	provider := &stubProvider{raw: `[{"sentiment_score":6,"sentiment_shift":0,"resolution_achieved":6,"fcr_score":6,"ces":3}]`}
	adapter := llmadapter.New(provider)
	sched := NewScheduler(gw, adapter, testJobConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, _ := sched.RunUpload(ctx, "upload-sched-4")
	require.Len(t, results, 1)
	assert.Equal(t, "cancelled", results[0].Error)

	analysis, err := gw.Analyses.GetDailyAnalysis(context.Background(), daID)
	require.NoError(t, err)
	assert.Equal(t, "failed", string(analysis.Status))
	require.NotNil(t, analysis.Error)
	assert.Equal(t, "cancelled", *analysis.Error)
}
