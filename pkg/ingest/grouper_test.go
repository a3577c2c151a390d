package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gl4d3/powerpulse/pkg/models"
)

func msgAt(content, direction, ts string) models.NormalizedMessage {
	t, _ := time.Parse(time.RFC3339, ts)
	return models.NormalizedMessage{
		ChatID:           "chat-1",
		MessageContent:   content,
		Direction:        models.Direction(direction),
		SocialCreateTime: t,
	}
}

func TestGrouper_SingleDay(t *testing.T) {
	g := NewGrouper()
	messages := []models.NormalizedMessage{
		msgAt("hi", "to_company", "2026-01-15T09:00:00Z"),
		msgAt("hello", "to_client", "2026-01-15T09:05:00Z"),
	}

	units, summary := g.Group("chat-1", messages)

	require.Len(t, units, 1)
	assert.Equal(t, 2, summary.TotalMessages)
	assert.Equal(t, 1, summary.CustomerMessages)
	assert.Equal(t, 1, summary.AgentMessages)
	assert.Equal(t, 2026, units[0].AnalysisDate.Year())
	assert.Equal(t, time.January, units[0].AnalysisDate.Month())
	assert.Equal(t, 15, units[0].AnalysisDate.Day())
}

func TestGrouper_SpansTwoUTCDays(t *testing.T) {
	g := NewGrouper()
	messages := []models.NormalizedMessage{
		msgAt("evening", "to_company", "2026-01-15T23:50:00Z"),
		msgAt("next day", "to_client", "2026-01-16T00:05:00Z"),
	}

	units, summary := g.Group("chat-1", messages)

	require.Len(t, units, 2)
	assert.Equal(t, 15, units[0].AnalysisDate.Day())
	assert.Equal(t, 16, units[1].AnalysisDate.Day())
	assert.Equal(t, 2, summary.TotalMessages)
}

func TestGrouper_OrdersOutOfSequenceInput(t *testing.T) {
	g := NewGrouper()
	messages := []models.NormalizedMessage{
		msgAt("second", "to_client", "2026-01-15T10:00:00Z"),
		msgAt("first", "to_company", "2026-01-15T09:00:00Z"),
	}

	units, summary := g.Group("chat-1", messages)

	require.Len(t, units, 1)
	require.Len(t, units[0].Messages, 2)
	assert.Equal(t, "first", units[0].Messages[0].MessageContent)
	assert.Equal(t, "second", units[0].Messages[1].MessageContent)
	assert.True(t, summary.FirstMessageTime.Before(summary.LastMessageTime))
}

func TestGrouper_EmptyInput(t *testing.T) {
	g := NewGrouper()
	units, summary := g.Group("chat-1", nil)
	assert.Empty(t, units)
	assert.Equal(t, 0, summary.TotalMessages)
}

func TestDailyUnit_TextLength(t *testing.T) {
	unit := models.DailyUnit{
		Messages: []models.NormalizedMessage{
			{MessageContent: "abc"},
			{MessageContent: "defgh"},
		},
	}
	assert.Equal(t, 8, unit.TextLength())
}
