package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gl4d3/powerpulse/pkg/models"
)

func strPtr(s string) *string { return &s }

func TestValidator_AcceptsValidMessage(t *testing.T) {
	v := NewValidator("Thank you for contacting us, an agent will respond shortly.", false)

	raw := models.RawMessage{
		MessageContent:   strPtr("hello there"),
		Direction:        "to_company",
		SocialCreateTime: "2026-01-15T10:30:00Z",
	}

	msg, reason := v.Validate("chat-1", raw)
	assert.Equal(t, RejectNone, reason)
	assert.Equal(t, "chat-1", msg.ChatID)
	assert.Equal(t, "hello there", msg.MessageContent)
	assert.Equal(t, models.DirectionToCompany, msg.Direction)
}

func TestValidator_RejectsNilContent(t *testing.T) {
	v := NewValidator("", false)
	raw := models.RawMessage{
		MessageContent:   nil,
		Direction:        "to_company",
		SocialCreateTime: "2026-01-15T10:30:00Z",
	}
	_, reason := v.Validate("chat-1", raw)
	assert.Equal(t, RejectInvalid, reason)
}

func TestValidator_RejectsInvalidDirection(t *testing.T) {
	v := NewValidator("", false)
	raw := models.RawMessage{
		MessageContent:   strPtr("hi"),
		Direction:        "sideways",
		SocialCreateTime: "2026-01-15T10:30:00Z",
	}
	_, reason := v.Validate("chat-1", raw)
	assert.Equal(t, RejectInvalid, reason)
}

func TestValidator_RejectsUnparseableTimestamp(t *testing.T) {
	v := NewValidator("", false)
	raw := models.RawMessage{
		MessageContent:   strPtr("hi"),
		Direction:        "to_company",
		SocialCreateTime: "not-a-date",
	}
	_, reason := v.Validate("chat-1", raw)
	assert.Equal(t, RejectInvalid, reason)
}

func TestValidator_RejectsExactAutoresponse(t *testing.T) {
	v := NewValidator("Thank you for contacting us.", false)
	raw := models.RawMessage{
		MessageContent:   strPtr("Thank you for contacting us."),
		Direction:        "to_client",
		SocialCreateTime: "2026-01-15T10:30:00Z",
	}
	_, reason := v.Validate("chat-1", raw)
	assert.Equal(t, RejectAutoresponse, reason)
}

func TestValidator_ExactMatchDoesNotRejectSubstring(t *testing.T) {
	v := NewValidator("Thank you for contacting us.", false)
	raw := models.RawMessage{
		MessageContent:   strPtr("Thank you for contacting us. Anything else?"),
		Direction:        "to_client",
		SocialCreateTime: "2026-01-15T10:30:00Z",
	}
	_, reason := v.Validate("chat-1", raw)
	assert.Equal(t, RejectNone, reason)
}

func TestValidator_SubstringModeRejectsEmbeddedSentence(t *testing.T) {
	v := NewValidator("Thank you for contacting us.", true)
	raw := models.RawMessage{
		MessageContent:   strPtr("Thank you for contacting us. Anything else?"),
		Direction:        "to_client",
		SocialCreateTime: "2026-01-15T10:30:00Z",
	}
	_, reason := v.Validate("chat-1", raw)
	assert.Equal(t, RejectAutoresponse, reason)
}

func TestValidator_CapturesAgentInfo(t *testing.T) {
	v := NewValidator("", false)
	raw := models.RawMessage{
		MessageContent:   strPtr("hi"),
		Direction:        "to_client",
		SocialCreateTime: "2026-01-15T10:30:00Z",
		AgentUsername:    strPtr("jdoe"),
		AgentEmail:       strPtr("jdoe@example.com"),
	}
	msg, reason := v.Validate("chat-1", raw)
	assert.Equal(t, RejectNone, reason)
	assert.Equal(t, "jdoe", msg.AgentInfo["agent_username"])
	assert.Equal(t, "jdoe@example.com", msg.AgentInfo["agent_email"])
}
