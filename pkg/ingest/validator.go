// Package ingest normalizes raw uploaded messages and groups them into the
// per-conversation, per-day units the rest of the pipeline scores.
package ingest

import (
	"errors"
	"time"

	"github.com/gl4d3/powerpulse/pkg/models"
)

// RejectionReason classifies why a raw message was rejected, for the
// filtered_autoresponses / filtered_invalid statistics split (SPEC_FULL ยง4.1).
type RejectionReason int

const (
	// RejectNone means the message was accepted.
	RejectNone RejectionReason = iota
	// RejectAutoresponse is the known auto-reply sentence.
	RejectAutoresponse
	// RejectInvalid is any other validation failure.
	RejectInvalid
)

// ErrRejected is not returned by Validator.Validate; Validate instead
// returns a RejectionReason directly so callers can bump statistics without
// string matching.
var ErrRejected = errors.New("message rejected")

// Validator accepts or rejects one raw message record and normalizes it.
type Validator struct {
	// AutoresponseSentence is matched exactly (case-sensitive) against
	// message content, unless SubstringMatch is set.
	AutoresponseSentence string
	SubstringMatch       bool
}

// NewValidator builds a Validator from the configured autoresponse filter.
func NewValidator(sentence string, substringMatch bool) *Validator {
	return &Validator{AutoresponseSentence: sentence, SubstringMatch: substringMatch}
}

// Validate normalizes one raw message for the given chat, or reports why it
// was rejected. RejectNone is returned alongside the normalized message on
// success.
func (v *Validator) Validate(chatID string, raw models.RawMessage) (models.NormalizedMessage, RejectionReason) {
	if raw.MessageContent == nil {
		return models.NormalizedMessage{}, RejectInvalid
	}
	content := *raw.MessageContent

	direction, ok := normalizeDirection(raw.Direction)
	if !ok {
		return models.NormalizedMessage{}, RejectInvalid
	}

	ts, err := parseTimestamp(raw.SocialCreateTime)
	if err != nil {
		return models.NormalizedMessage{}, RejectInvalid
	}

	if v.isAutoresponse(content) {
		return models.NormalizedMessage{}, RejectAutoresponse
	}

	var agentInfo map[string]any
	if raw.AgentUsername != nil || raw.AgentEmail != nil {
		agentInfo = map[string]any{}
		if raw.AgentUsername != nil {
			agentInfo["agent_username"] = *raw.AgentUsername
		}
		if raw.AgentEmail != nil {
			agentInfo["agent_email"] = *raw.AgentEmail
		}
	}

	return models.NormalizedMessage{
		ChatID:           chatID,
		MessageContent:   content,
		Direction:        direction,
		SocialCreateTime: ts.UTC(),
		AgentInfo:        agentInfo,
	}, RejectNone
}

func (v *Validator) isAutoresponse(content string) bool {
	if v.AutoresponseSentence == "" {
		return false
	}
	if v.SubstringMatch {
		return containsSentence(content, v.AutoresponseSentence)
	}
	return content == v.AutoresponseSentence
}

func containsSentence(content, sentence string) bool {
	if len(sentence) == 0 {
		return false
	}
	return len(content) >= len(sentence) && indexOf(content, sentence) >= 0
}

func indexOf(haystack, needle string) int {
	n, m := len(haystack), len(needle)
	if m == 0 || m > n {
		return -1
	}
	for i := 0; i+m <= n; i++ {
		if haystack[i:i+m] == needle {
			return i
		}
	}
	return -1
}

func normalizeDirection(raw string) (models.Direction, bool) {
	switch models.Direction(raw) {
	case models.DirectionToCompany:
		return models.DirectionToCompany, true
	case models.DirectionToClient:
		return models.DirectionToClient, true
	default:
		return "", false
	}
}

func parseTimestamp(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	return time.Parse(time.RFC3339, raw)
}
