package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gl4d3/powerpulse/ent"
	"github.com/gl4d3/powerpulse/ent/conversation"
	"github.com/gl4d3/powerpulse/pkg/models"
)

// ConversationStore manages Conversation rows (SPEC_FULL ยง4.3).
type ConversationStore struct {
	client *ent.Client
}

// NewConversationStore creates a new ConversationStore.
func NewConversationStore(client *ent.Client) *ConversationStore {
	return &ConversationStore{client: client}
}

// UpsertConversation creates the conversation for chatID if absent, or
// adds to its message counts and moves last_message_time forward if it
// already exists; first_message_time keeps its stored value. Idempotent on
// chat_id.
func (s *ConversationStore) UpsertConversation(ctx context.Context, summary models.ConversationSummary) (*ent.Conversation, error) {
	if summary.ChatID == "" {
		return nil, NewValidationError("chat_id", "required")
	}

	existing, err := s.client.Conversation.Query().
		Where(conversation.ChatIDEQ(summary.ChatID)).
		Only(ctx)
	if err != nil && !ent.IsNotFound(err) {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}

	if existing != nil {
		updated, err := existing.Update().
			SetTotalMessages(existing.TotalMessages + summary.TotalMessages).
			SetCustomerMessages(existing.CustomerMessages + summary.CustomerMessages).
			SetAgentMessages(existing.AgentMessages + summary.AgentMessages).
			SetLastMessageTime(latestOf(existing.LastMessageTime, summary.LastMessageTime)).
			Save(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to update conversation: %w", err)
		}
		return updated, nil
	}

	created, err := s.client.Conversation.Create().
		SetID(uuid.New().String()).
		SetChatID(summary.ChatID).
		SetTotalMessages(summary.TotalMessages).
		SetCustomerMessages(summary.CustomerMessages).
		SetAgentMessages(summary.AgentMessages).
		SetFirstMessageTime(summary.FirstMessageTime).
		SetLastMessageTime(summary.LastMessageTime).
		Save(ctx)
	if err != nil {
		if ent.IsConstraintError(err) {
			existing, queryErr := s.client.Conversation.Query().
				Where(conversation.ChatIDEQ(summary.ChatID)).
				Only(ctx)
			if queryErr != nil {
				return nil, fmt.Errorf("failed to query conversation after constraint error: %w", queryErr)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return created, nil
}

func latestOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// GetByID returns the conversation with the given id.
func (s *ConversationStore) GetByID(ctx context.Context, id string) (*ent.Conversation, error) {
	c, err := s.client.Conversation.Get(ctx, id)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return c, nil
}

// GetByChatID returns the conversation for chatID, or nil if none exists.
func (s *ConversationStore) GetByChatID(ctx context.Context, chatID string) (*ent.Conversation, error) {
	c, err := s.client.Conversation.Query().
		Where(conversation.ChatIDEQ(chatID)).
		Only(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return c, nil
}
