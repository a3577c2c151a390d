package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gl4d3/powerpulse/ent"
	"github.com/gl4d3/powerpulse/ent/message"
	"github.com/gl4d3/powerpulse/pkg/models"
)

// MessageStore manages Message rows.
type MessageStore struct {
	client *ent.Client
}

// NewMessageStore creates a new MessageStore.
func NewMessageStore(client *ent.Client) *MessageStore {
	return &MessageStore{client: client}
}

// InsertMessages appends every normalized message to a conversation within
// tx, assigning an increasing sequence number used as a tiebreak for equal
// timestamps. The caller owns the transaction's lifetime.
func InsertMessages(ctx context.Context, tx *ent.Tx, conversationID, chatID string, messages []models.NormalizedMessage, startSequence int) error {
	for i, m := range messages {
		builder := tx.Message.Create().
			SetID(uuid.New().String()).
			SetChatID(chatID).
			SetConversationID(conversationID).
			SetSequence(startSequence+i).
			SetMessageContent(m.MessageContent).
			SetDirection(message.Direction(m.Direction)).
			SetSocialCreateTime(m.SocialCreateTime)
		if m.AgentInfo != nil {
			builder = builder.SetAgentInfo(m.AgentInfo)
		}
		if _, err := builder.Save(ctx); err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}
	return nil
}

// CountByChatID returns how many messages already exist for chatID, used to
// seed the next sequence number when a conversation is appended to.
func (s *MessageStore) CountByChatID(ctx context.Context, chatID string) (int, error) {
	n, err := s.client.Message.Query().
		Where(message.ChatIDEQ(chatID)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return n, nil
}

// ListByConversationAndDate returns a conversation's messages for one UTC
// calendar date, ordered by social_create_time then sequence, used to
// reconstruct a day's unit for C7's round-trip recomputation.
func (s *MessageStore) ListByConversationAndDate(ctx context.Context, conversationID string, dayStart, dayEnd time.Time) ([]*ent.Message, error) {
	msgs, err := s.client.Message.Query().
		Where(
			message.ConversationIDEQ(conversationID),
			message.SocialCreateTimeGTE(dayStart),
			message.SocialCreateTimeLT(dayEnd),
		).
		Order(ent.Asc(message.FieldSocialCreateTime), ent.Asc(message.FieldSequence)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}
