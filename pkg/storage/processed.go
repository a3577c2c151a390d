package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gl4d3/powerpulse/ent"
	"github.com/gl4d3/powerpulse/ent/processedchat"
)

// ProcessedChatStore tracks which chats have completed a successful upload,
// so a later upload can skip them unless force_reprocess is set.
type ProcessedChatStore struct {
	client *ent.Client
}

// NewProcessedChatStore creates a new ProcessedChatStore.
func NewProcessedChatStore(client *ent.Client) *ProcessedChatStore {
	return &ProcessedChatStore{client: client}
}

// IsChatProcessed reports whether chatID has a ProcessedChat row already.
func (s *ProcessedChatStore) IsChatProcessed(ctx context.Context, chatID string) (bool, error) {
	exists, err := s.client.ProcessedChat.Query().
		Where(processedchat.ChatIDEQ(chatID)).
		Exist(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check processed chat: %w", err)
	}
	return exists, nil
}

// MarkProcessed upserts the ProcessedChat row for chatID, recording the
// current message count. Called once per chat at the end of a successful
// upload pipeline run.
func (s *ProcessedChatStore) MarkProcessed(ctx context.Context, chatID string, messageCount int) error {
	existing, err := s.client.ProcessedChat.Query().
		Where(processedchat.ChatIDEQ(chatID)).
		Only(ctx)
	if err == nil {
		_, err = existing.Update().
			SetProcessedAt(time.Now()).
			SetMessageCount(messageCount).
			Save(ctx)
		if err != nil {
			return fmt.Errorf("failed to update processed chat: %w", err)
		}
		return nil
	}
	if !ent.IsNotFound(err) {
		return fmt.Errorf("failed to query processed chat: %w", err)
	}

	_, err = s.client.ProcessedChat.Create().
		SetID(uuid.New().String()).
		SetChatID(chatID).
		SetProcessedAt(time.Now()).
		SetMessageCount(messageCount).
		Save(ctx)
	if err != nil {
		if ent.IsConstraintError(err) {
			return nil // raced with a concurrent mark, row already exists
		}
		return fmt.Errorf("failed to create processed chat: %w", err)
	}
	return nil
}
