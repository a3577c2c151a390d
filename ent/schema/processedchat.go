package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ProcessedChat holds the schema definition for the ProcessedChat entity.
// Written at successful completion of an upload containing that chat;
// read at upload start to skip reprocessing unless force_reprocess is set.
type ProcessedChat struct {
	ent.Schema
}

// Fields of the ProcessedChat.
func (ProcessedChat) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("processed_chat_id").
			Unique().
			Immutable(),
		field.String("chat_id").
			Unique().
			Immutable(),
		field.Time("processed_at"),
		field.Int("message_count"),
	}
}

// Indexes of the ProcessedChat.
func (ProcessedChat) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("chat_id").Unique(),
	}
}
