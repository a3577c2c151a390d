package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Conversation holds the schema definition for the Conversation entity.
// One row per chat_id; owns Messages and DailyAnalysis rows.
type Conversation struct {
	ent.Schema
}

// Fields of the Conversation.
func (Conversation) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("conversation_id").
			Unique().
			Immutable(),
		field.String("chat_id").
			Unique().
			Immutable().
			Comment("External chat identifier from the upload payload"),
		field.String("customer_name").
			Optional().
			Nillable(),
		field.Int("total_messages").
			Default(0),
		field.Int("customer_messages").
			Default(0).
			Comment("Messages with direction=to_company"),
		field.Int("agent_messages").
			Default(0).
			Comment("Messages with direction=to_client"),
		field.Time("first_message_time").
			Optional().
			Nillable(),
		field.Time("last_message_time").
			Optional().
			Nillable(),
		field.JSON("common_topics", []string{}).
			Optional().
			Comment("Deduplicated topic tags, reserved for future enrichment"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}

// Edges of the Conversation.
func (Conversation) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("messages", Message.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("daily_analyses", DailyAnalysis.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

// Indexes of the Conversation.
func (Conversation) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("chat_id").Unique(),
	}
}
