package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Message holds the schema definition for the Message entity.
// Append-only; ordering within a day is social_create_time ASC, insertion
// order as tiebreak (captured by the sequence field, which the inserting
// code assigns in increasing order per chat).
type Message struct {
	ent.Schema
}

// Fields of the Message.
func (Message) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("message_id").
			Unique().
			Immutable(),
		field.String("chat_id").
			Immutable().
			Comment("Denormalized for day-grouping queries without a join"),
		field.String("conversation_id").
			Immutable(),
		field.Int("sequence").
			Immutable().
			Comment("Insertion order, used as a tiebreak for equal timestamps"),
		field.Text("message_content").
			Comment("May be empty; never null post-validation"),
		field.Enum("direction").
			Values("to_company", "to_client"),
		field.Time("social_create_time"),
		field.JSON("agent_info", map[string]any{}).
			Optional().
			Comment("Structured agent_username/agent_email record, when present"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Edges of the Message.
func (Message) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("conversation", Conversation.Type).
			Ref("messages").
			Field("conversation_id").
			Unique().
			Required().
			Immutable(),
	}
}

// Indexes of the Message.
func (Message) Indexes() []ent.Index {
	return []ent.Index{
		// Day-grouping: all messages for a chat, ordered for C2's grouper.
		index.Fields("chat_id", "social_create_time"),
	}
}
