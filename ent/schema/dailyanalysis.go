package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// DailyAnalysis holds the schema definition for the DailyAnalysis entity.
// One row per (Conversation, analysis_date). Created empty after ingest,
// mutated exactly once on successful job completion.
type DailyAnalysis struct {
	ent.Schema
}

// Fields of the DailyAnalysis.
func (DailyAnalysis) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("daily_analysis_id").
			Unique().
			Immutable(),
		field.String("conversation_id").
			Immutable(),
		field.Time("analysis_date").
			Immutable().
			Comment("UTC calendar date, truncated to midnight"),
		field.Enum("status").
			Values("pending", "completed", "failed").
			Default("pending"),
		field.String("error").
			Optional().
			Nillable().
			Comment("Set when the owning job's LLM call or write failed"),

		// AI-derived micro-metrics (set by C5, subject to fallback substitution).
		field.Float32("sentiment_score").Optional().Nillable(),
		field.Float32("sentiment_shift").Optional().Nillable(),
		field.Float32("resolution_achieved").Optional().Nillable(),
		field.Float32("fcr_score").Optional().Nillable(),
		field.Float32("ces").Optional().Nillable(),

		// Deterministic time metrics (set by C7, after the LLM call returns).
		field.Float64("first_response_time").Optional().Nillable().
			Comment("Seconds"),
		field.Float64("avg_response_time").Optional().Nillable().
			Comment("Seconds"),
		field.Float64("total_handling_time").Optional().Nillable().
			Comment("Minutes"),

		// Pillars + CSI (set by C8).
		field.Float32("effectiveness_score").Optional().Nillable(),
		field.Float32("effort_score").Optional().Nillable(),
		field.Float32("efficiency_score").Optional().Nillable(),
		field.Float32("empathy_score").Optional().Nillable(),
		field.Float32("csi_score").Optional().Nillable(),

		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}

// Edges of the DailyAnalysis.
func (DailyAnalysis) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("conversation", Conversation.Type).
			Ref("daily_analyses").
			Field("conversation_id").
			Unique().
			Required().
			Immutable(),
		// Weak many-to-many: a Job references DailyAnalysis rows by id but
		// does not own their lifetime (see DESIGN.md — Job/DailyAnalysis).
		edge.To("jobs", Job.Type),
	}
}

// Indexes of the DailyAnalysis.
func (DailyAnalysis) Indexes() []ent.Index {
	return []ent.Index{
		// Idempotent create: (conversation_id, analysis_date) is the natural key.
		index.Fields("conversation_id", "analysis_date").Unique(),
	}
}
