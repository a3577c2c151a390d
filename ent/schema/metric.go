package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Metric holds the schema definition for the Metric entity — a cache of
// aggregate analytics rewritten wholesale after every successful upload.
type Metric struct {
	ent.Schema
}

// Fields of the Metric.
func (Metric) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("metric_id").
			Unique().
			Immutable(),
		field.String("metric_name").
			Unique(),
		field.Float64("metric_value"),
		field.JSON("metric_metadata", map[string]any{}).
			Optional(),
		field.Time("calculated_at"),
	}
}

// Indexes of the Metric.
func (Metric) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("metric_name").Unique(),
	}
}
