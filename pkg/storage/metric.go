package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gl4d3/powerpulse/ent"
	"github.com/gl4d3/powerpulse/ent/metric"
)

// MetricStore manages the Metric cache: a small set of named aggregate
// values, upserted by name after every successful upload.
type MetricStore struct {
	client *ent.Client
}

// NewMetricStore creates a new MetricStore.
func NewMetricStore(client *ent.Client) *MetricStore {
	return &MetricStore{client: client}
}

// NamedMetric is one metric_name/value/metadata triple to persist.
type NamedMetric struct {
	Name     string
	Value    float64
	Metadata map[string]any
}

// ReplaceMetrics upserts each of metrics by metric_name, stamping
// calculated_at on every row. Existing metrics not named in metrics are left
// untouched (the cache is additive across unrelated metric families).
func ReplaceMetrics(ctx context.Context, tx *ent.Tx, metrics []NamedMetric) error {
	now := time.Now()
	for _, m := range metrics {
		existing, err := tx.Metric.Query().
			Where(metric.MetricNameEQ(m.Name)).
			Only(ctx)
		if err == nil {
			builder := existing.Update().
				SetMetricValue(m.Value).
				SetCalculatedAt(now)
			if m.Metadata != nil {
				builder = builder.SetMetricMetadata(m.Metadata)
			}
			if _, err := builder.Save(ctx); err != nil {
				return fmt.Errorf("failed to update metric %q: %w", m.Name, err)
			}
			continue
		}
		if !ent.IsNotFound(err) {
			return fmt.Errorf("failed to query metric %q: %w", m.Name, err)
		}

		builder := tx.Metric.Create().
			SetID(uuid.New().String()).
			SetMetricName(m.Name).
			SetMetricValue(m.Value).
			SetCalculatedAt(now)
		if m.Metadata != nil {
			builder = builder.SetMetricMetadata(m.Metadata)
		}
		if _, err := builder.Save(ctx); err != nil {
			return fmt.Errorf("failed to create metric %q: %w", m.Name, err)
		}
	}
	return nil
}

// GetMetric returns one named metric, or nil if it has never been
// calculated.
func (s *MetricStore) GetMetric(ctx context.Context, name string) (*ent.Metric, error) {
	m, err := s.client.Metric.Query().
		Where(metric.MetricNameEQ(name)).
		Only(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get metric %q: %w", name, err)
	}
	return m, nil
}

// ListMetrics returns every cached metric.
func (s *MetricStore) ListMetrics(ctx context.Context) ([]*ent.Metric, error) {
	metrics, err := s.client.Metric.Query().All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list metrics: %w", err)
	}
	return metrics, nil
}
