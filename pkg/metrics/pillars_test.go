package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gl4d3/powerpulse/pkg/models"
)

func f64p(v float64) *float64 { return &v }

func TestComputePillars_AllInputsPresent(t *testing.T) {
	ai := models.AIMetrics{
		SentimentScore:     8,
		SentimentShift:     1,
		ResolutionAchieved: 9,
		FCRScore:           7,
		CES:                2,
	}
	tm := models.TimeMetrics{
		FirstResponseTime: f64p(60),
		AvgResponseTime:   f64p(120),
		TotalHandlingTime: f64p(5),
	}

	p := ComputePillars(ai, tm, DefaultPillarThresholds())

	require.NotNil(t, p.Effectiveness)
	assert.InDelta(t, 8.0, *p.Effectiveness, 0.01) // mean(9,7)

	require.NotNil(t, p.Effort)
	assert.InDelta(t, 8.333, *p.Effort, 0.01) // (7-2)/6*10

	require.NotNil(t, p.Efficiency)
	assert.InDelta(t, 10.0, *p.Efficiency, 0.01) // all at/below "good" thresholds

	require.NotNil(t, p.Empathy)
	assert.InDelta(t, 6.8, *p.Empathy, 0.01) // 0.4*8 + 0.6*((1+5)/10*10)=0.4*8+0.6*6
}

func TestComputePillars_EfficiencyNullWhenAllTimesNull(t *testing.T) {
	ai := models.AIMetrics{SentimentScore: 5, ResolutionAchieved: 5, FCRScore: 5, CES: 4}
	tm := models.TimeMetrics{}

	p := ComputePillars(ai, tm, DefaultPillarThresholds())
	assert.Nil(t, p.Efficiency)
}

func TestComputePillars_EfficiencyPartialAverage(t *testing.T) {
	tm := models.TimeMetrics{FirstResponseTime: f64p(1800)} // worst score: 0
	p := ComputePillars(models.AIMetrics{}, tm, DefaultPillarThresholds())
	require.NotNil(t, p.Efficiency)
	assert.InDelta(t, 0.0, *p.Efficiency, 0.01)
}

func TestEffort_ClipsAtBounds(t *testing.T) {
	// ces=1 (best) -> (7-1)/6*10 = 10
	v := effort(models.AIMetrics{CES: 1})
	assert.InDelta(t, 10.0, *v, 0.01)
	// ces=7 (worst) -> 0
	v = effort(models.AIMetrics{CES: 7})
	assert.InDelta(t, 0.0, *v, 0.01)
}

func TestComputeCSI_AllPillarsPresent(t *testing.T) {
	e := float32(8)
	ef := float32(8.333)
	eff := float32(10)
	em := float32(6.8)
	p := models.Pillars{Effectiveness: &e, Effort: &ef, Efficiency: &eff, Empathy: &em}

	csi := ComputeCSI(p)
	require.NotNil(t, csi)
	expected := 10 * (0.40*8 + 0.25*8.333 + 0.15*10 + 0.20*6.8)
	assert.InDelta(t, expected, *csi, 0.1)
}

func TestComputeCSI_RenormalizesWhenPillarMissing(t *testing.T) {
	e := float32(10)
	em := float32(10)
	p := models.Pillars{Effectiveness: &e, Empathy: &em}

	csi := ComputeCSI(p)
	require.NotNil(t, csi)
	// weights 0.40 + 0.20 = 0.60, renormalized: both pillars at 10 -> CSI=100
	assert.InDelta(t, 100.0, *csi, 0.01)
}

func TestComputeCSI_NullWhenAllPillarsNull(t *testing.T) {
	csi := ComputeCSI(models.Pillars{})
	assert.Nil(t, csi)
}

func TestComputeScore_EndToEnd(t *testing.T) {
	messages := []models.NormalizedMessage{
		msgAt("to_company", "2026-01-15T10:00:00Z"),
		msgAt("to_client", "2026-01-15T10:01:00Z"),
	}
	ai := models.AIMetrics{SentimentScore: 8, SentimentShift: 1, ResolutionAchieved: 9, FCRScore: 7, CES: 2}

	result := ComputeScore(messages, ai, DefaultPillarThresholds())
	require.NotNil(t, result.CSI)
	require.NotNil(t, result.Time.FirstResponseTime)
	assert.Equal(t, 60.0, *result.Time.FirstResponseTime)
}
