package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		tpv, meanNPV float64
		want         Decision
	}{
		{tpv: -5, meanNPV: 50, want: DecisionReject},
		{tpv: 0, meanNPV: -10, want: DecisionReject},
		{tpv: 80, meanNPV: 50, want: DecisionStrongParticipate},
		{tpv: 70, meanNPV: 50, want: DecisionParticipate},  // (52.5, 75]
		{tpv: 25, meanNPV: 50, want: DecisionParticipate},  // absolute band (10, 30]
		{tpv: 45, meanNPV: 50, want: DecisionConditional},  // (40, 52.5]
		{tpv: 6, meanNPV: 50, want: DecisionConditional},   // absolute band (0, 10]
		{tpv: 35, meanNPV: 50, want: DecisionReject},       // below 0.8 x NPV, above the bands
		{tpv: 20, meanNPV: 10, want: DecisionParticipate},  // relative strong but under the 30 floor
		{tpv: 40, meanNPV: 10, want: DecisionStrongParticipate},
		{tpv: 12, meanNPV: -20, want: DecisionParticipate}, // negative NPV: only absolute bands apply
		{tpv: 50, meanNPV: -20, want: DecisionStrongParticipate},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, th.Classify(tt.tpv, tt.meanNPV), "tpv=%v npv=%v", tt.tpv, tt.meanNPV)
	}
}

func TestClassifyAllSumsToOne(t *testing.T) {
	th := DefaultThresholds()
	tpvs := make([]float64, 0, 401)
	for v := -100.0; v <= 100; v += 0.5 {
		tpvs = append(tpvs, v)
	}
	for _, npv := range []float64{-30, 0, 12, 50} {
		p := classifyAll(th, tpvs, npv)
		assert.InDelta(t, 1.0, p.Sum(), 1e-12, "mean npv %v", npv)
	}
}

func TestDominantAndLeaning(t *testing.T) {
	p := Probabilities{StrongParticipate: 0.2, Participate: 0.35, Conditional: 0.3, Reject: 0.15}
	d, prob := p.Dominant()
	assert.Equal(t, DecisionParticipate, d)
	assert.Equal(t, 0.35, prob)
	assert.Equal(t, DecisionParticipate, p.Leaning())

	tie := Probabilities{StrongParticipate: 0.25, Participate: 0.25, Conditional: 0.25, Reject: 0.25}
	d, _ = tie.Dominant()
	assert.Equal(t, DecisionStrongParticipate, d)
	assert.Equal(t, DecisionConditional, tie.Leaning())

	assert.Equal(t, DecisionReject, Probabilities{Reject: 0.6, Conditional: 0.4}.Leaning())
}

func TestCompareDecisions(t *testing.T) {
	up := Probabilities{StrongParticipate: 0.3, Participate: 0.3, Reject: 0.4}
	changed, dir := compareDecisions(DecisionReject, up)
	assert.True(t, changed)
	assert.Equal(t, DirectionUp, dir)

	down := Probabilities{Conditional: 0.2, Reject: 0.8}
	changed, dir = compareDecisions(DecisionParticipate, down)
	assert.True(t, changed)
	assert.Equal(t, DirectionDown, dir)

	same := Probabilities{Participate: 0.9, Reject: 0.1}
	changed, dir = compareDecisions(DecisionParticipate, same)
	assert.False(t, changed)
	assert.Equal(t, DirectionNoChange, dir)

	// A conditional leaning differs from either binary call but has no direction.
	mixed := Probabilities{Participate: 0.3, Conditional: 0.4, Reject: 0.3}
	changed, dir = compareDecisions(DecisionParticipate, mixed)
	assert.True(t, changed)
	assert.Equal(t, DirectionNoChange, dir)
}

func TestThresholdsValidate(t *testing.T) {
	require.NoError(t, DefaultThresholds().Validate())

	bad := DefaultThresholds()
	bad.ConditionalMultiple = 1.2
	assert.Error(t, bad.Validate())

	bad = DefaultThresholds()
	bad.ParticipateFloor = 40
	assert.Error(t, bad.Validate())
}
