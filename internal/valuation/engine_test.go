package valuation

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, sims, workers int, seed uint64) *Engine {
	t.Helper()
	e, err := NewEngine(Config{
		Simulations: sims,
		Workers:     workers,
		Seed:        seed,
		Thresholds:  DefaultThresholds(),
	})
	require.NoError(t, err)
	return e
}

func TestRunRoadBasicScenario(t *testing.T) {
	res, err := newTestEngine(t, 5000, 4, 2024).Run(context.Background(), roadBasic())
	require.NoError(t, err)

	assert.Equal(t, 5000, res.Iterations)
	assert.Equal(t, 4, res.Workers)
	assert.True(t, res.HasFollowOn)
	assert.Greater(t, res.NPV, 0.0)
	assert.Equal(t, DecisionParticipate, res.NPVDecision)
	assert.Greater(t, res.Options.FollowOn.Mean, 0.0)
	assert.Greater(t, res.FollowOnActiveRate, 0.0)
	assert.InDelta(t, 1.0, res.Probabilities.Sum(), 1e-9)
	assert.LessOrEqual(t, res.ROVNet, 0.80*math.Abs(res.NPV))
	assert.LessOrEqual(t, res.TPVLower, res.TPV)
	assert.GreaterOrEqual(t, res.TPVUpper, res.TPV)
	assert.InDelta(t, res.NPV+res.ROVNet, res.TPV, 1e-6)
	require.NotNil(t, res.TPVToNPV)
	assert.InDelta(t, res.TPV/res.NPV, *res.TPVToNPV, 1e-12)

	_, robustness := res.Probabilities.Dominant()
	assert.Equal(t, robustness, res.Robustness)
}

func TestRunRoadBasicFavoursParticipation(t *testing.T) {
	favourable := 0
	for seed := uint64(1); seed <= 5; seed++ {
		res, err := newTestEngine(t, 2000, 2, seed).Run(context.Background(), roadBasic())
		require.NoError(t, err)
		if res.TPVDecision == DecisionParticipate || res.TPVDecision == DecisionStrongParticipate {
			favourable++
		}
	}
	assert.GreaterOrEqual(t, favourable, 3)
}

func TestRunBridgeDetailedScenario(t *testing.T) {
	in := bridgeDetailed()
	res, err := newTestEngine(t, 5000, 3, 77).Run(context.Background(), in)
	require.NoError(t, err)

	assert.False(t, res.HasFollowOn)
	assert.Zero(t, res.Options.FollowOn.Mean)
	assert.Zero(t, res.Options.FollowOn.Std)
	assert.Zero(t, res.FollowOnActiveRate)
	assert.Less(t, res.NPV, 0.10*in.ContractAmount)
	assert.InDelta(t, 1.0, res.Probabilities.Sum(), 1e-9)
}

func TestRunConverges(t *testing.T) {
	a, err := newTestEngine(t, 5000, 1, 101).Run(context.Background(), roadBasic())
	require.NoError(t, err)
	b, err := newTestEngine(t, 5000, 1, 202).Run(context.Background(), roadBasic())
	require.NoError(t, err)

	rel := math.Abs(a.TPV-b.TPV) / math.Max(math.Abs(a.TPV), math.Abs(b.TPV))
	assert.Less(t, rel, 0.05, "tpv %v vs %v", a.TPV, b.TPV)
}

func TestRunIsReproducible(t *testing.T) {
	for _, workers := range []int{1, 4} {
		a, err := newTestEngine(t, 3000, workers, 555).Run(context.Background(), tunnelOpen())
		require.NoError(t, err)
		b, err := newTestEngine(t, 3000, workers, 555).Run(context.Background(), tunnelOpen())
		require.NoError(t, err)
		require.Equal(t, a, b)
	}
}

func TestRunClockSeed(t *testing.T) {
	res, err := newTestEngine(t, 200, 1, 0).Run(context.Background(), roadBasic())
	require.NoError(t, err)
	assert.NotZero(t, res.Seed)
}

func TestRunRejectsInvalidInput(t *testing.T) {
	in := roadBasic()
	in.CurrentUtilization = 1.5
	res, err := newTestEngine(t, 1000, 2, 1).Run(context.Background(), in)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "current_utilization", verr.Field)
	assert.Equal(t, Result{}, res)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := newTestEngine(t, 100000, 4, 1).Run(ctx, roadBasic())
	require.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.Equal(t, Result{}, res)
}

func TestNewEngineValidatesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Simulations = 99
	_, err := NewEngine(cfg)
	require.ErrorIs(t, err, ErrSimulationCount)

	cfg.Simulations = 100001
	_, err = NewEngine(cfg)
	require.ErrorIs(t, err, ErrSimulationCount)

	cfg = DefaultConfig()
	cfg.Workers = 0
	_, err = NewEngine(cfg)
	require.Error(t, err)

	cfg = DefaultConfig()
	cfg.Thresholds.StrongFloor = -1
	_, err = NewEngine(cfg)
	require.Error(t, err)
}

func TestPartition(t *testing.T) {
	assert.Equal(t, []int{5000}, partition(5000, 1))
	assert.Equal(t, []int{1667, 1667, 1666}, partition(5000, 3))
	assert.Equal(t, []int{1, 1}, partition(2, 8))
	assert.Equal(t, []int{10}, partition(10, 0))
}
