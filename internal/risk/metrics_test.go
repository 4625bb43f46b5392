package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawdown_TracksPeakAndCurrent(t *testing.T) {
	currentDD, maxDD, peak := Drawdown([]float64{100, 120, 90, 110})

	assert.InDelta(t, 120.0, peak, 0.001)
	assert.InDelta(t, 0.25, maxDD, 0.001)
	assert.InDelta(t, (120.0-110.0)/120.0, currentDD, 0.001)
}

func TestDrawdown_EmptyCurveIsZero(t *testing.T) {
	currentDD, maxDD, peak := Drawdown(nil)
	assert.Zero(t, currentDD)
	assert.Zero(t, maxDD)
	assert.Zero(t, peak)
}

func TestValueAtRisk_RejectsInvalidConfidence(t *testing.T) {
	_, _, err := ValueAtRisk([]float64{0.01, -0.02}, 1.5)
	require.Error(t, err)
}

func TestValueAtRisk_WorstReturnsDriveVaR(t *testing.T) {
	returns := []float64{-0.10, -0.05, -0.01, 0.02, 0.03}

	varValue, cvarValue, err := ValueAtRisk(returns, 0.8)

	require.NoError(t, err)
	assert.Greater(t, varValue, 0.0)
	assert.GreaterOrEqual(t, cvarValue, varValue-1e-9)
}

func TestSharpeRatio_ZeroVolatilityErrors(t *testing.T) {
	_, err := SharpeRatio([]float64{0.01, 0.01, 0.01}, 0)
	require.Error(t, err)
}

func TestSharpeRatio_PositiveTrendIsPositive(t *testing.T) {
	ratio, err := SharpeRatio([]float64{0.01, 0.02, 0.015, 0.018}, 0)
	require.NoError(t, err)
	assert.Greater(t, ratio, 0.0)
}
