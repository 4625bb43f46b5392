// Package risk computes portfolio health metrics: drawdown from a peak
// balance, historical VaR/CVaR and the Sharpe ratio. The guardian's
// emergency exit is gated by Assessor, which uses drawdown and return
// volatility only; VaR and the Sharpe ratio do not feed that decision.
package risk

import (
	"fmt"
	"math"
	"slices"
)

// Drawdown reports current and maximum drawdown from an equity curve
// (a time-ordered series of total portfolio value snapshots).
func Drawdown(equityCurve []float64) (currentDD, maxDD, peakEquity float64) {
	if len(equityCurve) == 0 {
		return 0, 0, 0
	}

	peak := equityCurve[0]
	currentEquity := equityCurve[len(equityCurve)-1]

	for _, equity := range equityCurve {
		if equity > peak {
			peak = equity
		}
		if peak > 0 {
			if dd := (peak - equity) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}

	if currentEquity < peak && peak > 0 {
		currentDD = (peak - currentEquity) / peak
	}

	return currentDD, maxDD, peak
}

// ValueAtRisk computes historical VaR and CVaR (expected shortfall) at
// confidenceLevel (e.g. 0.95) from a series of periodic returns.
func ValueAtRisk(returns []float64, confidenceLevel float64) (varValue, cvarValue float64, err error) {
	if len(returns) == 0 {
		return 0, 0, fmt.Errorf("risk: returns series is empty")
	}
	if confidenceLevel <= 0 || confidenceLevel >= 1 {
		return 0, 0, fmt.Errorf("risk: confidence level must be in (0,1), got %f", confidenceLevel)
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	slices.Sort(sorted)

	percentile := 1 - confidenceLevel
	index := int(float64(len(sorted)) * percentile)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	varValue = -sorted[index]

	var cvarSum float64
	for i := 0; i <= index; i++ {
		cvarSum += sorted[i]
	}
	cvarValue = -cvarSum / float64(index+1)

	return varValue, cvarValue, nil
}

// SharpeRatio annualizes mean daily return over its standard deviation,
// net of riskFreeRate, assuming 252 trading days per year.
func SharpeRatio(returns []float64, riskFreeRate float64) (float64, error) {
	if len(returns) == 0 {
		return 0, fmt.Errorf("risk: returns series is empty")
	}

	stdDev := stdDev(returns)
	if stdDev == 0 {
		return 0, fmt.Errorf("risk: standard deviation is zero")
	}

	meanReturn := mean(returns)
	annualizedReturn := meanReturn * 252.0
	annualizedStdDev := stdDev * math.Sqrt(252.0)

	return (annualizedReturn - riskFreeRate) / annualizedStdDev, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the sample standard deviation (Bessel's correction).
func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var variance float64
	for _, v := range values {
		diff := v - m
		variance += diff * diff
	}
	if len(values) > 1 {
		variance /= float64(len(values) - 1)
	} else {
		variance /= float64(len(values))
	}
	return math.Sqrt(variance)
}
