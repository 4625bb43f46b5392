package risk

// Thresholds configures the guardian's emergency-exit triggers: a
// declared drop threshold and a declared risk-score ceiling, either of
// which is sufficient to raise an exit proposal.
type Thresholds struct {
	// DropThreshold is the fractional drawdown from peak balance (e.g.
	// 0.15 for 15%) above which an exit is warranted on its own.
	DropThreshold float64
	// RiskCeiling is the maximum tolerated composite risk score in [0,1].
	RiskCeiling float64
}

// Assessment is the outcome of evaluating portfolio health against
// Thresholds.
type Assessment struct {
	CurrentDrawdown float64
	MaxDrawdown     float64
	Score           float64
	ShouldExit      bool
	Reason          string
}

// Assessor turns a portfolio equity curve into an Assessment.
type Assessor struct {
	thresholds Thresholds
}

// NewAssessor builds an Assessor for the given Thresholds.
func NewAssessor(thresholds Thresholds) *Assessor {
	return &Assessor{thresholds: thresholds}
}

// Assess computes drawdown and a composite risk score from equityCurve
// (a time-ordered series of total portfolio value snapshots, in the
// same unit throughout) and decides whether an emergency exit should
// be proposed.
//
// The composite score weighs realized drawdown against recent return
// volatility, since a sharp but shallow swing and a steady grind to the
// same drawdown level carry different risk: score = 0.7*drawdown +
// 0.3*min(1, stdDev(returns)*10).
func (a *Assessor) Assess(equityCurve []float64) Assessment {
	currentDD, maxDD, _ := Drawdown(equityCurve)

	returns := periodReturns(equityCurve)
	volatility := stdDev(returns)
	normalizedVol := volatility * 10
	if normalizedVol > 1 {
		normalizedVol = 1
	}
	score := 0.7*currentDD + 0.3*normalizedVol

	switch {
	case a.thresholds.DropThreshold > 0 && currentDD >= a.thresholds.DropThreshold:
		return Assessment{currentDD, maxDD, score, true, "drop threshold breached"}
	case a.thresholds.RiskCeiling > 0 && score >= a.thresholds.RiskCeiling:
		return Assessment{currentDD, maxDD, score, true, "risk score ceiling breached"}
	default:
		return Assessment{currentDD, maxDD, score, false, ""}
	}
}

// periodReturns converts an equity curve into period-over-period
// fractional returns.
func periodReturns(equityCurve []float64) []float64 {
	if len(equityCurve) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(equityCurve)-1)
	for i := 1; i < len(equityCurve); i++ {
		prev := equityCurve[i-1]
		if prev == 0 {
			continue
		}
		returns = append(returns, (equityCurve[i]-prev)/prev)
	}
	return returns
}
