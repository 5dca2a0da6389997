package positions

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ParametricVaRZ 단측 95% (미실현 pnl 분산 기준 VaR)
const ParametricVaRZ = 1.65

// correlatedBases 같은 방향으로 움직이는 것으로 보는 코인
var correlatedBases = []string{"BTC", "ETH", "SOL", "DOGE", "ADA"}

// ComputePortfolioRisk 평가된 포지션들 → 포트폴리오 위험
// 포지션이 없으면 모두 0, 상관 위험 LOW
func ComputePortfolioRisk(metrics []Metrics, portfolioValue float64) PortfolioRisk {
	r := PortfolioRisk{PositionCount: len(metrics), CorrelationRisk: LevelLow}
	if len(metrics) == 0 {
		return r
	}

	values := make([]float64, len(metrics))
	sizes := make([]float64, len(metrics))
	pnls := make([]float64, len(metrics))
	correlated := 0
	for i, m := range metrics {
		values[i] = m.PositionValue
		sizes[i] = m.PositionSizePct
		pnls[i] = m.UnrealizedPnL
		r.MaxDrawdownRisk += m.StopLossRisk
		if isCorrelated(m.Symbol) {
			correlated++
		}
	}

	r.ConcentrationPct = floats.Max(sizes)
	if portfolioValue > 0 {
		r.TotalExposurePct = floats.Sum(values) / portfolioValue * 100
	}
	r.LeverageRatio = r.TotalExposurePct / 100

	// 포지션 1개면 분산 대신 |pnl| 사용
	pnlSpread := math.Abs(pnls[0])
	if len(pnls) > 1 {
		pnlSpread = stat.PopStdDev(pnls, nil)
	}
	r.VaR95 = pnlSpread * ParametricVaRZ

	switch {
	case correlated >= 3:
		r.CorrelationRisk = LevelHigh
	case correlated >= 2:
		r.CorrelationRisk = LevelMedium
	}

	varPct := 0.0
	if portfolioValue > 0 {
		varPct = math.Min(r.VaR95/portfolioValue*100, 50)
	}
	r.RiskScore = math.Min(100, r.ConcentrationPct*0.3+r.TotalExposurePct*0.3+varPct*0.4)

	return r
}

func isCorrelated(symbol string) bool {
	for _, base := range correlatedBases {
		if strings.Contains(symbol, base) {
			return true
		}
	}
	return false
}
