package risk

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultProjectPeriods 추세 외삽 기본 기간
const DefaultProjectPeriods = 30

// ComputeLinearTrend pnl[i] ~ i 최소제곱 회귀
// pnl 은 이미 시간순이어야 함 (재정렬하지 않음). 3개 미만이면 nil
func ComputeLinearTrend(pnl []float64, projectPeriods int) *TrendModel {
	n := len(pnl)
	if n < 3 {
		return nil
	}

	xs := make([]float64, n)
	floats.Span(xs, 0, float64(n-1))

	// xs 는 서로 다른 인덱스이므로 Σ(x-x̄)² > 0
	intercept, slope := stat.LinearRegression(xs, pnl, nil, false)

	// 완전히 평평한 시계열은 SS_tot == 0 → R² 0
	var r2 float64
	if floats.Max(pnl) != floats.Min(pnl) {
		r2 = stat.RSquared(xs, pnl, nil, intercept, slope)
	}

	m := &TrendModel{
		Slope:                slope,
		Intercept:            intercept,
		RSquared:             r2,
		CurrentTrendStrength: math.Abs(r2),
		DailyTrendPnL:        slope,
		TrendDirection:       TrendFlat,
	}
	switch {
	case slope > 0:
		m.TrendDirection = TrendUp
	case slope < 0:
		m.TrendDirection = TrendDown
	}

	if projectPeriods > 0 {
		m.ProjectedValues = make([]float64, projectPeriods)
		for i := range m.ProjectedValues {
			m.ProjectedValues[i] = intercept + slope*float64(n+i)
		}
	}

	return m
}
