package risk

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// =============================================================================
// Volatility / Historical VaR
// =============================================================================

// ComputeVolatilityMetrics pnl 시계열(주어진 순서)의 리스크 지표
// 2개 미만이면 nil
func ComputeVolatilityMetrics(pnl []float64) *VolatilityMetrics {
	if len(pnl) < 2 {
		return nil
	}

	m := &VolatilityMetrics{
		Volatility: stat.StdDev(pnl, nil),
		MeanPnL:    stat.Mean(pnl, nil),
	}

	// VaR: 오름차순 정렬 후 백분위수 (선형 보간)
	sorted := make([]float64, len(pnl))
	copy(sorted, pnl)
	sort.Float64s(sorted)

	m.VaR95 = Percentile(sorted, 5)
	m.VaR99 = Percentile(sorted, 1)
	m.ExpectedShortfall95 = expectedShortfall(sorted, m.VaR95)

	var negatives []float64
	for _, v := range pnl {
		if v < 0 {
			negatives = append(negatives, v)
		}
	}
	if len(negatives) >= 2 {
		m.DownsideDeviation = stat.StdDev(negatives, nil)
	}

	m.MaxDrawdown, m.DrawdownPeakIndex, m.DrawdownTroughIndex = cumulativeDrawdown(pnl)

	if m.Volatility > 0 {
		m.PerTradeSharpe = m.MeanPnL / m.Volatility
	}
	if m.DownsideDeviation > 0 {
		m.SortinoRatio = m.MeanPnL / m.DownsideDeviation
	}

	return m
}

// expectedShortfall VaR 이하 값들의 평균 (없으면 VaR 자체)
// sorted: 오름차순 정렬
func expectedShortfall(sorted []float64, threshold float64) float64 {
	n := sort.Search(len(sorted), func(i int) bool { return sorted[i] > threshold })
	if n == 0 {
		return threshold
	}
	return floats.Sum(sorted[:n]) / float64(n)
}

// cumulativeDrawdown 거래 인덱스 누적 pnl 곡선의 최대 낙폭 (peak - cumulative)
func cumulativeDrawdown(pnl []float64) (maxDD float64, peakIdx, troughIdx int) {
	cum := make([]float64, len(pnl))
	floats.CumSum(cum, pnl)

	peak, peakAt := cum[0], 0
	for i, v := range cum {
		if v > peak {
			peak, peakAt = v, i
		}
		if dd := peak - v; dd > maxDD {
			maxDD, peakIdx, troughIdx = dd, peakAt, i
		}
	}
	return maxDD, peakIdx, troughIdx
}

// =============================================================================
// 통계 유틸리티
// =============================================================================

// Percentile 백분위수 계산 (선형 보간, numpy 기본 방식)
// sorted: 오름차순 정렬, p: 0-100
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	idx := p / 100.0 * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	// 선형 보간 (같은 값 사이에서는 정확히 그 값)
	weight := idx - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}

// ZScore 양측 신뢰수준 → z (예: 0.95 → 1.96)
func ZScore(confidence float64) float64 {
	switch confidence {
	case 0.90:
		return 1.645
	case 0.95:
		return 1.96
	case 0.99:
		return 2.576
	}
	if confidence <= 0 || confidence >= 1 {
		return 0
	}
	return NormInv(1 - (1-confidence)/2)
}

// NormInv 정규분포 역함수 (Quantile Function)
// Beasley-Springer-Moro approximation
func NormInv(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}

	// 일반적인 신뢰수준에 대한 빠른 반환
	switch {
	case p == 0.995:
		return 2.576
	case p == 0.975:
		return 1.96
	case p == 0.95:
		return 1.645
	case p == 0.90:
		return 1.282
	}

	a := []float64{
		-3.969683028665376e+01,
		2.209460984245205e+02,
		-2.759285104469687e+02,
		1.383577518672690e+02,
		-3.066479806614716e+01,
		2.506628277459239e+00,
	}
	b := []float64{
		-5.447609879822406e+01,
		1.615858368580409e+02,
		-1.556989798598866e+02,
		6.680131188771972e+01,
		-1.328068155288572e+01,
	}
	c := []float64{
		-7.784894002430293e-03,
		-3.223964580411365e-01,
		-2.400758277161838e+00,
		-2.549732539343734e+00,
		4.374664141464968e+00,
		2.938163982698783e+00,
	}
	d := []float64{
		7.784695709041462e-03,
		3.224671290700398e-01,
		2.445134137142996e+00,
		3.754408661907416e+00,
	}

	pLow := 0.02425
	pHigh := 1 - pLow

	switch {
	case p < pLow:
		q := math.Sqrt(-2 * math.Log(p))
		return (((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	case p <= pHigh:
		q := p - 0.5
		r := q * q
		return (((((a[0]*r+a[1])*r+a[2])*r+a[3])*r+a[4])*r + a[5]) * q /
			(((((b[0]*r+b[1])*r+b[2])*r+b[3])*r+b[4])*r + 1)
	default:
		q := math.Sqrt(-2 * math.Log(1-p))
		return -(((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	}
}
