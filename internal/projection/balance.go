package projection

import (
	"math"

	"github.com/wonny/tradestats/internal/risk"
)

// DefaultConfidenceZ 95% 양측 신뢰구간
const DefaultConfidenceZ = 1.96

// LowerFloorRatio 하단 밴드 하한 (현재 잔고 대비)
const LowerFloorRatio = 0.1

// MaxGrowthFactor 복리 factor 상한 (JSON 으로 표현 가능한 유한값 유지)
const MaxGrowthFactor = 1e12

// Projection 호라이즌 하나의 복리 잔고 전망
type Projection struct {
	Days           int     `json:"days"`
	Projected      float64 `json:"projected"`
	Upper95        float64 `json:"upper_95"`
	Lower95        float64 `json:"lower_95"`
	ExpectedPnL    float64 `json:"expected_pnl"`
	UpperPnL       float64 `json:"upper_pnl"`
	LowerPnL       float64 `json:"lower_pnl"`
	ReturnPct      float64 `json:"return_pct"`
	UpperReturnPct float64 `json:"upper_return_pct"`
	LowerReturnPct float64 `json:"lower_return_pct"` // 하한 처리 전 factor 기준
	LowerFloored   bool    `json:"lower_floored"`
	Capped         bool    `json:"capped,omitempty"` // factor 가 MaxGrowthFactor 에서 절삭됨

	// 추세 블렌딩이 적용된 경우에만
	TrendAdjusted   *float64 `json:"trend_adjusted,omitempty"`
	TrendConfidence *float64 `json:"trend_confidence,omitempty"` // 사용한 블렌딩 가중치
}

// ProjectBalance current × (1+r)^days, 밴드 (1+r±zσ)^days
// ⭐ SSOT: lower_95 ≤ projected ≤ upper_95 는 모든 입력에서 성립
//   - 복리 밑은 0 에서 절삭 (음수 밑의 거듭제곱으로 부호가 뒤집히지 않도록)
//   - lower_95 = max(lower_95, 0.1·current) 후 projected 를 넘지 않게 제한
//   - 모든 factor 는 MaxGrowthFactor 이하 (출발 잔고 0 근처의 폭주 수익률 대비)
func ProjectBalance(current, avgDailyReturn, volatility float64, days int, z float64) Projection {
	spread := math.Abs(z * volatility)
	d := float64(days)

	capped := false
	factor := func(base float64) float64 {
		f := math.Pow(math.Max(0, base), d)
		if math.IsNaN(f) || f > MaxGrowthFactor {
			capped = true
			return MaxGrowthFactor
		}
		return f
	}

	growth := factor(1 + avgDailyReturn)
	upperFactor := factor(1 + avgDailyReturn + spread)
	lowerFactor := factor(1 + avgDailyReturn - spread)

	p := Projection{
		Days:           days,
		Projected:      current * growth,
		Upper95:        current * upperFactor,
		Lower95:        current * lowerFactor,
		ReturnPct:      (growth - 1) * 100,
		UpperReturnPct: (upperFactor - 1) * 100,
		LowerReturnPct: (lowerFactor - 1) * 100,
		Capped:         capped,
	}

	if floor := current * LowerFloorRatio; p.Lower95 < floor {
		p.Lower95 = floor
		p.LowerFloored = true
	}
	p.Lower95 = math.Min(p.Lower95, p.Projected)
	p.Upper95 = math.Max(p.Upper95, p.Projected)

	p.ExpectedPnL = p.Projected - current
	p.UpperPnL = p.Upper95 - current
	p.LowerPnL = p.Lower95 - current

	return p
}

// BlendTrend 추세 강도가 threshold 를 넘으면 expected·(1−s) + slope·s
// 반환: 블렌딩 값, 사용한 가중치 s, 적용 여부
func BlendTrend(expected float64, trend *risk.TrendModel, threshold float64) (float64, float64, bool) {
	if trend == nil || trend.CurrentTrendStrength <= threshold {
		return expected, 0, false
	}
	s := trend.CurrentTrendStrength
	return expected*(1-s) + trend.DailyTrendPnL*s, s, true
}

// applyTrend 호라이즌 전망에 추세 보정 잔고 추가
// 복리 기준 일 pnl (current·r) 을 추세 기울기와 블렌딩해 선형 누적
// 기울기는 거래 1건당 변화량이지만 일 단위로 그대로 사용 (기존 출력 유지)
func applyTrend(p *Projection, current, avgDailyReturn float64, trend *risk.TrendModel, threshold float64) {
	blended, weight, ok := BlendTrend(current*avgDailyReturn, trend, threshold)
	if !ok {
		return
	}
	adjusted := current + blended*float64(p.Days)
	p.TrendAdjusted = &adjusted
	p.TrendConfidence = &weight
}

// ExpectancyProjection 기대값 × 일 거래 수 단순 전망
type ExpectancyProjection struct {
	Expectancy      float64 `json:"expectancy"`
	TradesPerDay    float64 `json:"trades_per_day"`
	ExpectedDaily   float64 `json:"expected_daily"`
	ExpectedWeekly  float64 `json:"expected_weekly"`
	ExpectedMonthly float64 `json:"expected_monthly"`
}

// ProjectExpectancy expected_daily = expectancy × trades/day, 주 ×7, 월 ×30
func ProjectExpectancy(expectancy, tradesPerDay float64) ExpectancyProjection {
	daily := expectancy * tradesPerDay
	return ExpectancyProjection{
		Expectancy:      expectancy,
		TradesPerDay:    tradesPerDay,
		ExpectedDaily:   daily,
		ExpectedWeekly:  daily * 7,
		ExpectedMonthly: daily * 30,
	}
}
