package projection

import (
	"fmt"
	"math"

	"github.com/wonny/tradestats/internal/ledger"
	"github.com/wonny/tradestats/internal/stats"
)

// EstimateMode 헤드라인 수치의 산출 방식
type EstimateMode string

const (
	ModeTrendAdjusted      EstimateMode = "TREND-ADJ"
	ModeExpectancy         EstimateMode = "EXPECTANCY"
	ModeMathematical       EstimateMode = "MATHEMATICAL"
	ModeExpectancyFallback EstimateMode = "EXPECTANCY FALLBACK"
	ModeActualAverage      EstimateMode = "ACTUAL AVERAGE"
	ModeActual             EstimateMode = "ACTUAL"

	ModeTrend            EstimateMode = "TREND"
	ModeCompoundGrowth   EstimateMode = "COMPOUND GROWTH"
	ModeLinearProjection EstimateMode = "LINEAR PROJECTION"
	ModeCompoundLimited  EstimateMode = "COMPOUND (LIMITED)"
	ModeLinearEstimate   EstimateMode = "LINEAR ESTIMATE"
	ModeInsufficientData EstimateMode = "INSUFFICIENT DATA"
)

// fallbackTradesPerDay 종합 전망이 없을 때 가정하는 일 거래 수
const fallbackTradesPerDay = 2

// limitedCompoundMinTrades 종합 전망 미만에서 복리 월 전망을 허용하는 최소 거래 수
const limitedCompoundMinTrades = 5

// Estimate 헤드라인 수치 + 산출 근거
type Estimate struct {
	Value float64      `json:"value"`
	Mode  EstimateMode `json:"mode"`
	Label string       `json:"label"`
}

// Headline 대시보드 상단의 기대 일/월 손익
type Headline struct {
	ExpectedDaily   Estimate `json:"expected_daily"`
	ExpectedMonthly Estimate `json:"expected_monthly"`
}

// ComputeHeadline 거래 수와 종합 전망 결과에 따라 기대 일/월 손익 계산
// result 는 nil 가능 (데이터 부족)
func (e *Engine) ComputeHeadline(result *ComprehensiveResult, trades []ledger.Trade, current, starting float64) Headline {
	netPnL := ledger.TotalPnL(trades).InexactFloat64()
	daily := e.expectedDaily(result, trades, netPnL)
	return Headline{
		ExpectedDaily:   daily,
		ExpectedMonthly: e.expectedMonthly(result, trades, daily, current, starting),
	}
}

func (e *Engine) expectedDaily(result *ComprehensiveResult, trades []ledger.Trade, netPnL float64) Estimate {
	n := len(trades)
	actual := netPnL / math.Max(float64(n)/2, 1)

	if n < e.cfg.MinTrades {
		return Estimate{Value: actual, Mode: ModeActual, Label: fmt.Sprintf("ACTUAL: %d trades", n)}
	}

	if result == nil {
		if ts := stats.ComputeTradeStatistics(trades); ts != nil {
			return Estimate{Value: ts.Expectancy * fallbackTradesPerDay, Mode: ModeExpectancyFallback, Label: string(ModeExpectancyFallback)}
		}
		return Estimate{Value: actual, Mode: ModeActualAverage, Label: string(ModeActualAverage)}
	}

	tpd := result.DailyStats.AvgTradesPerDay
	expected := result.TradeStats.Expectancy * tpd

	if result.TrendAnalysis == nil {
		return Estimate{Value: expected, Mode: ModeMathematical, Label: fmt.Sprintf("MATHEMATICAL: %.1f tpd", tpd)}
	}
	if blended, _, ok := BlendTrend(expected, result.TrendAnalysis, e.cfg.TrendThreshold); ok {
		return Estimate{Value: blended, Mode: ModeTrendAdjusted, Label: fmt.Sprintf("TREND-ADJ: %.1f tpd", tpd)}
	}
	return Estimate{Value: expected, Mode: ModeExpectancy, Label: fmt.Sprintf("EXPECTANCY: %.1f tpd", tpd)}
}

func (e *Engine) expectedMonthly(result *ComprehensiveResult, trades []ledger.Trade, daily Estimate, current, starting float64) Estimate {
	linear := daily.Value * 30
	n := len(trades)

	if n >= e.cfg.MinTrades {
		if result == nil {
			return Estimate{Value: linear, Mode: ModeLinearProjection, Label: string(ModeLinearProjection)}
		}

		proj, ok := result.MathProjections[HorizonKey(30)]
		if !ok {
			proj = ProjectBalance(current, result.DailyStats.AvgDailyReturn, result.DailyStats.Volatility, 30, e.cfg.ConfidenceZ)
		}
		if proj.TrendAdjusted != nil && proj.TrendConfidence != nil && *proj.TrendConfidence > e.cfg.TrendThreshold {
			return Estimate{
				Value: *proj.TrendAdjusted - current,
				Mode:  ModeTrend,
				Label: fmt.Sprintf("TREND: R²=%.2f", *proj.TrendConfidence),
			}
		}
		return Estimate{Value: proj.Projected - current, Mode: ModeCompoundGrowth, Label: string(ModeCompoundGrowth)}
	}

	if n >= limitedCompoundMinTrades {
		if ds := stats.ComputeDailyReturns(trades, starting); ds != nil {
			value := current*math.Pow(1+ds.AvgDailyReturn, 30) - current
			return Estimate{Value: value, Mode: ModeCompoundLimited, Label: string(ModeCompoundLimited)}
		}
		return Estimate{Value: linear, Mode: ModeLinearEstimate, Label: string(ModeLinearEstimate)}
	}

	return Estimate{Value: linear, Mode: ModeInsufficientData, Label: string(ModeInsufficientData)}
}
