package stats

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/tradestats/internal/ledger"
)

// TradingDaysPerYear 연율화 계수
const TradingDaysPerYear = 252

// PerformanceMetrics 기간별 성과 지표 (자산 곡선 기반)
type PerformanceMetrics struct {
	PeriodDays int `json:"period_days"` // 0 = 전체 기간

	TotalTrades int     `json:"total_trades"`
	WinCount    int     `json:"win_count"`
	LossCount   int     `json:"loss_count"`
	WinRate     float64 `json:"win_rate"`
	LossRate    float64 `json:"loss_rate"`

	GrossProfit float64 `json:"gross_profit"`
	GrossLoss   float64 `json:"gross_loss"`
	NetPnL      float64 `json:"net_pnl"`
	AvgWin      float64 `json:"avg_win"`
	AvgLoss     float64 `json:"avg_loss"`
	AvgWinPct   float64 `json:"avg_win_pct"`
	AvgLossPct  float64 `json:"avg_loss_pct"`

	ProfitFactor    Ratio   `json:"profit_factor"`
	RiskRewardRatio Ratio   `json:"risk_reward_ratio"`
	Expectancy      float64 `json:"expectancy"`

	MaxDrawdown    float64 `json:"max_drawdown"`     // $
	MaxDrawdownPct float64 `json:"max_drawdown_pct"` // %
	SharpeRatio    float64 `json:"sharpe_ratio"`     // 연율화 (√252)
	StdDev         float64 `json:"std_dev"`          // 모표준편차
	CalmarRatio    Ratio   `json:"calmar_ratio"`
	TotalReturnPct float64 `json:"total_return_pct"`

	BestTrade  float64 `json:"best_trade"`
	WorstTrade float64 `json:"worst_trade"`

	Streaks

	EquityCurve []float64 `json:"equity_curve"`
}

// AnnualizedSharpe mean/σ·√252 (σ = 모표준편차, 무위험 수익률 0)
// risk.PerTradeSharpe 와 다른 지표. 합치지 말 것
func AnnualizedSharpe(pnl []float64) (sharpe, std float64) {
	if len(pnl) < 2 {
		return 0, 0
	}
	mean, std := stat.PopMeanStdDev(pnl, nil)
	if std == 0 {
		return 0, 0
	}
	return mean / std * math.Sqrt(TradingDaysPerYear), std
}

// FilterByPeriod now 기준 periodDays 이내 청산된 거래만 (청산 시각 파싱 불가 시 제외)
// periodDays <= 0 이면 입력 그대로
func FilterByPeriod(trades []ledger.Trade, periodDays int, now time.Time) []ledger.Trade {
	if periodDays <= 0 {
		return trades
	}

	// 거래 시각은 timezone-naive 이므로 now 도 벽시계 값으로 비교
	wall := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), time.UTC)
	cutoff := wall.AddDate(0, 0, -periodDays)

	var filtered []ledger.Trade
	for _, t := range trades {
		if t.ExitTime.Valid && !t.ExitTime.Time.Before(cutoff) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// ComputePerformanceMetrics 기간 성과 지표 계산
// 해당 기간 거래가 없으면 nil
func ComputePerformanceMetrics(trades []ledger.Trade, startingBalance float64, periodDays int, now time.Time) *PerformanceMetrics {
	trades = FilterByPeriod(trades, periodDays, now)
	if len(trades) == 0 {
		return nil
	}

	base := ComputeTradeStatistics(trades)
	m := &PerformanceMetrics{
		PeriodDays:      periodDays,
		TotalTrades:     base.TotalTrades,
		WinCount:        base.WinCount,
		LossCount:       base.LossCount,
		WinRate:         base.WinRate,
		LossRate:        base.LossRate,
		GrossProfit:     base.GrossProfit,
		GrossLoss:       base.GrossLoss,
		NetPnL:          base.NetPnL,
		AvgWin:          base.AvgWin,
		AvgLoss:         base.AvgLoss,
		ProfitFactor:    base.ProfitFactor,
		RiskRewardRatio: base.RiskRewardRatio,
		Expectancy:      base.Expectancy,
		BestTrade:       base.BestTrade,
		WorstTrade:      base.WorstTrade,
		Streaks:         base.Streaks,
	}

	// 자산 곡선: 시작 잔고 + 시간순 누적 pnl
	m.EquityCurve = make([]float64, 0, len(base.PnLValues)+1)
	m.EquityCurve = append(m.EquityCurve, startingBalance)
	m.EquityCurve = append(m.EquityCurve, base.PnLValues...)
	floats.CumSum(m.EquityCurve, m.EquityCurve)

	m.MaxDrawdown, m.MaxDrawdownPct = equityDrawdown(m.EquityCurve)
	m.SharpeRatio, m.StdDev = AnnualizedSharpe(base.PnLValues)

	if startingBalance > 0 {
		m.TotalReturnPct = (m.EquityCurve[len(m.EquityCurve)-1] - startingBalance) / startingBalance * 100
	}
	m.CalmarRatio = SafeRatio(m.TotalReturnPct, m.MaxDrawdownPct)

	m.AvgWinPct, m.AvgLossPct = averagePct(trades)

	return m
}

// equityDrawdown 자산 곡선의 최대 낙폭
// $ 값은 % 기준 최대 낙폭 시점의 값
func equityDrawdown(curve []float64) (float64, float64) {
	peak := curve[0]
	var maxDD, maxDDPct float64

	for _, balance := range curve {
		if balance > peak {
			peak = balance
		}
		dd := peak - balance
		var ddPct float64
		if peak > 0 {
			ddPct = dd / peak * 100
		}
		if ddPct > maxDDPct {
			maxDD = dd
			maxDDPct = ddPct
		}
	}

	return maxDD, maxDDPct
}

// averagePct pnl_pct 가 있는 거래의 평균 수익/손실률 (손실은 절대값)
func averagePct(trades []ledger.Trade) (float64, float64) {
	var wins, losses []float64
	for _, t := range trades {
		if t.PnLPct == nil {
			continue
		}
		switch pct := *t.PnLPct; {
		case pct > 0:
			wins = append(wins, pct)
		case pct < 0:
			losses = append(losses, -pct)
		}
	}

	var avgWin, avgLoss float64
	if len(wins) > 0 {
		avgWin = stat.Mean(wins, nil)
	}
	if len(losses) > 0 {
		avgLoss = stat.Mean(losses, nil)
	}
	return avgWin, avgLoss
}
