package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/tradestats/internal/ledger"
)

// TradeStatistics 거래 집계 통계
// ⭐ SSOT: 승패 판정은 pnl > 0 만 승리 (0 은 패배)
type TradeStatistics struct {
	TotalTrades int     `json:"total_trades"`
	WinCount    int     `json:"win_count"`
	LossCount   int     `json:"loss_count"`
	WinRate     float64 `json:"win_rate"`  // 0-100
	LossRate    float64 `json:"loss_rate"` // 100 - win_rate

	GrossProfit float64 `json:"gross_profit"`
	GrossLoss   float64 `json:"gross_loss"` // 양수
	NetPnL      float64 `json:"net_pnl"`
	AvgWin      float64 `json:"avg_win"`
	AvgLoss     float64 `json:"avg_loss"` // 양수

	ProfitFactor    Ratio   `json:"profit_factor"`
	RiskRewardRatio Ratio   `json:"risk_reward_ratio"`
	Expectancy      float64 `json:"expectancy"`

	MeanPnL    float64 `json:"mean_pnl"`
	StdPnL     float64 `json:"std_pnl"` // ddof=1
	BestTrade  float64 `json:"best_trade"`
	WorstTrade float64 `json:"worst_trade"`

	Streaks

	PnLValues []float64 `json:"pnl_values"` // 청산 시각 순
}

// ComputeTradeStatistics 거래 통계 계산
// 빈 입력이면 nil (데이터 부족, 에러 아님)
func ComputeTradeStatistics(trades []ledger.Trade) *TradeStatistics {
	if len(trades) == 0 {
		return nil
	}

	sorted := ledger.SortByExit(trades)
	pnl := ledger.PnLSeries(sorted)

	s := &TradeStatistics{
		TotalTrades: len(trades),
		PnLValues:   pnl,
	}

	for _, v := range pnl {
		if v > 0 {
			s.WinCount++
			s.GrossProfit += v
		} else {
			s.LossCount++
			s.GrossLoss += v
		}
	}
	s.GrossLoss = math.Abs(s.GrossLoss)
	s.NetPnL = s.GrossProfit - s.GrossLoss

	s.WinRate = float64(s.WinCount) / float64(s.TotalTrades) * 100
	s.LossRate = 100 - s.WinRate

	if s.WinCount > 0 {
		s.AvgWin = s.GrossProfit / float64(s.WinCount)
	}
	if s.LossCount > 0 {
		s.AvgLoss = s.GrossLoss / float64(s.LossCount)
	}

	s.ProfitFactor = SafeRatio(s.GrossProfit, s.GrossLoss)
	s.RiskRewardRatio = SafeRatio(s.AvgWin, s.AvgLoss)
	s.Expectancy = s.WinRate/100*s.AvgWin - s.LossRate/100*s.AvgLoss

	s.MeanPnL = stat.Mean(pnl, nil)
	if len(pnl) > 1 {
		s.StdPnL = stat.StdDev(pnl, nil)
	}
	s.BestTrade = floats.Max(pnl)
	s.WorstTrade = floats.Min(pnl)

	s.Streaks = ComputeStreaks(sorted)

	return s
}
