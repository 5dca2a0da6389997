package stats

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tradestats/internal/ledger"
)

func trade(pnl float64, exit string) ledger.Trade {
	return ledger.New("BTCUSDT", pnl, "", exit)
}

func scenarioA() []ledger.Trade {
	return []ledger.Trade{
		trade(10, "2024-01-01T10:00:00Z"),
		trade(-5, "2024-01-01T15:00:00Z"),
		trade(8, "2024-01-02T09:00:00Z"),
	}
}

func TestComputeTradeStatistics_ScenarioA(t *testing.T) {
	s := ComputeTradeStatistics(scenarioA())
	require.NotNil(t, s)

	assert.Equal(t, 3, s.TotalTrades)
	assert.Equal(t, 2, s.WinCount)
	assert.Equal(t, 1, s.LossCount)
	assert.InDelta(t, 66.67, s.WinRate, 0.01)
	assert.InDelta(t, 33.33, s.LossRate, 0.01)
	assert.Equal(t, 18.0, s.GrossProfit)
	assert.Equal(t, 5.0, s.GrossLoss)
	assert.Equal(t, 13.0, s.NetPnL)
	assert.InDelta(t, 3.6, s.ProfitFactor.Float64(), 1e-12)
	assert.InDelta(t, 9.0/5.0, s.RiskRewardRatio.Float64(), 1e-12)
	assert.InDelta(t, 2.0/3*9-1.0/3*5, s.Expectancy, 1e-9)
	assert.Equal(t, 10.0, s.BestTrade)
	assert.Equal(t, -5.0, s.WorstTrade)
	assert.Equal(t, []float64{10, -5, 8}, s.PnLValues)
	assert.Equal(t, 1, s.MaxWin)
	assert.Equal(t, 1, s.MaxLoss)
	assert.Equal(t, 1, s.Current)
	assert.Equal(t, StreakWin, s.CurrentType)
}

func TestComputeTradeStatistics_Empty(t *testing.T) {
	assert.Nil(t, ComputeTradeStatistics(nil))
	assert.Nil(t, ComputeTradeStatistics([]ledger.Trade{}))
}

func TestComputeTradeStatistics_ZeroOverZero(t *testing.T) {
	s := ComputeTradeStatistics([]ledger.Trade{trade(0, "2024-01-01")})
	require.NotNil(t, s)

	assert.Equal(t, 0, s.WinCount)
	assert.Equal(t, 1, s.LossCount, "zero pnl counts as a loss")
	assert.Equal(t, Ratio(0), s.ProfitFactor)
	assert.False(t, math.IsNaN(s.ProfitFactor.Float64()))
	assert.Equal(t, Ratio(0), s.RiskRewardRatio)
	assert.Equal(t, StreakLoss, s.CurrentType)
}

func TestComputeTradeStatistics_NoLosses(t *testing.T) {
	s := ComputeTradeStatistics([]ledger.Trade{trade(5, "2024-01-01"), trade(3, "2024-01-02")})
	require.NotNil(t, s)
	assert.True(t, s.ProfitFactor.IsInf())
	assert.True(t, s.RiskRewardRatio.IsInf())
}

func TestComputeTradeStatistics_Properties(t *testing.T) {
	pnls := []float64{3, -1, 0, 4, 5, -2, -2, -7, 1, 0, 9, 9, 9, -1}
	trades := make([]ledger.Trade, len(pnls))
	for i, p := range pnls {
		trades[i] = trade(p, time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC).Format(time.RFC3339))
	}

	s := ComputeTradeStatistics(trades)
	require.NotNil(t, s)

	// win/loss partition
	assert.Equal(t, s.TotalTrades, s.WinCount+s.LossCount)
	assert.InDelta(t, 100, s.WinRate+s.LossRate, 1e-9)

	// profit factor sign
	assert.GreaterOrEqual(t, s.ProfitFactor.Float64(), 0.0)
	assert.False(t, s.ProfitFactor.IsInf())

	// streak consistency
	assert.Equal(t, 3, s.MaxWin)
	assert.Equal(t, 3, s.MaxLoss)
	assert.Equal(t, StreakLoss, s.CurrentType)
	assert.Equal(t, 1, s.Current)
	assert.LessOrEqual(t, s.Current, s.MaxLoss)

	total := 0
	for _, r := range runs(ledger.SortByExit(trades)) {
		total += r.length
	}
	assert.Equal(t, s.TotalTrades, total)
}

func TestComputeStreaks_SortsChronologically(t *testing.T) {
	trades := []ledger.Trade{
		trade(-1, "2024-01-04"),
		trade(2, "2024-01-01"),
		trade(3, "2024-01-02"),
		trade(4, "2024-01-03"),
	}

	s := ComputeTradeStatistics(trades)
	require.NotNil(t, s)
	assert.Equal(t, 3, s.MaxWin)
	assert.Equal(t, 1, s.MaxLoss)
	assert.Equal(t, StreakLoss, s.CurrentType)
	assert.Equal(t, 1, s.Current)
}

func TestRatioJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		PF Ratio `json:"pf"`
		RR Ratio `json:"rr"`
	}{PF: SafeRatio(5, 0), RR: SafeRatio(3, 2)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"pf":"inf","rr":1.5}`, string(data))

	var back struct {
		PF Ratio `json:"pf"`
		RR Ratio `json:"rr"`
	}
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.PF.IsInf())
	assert.Equal(t, Ratio(1.5), back.RR)
	assert.Equal(t, "∞", back.PF.String())
	assert.Equal(t, "1.50", back.RR.String())
}

func TestComputeDailyReturns_ScenarioA(t *testing.T) {
	d := ComputeDailyReturns(scenarioA(), 100)
	require.NotNil(t, d)

	require.Len(t, d.DailyReturns, 2)
	assert.InDelta(t, 0.05, d.DailyReturns[0], 1e-12)
	assert.InDelta(t, 8.0/105, d.DailyReturns[1], 1e-12)
	assert.Equal(t, 2, d.TradingDays)
	assert.Equal(t, 1.0, d.TotalDays)
	assert.False(t, d.EstimatedSpan)
	assert.Equal(t, 3.0, d.AvgTradesPerDay)
	assert.Equal(t, "2024-01-01", d.Days[0].Date)
	assert.Equal(t, 2, d.Days[0].Trades)
}

func TestComputeDailyReturns_Reconstruction(t *testing.T) {
	trades := []ledger.Trade{
		trade(12.5, "2024-02-01T01:00:00Z"),
		trade(-30, "2024-02-01T05:00:00Z"),
		trade(7, "2024-02-03T12:00:00+02:00"),
		trade(44, "2024-02-04T00:00:00"),
		trade(-2.25, "2024-02-07T23:59:59"),
		trade(15, "2024-02-07T01:00:00"),
	}
	starting := 250.0

	d := ComputeDailyReturns(trades, starting)
	require.NotNil(t, d)
	require.Len(t, d.DailyReturns, 4)

	balance := starting
	for i, r := range d.DailyReturns {
		assert.InDelta(t, d.Days[i].StartBalance, balance, 1e-9)
		balance *= 1 + r
		assert.InDelta(t, d.Days[i].StartBalance+d.Days[i].PnL, balance, 1e-9)
	}
	assert.InDelta(t, starting+12.5-30+7+44-2.25+15, balance, 1e-9)
	assert.Equal(t, 6.0, d.TotalDays)
}

func TestComputeDailyReturns_EdgeCases(t *testing.T) {
	assert.Nil(t, ComputeDailyReturns(nil, 100))
	assert.Nil(t, ComputeDailyReturns([]ledger.Trade{trade(1, "bad"), trade(2, "")}, 100))

	// single day: volatility floored
	d := ComputeDailyReturns([]ledger.Trade{trade(5, "2024-01-01")}, 100)
	require.NotNil(t, d)
	assert.Equal(t, VolatilityFloor, d.Volatility)
	assert.Equal(t, 1.0, d.TotalDays)

	// non-positive running balance yields zero return
	d = ComputeDailyReturns([]ledger.Trade{trade(-150, "2024-01-01"), trade(10, "2024-01-02")}, 100)
	require.NotNil(t, d)
	assert.Equal(t, -1.5, d.DailyReturns[0])
	assert.Equal(t, 0.0, d.DailyReturns[1])
}

func TestComputeDailyReturns_UnparsableEndpointEstimatesSpan(t *testing.T) {
	trades := []ledger.Trade{
		trade(1, "2024-01-01"),
		trade(2, "2024-01-05"),
		trade(3, "not-a-date"),
	}

	d := ComputeDailyReturns(trades, 100)
	require.NotNil(t, d)
	assert.True(t, d.EstimatedSpan)
	assert.Equal(t, 1.5, d.TotalDays)
	assert.Equal(t, 1, d.ExcludedTrades)
	assert.Equal(t, 2, d.TradingDays)
	assert.InDelta(t, 2.0, d.AvgTradesPerDay, 1e-12)
}

func TestComputePerformanceMetrics(t *testing.T) {
	pct := func(v float64) *float64 { return &v }
	trades := []ledger.Trade{
		trade(10, "2024-01-01T00:00:00Z"),
		trade(-20, "2024-01-02T00:00:00Z"),
		trade(5, "2024-01-03T00:00:00Z"),
	}
	trades[0].PnLPct = pct(4)
	trades[1].PnLPct = pct(-8)
	trades[2].PnLPct = pct(2)

	m := ComputePerformanceMetrics(trades, 100, 0, time.Now())
	require.NotNil(t, m)

	assert.Equal(t, []float64{100, 110, 90, 95}, m.EquityCurve)
	assert.InDelta(t, 20, m.MaxDrawdown, 1e-9)
	assert.InDelta(t, 20.0/110*100, m.MaxDrawdownPct, 1e-9)
	assert.InDelta(t, -5, m.TotalReturnPct, 1e-9)
	assert.InDelta(t, -5/(20.0/110*100), m.CalmarRatio.Float64(), 1e-9)
	assert.InDelta(t, 3, m.AvgWinPct, 1e-9)
	assert.InDelta(t, 8, m.AvgLossPct, 1e-9)

	mean := -5.0 / 3
	std := math.Sqrt((math.Pow(10-mean, 2) + math.Pow(-20-mean, 2) + math.Pow(5-mean, 2)) / 3)
	assert.InDelta(t, std, m.StdDev, 1e-9)
	assert.InDelta(t, mean/std*math.Sqrt(252), m.SharpeRatio, 1e-9)
}

func TestComputePerformanceMetrics_NoDrawdown(t *testing.T) {
	m := ComputePerformanceMetrics([]ledger.Trade{trade(1, "2024-01-01"), trade(2, "2024-01-02")}, 100, 0, time.Now())
	require.NotNil(t, m)
	assert.Equal(t, 0.0, m.MaxDrawdownPct)
	assert.True(t, m.CalmarRatio.IsInf())
}

func TestComputePerformanceMetrics_PeriodFilter(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	trades := []ledger.Trade{
		trade(5, "2024-01-05T00:00:00Z"),
		trade(7, "2024-01-08T00:00:00Z"),
		trade(9, "garbage"),
	}

	m := ComputePerformanceMetrics(trades, 100, 3, now)
	require.NotNil(t, m)
	assert.Equal(t, 1, m.TotalTrades)
	assert.Equal(t, 7.0, m.NetPnL)
	assert.Equal(t, 3, m.PeriodDays)

	assert.Nil(t, ComputePerformanceMetrics(trades, 100, 1, now))
}

func TestAnnualizedSharpe_Degenerate(t *testing.T) {
	s, std := AnnualizedSharpe([]float64{1})
	assert.Zero(t, s)
	assert.Zero(t, std)

	s, std = AnnualizedSharpe([]float64{2, 2, 2})
	assert.Zero(t, s)
	assert.Zero(t, std)
}
