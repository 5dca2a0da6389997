package positions

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tradestats/internal/ledger"
	"github.com/wonny/tradestats/internal/pricefeed"
)

var opened = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func longBTC() ledger.OpenPosition {
	return ledger.OpenPosition{Entry: 100, Amount: 2, Stop: 95, Target: 110, Time: "2024-01-01T00:00:00"}
}

func quoteAt(price float64) pricefeed.Quote {
	return pricefeed.Quote{Symbol: "BTC/USDT", Price: price, Source: pricefeed.SourceBinance, Volume24h: 1000, Change24h: 3}
}

func TestComputeMetrics(t *testing.T) {
	now := opened.Add(10 * time.Hour)

	m, ok := ComputeMetrics("BTC/USDT", longBTC(), quoteAt(104), 1000, now)
	require.True(t, ok)

	assert.InDelta(t, 208, m.PositionValue, 1e-9)
	assert.InDelta(t, 200, m.EntryValue, 1e-9)
	assert.InDelta(t, 8, m.UnrealizedPnL, 1e-9)
	assert.InDelta(t, 4, m.UnrealizedPnLPct, 1e-9)
	assert.InDelta(t, 20.8, m.PositionSizePct, 1e-9)

	assert.InDelta(t, 9.0/104*100, m.DistToStopPct, 1e-9)
	assert.InDelta(t, 6.0/104*100, m.DistToTargetPct, 1e-9)
	assert.InDelta(t, 4.0/104*100, m.BreakEvenDistancePct, 1e-9)
	assert.InDelta(t, 10, m.StopLossRisk, 1e-9)
	assert.InDelta(t, 2, m.RiskReward, 1e-9)
	assert.InDelta(t, 20, m.TargetProfitPotential, 1e-9)

	assert.InDelta(t, 10, m.HoursHeld, 1e-9)
	assert.Equal(t, 0, m.DaysHeld)
	assert.Equal(t, "10.0h 0m", m.HeldFor)
	assert.InDelta(t, 0.4, m.HourlyReturnPct, 1e-9)
	assert.InDelta(t, 0.4*24*365, m.AnnualizedReturnPct, 1e-9)

	assert.InDelta(t, 20.8*0.4+4*0.3+10.0/24*0.3, m.CombinedRiskScore, 1e-9)
	assert.Equal(t, LevelHigh, m.RiskLevel, "position size above 15%")
	assert.InDelta(t, 0.036, m.MomentumScore, 1e-9)
	assert.Equal(t, LevelMedium, m.Momentum)
	assert.Equal(t, "B", m.Grade)
	assert.InDelta(t, 0.8, m.ProfitPerHour, 1e-9)
	assert.InDelta(t, 4, m.CapitalEfficiency, 1e-9)
	assert.Equal(t, pricefeed.SourceBinance, m.Source)
}

func TestComputeMetrics_MissingInputs(t *testing.T) {
	now := opened.Add(time.Hour)

	_, ok := ComputeMetrics("BTC/USDT", longBTC(), quoteAt(0), 1000, now)
	assert.False(t, ok)

	_, ok = ComputeMetrics("BTC/USDT", ledger.OpenPosition{Amount: 1}, quoteAt(100), 1000, now)
	assert.False(t, ok)

	// stop/target/시각 미설정, 포트폴리오 0
	m, ok := ComputeMetrics("BTC/USDT", ledger.OpenPosition{Entry: 100, Amount: 1, Time: "garbage"}, quoteAt(90), 0, now)
	require.True(t, ok)
	assert.Zero(t, m.PositionSizePct)
	assert.Zero(t, m.DistToStopPct)
	assert.Zero(t, m.RiskReward)
	assert.Zero(t, m.DistToTargetPct)
	assert.Zero(t, m.HoursHeld)
	assert.Zero(t, m.AnnualizedReturnPct)
	assert.Equal(t, "N/A", m.HeldFor)
	assert.InDelta(t, -100, m.ProfitPerHour, 1e-9, "hours floor at 0.1")
	assert.Equal(t, "F", m.Grade)
}

func TestFormatHeld(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "N/A"},
		{12*time.Minute + 5*time.Second, "12m 5s"},
		{2*time.Hour + 30*time.Minute, "2.5h 30m"},
		{50*time.Hour + 30*time.Minute, "2d 2h 30m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatHeld(tt.d), tt.d.String())
	}
}

func TestRiskLevelAndGrade(t *testing.T) {
	assert.Equal(t, LevelLow, riskLevel(5, 5))
	assert.Equal(t, LevelMedium, riskLevel(9, 5))
	assert.Equal(t, LevelHigh, riskLevel(5, 16))
	assert.Equal(t, LevelExtreme, riskLevel(26, 0))

	for pct, want := range map[float64]string{11: "A+", 6: "A", 1: "B", -2: "C", -5: "D", -9: "F"} {
		assert.Equal(t, want, grade(pct), "pnl %v%%", pct)
	}
}

func TestComputePortfolioRisk(t *testing.T) {
	metrics := []Metrics{
		{Symbol: "BTC/USDT", PositionValue: 300, PositionSizePct: 30, UnrealizedPnL: 10, StopLossRisk: 5},
		{Symbol: "ETH/USDT", PositionValue: 200, PositionSizePct: 20, UnrealizedPnL: -10, StopLossRisk: 7},
		{Symbol: "XRP/USDT", PositionValue: 100, PositionSizePct: 10},
	}

	r := ComputePortfolioRisk(metrics, 1000)
	assert.Equal(t, 3, r.PositionCount)
	assert.InDelta(t, 60, r.TotalExposurePct, 1e-9)
	assert.InDelta(t, 30, r.ConcentrationPct, 1e-9)
	assert.InDelta(t, 0.6, r.LeverageRatio, 1e-9)
	assert.InDelta(t, 12, r.MaxDrawdownRisk, 1e-9)

	wantVaR := math.Sqrt(200.0/3) * ParametricVaRZ
	assert.InDelta(t, wantVaR, r.VaR95, 1e-9)
	assert.Equal(t, LevelMedium, r.CorrelationRisk)
	assert.InDelta(t, 30*0.3+60*0.3+wantVaR/1000*100*0.4, r.RiskScore, 1e-9)
}

func TestComputePortfolioRisk_EdgeCases(t *testing.T) {
	empty := ComputePortfolioRisk(nil, 1000)
	assert.Equal(t, PortfolioRisk{CorrelationRisk: LevelLow}, empty)

	single := ComputePortfolioRisk([]Metrics{{Symbol: "SOL/USDT", PositionValue: 50, PositionSizePct: 5, UnrealizedPnL: -4}}, 1000)
	assert.InDelta(t, 4*ParametricVaRZ, single.VaR95, 1e-9)
	assert.Equal(t, LevelLow, single.CorrelationRisk)

	crowded := ComputePortfolioRisk([]Metrics{{Symbol: "BTC/USDT"}, {Symbol: "ETH/USDT"}, {Symbol: "DOGE/USDT"}}, 1000)
	assert.Equal(t, LevelHigh, crowded.CorrelationRisk)

	noPortfolio := ComputePortfolioRisk([]Metrics{{Symbol: "BTC/USDT", PositionValue: 50, PositionSizePct: 0, UnrealizedPnL: 3}}, 0)
	assert.Zero(t, noPortfolio.TotalExposurePct)
	assert.Zero(t, noPortfolio.RiskScore)
	assert.False(t, math.IsInf(noPortfolio.RiskScore, 0))

	capped := ComputePortfolioRisk([]Metrics{{Symbol: "BTC/USDT", PositionValue: 5000, PositionSizePct: 500, UnrealizedPnL: 900}}, 1000)
	assert.Equal(t, 100.0, capped.RiskScore)
}

func TestGenerateAlerts(t *testing.T) {
	now := opened.Add(2 * time.Hour)

	tests := []struct {
		name   string
		pos    ledger.OpenPosition
		quote  pricefeed.Quote
		want   []AlertType
		first  Severity
		action bool
	}{
		{"moderate move", longBTC(), quoteAt(104), []AlertType{AlertPriceMovement}, SeverityModerate, false},
		{"highest threshold only", longBTC(), quoteAt(118), []AlertType{AlertPriceMovement}, SeverityExtreme, true},
		{"near stop", longBTC(), quoteAt(96), []AlertType{AlertPriceMovement, AlertStopProximity}, SeverityModerate, false},
		{"near target", longBTC(), quoteAt(108), []AlertType{AlertPriceMovement, AlertTargetProximity}, SeveritySignificant, false},
		{
			"volatile market", longBTC(),
			pricefeed.Quote{Price: 100.5, Volume24h: 5, Change24h: -20},
			[]AlertType{AlertHighVolatility}, SeverityModerate, false,
		},
		{
			"volatility needs volume", longBTC(),
			pricefeed.Quote{Price: 100.5, Change24h: -20},
			nil, "", false,
		},
		{
			"long held",
			ledger.OpenPosition{Entry: 100, Amount: 1, Time: opened.AddDate(0, 0, -10).Format(time.RFC3339)},
			quoteAt(100),
			[]AlertType{AlertPositionAge}, SeverityModerate, false,
		},
		{"no entry", ledger.OpenPosition{Amount: 1}, quoteAt(100), nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := GenerateAlerts("BTC/USDT", tt.pos, tt.quote, now)

			var types []AlertType
			for _, a := range alerts {
				types = append(types, a.Type)
				assert.Equal(t, "BTC/USDT", a.Symbol)
				assert.Equal(t, now, a.Timestamp)
			}
			assert.Equal(t, tt.want, types)
			if len(alerts) > 0 {
				assert.Equal(t, tt.first, alerts[0].Severity)
				assert.Equal(t, tt.action, alerts[0].ActionRequired)
			}
		})
	}
}

func TestGenerateAlerts_StopProximityRequiresAction(t *testing.T) {
	alerts := GenerateAlerts("BTC/USDT", longBTC(), quoteAt(96), opened.Add(time.Hour))
	require.Len(t, alerts, 2)
	assert.Equal(t, SeverityCritical, alerts[1].Severity)
	assert.True(t, alerts[1].ActionRequired)
	assert.Contains(t, alerts[0].Message, "LOSS of 4.00%")
}
