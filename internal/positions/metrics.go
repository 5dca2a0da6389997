package positions

import (
	"fmt"
	"math"
	"time"

	"github.com/wonny/tradestats/internal/ledger"
	"github.com/wonny/tradestats/internal/pricefeed"
)

// 위험 등급 경계 (combined score 또는 포지션 비중 %)
const (
	extremeRiskAbove = 25.0
	highRiskAbove    = 15.0
	mediumRiskAbove  = 8.0
)

// ComputeMetrics 포지션 + 시세 → 시가 평가
// 진입가나 현재가가 0 이면 (nil, false)
// ⭐ SSOT: 보유 시간은 now 기준. 진입 시각이 미래거나 파싱 불가면 0 으로 처리
func ComputeMetrics(symbol string, pos ledger.OpenPosition, quote pricefeed.Quote, portfolioValue float64, now time.Time) (*Metrics, bool) {
	price := quote.Price
	if pos.Entry == 0 || price == 0 {
		return nil, false
	}

	m := &Metrics{
		Symbol:           symbol,
		Entry:            pos.Entry,
		Amount:           pos.Amount,
		Stop:             pos.Stop,
		Target:           pos.Target,
		CurrentPrice:     price,
		PositionValue:    price * pos.Amount,
		EntryValue:       pos.Entry * pos.Amount,
		UnrealizedPnL:    (price - pos.Entry) * pos.Amount,
		UnrealizedPnLPct: (price - pos.Entry) / pos.Entry * 100,
		Change24h:        quote.Change24h,
		Volume24h:        quote.Volume24h,
		Source:           quote.Source,
		QuotedAt:         quote.Timestamp,
		QuoteStale:       quote.IsStale,
	}

	if portfolioValue > 0 {
		m.PositionSizePct = m.PositionValue / portfolioValue * 100
	}

	if pos.Stop > 0 {
		m.DistToStopPct = (price - pos.Stop) / price * 100
		m.StopLossRisk = math.Abs((pos.Entry - pos.Stop) * pos.Amount)
		if pos.Target > 0 && pos.Entry != pos.Stop {
			m.RiskReward = math.Abs((pos.Target - pos.Entry) / (pos.Entry - pos.Stop))
		}
	}
	if pos.Target > 0 {
		m.DistToTargetPct = (pos.Target - price) / price * 100
		m.TargetProfitPotential = (pos.Target - pos.Entry) * pos.Amount
	}
	m.BreakEvenDistancePct = math.Abs(price-pos.Entry) / price * 100

	held := heldDuration(pos, now)
	m.HoursHeld = held.Hours()
	m.DaysHeld = int(held.Hours() / 24)
	m.HeldFor = formatHeld(held)
	if m.HoursHeld > 0 {
		m.HourlyReturnPct = m.UnrealizedPnLPct / m.HoursHeld
		m.AnnualizedReturnPct = m.HourlyReturnPct * 24 * 365
	}

	m.CombinedRiskScore = m.PositionSizePct*0.4 + math.Abs(m.UnrealizedPnLPct)*0.3 + m.HoursHeld/24*0.3
	m.RiskLevel = riskLevel(m.CombinedRiskScore, m.PositionSizePct)

	m.MomentumScore = math.Abs(price-pos.Entry)/pos.Entry*0.6 + math.Abs(quote.Change24h/100)*0.4
	m.Momentum = momentumLevel(m.MomentumScore)
	m.Grade = grade(m.UnrealizedPnLPct)

	m.ProfitPerHour = m.UnrealizedPnL / math.Max(m.HoursHeld, 0.1)
	if m.EntryValue > 0 {
		m.CapitalEfficiency = math.Abs(m.UnrealizedPnL) / m.EntryValue * 100
	}

	return m, true
}

func heldDuration(pos ledger.OpenPosition, now time.Time) time.Duration {
	opened, ok := pos.OpenedAt()
	if !ok {
		return 0
	}
	return max(now.Sub(opened), 0)
}

// formatHeld "2d 3h 15m" / "4.5h 30m" / "12m 5s"
func formatHeld(d time.Duration) string {
	if d <= 0 {
		return "N/A"
	}
	minutes := int(d.Minutes()) % 60
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%dd %dh %dm", int(d.Hours())/24, int(d.Hours())%24, minutes)
	case d >= time.Hour:
		return fmt.Sprintf("%.1fh %dm", d.Hours(), minutes)
	default:
		return fmt.Sprintf("%dm %ds", minutes, int(d.Seconds())%60)
	}
}

func riskLevel(score, sizePct float64) Level {
	switch {
	case score > extremeRiskAbove || sizePct > extremeRiskAbove:
		return LevelExtreme
	case score > highRiskAbove || sizePct > highRiskAbove:
		return LevelHigh
	case score > mediumRiskAbove || sizePct > mediumRiskAbove:
		return LevelMedium
	default:
		return LevelLow
	}
}

// momentumLevel 진입 대비 변화 60% + 24h 변화 40% 가중
func momentumLevel(score float64) Level {
	switch {
	case score > 0.10:
		return LevelExtreme
	case score > 0.05:
		return LevelHigh
	case score > 0.02:
		return LevelMedium
	default:
		return LevelLow
	}
}

func grade(pnlPct float64) string {
	switch {
	case pnlPct > 10:
		return "A+"
	case pnlPct > 5:
		return "A"
	case pnlPct > 0:
		return "B"
	case pnlPct > -3:
		return "C"
	case pnlPct > -8:
		return "D"
	default:
		return "F"
	}
}
