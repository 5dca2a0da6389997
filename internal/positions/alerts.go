package positions

import (
	"fmt"
	"math"
	"time"

	"github.com/wonny/tradestats/internal/ledger"
	"github.com/wonny/tradestats/internal/pricefeed"
)

// priceThresholds 진입 대비 변동 % (높은 순, 도달한 최고 단계 하나만 발생)
var priceThresholds = []struct {
	severity Severity
	pct      float64
}{
	{SeverityExtreme, 15},
	{SeverityCritical, 10},
	{SeveritySignificant, 5},
	{SeverityModerate, 2},
}

const (
	stopProximityPct   = 2.0
	targetProximityPct = 3.0
	highVolatilityPct  = 15.0
	longHeldAfter      = 7 * 24 * time.Hour
)

// GenerateAlerts 포지션 하나의 알림
// 진입가나 현재가가 0 이면 없음
func GenerateAlerts(symbol string, pos ledger.OpenPosition, quote pricefeed.Quote, now time.Time) []Alert {
	price := quote.Price
	if pos.Entry == 0 || price == 0 {
		return nil
	}

	var alerts []Alert
	add := func(sev Severity, typ AlertType, msg, details string, action bool) {
		alerts = append(alerts, Alert{
			Severity:       sev,
			Type:           typ,
			Symbol:         symbol,
			Message:        msg,
			Details:        details,
			Timestamp:      now,
			ActionRequired: action,
		})
	}

	pnlPct := (price - pos.Entry) / pos.Entry * 100
	for _, th := range priceThresholds {
		if math.Abs(pnlPct) < th.pct {
			continue
		}
		direction := "LOSS"
		if pnlPct > 0 {
			direction = "GAIN"
		}
		add(th.severity, AlertPriceMovement,
			fmt.Sprintf("%s: %s of %.2f%% reached", symbol, direction, math.Abs(pnlPct)),
			fmt.Sprintf("Entry: $%.4f → Current: $%.4f", pos.Entry, price),
			th.severity == SeverityCritical || th.severity == SeverityExtreme)
		break
	}

	if pos.Stop > 0 {
		if dist := math.Abs((price - pos.Stop) / price * 100); dist <= stopProximityPct {
			add(SeverityCritical, AlertStopProximity,
				fmt.Sprintf("%s: APPROACHING STOP LOSS", symbol),
				fmt.Sprintf("Current: $%.4f, Stop: $%.4f (%.1f%% away)", price, pos.Stop, dist),
				true)
		}
	}

	if pos.Target > 0 {
		if dist := math.Abs((pos.Target - price) / price * 100); dist <= targetProximityPct {
			add(SeverityModerate, AlertTargetProximity,
				fmt.Sprintf("%s: APPROACHING TARGET", symbol),
				fmt.Sprintf("Current: $%.4f, Target: $%.4f (%.1f%% away)", price, pos.Target, dist),
				false)
		}
	}

	// 거래량이 없는 시세 (폴백/오류) 는 24h 변화도 신뢰하지 않음
	if quote.Volume24h > 0 && math.Abs(quote.Change24h) > highVolatilityPct {
		add(SeverityModerate, AlertHighVolatility,
			fmt.Sprintf("%s: HIGH VOLATILITY DETECTED", symbol),
			fmt.Sprintf("24h change: %+.2f%%", quote.Change24h),
			false)
	}

	if held := heldDuration(pos, now); held > longHeldAfter {
		add(SeverityModerate, AlertPositionAge,
			fmt.Sprintf("%s: LONG-HELD POSITION", symbol),
			fmt.Sprintf("Held for %.1f days - consider review", held.Hours()/24),
			false)
	}

	return alerts
}
