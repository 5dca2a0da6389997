package stats

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/tradestats/internal/ledger"
)

// VolatilityFloor 일별 수익률이 2개 미만일 때 사용하는 변동성 하한
const VolatilityFloor = 0.01

// DayBucket 하루치 집계
type DayBucket struct {
	Date         string  `json:"date"` // YYYY-MM-DD
	PnL          float64 `json:"pnl"`
	Trades       int     `json:"trades"`
	StartBalance float64 `json:"start_balance"`
	Return       float64 `json:"return"`
}

// DailyReturnSeries 일별 수익률 시계열
type DailyReturnSeries struct {
	DailyReturns    []float64   `json:"daily_returns"`
	AvgDailyReturn  float64     `json:"avg_daily_return"`
	Volatility      float64     `json:"volatility"` // ddof=1, 최소 VolatilityFloor
	TotalDays       float64     `json:"total_days"`
	TradingDays     int         `json:"trading_days"`
	AvgTradesPerDay float64     `json:"avg_trades_per_day"`
	// EstimatedSpan total_days 가 근사치(거래 수/2)인지
	EstimatedSpan  bool        `json:"estimated_span"`
	ExcludedTrades int         `json:"excluded_trades"` // 청산 시각 파싱 불가
	Days           []DayBucket `json:"days"`
}

// ComputeDailyReturns 청산일 기준 일별 수익률 계산
// 일 수익률 = 당일 pnl / 당일 시작 잔고 (잔고는 날마다 누적 갱신, 체인 방식)
// 빈 입력 또는 파싱 가능한 청산 시각이 없으면 nil
func ComputeDailyReturns(trades []ledger.Trade, startingBalance float64) *DailyReturnSeries {
	if len(trades) == 0 {
		return nil
	}

	sorted := ledger.SortByExit(trades)

	var (
		buckets  []DayBucket
		excluded int
		lastDay  time.Time
	)
	for _, t := range sorted {
		day, ok := t.ExitTime.Date()
		if !ok {
			excluded++
			continue
		}
		if len(buckets) == 0 || !day.Equal(lastDay) {
			buckets = append(buckets, DayBucket{Date: day.Format("2006-01-02")})
			lastDay = day
		}
		b := &buckets[len(buckets)-1]
		b.PnL += t.PnL
		b.Trades++
	}

	if len(buckets) == 0 {
		return nil
	}

	running := startingBalance
	returns := make([]float64, len(buckets))
	for i := range buckets {
		b := &buckets[i]
		b.StartBalance = running
		if running > 0 {
			b.Return = b.PnL / running
		}
		returns[i] = b.Return
		running += b.PnL
	}

	series := &DailyReturnSeries{
		DailyReturns:   returns,
		AvgDailyReturn: stat.Mean(returns, nil),
		Volatility:     VolatilityFloor,
		TradingDays:    len(buckets),
		ExcludedTrades: excluded,
		Days:           buckets,
	}
	if len(returns) > 1 {
		series.Volatility = stat.StdDev(returns, nil)
	}

	series.TotalDays, series.EstimatedSpan = calendarSpan(sorted)
	series.AvgTradesPerDay = float64(len(trades)) / series.TotalDays

	return series
}

// calendarSpan 첫/마지막 청산 사이의 일수 (최소 1)
// 양 끝 중 하나라도 파싱 불가면 max(거래수/2, 1) 근사치
func calendarSpan(sorted []ledger.Trade) (float64, bool) {
	first, last := sorted[0].ExitTime, sorted[len(sorted)-1].ExitTime
	if !first.Valid || !last.Valid {
		return math.Max(float64(len(sorted))/2, 1), true
	}

	days := math.Floor(last.Time.Sub(first.Time).Hours() / 24)
	return math.Max(days, 1), false
}
