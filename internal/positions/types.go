package positions

import (
	"time"

	"github.com/wonny/tradestats/internal/pricefeed"
)

// Level 위험/모멘텀 등급
type Level string

const (
	LevelLow     Level = "LOW"
	LevelMedium  Level = "MEDIUM"
	LevelHigh    Level = "HIGH"
	LevelExtreme Level = "EXTREME"
)

// Metrics 미청산 포지션 하나의 시가 평가
// ⭐ SSOT: 포지션 지표 구조 (API/CLI 공통)
type Metrics struct {
	Symbol string  `json:"symbol"`
	Entry  float64 `json:"entry"`
	Amount float64 `json:"amount"`
	Stop   float64 `json:"stop"`
	Target float64 `json:"target"`

	CurrentPrice     float64 `json:"current_price"`
	PositionValue    float64 `json:"position_value"`
	EntryValue       float64 `json:"entry_value"`
	UnrealizedPnL    float64 `json:"unrealized_pnl"`
	UnrealizedPnLPct float64 `json:"unrealized_pnl_pct"`
	PositionSizePct  float64 `json:"position_size_pct"` // 포트폴리오 대비

	// 거리 (현재가 대비 %, stop/target 미설정이면 0)
	DistToStopPct        float64 `json:"dist_to_stop_pct"`
	DistToTargetPct      float64 `json:"dist_to_target_pct"`
	BreakEvenDistancePct float64 `json:"break_even_distance_pct"`

	StopLossRisk          float64 `json:"stop_loss_risk"` // 손절 시 손실 크기
	RiskReward            float64 `json:"risk_reward_ratio"`
	TargetProfitPotential float64 `json:"target_profit_potential"`
	CombinedRiskScore     float64 `json:"combined_risk_score"`
	RiskLevel             Level   `json:"risk_level"`

	// 진입 시각을 파싱하지 못하면 보유 시간 관련 값은 모두 0
	HoursHeld           float64 `json:"hours_held"`
	DaysHeld            int     `json:"days_held"`
	HeldFor             string  `json:"held_for"`
	AnnualizedReturnPct float64 `json:"annualized_return_pct"`
	HourlyReturnPct     float64 `json:"hourly_return_pct"`

	MomentumScore     float64 `json:"momentum_score"`
	Momentum          Level   `json:"momentum"`
	Grade             string  `json:"performance_grade"`
	ProfitPerHour     float64 `json:"profit_per_hour"`
	CapitalEfficiency float64 `json:"capital_efficiency"`

	Change24h  float64          `json:"change_24h_pct"`
	Volume24h  float64          `json:"volume_24h"`
	Source     pricefeed.Source `json:"data_source"`
	QuotedAt   time.Time        `json:"data_timestamp"`
	QuoteStale bool             `json:"quote_stale"`
}

// PortfolioRisk 포트폴리오 단위 위험 지표
type PortfolioRisk struct {
	PositionCount    int     `json:"position_count"`
	TotalExposurePct float64 `json:"total_exposure"`     // 포지션 가치 합 / 포트폴리오 × 100
	ConcentrationPct float64 `json:"concentration_risk"` // 최대 포지션 비중
	VaR95            float64 `json:"var_95"`             // 미실현 pnl 표준편차 × 1.65
	MaxDrawdownRisk  float64 `json:"max_drawdown_risk"`  // 모든 포지션이 손절될 때 손실 합
	CorrelationRisk  Level   `json:"correlation_risk"`
	LeverageRatio    float64 `json:"leverage_ratio"`
	RiskScore        float64 `json:"risk_score"` // 0-100
}

// Severity 알림 심각도
type Severity string

const (
	SeverityModerate    Severity = "MODERATE"
	SeveritySignificant Severity = "SIGNIFICANT"
	SeverityCritical    Severity = "CRITICAL"
	SeverityExtreme     Severity = "EXTREME"
)

// AlertType 알림 종류
type AlertType string

const (
	AlertPriceMovement   AlertType = "PRICE_MOVEMENT"
	AlertStopProximity   AlertType = "STOP_PROXIMITY"
	AlertTargetProximity AlertType = "TARGET_PROXIMITY"
	AlertHighVolatility  AlertType = "HIGH_VOLATILITY"
	AlertPositionAge     AlertType = "POSITION_AGE"
)

// Alert 포지션 알림
type Alert struct {
	Severity       Severity  `json:"severity"`
	Type           AlertType `json:"type"`
	Symbol         string    `json:"symbol"`
	Message        string    `json:"message"`
	Details        string    `json:"details"`
	Timestamp      time.Time `json:"timestamp"`
	ActionRequired bool      `json:"action_required"`
}

// Snapshot 포지션 전체 평가 결과
type Snapshot struct {
	GeneratedAt        time.Time     `json:"generated_at"`
	PortfolioValue     float64       `json:"portfolio_value"`
	TotalUnrealizedPnL float64       `json:"total_unrealized_pnl"`
	Positions          []Metrics     `json:"positions"`
	Unpriced           []string      `json:"unpriced"` // 시세가 없어 평가하지 못한 심볼
	Risk               PortfolioRisk `json:"risk"`
	Alerts             []Alert       `json:"alerts"`
}
