package risk

// =============================================================================
// Volatility / VaR Types
// =============================================================================

// VolatilityMetrics 거래 단위 pnl 시계열의 변동성/리스크 지표
// ⭐ SSOT: VaR 는 pnl 분포의 백분위수 그대로 (부호 유지, 손실이면 음수)
type VolatilityMetrics struct {
	Volatility          float64 `json:"volatility"` // ddof=1
	MeanPnL             float64 `json:"mean_pnl"`
	VaR95               float64 `json:"var_95"` // 5th percentile
	VaR99               float64 `json:"var_99"` // 1st percentile
	ExpectedShortfall95 float64 `json:"expected_shortfall_95"`
	DownsideDeviation   float64 `json:"downside_deviation"` // 음수 pnl 만, ddof=1
	MaxDrawdown         float64 `json:"max_drawdown"`       // 누적 pnl 기준 (잔고 아님)
	DrawdownPeakIndex   int     `json:"drawdown_peak_index"`
	DrawdownTroughIndex int     `json:"drawdown_trough_index"`
	// PerTradeSharpe mean/σ (연율화 안 함)
	PerTradeSharpe float64 `json:"sharpe_ratio"`
	SortinoRatio   float64 `json:"sortino_ratio"`
}

// =============================================================================
// Trend Types
// =============================================================================

// TrendDirection 추세 방향
type TrendDirection string

const (
	TrendUp   TrendDirection = "upward"
	TrendDown TrendDirection = "downward"
	TrendFlat TrendDirection = "flat"
)

// TrendModel pnl 시계열 선형 회귀 (x = 거래 인덱스)
type TrendModel struct {
	Slope                float64        `json:"slope"`
	Intercept            float64        `json:"intercept"`
	RSquared             float64        `json:"r_squared"`
	TrendDirection       TrendDirection `json:"trend_direction"`
	CurrentTrendStrength float64        `json:"current_trend_strength"` // |R²|
	// DailyTrendPnL 거래 인덱스 1 스텝당 pnl 변화량 (프로젝션에서는 일 단위로 사용)
	DailyTrendPnL   float64   `json:"daily_trend_pnl"`
	ProjectedValues []float64 `json:"projected_values"`
}

// =============================================================================
// Monte Carlo Types
// =============================================================================

// MonteCarloMethod 시뮬레이션 방법
type MonteCarloMethod string

const (
	MethodHistoricalBootstrap MonteCarloMethod = "historical_bootstrap" // 과거 pnl 복원추출
)

// MonteCarloConfig Monte Carlo 시뮬레이션 설정
// ⭐ SSOT: 재현성을 위해 모든 설정을 명시적으로 기록
type MonteCarloConfig struct {
	Method     MonteCarloMethod `json:"method"`
	Seed       int64            `json:"seed"`        // 재현성용 시드 (0=랜덤)
	Workers    int              `json:"workers"`     // 병렬 워커 수 (결과는 seed+workers 에만 의존)
	MinSamples int              `json:"min_samples"` // 최소 pnl 샘플 수 (기본: 5)
}

// DefaultMonteCarloConfig 기본 Monte Carlo 설정
func DefaultMonteCarloConfig() MonteCarloConfig {
	return MonteCarloConfig{
		Method:     MethodHistoricalBootstrap,
		Seed:       0, // 랜덤
		Workers:    4,
		MinSamples: 5,
	}
}

// BalanceDistribution 시뮬레이션 최종 잔고 분포 요약
// 확률은 퍼센트 (0-100)
type BalanceDistribution struct {
	P5  float64 `json:"p5"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"` // 중앙값 (헤드라인 수치)
	P75 float64 `json:"p75"`
	P95 float64 `json:"p95"`

	ProbProfit    float64 `json:"prob_profit"`
	Prob10PctGain float64 `json:"prob_10pct_gain"`
	Prob10PctLoss float64 `json:"prob_10pct_loss"`
	Prob25PctLoss float64 `json:"prob_25pct_loss"`

	Simulations     int     `json:"simulations"`
	TradesPerPath   int     `json:"trades_per_path"`
	StartingBalance float64 `json:"starting_balance"`
	MinFinalBalance float64 `json:"min_final_balance"`
}
