package risk

import (
	"context"
	"errors"
	"fmt"
)

// =============================================================================
// Engine - 순수 계산기
// =============================================================================

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// Engine 리스크 모델 모음 (순수 계산기)
// ⭐ SSOT: 데이터 수집/잔고 조립은 상위 레이어(projection, report)에서
// internal/risk 는 순수 계산만 담당
type Engine struct {
	mcConfig  MonteCarloConfig
	maWindows []int
}

// NewEngine 새 리스크 엔진 생성
func NewEngine(mcConfig MonteCarloConfig, maWindows []int) *Engine {
	if len(maWindows) == 0 {
		maWindows = DefaultMAWindows
	}
	return &Engine{mcConfig: mcConfig, maWindows: maWindows}
}

// Volatility 거래 단위 리스크 지표 (2개 미만이면 nil)
func (e *Engine) Volatility(pnl []float64) *VolatilityMetrics {
	return ComputeVolatilityMetrics(pnl)
}

// Trend 선형 추세 (3개 미만이면 nil)
func (e *Engine) Trend(pnl []float64, projectPeriods int) *TrendModel {
	return ComputeLinearTrend(pnl, projectPeriods)
}

// MovingAverages 설정된 윈도우의 SMA/EMA
func (e *Engine) MovingAverages(pnl []float64) MovingAverages {
	return ComputeMovingAverages(pnl, e.maWindows)
}

// MonteCarlo stream 번호로 시드를 분리한 시뮬레이션
// 같은 엔진에서 여러 호라이즌을 돌려도 스트림이 겹치지 않음
func (e *Engine) MonteCarlo(
	ctx context.Context,
	stream uint64,
	pnl []float64,
	startingBalance float64,
	nSimulations, nTradesPerPath int,
) (*BalanceDistribution, error) {
	cfg := e.mcConfig
	if cfg.Seed != 0 {
		cfg.Seed = StreamSeed(cfg.Seed, stream)
		if cfg.Seed == 0 {
			cfg.Seed = 1
		}
	}
	return NewMonteCarloSimulator(cfg).Simulate(ctx, pnl, startingBalance, nSimulations, nTradesPerPath)
}

// ValidateConfig 설정 유효성 검사
func ValidateConfig(config MonteCarloConfig) error {
	if config.Method != "" && config.Method != MethodHistoricalBootstrap {
		return fmt.Errorf("%w: unsupported method %q", ErrInvalidConfig, config.Method)
	}
	if config.Workers < 0 {
		return fmt.Errorf("%w: Workers must be >= 0", ErrInvalidConfig)
	}
	if config.MinSamples < 0 {
		return fmt.Errorf("%w: MinSamples must be >= 0", ErrInvalidConfig)
	}
	return nil
}
