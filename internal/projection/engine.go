package projection

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/tradestats/internal/ledger"
	"github.com/wonny/tradestats/internal/risk"
	"github.com/wonny/tradestats/internal/stats"
)

// ComprehensiveResult 종합 전망 결과
// ⭐ SSOT: UI/API 는 이 구조체만 렌더링. 하위 결과는 모두 nil 가능
type ComprehensiveResult struct {
	RunID           string  `json:"run_id"`
	CurrentBalance  float64 `json:"current_balance"`
	StartingBalance float64 `json:"starting_balance"`

	DailyStats        *stats.DailyReturnSeries `json:"daily_stats"`
	TradeStats        *stats.TradeStatistics   `json:"trade_stats"`
	MovingAverages    risk.MovingAverages      `json:"moving_averages"`
	TrendAnalysis     *risk.TrendModel         `json:"trend_analysis"`
	VolatilityMetrics *risk.VolatilityMetrics  `json:"volatility_metrics"`

	MathProjections map[string]Projection                `json:"math_projections"`
	MonteCarlo      map[string]*risk.BalanceDistribution `json:"monte_carlo"`
	Expectancy      ExpectancyProjection                 `json:"expectancy_projection"`

	Methods map[string]string `json:"methods"`
}

// Engine 종합 전망 오케스트레이터 (순수 계산, 상태 없음)
type Engine struct {
	cfg  Config
	risk *risk.Engine
}

// NewEngine 설정 검증 후 엔진 생성
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:  cfg,
		risk: risk.NewEngine(cfg.MonteCarlo, cfg.MAWindows),
	}, nil
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// ComputeComprehensive 거래 목록 → 종합 전망
// 순서: 거래 통계 → 일별 수익률 → (이동평균, 추세, 변동성) → 호라이즌별 복리 전망 → 호라이즌별 Monte Carlo
// MinTrades 미만이거나 일별 통계를 만들 수 없으면 (nil, nil)
func (e *Engine) ComputeComprehensive(ctx context.Context, trades []ledger.Trade, current, starting float64) (*ComprehensiveResult, error) {
	if len(trades) < e.cfg.MinTrades {
		return nil, nil
	}

	tradeStats := stats.ComputeTradeStatistics(trades)
	daily := stats.ComputeDailyReturns(trades, starting)
	if tradeStats == nil || daily == nil {
		return nil, nil
	}

	pnl := tradeStats.PnLValues

	result := &ComprehensiveResult{
		RunID:             e.runID(trades, current, starting),
		CurrentBalance:    current,
		StartingBalance:   starting,
		DailyStats:        daily,
		TradeStats:        tradeStats,
		MovingAverages:    e.risk.MovingAverages(pnl),
		TrendAnalysis:     e.risk.Trend(pnl, e.cfg.ProjectPeriods),
		VolatilityMetrics: e.risk.Volatility(pnl),
		MathProjections:   make(map[string]Projection, len(e.cfg.Horizons)),
		MonteCarlo:        make(map[string]*risk.BalanceDistribution, len(e.cfg.Horizons)),
		Expectancy:        ProjectExpectancy(tradeStats.Expectancy, daily.AvgTradesPerDay),
		Methods:           e.methods(),
	}

	for _, days := range e.cfg.Horizons {
		p := ProjectBalance(current, daily.AvgDailyReturn, daily.Volatility, days, e.cfg.ConfidenceZ)
		applyTrend(&p, current, daily.AvgDailyReturn, result.TrendAnalysis, e.cfg.TrendThreshold)
		result.MathProjections[HorizonKey(days)] = p
	}

	// 호라이즌별 Monte Carlo 병렬 실행 (호라이즌마다 독립 시드 스트림)
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, days := range e.cfg.Horizons {
		days := days
		g.Go(func() error {
			n := e.cfg.TradesPerPath(daily.AvgTradesPerDay, days)
			dist, err := e.risk.MonteCarlo(gctx, uint64(days), pnl, current, e.cfg.Simulations, n)
			if err != nil {
				return fmt.Errorf("monte carlo %s: %w", HorizonKey(days), err)
			}
			mu.Lock()
			result.MonteCarlo[HorizonKey(days)] = dist
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}

// methods UI 투명성 패널용 계산식 설명
func (e *Engine) methods() map[string]string {
	return map[string]string{
		"compound_growth":     "current × (1 + daily_return)^days",
		"confidence_interval": fmt.Sprintf("±%.2fσ volatility bands", e.cfg.ConfidenceZ),
		"monte_carlo":         fmt.Sprintf("%s bootstrapped simulations", formatCount(e.cfg.Simulations)),
		"trend_blend":         fmt.Sprintf("daily·(1−R²) + slope·R² when R² > %.2f", e.cfg.TrendThreshold),
		"expectancy":          "expectancy × trades_per_day (×7 weekly, ×30 monthly)",
	}
}

// runID 시드가 고정되면 입력으로부터 결정적인 ID, 아니면 랜덤
func (e *Engine) runID(trades []ledger.Trade, current, starting float64) string {
	if e.cfg.MonteCarlo.Seed == 0 {
		return uuid.New().String()
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, Fingerprint(trades, current, starting, e.cfg.MonteCarlo.Seed)).String()
}

// Fingerprint 입력 값 기반 SHA-256 (메모이제이션 키)
// 거래는 청산 시각 순으로 정렬한 뒤 해시
func Fingerprint(trades []ledger.Trade, current, starting float64, seed int64) []byte {
	h := sha256.New()

	var buf [8]byte
	writeFloat := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}

	writeFloat(current)
	writeFloat(starting)
	binary.LittleEndian.PutUint64(buf[:], uint64(seed))
	h.Write(buf[:])

	for _, t := range ledger.SortByExit(trades) {
		fmt.Fprintf(h, "%s|%s|%s|%s\n", t.Symbol, t.EntryTime.SortKey(), t.ExitTime.SortKey(), ledger.TotalPnL([]ledger.Trade{t}).String())
	}

	return h.Sum(nil)
}

// formatCount 천 단위 구분 (5000 → "5,000")
func formatCount(n int) string {
	if n < 0 {
		return "-" + formatCount(-n)
	}
	s := fmt.Sprintf("%d", n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}
