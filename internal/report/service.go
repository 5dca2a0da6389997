package report

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/wonny/tradestats/internal/engineconfig"
	"github.com/wonny/tradestats/internal/ledger"
	"github.com/wonny/tradestats/internal/projection"
	"github.com/wonny/tradestats/internal/stats"
	"github.com/wonny/tradestats/pkg/logger"
	"github.com/wonny/tradestats/pkg/redis"
)

// LedgerSource 원장 로더 (*ledger.Loader)
type LedgerSource interface {
	Load(ctx context.Context) (*ledger.Book, error)
}

// Report 대시보드/API 응답 봉투
// ⭐ SSOT: GeneratedAt 은 엔진 결과가 아니라 여기에만 둠 (엔진 결과는 입력에 대해 순수)
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`
	ConfigHash  string    `json:"config_hash"`
	Fingerprint string    `json:"fingerprint"`
	Cached      bool      `json:"cached"`

	Sources       []string               `json:"sources"`
	Balance       ledger.BalanceSnapshot `json:"balance"`
	TradeCount    int                    `json:"trade_count"`
	RejectedCount int                    `json:"rejected_count"`

	Headline    projection.Headline             `json:"headline"`
	Statistics  *stats.TradeStatistics          `json:"statistics"`
	Performance *stats.PerformanceMetrics       `json:"performance"`
	Projection  *projection.ComprehensiveResult `json:"projection"` // 거래 수 부족 시 null
}

// Service 원장 → 엔진 → Redis 메모이제이션
type Service struct {
	source     LedgerSource
	cfg        *engineconfig.Config
	configHash string
	engine     *projection.Engine
	cache      *redis.Cache
	ttl        time.Duration
	logger     *logger.Logger
	now        func() time.Time
}

// NewService creates a new report service
// cache 는 nil 가능 (메모이제이션 없음)
func NewService(source LedgerSource, cfg *engineconfig.Config, cache *redis.Cache, ttl time.Duration, log *logger.Logger) (*Service, error) {
	engine, err := projection.NewEngine(cfg.EngineConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create projection engine: %w", err)
	}

	hash, err := engineconfig.Hash(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to hash engine config: %w", err)
	}

	if ttl <= 0 {
		ttl = redis.TTLMedium
	}

	return &Service{
		source:     source,
		cfg:        cfg,
		configHash: hash,
		engine:     engine,
		cache:      cache,
		ttl:        ttl,
		logger:     log.Component("report"),
		now:        time.Now,
	}, nil
}

// SetClock 테스트용 시계 주입
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Engine returns the underlying projection engine
func (s *Service) Engine() *projection.Engine {
	return s.engine
}

// Build 캐시 우선 보고서 생성
func (s *Service) Build(ctx context.Context) (*Report, error) {
	return s.build(ctx, true)
}

// Refresh 캐시를 무시하고 다시 계산 후 저장
func (s *Service) Refresh(ctx context.Context) (*Report, error) {
	return s.build(ctx, false)
}

func (s *Service) build(ctx context.Context, useCache bool) (*Report, error) {
	book, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	fp := s.fingerprint(book)
	key := redis.ReportKey(s.configHash[:16] + ":" + fp)

	if useCache && s.cache != nil {
		var cached Report
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.WithError(err).Warn("Report cache read failed")
		} else if found {
			cached.Cached = true
			return &cached, nil
		}
	}

	start := time.Now()
	report, err := s.compute(ctx, book, fp)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"trades":      report.TradeCount,
		"rejected":    report.RejectedCount,
		"projected":   report.Projection != nil,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Report computed")

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, report, s.ttl); err != nil {
			s.logger.WithError(err).Warn("Report cache write failed")
		}
	}

	return report, nil
}

func (s *Service) compute(ctx context.Context, book *ledger.Book, fp string) (*Report, error) {
	bal := book.Balance

	result, err := s.engine.ComputeComprehensive(ctx, book.Trades, bal.Current, bal.Starting)
	if err != nil {
		return nil, fmt.Errorf("failed to compute projections: %w", err)
	}

	now := s.now()
	return &Report{
		GeneratedAt:   now,
		ConfigHash:    s.configHash,
		Fingerprint:   fp,
		Sources:       book.Sources,
		Balance:       bal,
		TradeCount:    len(book.Trades),
		RejectedCount: len(book.Rejected),
		Headline:      s.engine.ComputeHeadline(result, book.Trades, bal.Current, bal.Starting),
		Statistics:    stats.ComputeTradeStatistics(book.Trades),
		Performance:   stats.ComputePerformanceMetrics(book.Trades, bal.Starting, s.cfg.Performance.DefaultPeriodDays, now),
		Projection:    result,
	}, nil
}

// Statistics 거래 통계만 (캐시 없음)
func (s *Service) Statistics(ctx context.Context) (*stats.TradeStatistics, error) {
	book, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return stats.ComputeTradeStatistics(book.Trades), nil
}

// Performance 기간 성과 지표 (periodDays 0 = 전체 기간)
func (s *Service) Performance(ctx context.Context, periodDays int) (*stats.PerformanceMetrics, error) {
	if periodDays < 0 {
		return nil, fmt.Errorf("period_days must be >= 0, got %d", periodDays)
	}
	book, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return stats.ComputePerformanceMetrics(book.Trades, book.Balance.Starting, periodDays, s.now()), nil
}

// load 원장 로드 + 거부된 행 로깅
func (s *Service) load(ctx context.Context) (*ledger.Book, error) {
	book, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	for _, r := range book.Rejected {
		s.logger.WithFields(map[string]interface{}{
			"index": r.Index,
			"error": r.Err.Error(),
		}).Warn("Trade rejected at ingestion")
	}

	return book, nil
}

func (s *Service) fingerprint(book *ledger.Book) string {
	sum := projection.Fingerprint(book.Trades, book.Balance.Current, book.Balance.Starting, s.cfg.MonteCarlo.Seed)
	return hex.EncodeToString(sum)
}
