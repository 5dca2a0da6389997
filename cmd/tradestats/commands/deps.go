package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/tradestats/internal/engineconfig"
	"github.com/wonny/tradestats/internal/ledger"
	"github.com/wonny/tradestats/internal/pricefeed"
	"github.com/wonny/tradestats/pkg/config"
	"github.com/wonny/tradestats/pkg/database"
	"github.com/wonny/tradestats/pkg/httputil"
	"github.com/wonny/tradestats/pkg/logger"
	"github.com/wonny/tradestats/pkg/redis"
)

// runtime 커맨드 공통 의존성
type runtime struct {
	cfg    *config.Config
	log    *logger.Logger
	engine *engineconfig.Config
	db     *database.DB // nil = Postgres 원장 없음
}

// setup 설정 로드 → 로거 → 엔진 설정 → (선택) DB 연결
func setup(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyLedgerFlags(cfg)

	log := logger.New(cfg)

	ecfg, err := loadEngineConfig(cfg)
	if err != nil {
		return nil, err
	}
	for _, w := range engineconfig.Warn(ecfg) {
		log.WithField("code", w.Code).Debug(w.Message)
	}

	rt := &runtime{cfg: cfg, log: log, engine: ecfg}

	if cfg.Database.Enabled() {
		db, err := database.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to ledger database: %w", err)
		}
		rt.db = db
	}

	return rt, nil
}

// applyLedgerFlags CLI 플래그가 환경변수 설정보다 우선
func applyLedgerFlags(cfg *config.Config) {
	if tradesPath != "" {
		cfg.Ledger.TradesPath = tradesPath
	}
	if csvPath != "" {
		cfg.Ledger.CSVPath = csvPath
	}
	if statePath != "" {
		cfg.Ledger.StatePath = statePath
	}
	if databaseURL != "" {
		cfg.Database.URL = databaseURL
	}
	if startingBalance > 0 {
		cfg.Ledger.StartingBalance = startingBalance
	}
}

// loadEngineConfig YAML(선택) + --seed/--simulations 덮어쓰기 후 재검증
func loadEngineConfig(cfg *config.Config) (*engineconfig.Config, error) {
	path := engineConfigPath
	if path == "" {
		path = cfg.EngineConfigPath
	}

	ecfg, err := engineconfig.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load engine config: %w", err)
	}

	if seed != 0 {
		ecfg.MonteCarlo.Seed = seed
	}
	if simulations > 0 {
		ecfg.MonteCarlo.Simulations = simulations
	}

	if err := engineconfig.Validate(ecfg); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	return ecfg, nil
}

// Close releases the database pool
func (rt *runtime) Close() {
	rt.db.Close()
}

// loader 설정된 원장 소스
func (rt *runtime) loader() *ledger.Loader {
	l := &ledger.Loader{
		TradesPath:      rt.cfg.Ledger.TradesPath,
		CSVPath:         rt.cfg.Ledger.CSVPath,
		StatePath:       rt.cfg.Ledger.StatePath,
		DefaultStarting: rt.cfg.Ledger.StartingBalance,
	}
	if rt.db != nil {
		l.Repo = ledger.NewRepository(rt.db.Pool)
	}
	return l
}

// quoteFetcher 재시도/속도 제한 HTTP 클라이언트 위의 시세 조회기
// store 는 nil 가능 (마지막 시세 Redis 보관 없음)
func (rt *runtime) quoteFetcher(store *redis.Cache) *pricefeed.Fetcher {
	pf := rt.cfg.PriceFeed
	client := httputil.New(rt.log, pf.Timeout).
		WithRetry(3, 500*time.Millisecond).
		WithRateLimit(pf.RequestsPerSec, 1)
	return pricefeed.NewFetcher(client, pricefeed.FetcherConfig{
		BinanceURL:   pf.BaseURL,
		CoinGeckoURL: pf.CoinGeckoURL,
	}, pricefeed.NewCache(pf.CacheTTL, rt.log), store, rt.log)
}

// loadBook 원장 로드 + --current 덮어쓰기
func (rt *runtime) loadBook(ctx context.Context) (*ledger.Book, error) {
	book, err := rt.loader().Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	if currentBalance > 0 {
		book.Balance.Current = currentBalance
		book.Balance.CurrentFromAccount = false
	}

	if len(book.Rejected) > 0 {
		rt.log.WithField("rejected", len(book.Rejected)).Warn("Some ledger rows were rejected")
		for _, r := range book.Rejected {
			rt.log.WithFields(map[string]interface{}{
				"index": r.Index,
				"error": r.Err.Error(),
			}).Debug("Rejected ledger row")
		}
	}

	if book.Balance.Starting <= 0 {
		rt.log.WithField("starting", book.Balance.Starting).
			Warn("Starting balance is not positive; daily returns and projections are unreliable (use --starting)")
	}

	rt.log.WithFields(map[string]interface{}{
		"trades":  len(book.Trades),
		"sources": book.Sources,
	}).Debug("Ledger loaded")

	return book, nil
}

// staticBook 이미 로드한 원장을 LedgerSource 로 노출
type staticBook struct {
	book *ledger.Book
}

func (s staticBook) Load(context.Context) (*ledger.Book, error) {
	return s.book, nil
}
