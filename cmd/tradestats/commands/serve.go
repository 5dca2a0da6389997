package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tradestats/internal/api"
	"github.com/wonny/tradestats/internal/api/handlers"
	"github.com/wonny/tradestats/internal/positions"
	"github.com/wonny/tradestats/internal/report"
	"github.com/wonny/tradestats/internal/scheduler"
	"github.com/wonny/tradestats/internal/scheduler/jobs"
	"github.com/wonny/tradestats/pkg/redis"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "API 서버 시작",
	Long: `리포트 API 서버를 시작합니다.

이 명령어는:
- 원장 → 종합 전망 리포트를 HTTP 로 제공 (REDIS_ENABLED 면 TTL 메모이제이션)
- 실시간 가격 조회 (Binance → CoinGecko → 개별 조회 폴백)
- 상태 파일의 미청산 포지션 시가 평가/위험/알림
- 스케줄러로 리포트 갱신/가격 캐시 정리 (SCHEDULER_ENABLED)

Endpoints:
  GET  /health
  GET  /api/report
  GET  /api/statistics
  GET  /api/performance?period_days=N
  GET  /api/prices?symbols=BTC,ETH
  GET  /api/positions
  GET  /api/jobs
  POST /api/jobs/{name}/run

Example:
  go run ./cmd/tradestats serve
  go run ./cmd/tradestats serve --port 8089 --state dashboard.json`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "API 서버 포트 (기본: PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := setup(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg, log := rt.cfg, rt.log
	if servePort != "" {
		cfg.Port = servePort
	}

	// 1. Redis (비활성이면 메모이제이션 없이 동작)
	var reportCache *redis.Cache
	rdb, err := redis.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()
	if rdb.Enabled() {
		reportCache = redis.NewCache(rdb, "tradestats")
		log.Info("Redis report cache enabled")
	}

	// 2. Report service
	service, err := report.NewService(rt.loader(), rt.engine, reportCache, cfg.Redis.ReportTTL, log)
	if err != nil {
		return err
	}

	// 3. Price feed + 미청산 포지션 평가
	fetcher := rt.quoteFetcher(reportCache)
	positionService := positions.NewService(rt.loader(), fetcher, log)

	// 4. Scheduler
	var jobsHandler *handlers.JobsHandler
	if cfg.Scheduler.Enabled {
		sched := scheduler.New(log).WithRetry(2, 10*time.Second).WithTimeout(2 * time.Minute)
		if err := sched.AddJob(jobs.NewReportRefreshJob(service, cfg.Scheduler.ReportRefresh, log)); err != nil {
			return fmt.Errorf("register report refresh job: %w", err)
		}
		if err := sched.AddJob(jobs.NewPriceCacheSweepJob(fetcher.Cache(), cfg.Scheduler.PriceCacheSweep, log)); err != nil {
			return fmt.Errorf("register price sweep job: %w", err)
		}
		sched.Start()
		defer sched.Stop()
		jobsHandler = handlers.NewJobsHandler(sched, log)
	}

	// 5. Router + server
	router := api.NewRouter(
		handlers.NewReportHandler(service, log),
		handlers.NewPriceHandler(fetcher, log),
		handlers.NewPositionHandler(positionService, log),
		jobsHandler,
		log,
	)
	server := api.New(cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	out := cmd.OutOrStdout()
	printSuccess(out, fmt.Sprintf("Server running on http://localhost:%s", cfg.Port))
	fmt.Fprintln(out, "\nAvailable endpoints:")
	fmt.Fprintln(out, "  GET  /health")
	fmt.Fprintln(out, "  GET  /api/report")
	fmt.Fprintln(out, "  GET  /api/statistics")
	fmt.Fprintln(out, "  GET  /api/performance?period_days=N")
	fmt.Fprintln(out, "  GET  /api/prices?symbols=BTC,ETH")
	fmt.Fprintln(out, "  GET  /api/positions")
	if jobsHandler != nil {
		fmt.Fprintln(out, "  GET  /api/jobs")
		fmt.Fprintln(out, "  POST /api/jobs/{name}/run")
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
