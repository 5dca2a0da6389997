package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tradestats/internal/api/handlers"
	"github.com/wonny/tradestats/internal/ledger"
	"github.com/wonny/tradestats/internal/positions"
	"github.com/wonny/tradestats/internal/pricefeed"
	"github.com/wonny/tradestats/internal/report"
	"github.com/wonny/tradestats/internal/scheduler"
	"github.com/wonny/tradestats/internal/stats"
	"github.com/wonny/tradestats/pkg/config"
	"github.com/wonny/tradestats/pkg/logger"
)

type fakeReports struct {
	err        error
	trades     []ledger.Trade
	lastPeriod int
	panicOnGet bool
}

func (f *fakeReports) Build(context.Context) (*report.Report, error) {
	if f.panicOnGet {
		panic("boom")
	}
	if f.err != nil {
		return nil, f.err
	}
	return &report.Report{TradeCount: len(f.trades), Statistics: stats.ComputeTradeStatistics(f.trades)}, nil
}

func (f *fakeReports) Statistics(context.Context) (*stats.TradeStatistics, error) {
	if f.err != nil {
		return nil, f.err
	}
	return stats.ComputeTradeStatistics(f.trades), nil
}

func (f *fakeReports) Performance(_ context.Context, periodDays int) (*stats.PerformanceMetrics, error) {
	f.lastPeriod = periodDays
	if f.err != nil {
		return nil, f.err
	}
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	return stats.ComputePerformanceMetrics(f.trades, 100, periodDays, now), nil
}

type fakeJobs struct {
	ran []string
}

func (f *fakeJobs) GetJobStats() map[string]scheduler.JobStats {
	return map[string]scheduler.JobStats{
		"report_refresh": {JobName: "report_refresh", Schedule: "0 */5 * * * *", TotalRuns: 4, SuccessCount: 3, FailureCount: 1, SuccessRate: 0.75},
	}
}

func (f *fakeJobs) RunNow(_ context.Context, name string) (scheduler.JobResult, error) {
	switch name {
	case "report_refresh":
		f.ran = append(f.ran, name)
		return scheduler.JobResult{JobName: name, Attempts: 1, Success: true}, nil
	case "price_cache_sweep":
		return scheduler.JobResult{JobName: name, Attempts: 3, Error: "boom"}, nil
	}
	return scheduler.JobResult{}, errors.New("job " + name + " not found")
}

type fakeQuotes struct {
	err       error
	requested []string
}

func (f *fakeQuotes) Fetch(_ context.Context, symbols []string) (map[string]pricefeed.Quote, error) {
	f.requested = symbols
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]pricefeed.Quote, len(symbols))
	for _, s := range symbols {
		out[s] = pricefeed.Quote{Symbol: s, Price: 1.5, Source: pricefeed.SourceBinance}
	}
	return out, nil
}

type fakePositions struct {
	err error
}

func (f *fakePositions) Snapshot(context.Context) (*positions.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	m := positions.Metrics{Symbol: "BTC/USDT", Entry: 100, CurrentPrice: 104, UnrealizedPnL: 8, RiskLevel: positions.LevelHigh}
	return &positions.Snapshot{
		PortfolioValue:     1000,
		TotalUnrealizedPnL: 8,
		Positions:          []positions.Metrics{m},
		Unpriced:           []string{"PEPE/USDT"},
		Risk:               positions.ComputePortfolioRisk([]positions.Metrics{m}, 1000),
		Alerts:             []positions.Alert{{Severity: positions.SeverityModerate, Type: positions.AlertPriceMovement, Symbol: "BTC/USDT"}},
	}, nil
}

func sampleTrades() []ledger.Trade {
	return []ledger.Trade{
		ledger.New("BTC", 10, "", "2024-01-01T10:00:00"),
		ledger.New("ETH", -4, "", "2024-01-02T10:00:00"),
		ledger.New("SOL", 6, "", "2024-01-08T10:00:00"),
	}
}

func newTestRouter(reports *fakeReports, quotes *fakeQuotes) http.Handler {
	log := logger.Nop()
	var ph *handlers.PriceHandler
	if quotes != nil {
		ph = handlers.NewPriceHandler(quotes, log)
	}
	return NewRouter(handlers.NewReportHandler(reports, log), ph, nil, nil, log)
}

func do(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	var body map[string]interface{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealth(t *testing.T) {
	rec, body := do(t, newTestRouter(&fakeReports{}, nil), http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "tradestats-api", body["service"])
}

func TestReport(t *testing.T) {
	router := newTestRouter(&fakeReports{trades: sampleTrades()}, nil)

	rec, body := do(t, router, http.MethodGet, "/api/report")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, float64(3), body["trade_count"])
	assert.Nil(t, body["projection"])

	rec, _ = do(t, router, http.MethodPost, "/api/report")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestReport_Errors(t *testing.T) {
	rec, body := do(t, newTestRouter(&fakeReports{err: ledger.ErrNoLedger}, nil), http.MethodGet, "/api/report")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "No trade ledger configured", body["error"])

	rec, _ = do(t, newTestRouter(&fakeReports{err: errors.New("disk on fire")}, nil), http.MethodGet, "/api/report")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec, body = do(t, newTestRouter(&fakeReports{panicOnGet: true}, nil), http.MethodGet, "/api/report")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", body["error"])
}

func TestStatistics(t *testing.T) {
	rec, body := do(t, newTestRouter(&fakeReports{trades: sampleTrades()}, nil), http.MethodGet, "/api/statistics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), body["total_trades"])
	assert.Equal(t, float64(12), body["net_pnl"])

	rec, _ = do(t, newTestRouter(&fakeReports{}, nil), http.MethodGet, "/api/statistics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPerformance(t *testing.T) {
	reports := &fakeReports{trades: sampleTrades()}
	router := newTestRouter(reports, nil)

	rec, body := do(t, router, http.MethodGet, "/api/performance")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, reports.lastPeriod)
	assert.Equal(t, float64(3), body["total_trades"])

	rec, body = do(t, router, http.MethodGet, "/api/performance?period_days=5")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, reports.lastPeriod)
	assert.Equal(t, float64(1), body["total_trades"])

	rec, _ = do(t, newTestRouter(&fakeReports{trades: sampleTrades()[:1]}, nil), http.MethodGet, "/api/performance?period_days=1")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	for _, bad := range []string{"abc", "-3"} {
		rec, _ = do(t, router, http.MethodGet, "/api/performance?period_days="+bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestPrices(t *testing.T) {
	quotes := &fakeQuotes{}
	router := newTestRouter(&fakeReports{}, quotes)

	rec, body := do(t, router, http.MethodGet, "/api/prices?symbols=btc/usdt,%20ETH/USDT,BTC/USDT")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"BTC/USDT", "ETH/USDT"}, quotes.requested)
	assert.Equal(t, float64(2), body["count"])

	rec, _ = do(t, router, http.MethodGet, "/api/prices")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	quotes.err = pricefeed.ErrNoQuotes
	rec, _ = do(t, router, http.MethodGet, "/api/prices?symbols=BTC/USDT")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestPrices_Disabled(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&fakeReports{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/prices?symbols=BTC/USDT", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPositions(t *testing.T) {
	log := logger.Nop()
	route := func(svc *fakePositions) http.Handler {
		return NewRouter(handlers.NewReportHandler(&fakeReports{}, log), nil, handlers.NewPositionHandler(svc, log), nil, log)
	}

	rec, body := do(t, route(&fakePositions{}), http.MethodGet, "/api/positions")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1000), body["portfolio_value"])
	assert.Equal(t, []interface{}{"PEPE/USDT"}, body["unpriced"])
	require.Len(t, body["positions"], 1)
	first := body["positions"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "HIGH", first["risk_level"])
	risk := body["risk"].(map[string]interface{})
	assert.Equal(t, float64(1), risk["position_count"])
	require.Len(t, body["alerts"], 1)

	rec, body = do(t, route(&fakePositions{err: ledger.ErrNoLedger}), http.MethodGet, "/api/positions")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "No trade ledger configured", body["error"])

	rec, _ = do(t, route(&fakePositions{err: errors.New("quote timeout")}), http.MethodGet, "/api/positions")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec, _ = do(t, newTestRouter(&fakeReports{}, nil), http.MethodGet, "/api/positions")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer(t *testing.T) {
	s := New(&config.Config{Port: "0", Env: "development"}, logger.Nop(), http.NotFoundHandler())
	assert.Equal(t, ":0", s.Addr())

	errc := make(chan error, 1)
	go func() { errc <- s.Start() }()

	// Start 전 Shutdown 이어도 ListenAndServe 는 ErrServerClosed 로 종료
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, s.Shutdown(context.Background()))
	require.NoError(t, <-errc)
}

func TestJobs(t *testing.T) {
	jobs := &fakeJobs{}
	log := logger.Nop()
	router := NewRouter(handlers.NewReportHandler(&fakeReports{}, log), nil, nil, handlers.NewJobsHandler(jobs, log), log)

	rec, body := do(t, router, http.MethodGet, "/api/jobs")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, body, "report_refresh")
	assert.Equal(t, 0.75, body["report_refresh"].(map[string]interface{})["success_rate"])

	rec, body = do(t, router, http.MethodPost, "/api/jobs/report_refresh/run")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []string{"report_refresh"}, jobs.ran)

	rec, body = do(t, router, http.MethodPost, "/api/jobs/price_cache_sweep/run")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "boom", body["error"])

	rec, _ = do(t, router, http.MethodPost, "/api/jobs/unknown/run")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, router, http.MethodGet, "/api/jobs/report_refresh/run")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
