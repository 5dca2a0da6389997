package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/wonny/tradestats/internal/ledger"
	"github.com/wonny/tradestats/internal/report"
	"github.com/wonny/tradestats/internal/stats"
	"github.com/wonny/tradestats/pkg/logger"
)

// ReportService 보고서 서비스 (*report.Service)
type ReportService interface {
	Build(ctx context.Context) (*report.Report, error)
	Statistics(ctx context.Context) (*stats.TradeStatistics, error)
	Performance(ctx context.Context, periodDays int) (*stats.PerformanceMetrics, error)
}

// ReportHandler handles statistics/projection endpoints
// ⭐ SSOT: 보고서 API 핸들러는 이 구조체에서만
type ReportHandler struct {
	service ReportService
	logger  *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ReportService, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  log,
	}
}

// GetReport returns the full report (statistics, headline, projections)
// GET /api/report
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.service.Build(r.Context())
	if err != nil {
		h.fail(w, err, "Failed to build report")
		return
	}

	respondJSON(w, http.StatusOK, rep)
}

// GetStatistics returns trade statistics only
// GET /api/statistics
func (h *ReportHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Statistics(r.Context())
	if err != nil {
		h.fail(w, err, "Failed to compute statistics")
		return
	}
	if st == nil {
		respondError(w, http.StatusNotFound, "No trades in ledger")
		return
	}

	respondJSON(w, http.StatusOK, st)
}

// GetPerformance returns period performance metrics
// GET /api/performance?period_days=30 (0 또는 생략 = 전체 기간)
func (h *ReportHandler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	periodDays := 0
	if raw := r.URL.Query().Get("period_days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "period_days must be a non-negative integer")
			return
		}
		periodDays = n
	}

	perf, err := h.service.Performance(r.Context(), periodDays)
	if err != nil {
		h.fail(w, err, "Failed to compute performance")
		return
	}
	if perf == nil {
		respondError(w, http.StatusNotFound, "No trades in period")
		return
	}

	respondJSON(w, http.StatusOK, perf)
}

func (h *ReportHandler) fail(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, ledger.ErrNoLedger) {
		respondError(w, http.StatusServiceUnavailable, "No trade ledger configured")
		return
	}
	h.logger.WithError(err).Error(message)
	respondError(w, http.StatusInternalServerError, message)
}
