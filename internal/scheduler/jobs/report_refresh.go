package jobs

import (
	"context"

	"github.com/wonny/tradestats/internal/report"
	"github.com/wonny/tradestats/pkg/logger"
)

// ReportRefresher 보고서 재계산 (*report.Service)
type ReportRefresher interface {
	Refresh(ctx context.Context) (*report.Report, error)
}

// ReportRefreshJob 원장을 다시 읽고 보고서 캐시를 갱신
type ReportRefreshJob struct {
	service  ReportRefresher
	schedule string
	logger   *logger.Logger
}

// NewReportRefreshJob creates a new report refresh job
func NewReportRefreshJob(service ReportRefresher, schedule string, log *logger.Logger) *ReportRefreshJob {
	if schedule == "" {
		schedule = "0 */5 * * * *"
	}
	return &ReportRefreshJob{
		service:  service,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *ReportRefreshJob) Name() string {
	return "report_refresh"
}

// Schedule returns the cron schedule
func (j *ReportRefreshJob) Schedule() string {
	return j.schedule
}

// Run recomputes the report and overwrites the cached copy
func (j *ReportRefreshJob) Run(ctx context.Context) error {
	r, err := j.service.Refresh(ctx)
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"trades":      r.TradeCount,
		"rejected":    r.RejectedCount,
		"fingerprint": r.Fingerprint,
		"projected":   r.Projection != nil,
	}).Info("Report refreshed")

	return nil
}
