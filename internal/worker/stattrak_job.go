package worker

import (
	"context"
	"errors"

	"github.com/strafemod/paintkit/internal/domain"
	"github.com/strafemod/paintkit/internal/logger"
	"github.com/strafemod/paintkit/internal/metrics"
)

// StatTrakReporter sends an increment report to the backend.
type StatTrakReporter interface {
	ReportStatTrak(ctx context.Context, targetUID int, userID uint64) error
}

// StatTrakReportJob reports one counter increment. At most one job is queued
// per kill and there is no retry: the report is advisory telemetry, loss is
// acceptable.
type StatTrakReportJob struct {
	Client StatTrakReporter
	UID    int
	UserID uint64
}

// Process sends the report. A 401 means the api key is misconfigured; that
// is logged distinctly and swallowed so the pool does not double-log it.
func (j StatTrakReportJob) Process(ctx context.Context) error {
	err := j.Client.ReportStatTrak(ctx, j.UID, j.UserID)
	if err == nil {
		metrics.StatTrakReports.WithLabelValues(metrics.ResultOK).Inc()
		return nil
	}

	metrics.StatTrakReports.WithLabelValues(metrics.ResultError).Inc()
	if errors.Is(err, domain.ErrUnauthorized) {
		logger.FromContext(ctx).Error("stattrak report rejected, check the configured api key",
			"target_uid", j.UID)
		return nil
	}
	return err
}
