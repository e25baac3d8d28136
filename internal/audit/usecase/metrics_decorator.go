package usecase

import (
	"context"
	"time"

	"github.com/allisson/incidenthub/internal/metrics"
)

type auditUseCaseWithMetrics struct {
	next    AuditUseCase
	metrics metrics.BusinessMetrics
}

// NewAuditUseCaseWithMetrics wraps an AuditUseCase with metrics recording.
func NewAuditUseCaseWithMetrics(useCase AuditUseCase, m metrics.BusinessMetrics) AuditUseCase {
	return &auditUseCaseWithMetrics{next: useCase, metrics: m}
}

func (a *auditUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	metrics.RecordOutcome(ctx, a.metrics, "audit", operation, start, err)
}

func (a *auditUseCaseWithMetrics) List(ctx context.Context, input ListAuditInput) (*AuditPage, error) {
	start := time.Now()
	page, err := a.next.List(ctx, input)
	a.record(ctx, "audit_list", start, err)
	return page, err
}

func (a *auditUseCaseWithMetrics) VerifyBatch(
	ctx context.Context,
	startTime, endTime time.Time,
) (*VerificationReport, error) {
	start := time.Now()
	report, err := a.next.VerifyBatch(ctx, startTime, endTime)
	a.record(ctx, "audit_verify_batch", start, err)
	return report, err
}

func (a *auditUseCaseWithMetrics) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	start := time.Now()
	count, err := a.next.DeleteOlderThan(ctx, days, dryRun)
	a.record(ctx, "audit_delete", start, err)
	return count, err
}
