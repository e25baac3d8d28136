package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/incidenthub/internal/audit/domain"
	"github.com/allisson/incidenthub/internal/audit/service"
	"github.com/allisson/incidenthub/internal/metrics"
)

type asyncRecorder struct {
	repo    AuditRepository
	signer  service.Signer
	timeout time.Duration
	logger  *slog.Logger
	metrics metrics.BusinessMetrics
	wg      sync.WaitGroup
}

// NewRecorder creates a Recorder that signs and stores each record in its own goroutine,
// bounded by timeout.
func NewRecorder(
	repo AuditRepository,
	signer service.Signer,
	timeout time.Duration,
	logger *slog.Logger,
	m metrics.BusinessMetrics,
) Recorder {
	return &asyncRecorder{
		repo:    repo,
		signer:  signer,
		timeout: timeout,
		logger:  logger,
		metrics: m,
	}
}

func (r *asyncRecorder) Record(ctx context.Context, input RecordInput) {
	record := &domain.AuditRecord{
		ID:         uuid.Must(uuid.NewV7()),
		Action:     input.Action,
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		UserID:     input.UserID,
		Metadata:   input.Metadata,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}

	// The request context is cancelled once the response is written.
	ctx = context.WithoutCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		start := time.Now()
		err := r.write(ctx, record)

		status := "success"
		if err != nil {
			status = "error"
			r.logger.Error("failed to write audit record",
				slog.String("action", string(record.Action)),
				slog.String("entity_type", record.EntityType),
				slog.String("entity_id", record.EntityID.String()),
				slog.Any("error", err),
			)
		}
		r.metrics.RecordOperation(ctx, "audit", "audit_record", status)
		r.metrics.RecordDuration(ctx, "audit", "audit_record", time.Since(start), status)
	}()
}

func (r *asyncRecorder) write(ctx context.Context, record *domain.AuditRecord) error {
	signature, err := r.signer.Sign(record)
	if err != nil {
		return err
	}
	record.Signature = signature

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.repo.Create(ctx, record)
}

func (r *asyncRecorder) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
