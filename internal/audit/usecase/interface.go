// Package usecase records, lists, verifies and prunes audit records.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/incidenthub/internal/audit/domain"
)

// AuditRepository persists audit records.
type AuditRepository interface {
	Create(ctx context.Context, record *domain.AuditRecord) error
	List(ctx context.Context, filter domain.ListFilter) ([]*domain.AuditRecord, int64, error)
	ListCreatedBetween(ctx context.Context, start, end time.Time) ([]*domain.AuditRecord, error)
	DeleteOlderThan(ctx context.Context, olderThan time.Time, dryRun bool) (int64, error)
}

// RecordInput describes a change that has already been committed.
type RecordInput struct {
	Action     domain.Action
	EntityType string
	EntityID   uuid.UUID
	UserID     uuid.UUID
	Metadata   map[string]any
}

// Recorder writes audit records off the request path.
type Recorder interface {
	// Record schedules the write and returns immediately. Failures are logged, never returned.
	Record(ctx context.Context, input RecordInput)

	// Wait blocks until every scheduled write has finished or ctx is done.
	Wait(ctx context.Context) error
}

// ListAuditInput selects one page of audit records.
type ListAuditInput struct {
	EntityType string
	UserID     *uuid.UUID
	Page       int
	Limit      int
}

// AuditPage is one page of audit records plus the total match count.
type AuditPage struct {
	Records []*domain.AuditRecord
	Total   int64
	Page    int
	Limit   int
}

// VerificationReport summarizes a signature check over a time range.
type VerificationReport struct {
	TotalChecked int64
	ValidCount   int64
	InvalidCount int64
	InvalidIDs   []uuid.UUID
}

// Passed reports whether every checked record carried a valid signature.
func (r *VerificationReport) Passed() bool {
	return r.InvalidCount == 0
}

// AuditUseCase serves the admin listing and the maintenance commands.
type AuditUseCase interface {
	List(ctx context.Context, input ListAuditInput) (*AuditPage, error)

	// VerifyBatch recomputes the signature of every record created in [start, end].
	VerifyBatch(ctx context.Context, start, end time.Time) (*VerificationReport, error)

	// DeleteOlderThan removes records older than days. With dryRun it only counts them.
	DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error)
}
