package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/incidenthub/internal/audit/domain"
	"github.com/allisson/incidenthub/internal/audit/service"

	apperrors "github.com/allisson/incidenthub/internal/errors"
)

const (
	defaultAuditPage  = 1
	defaultAuditLimit = 50
)

type auditUseCase struct {
	repo   AuditRepository
	signer service.Signer
}

// NewAuditUseCase creates a new AuditUseCase.
func NewAuditUseCase(repo AuditRepository, signer service.Signer) AuditUseCase {
	return &auditUseCase{repo: repo, signer: signer}
}

func (a *auditUseCase) List(ctx context.Context, input ListAuditInput) (*AuditPage, error) {
	if input.Page < 1 {
		input.Page = defaultAuditPage
	}
	if input.Limit < 1 {
		input.Limit = defaultAuditLimit
	}

	records, total, err := a.repo.List(ctx, domain.ListFilter{
		EntityType: input.EntityType,
		UserID:     input.UserID,
		Offset:     (input.Page - 1) * input.Limit,
		Limit:      input.Limit,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit records")
	}

	return &AuditPage{Records: records, Total: total, Page: input.Page, Limit: input.Limit}, nil
}

func (a *auditUseCase) VerifyBatch(ctx context.Context, start, end time.Time) (*VerificationReport, error) {
	records, err := a.repo.ListCreatedBetween(ctx, start.UTC(), end.UTC())
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load audit records")
	}

	report := &VerificationReport{InvalidIDs: make([]uuid.UUID, 0)}
	for _, record := range records {
		report.TotalChecked++
		if err := a.signer.Verify(record); err != nil {
			report.InvalidCount++
			report.InvalidIDs = append(report.InvalidIDs, record.ID)
			continue
		}
		report.ValidCount++
	}
	return report, nil
}

func (a *auditUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, fmt.Sprintf("days must not be negative, got %d", days))
	}

	olderThan := time.Now().UTC().AddDate(0, 0, -days)
	count, err := a.repo.DeleteOlderThan(ctx, olderThan, dryRun)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit records")
	}
	return count, nil
}
