package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/incidenthub/internal/auth/domain"
	"github.com/allisson/incidenthub/internal/incident/domain"
	"github.com/allisson/incidenthub/internal/metrics"
)

type incidentUseCaseWithMetrics struct {
	next    IncidentUseCase
	metrics metrics.BusinessMetrics
}

// NewIncidentUseCaseWithMetrics wraps an IncidentUseCase with metrics recording.
func NewIncidentUseCaseWithMetrics(useCase IncidentUseCase, m metrics.BusinessMetrics) IncidentUseCase {
	return &incidentUseCaseWithMetrics{next: useCase, metrics: m}
}

func (i *incidentUseCaseWithMetrics) Create(
	ctx context.Context,
	actor *authDomain.Principal,
	input CreateIncidentInput,
) (*domain.Incident, error) {
	start := time.Now()
	incident, err := i.next.Create(ctx, actor, input)
	metrics.RecordOutcome(ctx, i.metrics, "incidents", "incident_create", start, err)
	return incident, err
}

func (i *incidentUseCaseWithMetrics) Get(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	start := time.Now()
	incident, err := i.next.Get(ctx, id)
	metrics.RecordOutcome(ctx, i.metrics, "incidents", "incident_get", start, err)
	return incident, err
}

func (i *incidentUseCaseWithMetrics) List(ctx context.Context, input ListIncidentsInput) (*IncidentPage, error) {
	start := time.Now()
	page, err := i.next.List(ctx, input)
	metrics.RecordOutcome(ctx, i.metrics, "incidents", "incident_list", start, err)
	return page, err
}

func (i *incidentUseCaseWithMetrics) Update(
	ctx context.Context,
	id uuid.UUID,
	input UpdateIncidentInput,
) (*domain.Incident, error) {
	start := time.Now()
	incident, err := i.next.Update(ctx, id, input)
	metrics.RecordOutcome(ctx, i.metrics, "incidents", "incident_update", start, err)
	return incident, err
}

func (i *incidentUseCaseWithMetrics) ChangeStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.Status,
) (*domain.Incident, error) {
	start := time.Now()
	incident, err := i.next.ChangeStatus(ctx, id, status)
	metrics.RecordOutcome(ctx, i.metrics, "incidents", "incident_change_status", start, err)
	return incident, err
}

func (i *incidentUseCaseWithMetrics) Close(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	start := time.Now()
	incident, err := i.next.Close(ctx, id)
	metrics.RecordOutcome(ctx, i.metrics, "incidents", "incident_close", start, err)
	return incident, err
}

type commentUseCaseWithMetrics struct {
	next    CommentUseCase
	metrics metrics.BusinessMetrics
}

// NewCommentUseCaseWithMetrics wraps a CommentUseCase with metrics recording.
func NewCommentUseCaseWithMetrics(useCase CommentUseCase, m metrics.BusinessMetrics) CommentUseCase {
	return &commentUseCaseWithMetrics{next: useCase, metrics: m}
}

func (c *commentUseCaseWithMetrics) List(ctx context.Context, incidentID uuid.UUID) ([]*domain.Comment, error) {
	start := time.Now()
	comments, err := c.next.List(ctx, incidentID)
	metrics.RecordOutcome(ctx, c.metrics, "comments", "comment_list", start, err)
	return comments, err
}

func (c *commentUseCaseWithMetrics) Add(
	ctx context.Context,
	actor *authDomain.Principal,
	incidentID uuid.UUID,
	content string,
) (*domain.Comment, error) {
	start := time.Now()
	comment, err := c.next.Add(ctx, actor, incidentID, content)
	metrics.RecordOutcome(ctx, c.metrics, "comments", "comment_add", start, err)
	return comment, err
}

func (c *commentUseCaseWithMetrics) Edit(
	ctx context.Context,
	actor *authDomain.Principal,
	incidentID, commentID uuid.UUID,
	content string,
) (*domain.Comment, error) {
	start := time.Now()
	comment, err := c.next.Edit(ctx, actor, incidentID, commentID, content)
	metrics.RecordOutcome(ctx, c.metrics, "comments", "comment_edit", start, err)
	return comment, err
}

func (c *commentUseCaseWithMetrics) Delete(
	ctx context.Context,
	actor *authDomain.Principal,
	incidentID, commentID uuid.UUID,
) error {
	start := time.Now()
	err := c.next.Delete(ctx, actor, incidentID, commentID)
	metrics.RecordOutcome(ctx, c.metrics, "comments", "comment_delete", start, err)
	return err
}
