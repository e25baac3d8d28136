package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/incidenthub/internal/metrics"
	"github.com/allisson/incidenthub/internal/user/domain"
)

// userUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type userUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewUserUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewUserUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &userUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (u *userUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	metrics.RecordOutcome(ctx, u.metrics, "users", operation, start, err)
}

func (u *userUseCaseWithMetrics) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	start := time.Now()
	user, err := u.next.CreateUser(ctx, input)
	u.record(ctx, "user_create", start, err)
	return user, err
}

func (u *userUseCaseWithMetrics) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	start := time.Now()
	user, err := u.next.Authenticate(ctx, email, password)
	u.record(ctx, "user_authenticate", start, err)
	return user, err
}

func (u *userUseCaseWithMetrics) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	start := time.Now()
	user, err := u.next.GetUserByID(ctx, id)
	u.record(ctx, "user_get", start, err)
	return user, err
}

func (u *userUseCaseWithMetrics) ListUsers(ctx context.Context) ([]*domain.User, error) {
	start := time.Now()
	users, err := u.next.ListUsers(ctx)
	u.record(ctx, "user_list", start, err)
	return users, err
}

func (u *userUseCaseWithMetrics) UpdateRole(
	ctx context.Context,
	id uuid.UUID,
	role domain.Role,
) (*domain.User, error) {
	start := time.Now()
	user, err := u.next.UpdateRole(ctx, id, role)
	u.record(ctx, "user_update_role", start, err)
	return user, err
}
