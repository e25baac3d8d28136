package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/incidenthub/internal/auth/domain"
	"github.com/allisson/incidenthub/internal/metrics"
)

// sessionUseCaseWithMetrics decorates SessionUseCase with metrics instrumentation.
type sessionUseCaseWithMetrics struct {
	next    SessionUseCase
	metrics metrics.BusinessMetrics
}

// NewSessionUseCaseWithMetrics wraps a SessionUseCase with metrics recording.
func NewSessionUseCaseWithMetrics(useCase SessionUseCase, m metrics.BusinessMetrics) SessionUseCase {
	return &sessionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (s *sessionUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	metrics.RecordOutcome(ctx, s.metrics, "auth", operation, start, err)
}

// Register records metrics for registrations.
func (s *sessionUseCaseWithMetrics) Register(
	ctx context.Context,
	input RegisterInput,
) (*authDomain.Session, error) {
	start := time.Now()
	session, err := s.next.Register(ctx, input)
	s.record(ctx, "session_register", start, err)
	return session, err
}

// Login records metrics for logins.
func (s *sessionUseCaseWithMetrics) Login(ctx context.Context, email, password string) (*authDomain.Session, error) {
	start := time.Now()
	session, err := s.next.Login(ctx, email, password)
	s.record(ctx, "session_login", start, err)
	return session, err
}

// Refresh records metrics for refresh credential rotations.
func (s *sessionUseCaseWithMetrics) Refresh(ctx context.Context, refreshToken string) (*authDomain.TokenPair, error) {
	start := time.Now()
	pair, err := s.next.Refresh(ctx, refreshToken)
	s.record(ctx, "session_refresh", start, err)
	return pair, err
}

// Logout records metrics for single credential revocations.
func (s *sessionUseCaseWithMetrics) Logout(ctx context.Context, refreshToken string) error {
	start := time.Now()
	err := s.next.Logout(ctx, refreshToken)
	s.record(ctx, "session_logout", start, err)
	return err
}

// LogoutAll records metrics for revoking every credential of a user.
func (s *sessionUseCaseWithMetrics) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	start := time.Now()
	err := s.next.LogoutAll(ctx, userID)
	s.record(ctx, "session_logout_all", start, err)
	return err
}
