// Package mocks provides testify mocks for the incident use cases and their dependencies.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/incidenthub/internal/auth/domain"
	"github.com/allisson/incidenthub/internal/incident/domain"
	"github.com/allisson/incidenthub/internal/incident/usecase"
	userDomain "github.com/allisson/incidenthub/internal/user/domain"
)

// MockIncidentRepository is a mock usecase.IncidentRepository.
type MockIncidentRepository struct {
	mock.Mock
}

func (m *MockIncidentRepository) Create(ctx context.Context, incident *domain.Incident) error {
	args := m.Called(ctx, incident)
	return args.Error(0)
}

func (m *MockIncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Incident), args.Error(1)
}

func (m *MockIncidentRepository) List(
	ctx context.Context,
	filter domain.ListFilter,
) ([]*domain.Incident, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Incident), args.Get(1).(int64), args.Error(2)
}

func (m *MockIncidentRepository) Update(ctx context.Context, incident *domain.Incident) error {
	args := m.Called(ctx, incident)
	return args.Error(0)
}

// MockCommentRepository is a mock usecase.CommentRepository.
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, incidentID, id uuid.UUID) (*domain.Comment, error) {
	args := m.Called(ctx, incidentID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByIncident(ctx context.Context, incidentID uuid.UUID) ([]*domain.Comment, error) {
	args := m.Called(ctx, incidentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUserLookup is a mock usecase.UserLookup.
type MockUserLookup struct {
	mock.Mock
}

func (m *MockUserLookup) GetUserByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

// MockIncidentUseCase is a mock usecase.IncidentUseCase.
type MockIncidentUseCase struct {
	mock.Mock
}

func (m *MockIncidentUseCase) incident(args mock.Arguments) (*domain.Incident, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Incident), args.Error(1)
}

func (m *MockIncidentUseCase) Create(
	ctx context.Context,
	actor *authDomain.Principal,
	input usecase.CreateIncidentInput,
) (*domain.Incident, error) {
	return m.incident(m.Called(ctx, actor, input))
}

func (m *MockIncidentUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	return m.incident(m.Called(ctx, id))
}

func (m *MockIncidentUseCase) List(ctx context.Context, input usecase.ListIncidentsInput) (*usecase.IncidentPage, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.IncidentPage), args.Error(1)
}

func (m *MockIncidentUseCase) Update(
	ctx context.Context,
	id uuid.UUID,
	input usecase.UpdateIncidentInput,
) (*domain.Incident, error) {
	return m.incident(m.Called(ctx, id, input))
}

func (m *MockIncidentUseCase) ChangeStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.Status,
) (*domain.Incident, error) {
	return m.incident(m.Called(ctx, id, status))
}

func (m *MockIncidentUseCase) Close(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	return m.incident(m.Called(ctx, id))
}

// MockCommentUseCase is a mock usecase.CommentUseCase.
type MockCommentUseCase struct {
	mock.Mock
}

func (m *MockCommentUseCase) comment(args mock.Arguments) (*domain.Comment, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *MockCommentUseCase) List(ctx context.Context, incidentID uuid.UUID) ([]*domain.Comment, error) {
	args := m.Called(ctx, incidentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Comment), args.Error(1)
}

func (m *MockCommentUseCase) Add(
	ctx context.Context,
	actor *authDomain.Principal,
	incidentID uuid.UUID,
	content string,
) (*domain.Comment, error) {
	return m.comment(m.Called(ctx, actor, incidentID, content))
}

func (m *MockCommentUseCase) Edit(
	ctx context.Context,
	actor *authDomain.Principal,
	incidentID, commentID uuid.UUID,
	content string,
) (*domain.Comment, error) {
	return m.comment(m.Called(ctx, actor, incidentID, commentID, content))
}

func (m *MockCommentUseCase) Delete(
	ctx context.Context,
	actor *authDomain.Principal,
	incidentID, commentID uuid.UUID,
) error {
	args := m.Called(ctx, actor, incidentID, commentID)
	return args.Error(0)
}
