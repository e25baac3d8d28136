// Package mocks provides testify mocks for the audit use cases and their dependencies.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/incidenthub/internal/audit/domain"
	"github.com/allisson/incidenthub/internal/audit/usecase"
)

// MockAuditRepository is a mock usecase.AuditRepository.
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, record *domain.AuditRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAuditRepository) List(
	ctx context.Context,
	filter domain.ListFilter,
) ([]*domain.AuditRecord, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.AuditRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockAuditRepository) ListCreatedBetween(
	ctx context.Context,
	start, end time.Time,
) ([]*domain.AuditRecord, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AuditRecord), args.Error(1)
}

func (m *MockAuditRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	args := m.Called(ctx, olderThan, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

// MockRecorder is a mock usecase.Recorder.
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Record(ctx context.Context, input usecase.RecordInput) {
	m.Called(ctx, input)
}

func (m *MockRecorder) Wait(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockAuditUseCase is a mock usecase.AuditUseCase.
type MockAuditUseCase struct {
	mock.Mock
}

func (m *MockAuditUseCase) List(ctx context.Context, input usecase.ListAuditInput) (*usecase.AuditPage, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.AuditPage), args.Error(1)
}

func (m *MockAuditUseCase) VerifyBatch(
	ctx context.Context,
	start, end time.Time,
) (*usecase.VerificationReport, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.VerificationReport), args.Error(1)
}

func (m *MockAuditUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	args := m.Called(ctx, days, dryRun)
	return args.Get(0).(int64), args.Error(1)
}
