package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditUseCase "github.com/allisson/incidenthub/internal/audit/usecase"
	auditMocks "github.com/allisson/incidenthub/internal/audit/usecase/mocks"
)

func TestRunVerifyAuditLogs(t *testing.T) {
	ctx := context.Background()
	anyTime := mock.AnythingOfType("time.Time")

	t.Run("passed-text", func(t *testing.T) {
		useCase := &auditMocks.MockAuditUseCase{}
		useCase.On("VerifyBatch", ctx, anyTime, anyTime).
			Return(&auditUseCase.VerificationReport{TotalChecked: 4, ValidCount: 4}, nil)

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, useCase, discardLogger(), &out, "2026-01-01", "2026-01-02", "text")

		require.NoError(t, err)
		assert.Contains(t, out.String(), "Total Checked:  4")
		assert.Contains(t, out.String(), "Status: PASSED")
	})

	t.Run("failed-json", func(t *testing.T) {
		tampered := uuid.Must(uuid.NewV7())
		useCase := &auditMocks.MockAuditUseCase{}
		useCase.On("VerifyBatch", ctx, anyTime, anyTime).Return(&auditUseCase.VerificationReport{
			TotalChecked: 3,
			ValidCount:   2,
			InvalidCount: 1,
			InvalidIDs:   []uuid.UUID{tampered},
		}, nil)

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, useCase, discardLogger(), &out, "2026-01-01", "2026-01-02 12:00:00", "json")

		require.ErrorContains(t, err, "integrity check failed: 1 invalid signature(s)")

		var result map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, false, result["passed"])
		assert.Equal(t, []any{tampered.String()}, result["invalid_logs"])
	})

	t.Run("empty-range", func(t *testing.T) {
		useCase := &auditMocks.MockAuditUseCase{}
		useCase.On("VerifyBatch", ctx, anyTime, anyTime).Return(&auditUseCase.VerificationReport{}, nil)

		var out bytes.Buffer
		require.NoError(t, RunVerifyAuditLogs(ctx, useCase, discardLogger(), &out, "2026-01-01", "2026-01-02", "text"))
		assert.Contains(t, out.String(), "No logs found")
	})

	t.Run("invalid-dates", func(t *testing.T) {
		useCase := &auditMocks.MockAuditUseCase{}
		var out bytes.Buffer

		err := RunVerifyAuditLogs(ctx, useCase, discardLogger(), &out, "yesterday", "2026-01-02", "text")
		require.ErrorContains(t, err, "invalid start date")

		err = RunVerifyAuditLogs(ctx, useCase, discardLogger(), &out, "2026-01-02", "2026-01-01", "text")
		require.ErrorContains(t, err, "end date must be after start date")
	})
}

func TestParseDate(t *testing.T) {
	got, err := parseDate("2026-03-04 05:06:07")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC), got)

	got, err = parseDate("2026-03-04")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), got)
}
