package realtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/allisson/incidenthub/internal/database"
	apperrors "github.com/allisson/incidenthub/internal/errors"
	"github.com/allisson/incidenthub/internal/metrics"
)

// ErrNestedMutation is returned when Execute is called with a transaction already
// open in ctx: the outer caller, not Execute, would own the commit.
var ErrNestedMutation = apperrors.New("mutation must not run inside an open transaction")

// MutationCoordinator commits a mutation and only then builds and broadcasts its fact.
type MutationCoordinator struct {
	txManager   database.TxManager
	broadcaster Broadcaster
	logger      *slog.Logger
	metrics     metrics.RealtimeMetrics
}

// NewMutationCoordinator creates a MutationCoordinator.
func NewMutationCoordinator(
	txManager database.TxManager,
	broadcaster Broadcaster,
	logger *slog.Logger,
	m metrics.RealtimeMetrics,
) *MutationCoordinator {
	if m == nil {
		m = metrics.NewNoOpRealtimeMetrics()
	}
	return &MutationCoordinator{
		txManager:   txManager,
		broadcaster: broadcaster,
		logger:      logger,
		metrics:     m,
	}
}

// Execute runs mutate in a transaction. When the transaction commits, fact is
// called and its result broadcast; a failed mutation never builds a fact.
// Broadcast errors are logged and do not fail the mutation.
func (c *MutationCoordinator) Execute(
	ctx context.Context,
	mutate func(ctx context.Context) error,
	fact func() Fact,
) error {
	if database.InTx(ctx) {
		return ErrNestedMutation
	}

	if err := c.txManager.WithTx(ctx, mutate); err != nil {
		return err
	}

	if fact == nil {
		return nil
	}

	f := fact()
	if f.OccurredAt.IsZero() {
		f.OccurredAt = time.Now().UTC()
	}

	// The request may already be finishing; the committed change is announced regardless.
	if err := c.broadcaster.Broadcast(context.WithoutCancel(ctx), f); err != nil {
		c.metrics.RecordFact(ctx, f.Event, "broadcast_error")
		if c.logger != nil {
			c.logger.Error("failed to broadcast fact",
				slog.String("event", f.Event),
				slog.String("entity_id", f.EntityID),
				slog.Any("error", err),
			)
		}
	}
	return nil
}
