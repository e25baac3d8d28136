package realtime

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/incidenthub/internal/database"
	"github.com/allisson/incidenthub/internal/testutil"
)

// recordingBroadcaster remembers the order of broadcasts relative to other steps.
type recordingBroadcaster struct {
	steps *[]string
	facts []Fact
	err   error
}

func (b *recordingBroadcaster) Broadcast(ctx context.Context, fact Fact) error {
	*b.steps = append(*b.steps, "broadcast")
	b.facts = append(b.facts, fact)
	return b.err
}

func TestMutationCoordinator_CommitThenBroadcast(t *testing.T) {

	db := testutil.SetupSQLiteDB(t)
	var steps []string
	broadcaster := &recordingBroadcaster{steps: &steps}
	coordinator := NewMutationCoordinator(database.NewTxManager(db), broadcaster, discardLogger(), nil)

	userID := uuid.Must(uuid.NewV7())
	err := coordinator.Execute(context.Background(),
		func(ctx context.Context) error {
			steps = append(steps, "mutate")
			assert.True(t, database.InTx(ctx))
			_, err := database.GetTx(ctx, db).ExecContext(ctx,
				`INSERT INTO users (id, name, email, password, role, created_at, updated_at)
				 VALUES ($1, 'Ada', 'ada@example.com', 'x', 'VIEWER', '2026-01-01 00:00:00', '2026-01-01 00:00:00')`,
				userID)
			return err
		},
		func() Fact {
			steps = append(steps, "fact")
			// The row is visible outside the transaction once the fact is built.
			var count int
			require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users WHERE id = $1`, userID).Scan(&count))
			assert.Equal(t, 1, count)
			return NewFact(EventUserRoleUpdated, EntityUser, userID, nil)
		},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"mutate", "fact", "broadcast"}, steps)
	require.Len(t, broadcaster.facts, 1)
	assert.Equal(t, userID.String(), broadcaster.facts[0].EntityID)
}

func TestMutationCoordinator_FailedMutationBuildsNoFact(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	var steps []string
	broadcaster := &recordingBroadcaster{steps: &steps}
	coordinator := NewMutationCoordinator(database.NewTxManager(db), broadcaster, discardLogger(), nil)

	boom := errors.New("constraint violated")
	err := coordinator.Execute(context.Background(),
		func(ctx context.Context) error { return boom },
		func() Fact {
			t.Fatal("fact must not be built for a failed mutation")
			return Fact{}
		},
	)

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, broadcaster.facts)
}

func TestMutationCoordinator_BroadcastFailureIsNotReturned(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	var steps []string
	broadcaster := &recordingBroadcaster{steps: &steps, err: errors.New("bus down")}
	coordinator := NewMutationCoordinator(database.NewTxManager(db), broadcaster, discardLogger(), nil)

	err := coordinator.Execute(context.Background(),
		func(ctx context.Context) error { return nil },
		func() Fact { return NewFact(EventIncidentCreated, EntityIncident, uuid.Must(uuid.NewV7()), nil) },
	)

	assert.NoError(t, err)
	assert.Len(t, broadcaster.facts, 1)
}

func TestMutationCoordinator_RejectsNestedTransaction(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	txManager := database.NewTxManager(db)
	var steps []string
	coordinator := NewMutationCoordinator(txManager, &recordingBroadcaster{steps: &steps}, discardLogger(), nil)

	err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
		return coordinator.Execute(ctx, func(ctx context.Context) error { return nil }, nil)
	})

	assert.ErrorIs(t, err, ErrNestedMutation)
	assert.Empty(t, steps)
}

func TestMutationCoordinator_DeliversThroughHub(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	hub := NewHub(4, discardLogger(), nil)
	sub := hub.Subscribe("role:VIEWER")
	coordinator := NewMutationCoordinator(database.NewTxManager(db), hub, discardLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.Must(uuid.NewV7())
	err := coordinator.Execute(ctx,
		func(ctx context.Context) error { return nil },
		func() Fact {
			cancel()
			return NewFact(EventIncidentCreated, EntityIncident, id, nil)
		},
	)
	require.NoError(t, err)

	f := receive(t, sub)
	assert.Equal(t, id.String(), f.EntityID)
}
