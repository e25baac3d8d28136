package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/incidenthub/internal/auth/domain"
	authRepository "github.com/allisson/incidenthub/internal/auth/repository"
	authService "github.com/allisson/incidenthub/internal/auth/service"
	"github.com/allisson/incidenthub/internal/auth/usecase"
	"github.com/allisson/incidenthub/internal/auth/usecase/mocks"
	"github.com/allisson/incidenthub/internal/database"
	"github.com/allisson/incidenthub/internal/testutil"
)

func newTestTokenService(t *testing.T) authService.TokenService {
	t.Helper()
	keyring, err := authService.NewKeyring(
		[]byte("access-key-access-key-access-key-0123"),
		[]byte("refresh-key-refresh-key-refresh-key-0123"),
	)
	require.NoError(t, err)
	return authService.NewTokenService(keyring, 15*time.Minute, 7*24*time.Hour)
}

func newSQLiteRefreshStore(t *testing.T) (usecase.RefreshStore, uuid.UUID) {
	t.Helper()
	db := testutil.SetupSQLiteDB(t)
	userID := testutil.CreateTestUser(t, db, "viewer@example.com", "VIEWER")
	store := usecase.NewRefreshStore(
		database.NewTxManager(db),
		authRepository.NewPostgreSQLRefreshTokenRepository(db),
		newTestTokenService(t),
	)
	return store, userID
}

func TestRefreshStore_Rotate(t *testing.T) {
	store, userID := newSQLiteRefreshStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, userID)
	require.NoError(t, err)

	second, err := store.Rotate(ctx, first.Token)
	require.NoError(t, err)
	assert.Equal(t, userID, second.UserID)
	assert.NotEqual(t, first.Token, second.Token)

	t.Run("consumed credential is rejected", func(t *testing.T) {
		_, err := store.Rotate(ctx, first.Token)
		assert.ErrorIs(t, err, authDomain.ErrRefreshTokenInvalid)
	})

	t.Run("chain continues from the successor", func(t *testing.T) {
		third, err := store.Rotate(ctx, second.Token)
		require.NoError(t, err)
		assert.Equal(t, userID, third.UserID)

		_, err = store.Rotate(ctx, second.Token)
		assert.ErrorIs(t, err, authDomain.ErrRefreshTokenInvalid)
	})

	t.Run("malformed credential is rejected", func(t *testing.T) {
		_, err := store.Rotate(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, authDomain.ErrRefreshTokenInvalid)
	})
}

func TestRefreshStore_Rotate_Concurrent(t *testing.T) {
	store, userID := newSQLiteRefreshStore(t)
	ctx := context.Background()

	cred, err := store.Create(ctx, userID)
	require.NoError(t, err)

	const callers = 10
	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Rotate(ctx, cred.Token)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, authDomain.ErrRefreshTokenInvalid)
	}
	assert.Equal(t, 1, successes)
}

func TestRefreshStore_Revoke(t *testing.T) {
	store, userID := newSQLiteRefreshStore(t)
	ctx := context.Background()

	a, err := store.Create(ctx, userID)
	require.NoError(t, err)
	b, err := store.Create(ctx, userID)
	require.NoError(t, err)
	c, err := store.Create(ctx, userID)
	require.NoError(t, err)

	require.NoError(t, store.RevokeOne(ctx, a.Token))
	require.NoError(t, store.RevokeOne(ctx, a.Token))
	require.NoError(t, store.RevokeOne(ctx, ""))

	_, err = store.Rotate(ctx, a.Token)
	assert.ErrorIs(t, err, authDomain.ErrRefreshTokenInvalid)

	count, err := store.RevokeAll(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	for _, cred := range []*authDomain.RefreshCredential{b, c} {
		_, err := store.Rotate(ctx, cred.Token)
		assert.ErrorIs(t, err, authDomain.ErrRefreshTokenInvalid)
	}
}

func TestRefreshStore_Rotate_ExpiredRecord(t *testing.T) {
	tokenService := newTestTokenService(t)
	repo := &mocks.MockRefreshTokenRepository{}
	store := usecase.NewRefreshStore(passthroughTx{}, repo, tokenService)

	userID := uuid.Must(uuid.NewV7())
	issued, err := tokenService.IssueRefresh(userID)
	require.NoError(t, err)

	repo.On("Consume", mock.Anything, tokenService.HashToken(issued.Token)).
		Return(&authDomain.RefreshToken{
			UserID:    userID,
			ExpiresAt: time.Now().UTC().Add(-time.Minute),
		}, nil).
		Once()

	_, err = store.Rotate(context.Background(), issued.Token)
	assert.ErrorIs(t, err, authDomain.ErrRefreshTokenInvalid)
	repo.AssertExpectations(t)
}

func TestRefreshStore_Rotate_OtherOwner(t *testing.T) {
	tokenService := newTestTokenService(t)
	repo := &mocks.MockRefreshTokenRepository{}
	store := usecase.NewRefreshStore(passthroughTx{}, repo, tokenService)

	issued, err := tokenService.IssueRefresh(uuid.Must(uuid.NewV7()))
	require.NoError(t, err)

	repo.On("Consume", mock.Anything, mock.Anything).
		Return(&authDomain.RefreshToken{
			UserID:    uuid.Must(uuid.NewV7()),
			ExpiresAt: time.Now().UTC().Add(time.Hour),
		}, nil).
		Once()

	_, err = store.Rotate(context.Background(), issued.Token)
	assert.ErrorIs(t, err, authDomain.ErrRefreshTokenInvalid)
}

func TestRefreshStore_CleanupExpired(t *testing.T) {
	repo := &mocks.MockRefreshTokenRepository{}
	store := usecase.NewRefreshStore(passthroughTx{}, repo, newTestTokenService(t))
	ctx := context.Background()

	repo.On("DeleteExpired", ctx, mock.MatchedBy(func(olderThan time.Time) bool {
		return time.Since(olderThan) > 29*24*time.Hour
	}), true).Return(int64(4), nil).Once()

	count, err := store.CleanupExpired(ctx, 30, true)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	_, err = store.CleanupExpired(ctx, -1, false)
	assert.Error(t, err)

	repo.AssertExpectations(t)
}

// passthroughTx runs fn without a transaction.
type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
