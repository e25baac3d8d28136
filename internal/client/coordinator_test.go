package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionState(t *testing.T) {
	session := NewSessionState()

	_, ok := session.Current()
	assert.False(t, ok)

	session.Set(Credentials{AccessToken: "a1", RefreshToken: "r1"})
	creds, ok := session.Current()
	require.True(t, ok)
	assert.Equal(t, "a1", creds.AccessToken)

	session.Clear()
	_, ok = session.Current()
	assert.False(t, ok)
}

func TestRefreshCoordinator_SingleFlight(t *testing.T) {
	session := NewSessionState()
	session.Set(Credentials{AccessToken: "a1", RefreshToken: "r1"})

	const callers = 20
	release := make(chan struct{})
	var calls atomic.Int32
	coordinator := NewRefreshCoordinator(session, func(ctx context.Context, refreshToken string) (Credentials, error) {
		calls.Add(1)
		assert.Equal(t, "r1", refreshToken)
		<-release
		return Credentials{AccessToken: "a2", RefreshToken: "r2"}, nil
	}, time.Second)

	var wg sync.WaitGroup
	results := make([]Credentials, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = coordinator.Refresh(context.Background(), "a1")
		}(i)
	}

	require.Eventually(t, func() bool { return coordinator.Pending() == callers }, time.Second, 5*time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, coordinator.Exchanges())
	assert.Equal(t, 0, coordinator.Pending())
	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, "a2", results[i].AccessToken)
	}

	creds, ok := session.Current()
	require.True(t, ok)
	assert.Equal(t, "r2", creds.RefreshToken)
}

func TestRefreshCoordinator_Failure(t *testing.T) {
	session := NewSessionState()
	session.Set(Credentials{AccessToken: "a1", RefreshToken: "r1"})

	release := make(chan struct{})
	exchangeErr := errors.New("refresh token is invalid")
	coordinator := NewRefreshCoordinator(session, func(ctx context.Context, refreshToken string) (Credentials, error) {
		<-release
		return Credentials{}, exchangeErr
	}, time.Second)

	var ended atomic.Int32
	coordinator.OnSessionEnded(func(cause error) {
		ended.Add(1)
		assert.ErrorIs(t, cause, exchangeErr)
	})

	const callers = 5
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = coordinator.Refresh(context.Background(), "a1")
		}(i)
	}

	require.Eventually(t, func() bool { return coordinator.Pending() == callers }, time.Second, 5*time.Millisecond)
	close(release)
	wg.Wait()

	for _, err := range errs {
		assert.ErrorIs(t, err, ErrSessionEnded)
	}
	require.Eventually(t, func() bool { return ended.Load() == 1 }, time.Second, 5*time.Millisecond)
	_, ok := session.Current()
	assert.False(t, ok)

	_, err := coordinator.Refresh(context.Background(), "a1")
	assert.ErrorIs(t, err, ErrSessionEnded)
	assert.Equal(t, 1, coordinator.Exchanges())
}

func TestRefreshCoordinator_Timeout(t *testing.T) {
	session := NewSessionState()
	session.Set(Credentials{AccessToken: "a1", RefreshToken: "r1"})

	coordinator := NewRefreshCoordinator(session, func(ctx context.Context, refreshToken string) (Credentials, error) {
		<-ctx.Done()
		return Credentials{}, ctx.Err()
	}, 20*time.Millisecond)

	_, err := coordinator.Refresh(context.Background(), "a1")
	assert.ErrorIs(t, err, ErrSessionEnded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	_, ok := session.Current()
	assert.False(t, ok)
}

func TestRefreshCoordinator_StaleTokenAlreadyReplaced(t *testing.T) {
	session := NewSessionState()
	session.Set(Credentials{AccessToken: "a2", RefreshToken: "r2"})

	coordinator := NewRefreshCoordinator(session, func(ctx context.Context, refreshToken string) (Credentials, error) {
		t.Fatal("no exchange expected")
		return Credentials{}, nil
	}, time.Second)

	creds, err := coordinator.Refresh(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "a2", creds.AccessToken)
	assert.Equal(t, 0, coordinator.Exchanges())
}

func TestRefreshCoordinator_EmptySession(t *testing.T) {
	coordinator := NewRefreshCoordinator(NewSessionState(), nil, 0)

	_, err := coordinator.Refresh(context.Background(), "a1")
	assert.ErrorIs(t, err, ErrSessionEnded)
}

func TestRefreshCoordinator_CallerCancellation(t *testing.T) {
	session := NewSessionState()
	session.Set(Credentials{AccessToken: "a1", RefreshToken: "r1"})

	release := make(chan struct{})
	coordinator := NewRefreshCoordinator(session, func(ctx context.Context, refreshToken string) (Credentials, error) {
		<-release
		return Credentials{AccessToken: "a2", RefreshToken: "r2"}, nil
	}, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := coordinator.Refresh(ctx, "a1")
	assert.ErrorIs(t, err, context.Canceled)

	// The exchange keeps running for the next caller.
	done := make(chan Credentials)
	go func() {
		creds, _ := coordinator.Refresh(context.Background(), "a1")
		done <- creds
	}()
	require.Eventually(t, func() bool { return coordinator.Pending() == 2 }, time.Second, 5*time.Millisecond)
	close(release)

	assert.Equal(t, "a2", (<-done).AccessToken)
	assert.Equal(t, 1, coordinator.Exchanges())
}
