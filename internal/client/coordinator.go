package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrSessionEnded is returned to every caller once a refresh exchange fails or the
// session is empty. The client must log in again.
var ErrSessionEnded = errors.New("session ended")

// DefaultRefreshTimeout bounds one refresh exchange.
const DefaultRefreshTimeout = 10 * time.Second

// ExchangeFunc trades a refresh credential for a new pair.
type ExchangeFunc func(ctx context.Context, refreshToken string) (Credentials, error)

type refreshOutcome struct {
	creds Credentials
	err   error
}

// RefreshCoordinator performs at most one refresh exchange at a time. Callers that
// arrive while an exchange is in flight wait for its outcome instead of starting
// another one.
type RefreshCoordinator struct {
	session  *SessionState
	exchange ExchangeFunc
	timeout  time.Duration

	mu         sync.Mutex
	refreshing bool
	waiters    []chan refreshOutcome
	exchanges  int
	onEnded    func(error)
}

// NewRefreshCoordinator creates a coordinator that owns session. A non-positive
// timeout selects DefaultRefreshTimeout.
func NewRefreshCoordinator(session *SessionState, exchange ExchangeFunc, timeout time.Duration) *RefreshCoordinator {
	if timeout <= 0 {
		timeout = DefaultRefreshTimeout
	}
	return &RefreshCoordinator{session: session, exchange: exchange, timeout: timeout}
}

// OnSessionEnded registers fn to run once each time a failed exchange ends the session.
func (c *RefreshCoordinator) OnSessionEnded(fn func(cause error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEnded = fn
}

// Refresh returns credentials newer than staleAccess. When another caller already
// replaced staleAccess, the current credentials are returned without an exchange.
// Otherwise the caller joins the pending exchange, starting one if none is running.
func (c *RefreshCoordinator) Refresh(ctx context.Context, staleAccess string) (Credentials, error) {
	c.mu.Lock()
	current, ok := c.session.Current()
	if !ok {
		c.mu.Unlock()
		return Credentials{}, ErrSessionEnded
	}
	if current.AccessToken != staleAccess && !c.refreshing {
		c.mu.Unlock()
		return current, nil
	}

	wait := make(chan refreshOutcome, 1)
	c.waiters = append(c.waiters, wait)
	if !c.refreshing {
		c.refreshing = true
		c.exchanges++
		go c.run(current.RefreshToken)
	}
	c.mu.Unlock()

	select {
	case out := <-wait:
		return out.creds, out.err
	case <-ctx.Done():
		return Credentials{}, ctx.Err()
	}
}

// Pending returns the number of callers waiting on the in-flight exchange.
func (c *RefreshCoordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}

// Exchanges returns how many refresh exchanges have been started.
func (c *RefreshCoordinator) Exchanges() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exchanges
}

func (c *RefreshCoordinator) run(refreshToken string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	creds, err := c.exchange(ctx, refreshToken)
	cancel()

	c.mu.Lock()
	out := refreshOutcome{creds: creds}
	if err != nil {
		c.session.Clear()
		out = refreshOutcome{err: fmt.Errorf("%w: %w", ErrSessionEnded, err)}
	} else {
		c.session.Set(creds)
	}
	waiters := c.waiters
	c.waiters = nil
	c.refreshing = false
	onEnded := c.onEnded
	c.mu.Unlock()

	// The session is written before any waiter resumes.
	for _, wait := range waiters {
		wait <- out
	}
	if err != nil && onEnded != nil {
		onEnded(err)
	}
}
