// Package mocks provides testify mocks for the realtime package.
package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/incidenthub/internal/realtime"
)

// MockMutator is a mock realtime.Mutator. Unless a non-nil error is configured
// it runs mutate and, on success, records the fact it builds.
type MockMutator struct {
	mock.Mock

	mu    sync.Mutex
	facts []realtime.Fact
}

// Execute records the call and runs the mutation like the real coordinator.
func (m *MockMutator) Execute(
	ctx context.Context,
	mutate func(ctx context.Context) error,
	fact func() realtime.Fact,
) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	if err := mutate(ctx); err != nil {
		return err
	}
	if fact != nil {
		m.mu.Lock()
		m.facts = append(m.facts, fact())
		m.mu.Unlock()
	}
	return nil
}

// Facts returns the facts built so far.
func (m *MockMutator) Facts() []realtime.Fact {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]realtime.Fact, len(m.facts))
	copy(out, m.facts)
	return out
}

// MockBroadcaster is a mock realtime.Broadcaster.
type MockBroadcaster struct {
	mock.Mock
}

// Broadcast records the fact.
func (m *MockBroadcaster) Broadcast(ctx context.Context, fact realtime.Fact) error {
	args := m.Called(ctx, fact)
	return args.Error(0)
}
