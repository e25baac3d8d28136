package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	apperrors "github.com/allisson/incidenthub/internal/errors"
	"github.com/allisson/incidenthub/internal/metrics"
)

// Subscriber is one connection's registration in the hub.
type Subscriber struct {
	channels []string
	send     chan []byte
	done     chan struct{}

	closeOnce  sync.Once
	overflowed bool
}

// Messages yields encoded facts in delivery order.
func (s *Subscriber) Messages() <-chan []byte {
	return s.send
}

// Done is closed when the subscriber is removed from the hub.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

// Overflowed reports whether the subscriber was evicted because its buffer was full.
// Only meaningful after Done is closed.
func (s *Subscriber) Overflowed() bool {
	select {
	case <-s.done:
		return s.overflowed
	default:
		return false
	}
}

// Channels returns the channels the subscriber joined.
func (s *Subscriber) Channels() []string {
	out := make([]string, len(s.channels))
	copy(out, s.channels)
	return out
}

func (s *Subscriber) close(overflowed bool) {
	s.closeOnce.Do(func() {
		s.overflowed = overflowed
		close(s.done)
	})
}

// Hub keeps channel membership for the local process and delivers facts.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*Subscriber]struct{}
	channels    map[string]map[*Subscriber]struct{}
	bufferSize  int
	logger      *slog.Logger
	metrics     metrics.RealtimeMetrics
}

// NewHub creates a Hub whose subscribers buffer up to bufferSize facts.
func NewHub(bufferSize int, logger *slog.Logger, m metrics.RealtimeMetrics) *Hub {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	if m == nil {
		m = metrics.NewNoOpRealtimeMetrics()
	}
	return &Hub{
		subscribers: make(map[*Subscriber]struct{}),
		channels:    make(map[string]map[*Subscriber]struct{}),
		bufferSize:  bufferSize,
		logger:      logger,
		metrics:     m,
	}
}

// Subscribe registers a new subscriber on the given channels.
func (h *Hub) Subscribe(channels ...string) *Subscriber {
	sub := &Subscriber{
		channels: channels,
		send:     make(chan []byte, h.bufferSize),
		done:     make(chan struct{}),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.subscribers[sub] = struct{}{}
	for _, ch := range channels {
		members, ok := h.channels[ch]
		if !ok {
			members = make(map[*Subscriber]struct{})
			h.channels[ch] = members
		}
		members[sub] = struct{}{}
	}
	return sub
}

// Unsubscribe removes the subscriber from every channel. Safe to call more than once.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.remove(sub, false)
}

func (h *Hub) remove(sub *Subscriber, overflowed bool) {
	h.mu.Lock()
	if _, ok := h.subscribers[sub]; ok {
		delete(h.subscribers, sub)
		for _, ch := range sub.channels {
			members := h.channels[ch]
			delete(members, sub)
			if len(members) == 0 {
				delete(h.channels, ch)
			}
		}
	}
	h.mu.Unlock()

	sub.close(overflowed)
}

// Broadcast delivers the fact to every connection once, or to its channel's members when set.
func (h *Hub) Broadcast(ctx context.Context, fact Fact) error {
	payload, err := json.Marshal(fact)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode fact")
	}
	h.Deliver(ctx, fact.Event, fact.Channel, payload)
	return nil
}

// Deliver fans an already encoded fact out. Subscribers whose buffer is full are evicted.
func (h *Hub) Deliver(ctx context.Context, event, channel string, payload []byte) {
	var evicted []*Subscriber

	h.mu.RLock()
	targets := h.subscribers
	if channel != "" {
		targets = h.channels[channel]
	}
	for sub := range targets {
		select {
		case sub.send <- payload:
			h.metrics.RecordFact(ctx, event, "delivered")
		default:
			evicted = append(evicted, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range evicted {
		h.metrics.RecordFact(ctx, event, "evicted")
		if h.logger != nil {
			h.logger.Warn("evicting slow realtime subscriber",
				slog.String("event", event),
				slog.Any("channels", sub.channels),
			)
		}
		h.remove(sub, true)
	}
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// ChannelLen returns the number of subscribers of a channel.
func (h *Hub) ChannelLen(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

// Close evicts every subscriber.
func (h *Hub) Close() {
	h.mu.RLock()
	subs := make([]*Subscriber, 0, len(h.subscribers))
	for sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		h.remove(sub, false)
	}
}
