package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
	"gocloud.dev/pubsub"
	_ "gocloud.dev/pubsub/mempubsub"

	apperrors "github.com/allisson/incidenthub/internal/errors"
)

// ErrBusClosed is returned by Receive once the bus is closed.
var ErrBusClosed = apperrors.New("realtime bus closed")

// Bus carries encoded facts between server instances.
type Bus interface {
	Publish(ctx context.Context, payload []byte) error
	// Receive blocks until a payload arrives, ctx is done or the bus is closed.
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// OpenBus opens the bus named by url. redis:// and rediss:// use Redis Pub/Sub;
// any other scheme is handed to gocloud.dev/pubsub (mem:// is always available).
// The url path (or host for mem://) names the topic.
func OpenBus(ctx context.Context, url string) (Bus, error) {
	if strings.HasPrefix(url, "redis://") || strings.HasPrefix(url, "rediss://") {
		opts, err := redis.ParseURL(url)
		if err != nil {
			return nil, apperrors.Wrap(err, "invalid redis bus url")
		}
		return NewRedisBus(ctx, redis.NewClient(opts), "incidenthub:facts")
	}
	return NewPubSubBus(ctx, url)
}

// PubSubBus is a Bus over a gocloud.dev topic and subscription opened from the same URL.
type PubSubBus struct {
	topic        *pubsub.Topic
	subscription *pubsub.Subscription
}

// NewPubSubBus opens the topic first so an in-process subscription on the same URL finds it.
func NewPubSubBus(ctx context.Context, url string) (*PubSubBus, error) {
	topic, err := pubsub.OpenTopic(ctx, url)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open realtime topic")
	}
	subscription, err := pubsub.OpenSubscription(ctx, url)
	if err != nil {
		_ = topic.Shutdown(ctx)
		return nil, apperrors.Wrap(err, "failed to open realtime subscription")
	}
	return &PubSubBus{topic: topic, subscription: subscription}, nil
}

func (b *PubSubBus) Publish(ctx context.Context, payload []byte) error {
	return b.topic.Send(ctx, &pubsub.Message{Body: payload})
}

func (b *PubSubBus) Receive(ctx context.Context) ([]byte, error) {
	msg, err := b.subscription.Receive(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrBusClosed
	}
	msg.Ack()
	return msg.Body, nil
}

func (b *PubSubBus) Close() error {
	ctx := context.Background()
	return errors.Join(b.subscription.Shutdown(ctx), b.topic.Shutdown(ctx))
}

// RedisBus is a Bus over a Redis Pub/Sub channel.
type RedisBus struct {
	client  *redis.Client
	channel string
	sub     *redis.PubSub
}

// NewRedisBus subscribes to channel and waits for the subscription to be confirmed.
func NewRedisBus(ctx context.Context, client *redis.Client, channel string) (*RedisBus, error) {
	sub := client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		_ = client.Close()
		return nil, apperrors.Wrap(err, "failed to subscribe to redis bus")
	}
	return &RedisBus{client: client, channel: channel, sub: sub}, nil
}

func (b *RedisBus) Publish(ctx context.Context, payload []byte) error {
	return b.client.Publish(ctx, b.channel, payload).Err()
}

func (b *RedisBus) Receive(ctx context.Context) ([]byte, error) {
	for {
		msg, err := b.sub.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, redis.ErrClosed) {
				return nil, ErrBusClosed
			}
			return nil, err
		}
		if m, ok := msg.(*redis.Message); ok {
			return []byte(m.Payload), nil
		}
	}
}

func (b *RedisBus) Close() error {
	return errors.Join(b.sub.Close(), b.client.Close())
}

// BusBroadcaster publishes facts on a bus instead of delivering them locally.
// Every instance, this one included, delivers them through Relay.
type BusBroadcaster struct {
	bus Bus
}

// NewBusBroadcaster creates a BusBroadcaster.
func NewBusBroadcaster(bus Bus) *BusBroadcaster {
	return &BusBroadcaster{bus: bus}
}

// Broadcast encodes and publishes the fact.
func (b *BusBroadcaster) Broadcast(ctx context.Context, fact Fact) error {
	payload, err := json.Marshal(fact)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode fact")
	}
	if err := b.bus.Publish(ctx, payload); err != nil {
		return apperrors.Wrap(err, "failed to publish fact")
	}
	return nil
}

// Relay delivers facts received from the bus to the local hub until ctx is done
// or the bus is closed.
func Relay(ctx context.Context, bus Bus, hub *Hub, logger *slog.Logger) error {
	for {
		payload, err := bus.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrBusClosed) {
				return nil
			}
			return apperrors.Wrap(err, "realtime bus receive failed")
		}

		var header struct {
			Event   string `json:"event"`
			Channel string `json:"channel"`
		}
		if err := json.Unmarshal(payload, &header); err != nil {
			logger.Warn("dropping malformed fact from bus", slog.Any("error", err))
			continue
		}
		hub.Deliver(ctx, header.Event, header.Channel, payload)
	}
}
