package app

import (
	"context"
	"fmt"

	"github.com/allisson/incidenthub/internal/http"
	"github.com/allisson/incidenthub/internal/realtime"
)

type realtimeComponents struct {
	hub         lazy[*realtime.Hub]
	bus         lazy[realtime.Bus]
	coordinator lazy[*realtime.MutationCoordinator]
	gateway     lazy[*realtime.Gateway]
}

// Hub returns the in-process subscriber registry.
func (c *Container) Hub() (*realtime.Hub, error) {
	return c.hub.get(func() (*realtime.Hub, error) {
		realtimeMetrics, err := c.RealtimeMetrics()
		if err != nil {
			return nil, err
		}
		return realtime.NewHub(c.config.RealtimeBufferSize, c.Logger(), realtimeMetrics), nil
	})
}

// RealtimeBus returns the cross-instance fact bus, or nil when REALTIME_BUS_URL is empty.
func (c *Container) RealtimeBus() (realtime.Bus, error) {
	return c.bus.get(func() (realtime.Bus, error) {
		if c.config.RealtimeBusURL == "" {
			return nil, nil
		}
		bus, err := realtime.OpenBus(context.Background(), c.config.RealtimeBusURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open realtime bus: %w", err)
		}
		return bus, nil
	})
}

// Broadcaster returns where committed facts go: the bus when configured, else the local hub.
func (c *Container) Broadcaster() (realtime.Broadcaster, error) {
	bus, err := c.RealtimeBus()
	if err != nil {
		return nil, err
	}
	if bus != nil {
		return realtime.NewBusBroadcaster(bus), nil
	}
	return c.Hub()
}

// MutationCoordinator returns the commit-then-broadcast coordinator.
func (c *Container) MutationCoordinator() (*realtime.MutationCoordinator, error) {
	return c.coordinator.get(func() (*realtime.MutationCoordinator, error) {
		txManager, err := c.TxManager()
		if err != nil {
			return nil, fmt.Errorf("failed to get tx manager for mutation coordinator: %w", err)
		}
		broadcaster, err := c.Broadcaster()
		if err != nil {
			return nil, err
		}
		realtimeMetrics, err := c.RealtimeMetrics()
		if err != nil {
			return nil, err
		}
		return realtime.NewMutationCoordinator(txManager, broadcaster, c.Logger(), realtimeMetrics), nil
	})
}

// Gateway returns the WebSocket endpoint.
func (c *Container) Gateway() (*realtime.Gateway, error) {
	return c.gateway.get(func() (*realtime.Gateway, error) {
		hub, err := c.Hub()
		if err != nil {
			return nil, err
		}
		tokenService, err := c.TokenService()
		if err != nil {
			return nil, err
		}
		realtimeMetrics, err := c.RealtimeMetrics()
		if err != nil {
			return nil, err
		}

		config := realtime.GatewayConfig{
			HandshakeTimeout: c.config.RealtimeHandshakeTimeout,
			PingInterval:     c.config.RealtimePingInterval,
		}
		if c.config.CORSEnabled {
			config.OriginPatterns = http.OriginPatterns(c.config.CORSAllowOrigins)
		}
		return realtime.NewGateway(hub, tokenService, c.Logger(), realtimeMetrics, config), nil
	})
}

// RunRelay delivers facts from the bus to the local hub until ctx is done. Without a
// bus it blocks until ctx is done.
func (c *Container) RunRelay(ctx context.Context) error {
	bus, err := c.RealtimeBus()
	if err != nil {
		return err
	}
	if bus == nil {
		<-ctx.Done()
		return nil
	}
	hub, err := c.Hub()
	if err != nil {
		return err
	}
	return realtime.Relay(ctx, bus, hub, c.Logger())
}
