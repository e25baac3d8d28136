package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/allisson/incidenthub/internal/realtime"
)

// ErrHandshakeRejected is returned when the gateway refuses the access token.
var ErrHandshakeRejected = errors.New("realtime handshake rejected")

// Subscription is an authenticated realtime connection.
type Subscription struct {
	conn  *websocket.Conn
	Ready realtime.Ready
}

// DialRealtime opens the realtime gateway with the session's access token. The
// token is refreshed first when the gateway rejects it.
func (c *Client) DialRealtime(ctx context.Context) (*Subscription, error) {
	creds, ok := c.session.Current()
	if !ok {
		return nil, ErrSessionEnded
	}

	sub, err := c.dialRealtime(ctx, creds.AccessToken)
	if !errors.Is(err, ErrHandshakeRejected) {
		return sub, err
	}

	fresh, err := c.coordinator.Refresh(ctx, creds.AccessToken)
	if err != nil {
		return nil, err
	}
	return c.dialRealtime(ctx, fresh.AccessToken)
}

func (c *Client) dialRealtime(ctx context.Context, token string) (*Subscription, error) {
	url := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/api/realtime"
	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{HTTPClient: c.http})
	if err != nil {
		return nil, fmt.Errorf("failed to dial realtime gateway: %w", err)
	}

	if err := wsjson.Write(ctx, conn, realtime.Handshake{Token: token}); err != nil {
		_ = conn.CloseNow()
		return nil, fmt.Errorf("failed to send realtime handshake: %w", err)
	}

	var ready realtime.Ready
	if err := wsjson.Read(ctx, conn, &ready); err != nil {
		_ = conn.CloseNow()
		if websocket.CloseStatus(err) == realtime.StatusUnauthorized {
			return nil, ErrHandshakeRejected
		}
		return nil, fmt.Errorf("failed to read realtime handshake reply: %w", err)
	}
	return &Subscription{conn: conn, Ready: ready}, nil
}

// Next blocks until the next fact arrives. It returns the close error once the
// server ends the connection.
func (s *Subscription) Next(ctx context.Context) (*realtime.Fact, error) {
	_, data, err := s.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	var fact realtime.Fact
	if err := json.Unmarshal(data, &fact); err != nil {
		return nil, fmt.Errorf("failed to decode fact: %w", err)
	}
	return &fact, nil
}

// Close ends the connection normally.
func (s *Subscription) Close() error {
	return s.conn.Close(websocket.StatusNormalClosure, "")
}
