package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"

	authDomain "github.com/allisson/incidenthub/internal/auth/domain"
	apperrors "github.com/allisson/incidenthub/internal/errors"
	"github.com/allisson/incidenthub/internal/metrics"
)

// StatusUnauthorized closes a connection whose handshake credential was rejected.
const StatusUnauthorized websocket.StatusCode = 4401

const writeTimeout = 10 * time.Second

var errHandshakeTimeout = apperrors.New("realtime handshake timed out")

// TokenVerifier checks an access credential.
type TokenVerifier interface {
	Verify(token string, kind authDomain.TokenKind) (*authDomain.Principal, error)
}

// GatewayConfig holds the connection timing and origin settings.
type GatewayConfig struct {
	HandshakeTimeout time.Duration
	PingInterval     time.Duration
	// OriginPatterns are host patterns allowed to connect cross-origin. Empty allows same origin only.
	OriginPatterns []string
}

// Handshake is the first message a client must send.
type Handshake struct {
	Token string `json:"token"`
}

// Ready acknowledges a successful handshake.
type Ready struct {
	Type     string   `json:"type"`
	UserID   string   `json:"userId"`
	Role     string   `json:"role"`
	Channels []string `json:"channels"`
}

// Gateway upgrades HTTP requests to WebSocket connections, authenticates them with
// the access credential sent in the first message and streams facts from the hub.
type Gateway struct {
	hub      *Hub
	verifier TokenVerifier
	logger   *slog.Logger
	metrics  metrics.RealtimeMetrics
	config   GatewayConfig
}

// NewGateway creates a Gateway.
func NewGateway(
	hub *Hub,
	verifier TokenVerifier,
	logger *slog.Logger,
	m metrics.RealtimeMetrics,
	config GatewayConfig,
) *Gateway {
	if m == nil {
		m = metrics.NewNoOpRealtimeMetrics()
	}
	if config.HandshakeTimeout <= 0 {
		config.HandshakeTimeout = 10 * time.Second
	}
	if config.PingInterval <= 0 {
		config.PingInterval = 30 * time.Second
	}
	return &Gateway{
		hub:      hub,
		verifier: verifier,
		logger:   logger,
		metrics:  m,
		config:   config,
	}
}

// ServeHTTP handles GET /api/realtime.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: g.config.OriginPatterns})
	if err != nil {
		g.logger.Debug("websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer func() {
		_ = conn.CloseNow()
	}()

	ctx := r.Context()

	principal, err := g.handshake(ctx, conn)
	if err != nil {
		outcome := "rejected"
		if errors.Is(err, errHandshakeTimeout) {
			outcome = "timeout"
		}
		g.metrics.RecordHandshake(ctx, outcome)
		g.logger.Debug("realtime handshake failed", slog.String("outcome", outcome), slog.Any("error", err))
		_ = conn.Close(StatusUnauthorized, "unauthorized")
		return
	}
	g.metrics.RecordHandshake(ctx, "accepted")

	sub := g.hub.Subscribe(UserChannel(principal.UserID), RoleChannel(principal.Role))
	defer g.hub.Unsubscribe(sub)

	g.metrics.ConnectionOpened(ctx)
	defer g.metrics.ConnectionClosed(ctx)

	ready, err := json.Marshal(Ready{
		Type:     "ready",
		UserID:   principal.UserID.String(),
		Role:     principal.Role.String(),
		Channels: sub.Channels(),
	})
	if err != nil {
		_ = conn.Close(websocket.StatusInternalError, "internal error")
		return
	}
	if err := g.write(ctx, conn, ready); err != nil {
		return
	}

	g.logger.Debug("realtime connection ready",
		slog.String("user_id", principal.UserID.String()),
		slog.String("role", principal.Role.String()))

	// Nothing is expected from the client after the handshake. CloseRead keeps
	// control frames flowing and cancels ctx once the peer goes away.
	ctx = conn.CloseRead(ctx)
	g.stream(ctx, conn, sub)
}

// handshake waits for the first message and verifies the credential it carries.
// A client that stays silent past the timeout is closed with StatusUnauthorized.
func (g *Gateway) handshake(ctx context.Context, conn *websocket.Conn) (*authDomain.Principal, error) {
	timer := time.AfterFunc(g.config.HandshakeTimeout, func() {
		_ = conn.Close(StatusUnauthorized, "handshake timeout")
	})

	msgType, data, err := conn.Read(ctx)
	if !timer.Stop() {
		return nil, errHandshakeTimeout
	}
	if err != nil {
		return nil, err
	}
	if msgType != websocket.MessageText {
		return nil, authDomain.ErrMissingToken
	}

	var hs Handshake
	if err := json.Unmarshal(data, &hs); err != nil {
		return nil, authDomain.ErrMissingToken
	}

	return g.verifier.Verify(hs.Token, authDomain.TokenKindAccess)
}

func (g *Gateway) stream(ctx context.Context, conn *websocket.Conn, sub *Subscriber) {
	ticker := time.NewTicker(g.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-sub.Messages():
			if err := g.write(ctx, conn, payload); err != nil {
				return
			}
		case <-sub.Done():
			if sub.Overflowed() {
				_ = conn.Close(websocket.StatusTryAgainLater, "slow consumer")
			} else {
				_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
			}
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func (g *Gateway) write(ctx context.Context, conn *websocket.Conn, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, payload)
}
