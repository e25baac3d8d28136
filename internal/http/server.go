// Package http assembles the REST API and realtime endpoint into a gin router and
// runs it alongside the metrics server.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	auditDomain "github.com/allisson/incidenthub/internal/audit/domain"
	auditHTTP "github.com/allisson/incidenthub/internal/audit/http"
	auditUseCase "github.com/allisson/incidenthub/internal/audit/usecase"
	authHTTP "github.com/allisson/incidenthub/internal/auth/http"
	authService "github.com/allisson/incidenthub/internal/auth/service"
	"github.com/allisson/incidenthub/internal/config"
	incidentHTTP "github.com/allisson/incidenthub/internal/incident/http"
	"github.com/allisson/incidenthub/internal/metrics"
	"github.com/allisson/incidenthub/internal/realtime"
	userDomain "github.com/allisson/incidenthub/internal/user/domain"
	userHTTP "github.com/allisson/incidenthub/internal/user/http"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	TokenService  authService.TokenService
	Session       *authHTTP.SessionHandler
	Users         *userHTTP.UserHandler
	Incidents     *incidentHTTP.IncidentHandler
	Comments      *incidentHTTP.CommentHandler
	AuditLogs     *auditHTTP.AuditHandler
	AuditRecorder auditUseCase.Recorder
	// Realtime serves GET /api/realtime. Nil leaves the route unmounted.
	Realtime http.Handler
}

// Server is the API server.
type Server struct {
	db     *sql.DB
	server *http.Server
	logger *slog.Logger
	router *gin.Engine
}

// NewServer creates the API server. Call SetupRouter before Start.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			ReadHeaderTimeout: 15 * time.Second,
			// No read or write timeout: realtime connections stay open for the whole session.
			IdleTimeout: 60 * time.Second,
		},
	}
}

// SetupRouter builds the route table. ctx bounds the rate limiters' background sweepers.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	h Handlers,
	metricsProvider *metrics.Provider,
	metricsNamespace string,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(CustomLoggerMiddleware(s.logger))

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), metricsNamespace, "/api/realtime"))
	}
	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	api := router.Group("/api")

	authenticate := authHTTP.AuthenticationMiddleware(h.TokenService, s.logger)
	admin := authHTTP.RequireRoles(s.logger, userDomain.RoleAdmin)
	operator := authHTTP.RequireRoles(s.logger, userDomain.RoleAdmin, userDomain.RoleResponder)

	credentialGate := []gin.HandlerFunc{}
	if cfg.RateLimitAuthEnabled {
		credentialGate = append(credentialGate, authHTTP.IPRateLimitMiddleware(
			ctx, cfg.RateLimitAuthRequestsPerSec, cfg.RateLimitAuthBurst, s.logger,
		))
	}

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", append(credentialGate, h.Session.RegisterHandler)...)
		authGroup.POST("/login", append(credentialGate, h.Session.LoginHandler)...)
		authGroup.POST("/refresh", append(credentialGate, h.Session.RefreshHandler)...)
		authGroup.POST("/logout", h.Session.LogoutHandler)
		authGroup.POST("/logout-all", authenticate, h.Session.LogoutAllHandler)
	}

	if h.Realtime != nil {
		api.GET("/realtime", gin.WrapH(h.Realtime))
	}

	protected := api.Group("")
	protected.Use(authenticate)
	if cfg.RateLimitEnabled {
		protected.Use(authHTTP.RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	users := protected.Group("/users")
	{
		users.GET("/me", h.Users.MeHandler)
		users.GET("", admin, h.Users.ListHandler)
		users.PATCH("/:id/role", admin, h.Users.UpdateRoleHandler)
	}

	observe := func(action auditDomain.Action, entityType string) gin.HandlerFunc {
		return auditHTTP.Observe(h.AuditRecorder, action, entityType)
	}

	incidents := protected.Group("/incidents")
	{
		incidents.GET("", h.Incidents.ListHandler)
		incidents.GET("/:id", h.Incidents.GetHandler)
		incidents.POST("", operator,
			observe(auditDomain.ActionCreate, realtime.EntityIncident), h.Incidents.CreateHandler)
		incidents.PATCH("/:id", operator,
			observe(auditDomain.ActionUpdate, realtime.EntityIncident), h.Incidents.UpdateHandler)
		incidents.PATCH("/:id/status", operator,
			observe(auditDomain.ActionStatusChange, realtime.EntityIncident), h.Incidents.ChangeStatusHandler)
		incidents.DELETE("/:id", admin,
			observe(auditDomain.ActionDelete, realtime.EntityIncident), h.Incidents.CloseHandler)

		incidents.GET("/:id/comments", h.Comments.ListHandler)
		incidents.POST("/:id/comments",
			observe(auditDomain.ActionCreate, realtime.EntityComment), h.Comments.CreateHandler)
		incidents.PATCH("/:id/comments/:commentId",
			observe(auditDomain.ActionUpdate, realtime.EntityComment), h.Comments.UpdateHandler)
		incidents.DELETE("/:id/comments/:commentId",
			observe(auditDomain.ActionDelete, realtime.EntityComment), h.Comments.DeleteHandler)
	}

	protected.GET("/audit-logs", admin, h.AuditLogs.ListHandler)

	s.router = router
	s.server.Handler = router
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// healthHandler reports liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports readiness; the database must answer a ping within two seconds.
func (s *Server) readinessHandler(c *gin.Context) {
	database := "ok"
	if s.db == nil {
		database = "error"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("readiness check failed", slog.Any("error", err))
			database = "error"
		}
	}

	if database != "ok" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": database},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": database},
	})
}

// Start serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	if s.server.Handler == nil {
		return fmt.Errorf("router not configured")
	}

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
