// Package app provides the dependency injection container that assembles the
// application components from configuration.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/incidenthub/internal/config"
	"github.com/allisson/incidenthub/internal/database"
	"github.com/allisson/incidenthub/internal/http"
	"github.com/allisson/incidenthub/internal/metrics"
)

// lazy holds a component built on first access. A failed build is remembered and
// returned to every later caller.
type lazy[T any] struct {
	once  sync.Once
	value T
	err   error
}

func (l *lazy[T]) get(build func() (T, error)) (T, error) {
	l.once.Do(func() {
		l.value, l.err = build()
	})
	return l.value, l.err
}

// Container holds all application dependencies. Components are created on first
// access and shared afterwards.
type Container struct {
	config *config.Config

	loggerInit sync.Once
	logger     *slog.Logger

	db              lazy[*sql.DB]
	txManager       lazy[database.TxManager]
	metricsProvider lazy[*metrics.Provider]
	businessMetrics lazy[metrics.BusinessMetrics]
	realtimeMetrics lazy[metrics.RealtimeMetrics]
	httpServer      lazy[*http.Server]
	metricsServer   lazy[*http.MetricsServer]

	authComponents
	userComponents
	incidentComponents
	auditComponents
	realtimeComponents
}

// NewContainer creates a container for cfg.
func NewContainer(cfg *config.Config) *Container {
	return &Container{config: cfg}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the JSON logger at the configured level.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
func (c *Container) DB() (*sql.DB, error) {
	return c.db.get(c.initDB)
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	return c.txManager.get(func() (database.TxManager, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
		}
		return database.NewTxManager(db), nil
	})
}

// MetricsProvider returns the Prometheus-backed provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	return c.metricsProvider.get(func() (*metrics.Provider, error) {
		if !c.config.MetricsEnabled {
			return nil, nil
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics provider: %w", err)
		}
		return provider, nil
	})
}

// BusinessMetrics returns the use case metrics, a no-op when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	return c.businessMetrics.get(func() (metrics.BusinessMetrics, error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, err
		}
		if provider == nil {
			return metrics.NewNoOpBusinessMetrics(), nil
		}
		return metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	})
}

// RealtimeMetrics returns the gateway and hub metrics, a no-op when metrics are disabled.
func (c *Container) RealtimeMetrics() (metrics.RealtimeMetrics, error) {
	return c.realtimeMetrics.get(func() (metrics.RealtimeMetrics, error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, err
		}
		if provider == nil {
			return metrics.NewNoOpRealtimeMetrics(), nil
		}
		return metrics.NewRealtimeMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	})
}

// HTTPServer returns the API server with its router configured. ctx bounds the
// background work the router starts (rate limiter sweepers).
func (c *Container) HTTPServer(ctx context.Context) (*http.Server, error) {
	return c.httpServer.get(func() (*http.Server, error) {
		return c.initHTTPServer(ctx)
	})
}

// MetricsServer returns the metrics server.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	return c.metricsServer.get(func() (*http.MetricsServer, error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, err
		}
		return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
	})
}

// Shutdown releases every initialized resource. Pending audit writes are waited
// for before the database is closed.
func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error

	if server := c.httpServer.value; server != nil {
		if err := server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
		}
	}
	if server := c.metricsServer.value; server != nil {
		if err := server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}
	if hub := c.hub.value; hub != nil {
		hub.Close()
	}
	if bus := c.bus.value; bus != nil {
		if err := bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("realtime bus close: %w", err))
		}
	}
	if recorder := c.auditRecorder.value; recorder != nil {
		if err := recorder.Wait(ctx); err != nil {
			errs = append(errs, fmt.Errorf("audit recorder drain: %w", err))
		}
	}
	if provider := c.metricsProvider.value; provider != nil {
		if err := provider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}
	if db := c.db.value; db != nil {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// selectRepository picks the implementation for the configured driver. SQLite shares
// the PostgreSQL implementation: both accept $n placeholders.
func selectRepository[T any](c *Container, name string, postgres, mysql func(*sql.DB) T) (T, error) {
	var zero T
	db, err := c.DB()
	if err != nil {
		return zero, fmt.Errorf("failed to get database for %s repository: %w", name, err)
	}

	switch c.config.DBDriver {
	case database.DriverPostgres, database.DriverSQLite:
		return postgres(db), nil
	case database.DriverMySQL:
		return mysql(db), nil
	default:
		return zero, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initHTTPServer(ctx context.Context) (*http.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	handlers, err := c.handlers()
	if err != nil {
		return nil, err
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupRouter(ctx, c.config, *handlers, provider, c.config.MetricsNamespace)
	return server, nil
}

func (c *Container) handlers() (*http.Handlers, error) {
	tokenService, err := c.TokenService()
	if err != nil {
		return nil, err
	}
	sessionHandler, err := c.SessionHandler()
	if err != nil {
		return nil, err
	}
	userHandler, err := c.UserHandler()
	if err != nil {
		return nil, err
	}
	incidentHandler, err := c.IncidentHandler()
	if err != nil {
		return nil, err
	}
	commentHandler, err := c.CommentHandler()
	if err != nil {
		return nil, err
	}
	auditHandler, err := c.AuditHandler()
	if err != nil {
		return nil, err
	}
	recorder, err := c.AuditRecorder()
	if err != nil {
		return nil, err
	}
	gateway, err := c.Gateway()
	if err != nil {
		return nil, err
	}

	return &http.Handlers{
		TokenService:  tokenService,
		Session:       sessionHandler,
		Users:         userHandler,
		Incidents:     incidentHandler,
		Comments:      commentHandler,
		AuditLogs:     auditHandler,
		AuditRecorder: recorder,
		Realtime:      gateway,
	}, nil
}
