// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	authHTTP "github.com/allisson/envvault/internal/auth/http"
	authService "github.com/allisson/envvault/internal/auth/service"
	authUseCase "github.com/allisson/envvault/internal/auth/usecase"
	"github.com/allisson/envvault/internal/cache"
	"github.com/allisson/envvault/internal/config"
	cryptoService "github.com/allisson/envvault/internal/crypto/service"
	"github.com/allisson/envvault/internal/database"
	"github.com/allisson/envvault/internal/http"
	"github.com/allisson/envvault/internal/kv"
	"github.com/allisson/envvault/internal/metrics"
	"github.com/allisson/envvault/internal/ratelimit"
	secretsHTTP "github.com/allisson/envvault/internal/secrets/http"
	secretsUseCase "github.com/allisson/envvault/internal/secrets/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// Components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	kvStore         kv.Store
	cache           *cache.Cache
	rateLimiter     ratelimit.Limiter
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Managers
	txManager database.TxManager

	// Auth
	apiKeyService     authService.APIKeyService
	projectRepository authUseCase.ProjectRepository
	apiKeyRepository  authUseCase.APIKeyRepository
	projectUseCase    authUseCase.ProjectUseCase
	apiKeyUseCase     authUseCase.APIKeyUseCase
	projectHandler    *authHTTP.ProjectHandler

	// Secrets
	envelopeCodec    cryptoService.EnvelopeCodec
	secretRepository secretsUseCase.SecretVersionRepository
	secretUseCase    secretsUseCase.SecretUseCase
	secretHandler    *secretsHTTP.SecretHandler

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                    sync.Mutex
	loggerInit            sync.Once
	dbInit                sync.Once
	kvStoreInit           sync.Once
	cacheInit             sync.Once
	rateLimiterInit       sync.Once
	metricsProviderInit   sync.Once
	businessMetricsInit   sync.Once
	txManagerInit         sync.Once
	apiKeyServiceInit     sync.Once
	projectRepositoryInit sync.Once
	apiKeyRepositoryInit  sync.Once
	projectUseCaseInit    sync.Once
	apiKeyUseCaseInit     sync.Once
	projectHandlerInit    sync.Once
	envelopeCodecInit     sync.Once
	secretRepositoryInit  sync.Once
	secretUseCaseInit     sync.Once
	secretHandlerInit     sync.Once
	httpServerInit        sync.Once
	metricsServerInit     sync.Once
	initErrors            map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// KVStore returns the key-value store selected by KV_DRIVER.
func (c *Container) KVStore() (kv.Store, error) {
	var err error
	c.kvStoreInit.Do(func() {
		c.kvStore, err = c.initKVStore()
		if err != nil {
			c.initErrors["kvStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["kvStore"]; exists {
		return nil, storedErr
	}
	return c.kvStore, nil
}

// Cache returns the tag-aware cache layered on the KV store.
func (c *Container) Cache() (*cache.Cache, error) {
	var err error
	c.cacheInit.Do(func() {
		c.cache, err = c.initCache()
		if err != nil {
			c.initErrors["cache"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["cache"]; exists {
		return nil, storedErr
	}
	return c.cache, nil
}

// RateLimiter returns the limiter selected by RATE_LIMIT_ALGORITHM.
func (c *Container) RateLimiter() (ratelimit.Limiter, error) {
	var err error
	c.rateLimiterInit.Do(func() {
		c.rateLimiter, err = c.initRateLimiter()
		if err != nil {
			c.initErrors["rateLimiter"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["rateLimiter"]; exists {
		return nil, storedErr
	}
	return c.rateLimiter, nil
}

// MetricsProvider returns the OpenTelemetry provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = c.initMetricsProvider()
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. It is a no-op when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// HTTPServer returns the HTTP server instance with its router configured.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the Prometheus metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if closer, ok := c.kvStore.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("kv store close: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	return errors.Join(shutdownErrors...)
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
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

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initKVStore creates the KV store for the configured driver.
func (c *Container) initKVStore() (kv.Store, error) {
	switch c.config.KVDriver {
	case config.KVDriverMemory:
		return kv.NewMemoryStore(), nil
	case config.KVDriverHTTP:
		store, err := kv.NewHTTPStore(kv.HTTPConfig{
			BaseURL:        c.config.KVHTTPBaseURL,
			NamespaceID:    c.config.KVHTTPNamespaceID,
			APIToken:       c.config.KVHTTPAPIToken,
			Timeout:        c.config.KVHTTPTimeout,
			RequestsPerSec: c.config.KVHTTPRequestsPerSec,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create http kv store: %w", err)
		}
		return store, nil
	case config.KVDriverRedis:
		store, err := kv.NewRedisStore(c.config.KVRedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis kv store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported kv driver: %s", c.config.KVDriver)
	}
}

// initCache creates the cache on top of the KV store.
func (c *Container) initCache() (*cache.Cache, error) {
	store, err := c.KVStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get kv store for cache: %w", err)
	}
	return cache.New(
		store,
		cache.WithNamespace(c.config.CacheNamespace),
		cache.WithLogger(c.Logger()),
	), nil
}

// initRateLimiter creates the limiter, optionally memoized and instrumented.
func (c *Container) initRateLimiter() (ratelimit.Limiter, error) {
	store, err := c.KVStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get kv store for rate limiter: %w", err)
	}

	var limiter ratelimit.Limiter
	switch c.config.RateLimitAlgorithm {
	case config.RateLimitAlgorithmFixed:
		limiter = ratelimit.NewFixedWindow(store)
	case config.RateLimitAlgorithmSliding:
		limiter = ratelimit.NewSlidingWindow(store)
	default:
		return nil, fmt.Errorf("unsupported rate limit algorithm: %s", c.config.RateLimitAlgorithm)
	}

	if c.config.RateLimitCached {
		cacheInstance, err := c.Cache()
		if err != nil {
			return nil, fmt.Errorf("failed to get cache for rate limiter: %w", err)
		}
		limiter = ratelimit.NewCached(limiter, cacheInstance)
	}

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for rate limiter: %w", err)
		}
		limiter = ratelimit.NewLimiterWithMetrics(limiter, businessMetrics, "consume")
	}

	return limiter, nil
}

// initMetricsProvider creates the OpenTelemetry provider with its Prometheus exporter.
func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}

	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

// initBusinessMetrics creates the business metrics recorder.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}

	businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return businessMetrics, nil
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	store, err := c.KVStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get kv store for http server: %w", err)
	}

	projectHandler, err := c.ProjectHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get project handler for http server: %w", err)
	}

	secretHandler, err := c.SecretHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret handler for http server: %w", err)
	}

	apiKeyUseCase, err := c.APIKeyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get api key use case for http server: %w", err)
	}

	var limiter ratelimit.Limiter
	if c.config.RateLimitEnabled {
		limiter, err = c.RateLimiter()
		if err != nil {
			return nil, fmt.Errorf("failed to get rate limiter for http server: %w", err)
		}
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	server := http.NewServer(db, store, c.config.ServerHost, c.config.ServerPort, logger)
	server.SetupRouter(http.RouterDeps{
		Config:          c.config,
		ProjectHandler:  projectHandler,
		SecretHandler:   secretHandler,
		APIKeyUseCase:   apiKeyUseCase,
		Limiter:         limiter,
		MetricsProvider: metricsProvider,
	})

	return server, nil
}

// initMetricsServer creates the metrics server when metrics are enabled.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	if provider == nil {
		return nil, nil
	}

	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
}
