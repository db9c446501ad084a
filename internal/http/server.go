// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/envvault/internal/auth/http"
	authUseCase "github.com/allisson/envvault/internal/auth/usecase"
	"github.com/allisson/envvault/internal/config"
	"github.com/allisson/envvault/internal/kv"
	"github.com/allisson/envvault/internal/metrics"
	"github.com/allisson/envvault/internal/ratelimit"
	ratelimitHTTP "github.com/allisson/envvault/internal/ratelimit/http"
	secretsHTTP "github.com/allisson/envvault/internal/secrets/http"
)

const readinessTimeout = 5 * time.Second

// Server represents the HTTP server.
type Server struct {
	db      *sql.DB
	kvStore kv.Store
	server  *http.Server
	router  *gin.Engine
	logger  *slog.Logger
}

// NewServer creates a new HTTP server. The router is installed by SetupRouter.
func NewServer(
	db *sql.DB,
	kvStore kv.Store,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:      db,
		kvStore: kvStore,
		logger:  logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// RouterDeps groups the collaborators of the API routes.
type RouterDeps struct {
	Config          *config.Config
	ProjectHandler  *authHTTP.ProjectHandler
	SecretHandler   *secretsHTTP.SecretHandler
	APIKeyUseCase   authUseCase.APIKeyUseCase
	Limiter         ratelimit.Limiter
	MetricsProvider *metrics.Provider
}

// SetupRouter builds the gin engine with all middleware and routes.
//
// Every /v1 API route runs AuthenticationMiddleware, then the rate limiter, then RequireCaller.
// Anonymous requests are charged to the IP budget before RequireCaller rejects them.
func (s *Server) SetupRouter(deps RouterDeps) {
	cfg := deps.Config

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MetricsEnabled && deps.MetricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(deps.MetricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	v1.GET("/health/kv", s.kvHealthHandler)

	api := v1.Group("")
	api.Use(authHTTP.AuthenticationMiddleware(deps.APIKeyUseCase, s.logger))
	if cfg.RateLimitEnabled && deps.Limiter != nil {
		api.Use(ratelimitHTTP.RateLimitMiddleware(deps.Limiter, ratelimitHTTP.MiddlewareConfig{
			Hybrid: ratelimit.HybridConfig{
				IPLimit:     cfg.RateLimitIPLimit,
				APIKeyLimit: cfg.RateLimitAPIKeyLimit,
				Window:      cfg.RateLimitWindow,
			},
			FailOpen: cfg.RateLimitFailOpen,
			APIKeyID: authHTTP.APIKeyID,
		}, s.logger))
	}
	api.Use(authHTTP.RequireCaller(s.logger))

	projects := api.Group("/projects")
	{
		projects.POST("", deps.ProjectHandler.CreateHandler)
		projects.GET("/:id", deps.ProjectHandler.GetHandler)
		projects.GET("/:id/environments", deps.SecretHandler.ListEnvironmentsHandler)
		projects.GET("/:id/environments/:environment/versions", deps.SecretHandler.ListVersionsHandler)
		projects.GET("/:id/environments/:environment/latest", deps.SecretHandler.GetLatestHandler)
	}

	secrets := api.Group("/secrets")
	{
		secrets.POST("", deps.SecretHandler.UploadHandler)
		secrets.POST("/:id/decrypt", deps.SecretHandler.DecryptHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports liveness. It never touches dependencies.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the database and the KV store are reachable.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	components := gin.H{"database": "ok", "kv": "ok"}
	ready := true

	if s.db == nil || s.db.PingContext(ctx) != nil {
		components["database"] = "error"
		ready = false
	}

	if s.kvStore == nil || !kv.Probe(ctx, s.kvStore).OK {
		components["kv"] = "error"
		ready = false
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}

// kvHealthHandler exposes the KV round-trip probe with its latency.
// GET /v1/health/kv - Returns 200 when the probe succeeds and 503 otherwise.
func (s *Server) kvHealthHandler(c *gin.Context) {
	if s.kvStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "kv store not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	result := kv.Probe(ctx, s.kvStore)
	body := gin.H{"ok": result.OK, "latency_ms": result.LatencyMs()}
	if result.Error != "" {
		body["error"] = result.Error
	}

	status := http.StatusOK
	if !result.OK {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, body)
}
