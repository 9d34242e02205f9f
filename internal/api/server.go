// Package api exposes the extraction pipeline as an HTTP service.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/shogo/internal/api/middleware"
	"github.com/jonesrussell/shogo/internal/config"
	"github.com/jonesrussell/shogo/internal/extract"
	"github.com/jonesrussell/shogo/internal/fetch"
	"github.com/jonesrussell/shogo/internal/logger"
)

const readHeaderTimeout = 10 * time.Second

// Extractor runs the extraction pipeline over one page.
type Extractor interface {
	Extract(ctx context.Context, html, pageURL string) *extract.Result
}

// Fetcher retrieves pages for URL-only requests.
type Fetcher interface {
	FetchPage(ctx context.Context, rawURL string) (*fetch.Page, error)
}

// Server is the extraction HTTP server.
type Server struct {
	cfg      *config.ServerConfig
	log      logger.Interface
	httpSrv  *http.Server
	security middleware.SecurityMiddlewareInterface
	cancel   context.CancelFunc
}

// NewServer creates a Server wired to the given pipeline dependencies.
func NewServer(cfg *config.ServerConfig, engine Extractor, fetcher Fetcher, log logger.Interface) *Server {
	if log == nil {
		log = logger.NewNoOp()
	}

	router, security := SetupRouter(cfg, engine, fetcher, log)

	return &Server{
		cfg: cfg,
		log: log,
		httpSrv: &http.Server{
			Addr:              cfg.Address,
			Handler:           router,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		security: security,
	}
}

// SetupRouter creates and configures the Gin router with all routes
func SetupRouter(
	cfg *config.ServerConfig,
	engine Extractor,
	fetcher Fetcher,
	log logger.Interface,
) (*gin.Engine, middleware.SecurityMiddlewareInterface) {
	// Disable Gin's default logging
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(log))

	security := middleware.NewSecurityMiddleware(cfg, log)

	// Public routes
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Protected routes
	v1 := router.Group("/api/v1")
	v1.Use(security.Middleware())
	v1.POST("/extract", handleExtract(engine, fetcher, log))

	return router, security
}

// loggingMiddleware creates a middleware that logs HTTP requests
func loggingMiddleware(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		log.Info("HTTP Request",
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"status", statusCode,
			"latency", latency,
		)
	}
}

// Start runs the server until it is stopped or ListenAndServe fails. The
// rate-limiter cleanup loop runs alongside the listener.
func (s *Server) Start(ctx context.Context) error {
	cleanupCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	go s.security.Cleanup(cleanupCtx)

	s.log.Info("Starting API server", "address", s.cfg.Address)
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cancel()
		return err
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Stopping API server")
	if s.cancel != nil {
		s.cancel()
	}
	err := s.httpSrv.Shutdown(ctx)
	s.security.WaitCleanup()
	return err
}
