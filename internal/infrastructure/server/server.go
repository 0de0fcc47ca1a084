package server

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/cosmiclibrary/core/docs"
	httpHandlers "github.com/cosmiclibrary/core/internal/adapters/http"
	"github.com/cosmiclibrary/core/internal/adapters/repository"
	"github.com/cosmiclibrary/core/internal/application/services"
	"github.com/cosmiclibrary/core/internal/infrastructure/config"
	"github.com/cosmiclibrary/core/internal/infrastructure/logger"
)

// Server represents the HTTP server
type Server struct {
	echo   *echo.Echo
	config *config.Config
	logger *logger.Logger
	store  *repository.DocumentStore
}

// New creates a new server instance
func New(cfg *config.Config, store *repository.DocumentStore, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	e.Validator = httpHandlers.NewValidator()

	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.App.Debug && !cfg.App.IsProduction()

	e.HTTPErrorHandler = httpHandlers.ErrorHandler(appLogger)

	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout

	// Initialize services
	credentials := services.NewCredentialResolver(cfg.Auth.LibraryUsers)
	backgrounds := services.NewBackgroundCatalog(cfg.Backgrounds)
	bookService := services.NewBookService(store, appLogger)
	settingsService := services.NewSettingsService(store, backgrounds, appLogger)
	authService := services.NewAuthService(store, credentials, cfg.Auth, appLogger)

	// Initialize handlers
	bookHandler := httpHandlers.NewBookHandler(bookService, appLogger)
	settingsHandler := httpHandlers.NewSettingsHandler(settingsService, appLogger)
	authHandler := httpHandlers.NewAuthHandler(authService, appLogger)

	server := &Server{
		echo:   e,
		config: cfg,
		logger: appLogger,
		store:  store,
	}

	server.setupMiddleware()

	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}

	server.setupRoutes(bookHandler, settingsHandler, authHandler)

	return server, nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())

	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"request_id", values.RequestID,
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
			}

			if values.Error != nil {
				fields = append(fields, "error", values.Error.Error())
				s.logger.Warnw("HTTP request failed", fields...)
			} else {
				s.logger.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: splitList(s.config.Security.CORSAllowedOrigins),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodDelete},
	}))

	s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      s.rateLimit(),
			Burst:     s.config.Security.RateLimitRequests,
			ExpiresIn: s.config.Security.RateLimitWindow,
		}),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(http.StatusForbidden, httpHandlers.ErrorResponse{Error: "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			s.logger.LogSecurityEvent("rate_limited", "", identifier, nil)
			return context.JSON(http.StatusTooManyRequests, httpHandlers.ErrorResponse{Error: "rate limit exceeded"})
		},
	}))

	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
	}))
}

// rateLimit spreads the configured request budget over the window
func (s *Server) rateLimit() rate.Limit {
	window := s.config.Security.RateLimitWindow
	if window <= 0 {
		return rate.Limit(s.config.Security.RateLimitRequests)
	}
	return rate.Limit(float64(s.config.Security.RateLimitRequests) / window.Seconds())
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(bookHandler *httpHandlers.BookHandler, settingsHandler *httpHandlers.SettingsHandler, authHandler *httpHandlers.AuthHandler) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// API documentation
	s.echo.GET("/docs/*", echoSwagger.WrapHandler)

	// Background images
	s.echo.Static("/backgrounds", s.config.Backgrounds.Dir)

	api := s.echo.Group("/api")

	api.GET("/books", bookHandler.ListBooks)
	api.POST("/books", bookHandler.AddBook)
	api.DELETE("/books", bookHandler.DeleteBook)

	api.GET("/settings", settingsHandler.GetSettings)
	api.POST("/settings", settingsHandler.SaveSettings)

	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.GET("/users", authHandler.ListUsers)
	api.GET("/check-admin", authHandler.CheckAdmin)
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	writeFailures := prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "document_store_write_failures_total",
			Help: "Total number of document writes that did not reach disk",
		},
		func() float64 { return float64(s.store.WriteFailures()) },
	)

	recoveries := prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "document_store_recoveries_total",
			Help: "Total number of times a missing or unreadable document was replaced by the default",
		},
		func() float64 { return float64(s.store.Recoveries()) },
	)

	registry.MustRegister(requestsTotal, requestDuration, writeFailures, recoveries)

	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status
			if err != nil {
				// The error handler has not written the response yet.
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	})

	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	status := "ok"
	checks := make(map[string]interface{})

	doc := s.store.Read()
	storage := map[string]interface{}{
		"status":         "ok",
		"path":           s.store.Path(),
		"books":          len(doc.Books),
		"users":          len(doc.Users),
		"write_failures": s.store.WriteFailures(),
		"recoveries":     s.store.Recoveries(),
	}
	if err := s.store.CheckWritable(); err != nil {
		status = "error"
		storage["status"] = "error"
		storage["error"] = err.Error()
	}
	checks["storage"] = storage

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
			"go":  runtime.Version(),
		},
	}

	if status == "ok" {
		return c.JSON(http.StatusOK, response)
	}
	return c.JSON(http.StatusServiceUnavailable, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	if err := s.store.CheckWritable(); err != nil {
		s.logger.WithError(err).Warn("Readiness check failed")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "storage_not_writable",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Infow("Starting server", "address", address)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.echo.Shutdown(ctx)
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
