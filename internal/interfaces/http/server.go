// Package http is the thin HTTP adapter over the application services. It
// shapes requests and responses only; filtering, aggregation and dispatch
// semantics live below it.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/application/service"
	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/domain/entity"
)

// Logger interface for logging operations
type Logger interface {
	Infow(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	statistics *service.StatisticsService
	reports    *service.ReportService
	notifier   *service.NotifierService
	criteria   entity.Criteria // default fixed-predicate criteria
	logger     Logger
}

// NewServer creates a new HTTP server wired to the application services.
// criteria is the configured default the query-parameter filters extend.
func NewServer(
	config ServerConfig,
	statistics *service.StatisticsService,
	reports *service.ReportService,
	notifier *service.NotifierService,
	criteria entity.Criteria,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:     config,
		router:     gin.New(),
		statistics: statistics,
		reports:    reports,
		notifier:   notifier,
		criteria:   criteria,
		logger:     logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Infow("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.statistics, s.reports, s.notifier, s.criteria, s.logger)

	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api")
	{
		facturas := api.Group("/facturas")
		{
			facturas.GET("/estadisticas", handlers.GetStatistics)
			facturas.GET("/clientes-con-resumen", handlers.GetClientSummaries)
			facturas.GET("/informe", handlers.GetReport)
		}
		api.POST("/notificador/ejecutar", handlers.RunNotifier)
	}
}

// Start starts the HTTP server. Blocks until the server stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Infow("HTTP server starting", "addr", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Infow("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}
