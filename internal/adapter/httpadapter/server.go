// Package httpadapter serves the health endpoints and the risk assessment API.
package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/hazard-risk-etl/internal/service"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes health, readiness, metrics and the /v1 risk API.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server. defaultWindow is the risk map window used
// when a request does not name one.
func NewServer(addr string, ready sharedobs.ReadinessChecker, risk *service.RiskService, defaultWindow time.Duration, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), accessLog(logger))

	router.GET("/healthz", gin.WrapF(sharedobs.LivenessHandler()))
	router.GET("/readyz", gin.WrapF(sharedobs.ReadinessHandler(ready)))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := &handler{risk: risk, defaultWindow: defaultWindow, logger: logger}
	h.registerRoutes(router.Group("/v1"))

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
