// Package api provides the HTTP boundary for PowerPulse: the upload
// acceptor and progress endpoint that front the orchestrator (C10).
package api

import (
	"context"
	"net"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/gl4d3/powerpulse/pkg/config"
	"github.com/gl4d3/powerpulse/pkg/database"
	"github.com/gl4d3/powerpulse/pkg/orchestrator"
	"github.com/gl4d3/powerpulse/pkg/progress"
	"github.com/gl4d3/powerpulse/pkg/version"
)

// Server is the HTTP API server.
type Server struct {
	echo         *echo.Echo
	httpServer   *http.Server
	cfg          *config.Config
	dbClient     *database.Client
	orchestrator *orchestrator.Orchestrator
	tracker      *progress.Tracker
}

// NewServer creates a new API server with Echo v5, wiring the upload
// orchestrator and progress tracker into the routes.
func NewServer(cfg *config.Config, dbClient *database.Client, orch *orchestrator.Orchestrator, tracker *progress.Tracker) *Server {
	e := echo.New()

	s := &Server{
		echo:         e,
		cfg:          cfg,
		dbClient:     dbClient,
		orchestrator: orch,
		tracker:      tracker,
	}

	s.setupRoutes()
	return s
}

// setupRoutes registers all API routes.
func (s *Server) setupRoutes() {
	// Server-wide body size limit, set above MAX_FILE_SIZE so the
	// application-level check in handleUpload fires first with a proper
	// 413 instead of Echo rejecting the request body outright.
	s.echo.Use(middleware.BodyLimit(s.cfg.MaxFileSize + 8192))
	s.echo.Use(securityHeaders())

	s.echo.GET("/health", s.handleHealth)
	s.echo.POST("/api/upload-json", s.handleUpload)
	s.echo.GET("/api/progress/:upload_id", s.handleProgress)
}

// Start starts the HTTP server on the given address and blocks until the
// server stops, returning ListenAndServe's error.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.echo,
	}
	return s.httpServer.ListenAndServe()
}

// StartWithListener starts the HTTP server on a pre-created listener.
// Used by test infrastructure to serve on a random OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.echo}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(c *echo.Context) error {
	reqCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	dbHealth, err := database.Health(reqCtx, s.dbClient.DB())
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, &HealthResponse{
			Status:   "unhealthy",
			Version:  version.Full(),
			Database: dbHealth,
		})
	}

	return c.JSON(http.StatusOK, &HealthResponse{
		Status:   "healthy",
		Version:  version.Full(),
		Database: dbHealth,
	})
}
