// Package api serves the read-only status endpoints of a running process.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"letraz-autoapply/internal/api/routes"
	"letraz-autoapply/internal/config"
	"letraz-autoapply/internal/logging/types"
)

// Server wraps an echo instance bound to the configured address
type Server struct {
	echo    *echo.Echo
	address string
	logger  types.Logger
}

func NewServer(cfg *config.Config, deps routes.Deps, logger types.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	routes.SetupRoutes(e, deps, logger)

	return &Server{
		echo:    e,
		address: fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		logger:  logger.WithField("component", "api"),
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Address() string {
	return s.address
}

// Start blocks serving requests until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("Status server starting", map[string]interface{}{"address": s.address})
	if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("status server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Stopping status server")
	return s.echo.Shutdown(ctx)
}
