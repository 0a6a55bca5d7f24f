package routes

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"letraz-autoapply/internal/api/handlers"
	"letraz-autoapply/internal/api/middleware"
	"letraz-autoapply/internal/logging/types"
	"letraz-autoapply/internal/store"
)

const requestTimeout = 10 * time.Second

// Deps are the components the status endpoints read from. Any of them may
// be nil.
type Deps struct {
	Run     handlers.RunStatus
	Store   store.Store
	Metrics http.Handler
	Checks  map[string]handlers.HealthCheck
}

// SetupRoutes configures all status routes
func SetupRoutes(e *echo.Echo, deps Deps, logger types.Logger) {
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.ContextTimeout(requestTimeout))

	e.GET("/health", handlers.HealthHandler(deps.Checks, logger))
	e.GET("/status", handlers.StatusHandler(deps.Run, deps.Store, logger))
	if deps.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(deps.Metrics))
	}

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "letraz-autoapply",
			"version": handlers.Version,
			"status":  "running",
		})
	})
}
