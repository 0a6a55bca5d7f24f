package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"letraz-autoapply/internal/logging/types"
	"letraz-autoapply/pkg/models"
)

var startTime = time.Now()

// Version is reported by the health endpoint; set at build time with -ldflags
var Version = "dev"

// HealthCheck reports whether one dependency is usable
type HealthCheck func() bool

// HealthHandler runs every check and answers 503 when any of them fails
func HealthHandler(checks map[string]HealthCheck, logger types.Logger) echo.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c echo.Context) error {
		logger.Debug("Health check requested", map[string]interface{}{
			"request_id": requestID(c),
		})

		response := models.HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now(),
			Version:   Version,
			Uptime:    time.Since(startTime),
			Checks:    map[string]string{"api": "ok"},
		}
		status := http.StatusOK

		for _, name := range names {
			if checks[name]() {
				response.Checks[name] = "ok"
				continue
			}
			response.Checks[name] = "failing"
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}

		return c.JSON(status, response)
	}
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
