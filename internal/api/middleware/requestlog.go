package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"letraz-autoapply/internal/logging/types"
	"letraz-autoapply/pkg/utils"
)

// RequestID tags every request and response with an X-Request-ID header
func RequestID() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: utils.GenerateRequestID,
	})
}

// RequestLogger writes one structured entry per request through logger
func RequestLogger(logger types.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := map[string]interface{}{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    utils.FormatDuration(v.Latency),
				"request_id": v.RequestID,
			}
			if v.Error != nil {
				fields["error"] = v.Error.Error()
				logger.Warn("Request failed", fields)
				return nil
			}
			logger.Debug("Request served", fields)
			return nil
		},
	})
}
