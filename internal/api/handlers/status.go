package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"letraz-autoapply/internal/logging/types"
	"letraz-autoapply/internal/store"
	"letraz-autoapply/internal/validation"
	"letraz-autoapply/pkg/models"
)

const defaultRecent = 20

// RunStatus is implemented by *runner.Runner
type RunStatus interface {
	Stats() models.RunStats
	GuardStats() map[string]interface{}
}

// StatusQuery holds the query parameters of GET /status
type StatusQuery struct {
	Recent int `query:"recent" validate:"min=0,max=200"`
}

// StatusHandler returns the run counters, the pacing state and the most
// recent ledger entries
func StatusHandler(run RunStatus, st store.Store, logger types.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)
		log := logger.WithContext(c.Request().Context()).WithField("request_id", reqID)

		query := StatusQuery{Recent: defaultRecent}
		if err := c.Bind(&query); err != nil {
			return badRequest(c, reqID, "invalid_query", "Query parameters could not be parsed")
		}
		if err := validation.Struct(query); err != nil {
			return badRequest(c, reqID, "invalid_query", err.Error())
		}

		response := models.StatusResponse{
			Status:    "operational",
			Timestamp: time.Now(),
			Uptime:    time.Since(startTime),
			Recent:    []models.ApplicationRecord{},
			RequestID: reqID,
		}
		if run != nil {
			response.Run = run.Stats()
			response.Guard = run.GuardStats()
		}

		if st != nil && query.Recent > 0 {
			recent, err := st.Recent(c.Request().Context(), query.Recent)
			if err != nil {
				log.Error("Failed to read application ledger", map[string]interface{}{
					"error": err.Error(),
				})
				return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
					Error:     "ledger_unavailable",
					Message:   "Application ledger is not available",
					RequestID: reqID,
					Timestamp: time.Now(),
				})
			}
			if recent != nil {
				response.Recent = recent
			}
		}

		return c.JSON(http.StatusOK, response)
	}
}

func badRequest(c echo.Context, reqID, code, message string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:     code,
		Message:   message,
		RequestID: reqID,
		Timestamp: time.Now(),
	})
}
