package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"receiptserver/database"
	"receiptserver/server/middleware"
)

// ErrorResponse is the JSON shape of every error the API returns.
type ErrorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id,omitempty"`
}

// StatusResponse acknowledges a state-changing operation.
type StatusResponse struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
}

// parseIntQuery reads an optional non-negative integer query parameter.
func parseIntQuery(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("query parameter %s must be a non-negative integer", name)
	}
	return value, nil
}

// writeError resolves err to an HTTP status, logs it with the request
// context and writes the JSON error envelope. database.ErrNotFound maps to
// 404 even when a handler forgot to wrap it.
func writeError(c *gin.Context, err error) {
	reqID := middleware.GetRequestIDFromGin(c)

	statusCode := http.StatusInternalServerError
	message := "Internal server error"
	logErr := err

	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		statusCode = appErr.Code
		message = appErr.Message
		logErr = appErr.Err
	case errors.Is(err, database.ErrNotFound):
		statusCode = http.StatusNotFound
		message = err.Error()
	}

	slog.Error("HTTP error",
		"error", logErr,
		"message", message,
		"status_code", statusCode,
		"request_id", reqID,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)

	c.JSON(statusCode, ErrorResponse{
		Error:     message,
		Timestamp: time.Now().Format(time.RFC3339),
		RequestID: reqID,
	})
}
