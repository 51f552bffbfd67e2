package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// HTTPRecorder receives the outcome of every handled request. Implemented by
// monitoring.MetricsCollector; an interface here keeps the import direction
// one-way.
type HTTPRecorder interface {
	RecordHTTPRequest(success bool, duration time.Duration)
}

// CORS allows cross-origin calls from the receipt UI.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// Gzip compresses responses. BestSpeed: export payloads are large and the
// CPU budget matters more than the last few percent of ratio.
func Gzip() gin.HandlerFunc {
	return gzip.Gzip(gzip.BestSpeed)
}

// Logger writes one access-log line per request to gin.DefaultWriter.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		clientIP := c.ClientIP()
		method := c.Request.Method
		statusCode := c.Writer.Status()
		reqID := GetRequestIDFromGin(c)
		bodySize := c.Writer.Size()

		if raw != "" {
			path = path + "?" + raw
		}

		timestamp := time.Now().Format("2006/01/02 - 15:04:05")
		logLine := fmt.Sprintf(
			"[%s] %s [%s] %s %d %s %d",
			timestamp,
			clientIP,
			method,
			path,
			statusCode,
			latency,
			bodySize,
		)
		if reqID != "" {
			logLine += " [RequestID: " + reqID + "]"
		}
		if err := c.Errors.Last(); err != nil {
			logLine += " [Error: " + err.Error() + "]"
		}
		gin.DefaultWriter.Write([]byte(logLine + "\n"))
	}
}

// Metrics feeds every request outcome into the collector. Status codes
// below 500 count as success: a 404 is the client's problem, not ours.
func Metrics(recorder HTTPRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		if recorder != nil {
			recorder.RecordHTTPRequest(c.Writer.Status() < 500, time.Since(start))
		}
	}
}

// Recovery converts a handler panic into a JSON 500, logging the stack.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				reqID := GetRequestIDFromGin(c)
				stackTrace := debug.Stack()

				slog.Error("Panic recovered",
					"panic", err,
					"stack", string(stackTrace),
					"request_id", reqID,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
				)

				c.JSON(500, gin.H{
					"error":      "Internal server error",
					"request_id": reqID,
				})

				c.Abort()
			}
		}()

		c.Next()
	}
}
