// Package middleware holds the gin middleware chain shared by every route:
// request IDs, CORS, gzip, request logging, panic recovery and HTTP metrics.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the context key under which the request ID travels.
type RequestIDKey struct{}

// SetRequestID stores the request ID in the context.
func SetRequestID(ctx context.Context, reqID string) context.Context {
	return context.WithValue(ctx, RequestIDKey{}, reqID)
}

// GetRequestID extracts the request ID from the context. Returns an empty
// string when none was set.
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if reqID, ok := ctx.Value(RequestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// GetRequestIDFromGin extracts the request ID from the gin context.
func GetRequestIDFromGin(c *gin.Context) string {
	if c == nil {
		return ""
	}
	reqID, exists := c.Get("request_id")
	if !exists {
		return ""
	}
	if id, ok := reqID.(string); ok {
		return id
	}
	return ""
}

// RequestID tags every request with a unique ID. An incoming X-Request-ID
// header is honored so upstream proxies can correlate; otherwise a fresh
// UUID is generated. The ID lands in the gin context, the request context
// and the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}

		c.Set("request_id", reqID)

		ctx := SetRequestID(c.Request.Context(), reqID)
		c.Request = c.Request.WithContext(ctx)

		c.Header("X-Request-ID", reqID)

		c.Next()
	}
}
