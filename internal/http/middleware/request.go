package middleware

import (
	"time"

	"creatememe/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const CtxRequestID = "request_id"

// RequestID keeps a caller-supplied X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.New().String()
		}

		c.Set(CtxRequestID, requestID)
		c.Header("X-Request-ID", requestID)

		l := logger.With("request_id", requestID)
		c.Request = c.Request.WithContext(logger.IntoContext(c.Request.Context(), l))
		c.Next()
	}
}

// Logger writes one line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		l := logger.FromContext(c.Request.Context())
		args := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if uid, ok := c.Get(CtxUserID); ok {
			args = append(args, "user_id", uid)
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			l.Error("request", args...)
		case status >= 400:
			l.Warn("request", args...)
		default:
			l.Info("request", args...)
		}
	}
}
