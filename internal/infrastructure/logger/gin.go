package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Gin context keys set by the HTTP middleware and read back when the
// access line is written.
const (
	GinRequestIDKey      = "request_id"
	GinOrganizationIDKey = "organization_id"
	GinUserIDKey         = "user_id"
)

// GinMiddleware stores a request logger in the request context and writes
// one access line per request. It expects the request ID middleware to
// have run first.
func GinMiddleware(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		req := c.Request

		ctx := WithContext(req.Context(), base.With(
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
		))
		ctx, reqLogger := WithRequestID(ctx, c.GetString(GinRequestIDKey))
		c.Request = req.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		fields := append(make([]zap.Field, 0, 9),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		)
		optional := []struct{ key, val string }{
			{"route", c.FullPath()},
			{"query", req.URL.RawQuery},
			{"organization_id", c.GetString(GinOrganizationIDKey)},
			{"user_id", c.GetString(GinUserIDKey)},
		}
		for _, o := range optional {
			if o.val != "" {
				fields = append(fields, zap.String(o.key, o.val))
			}
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		if ce := reqLogger.Check(accessLevel(status), "HTTP Request"); ce != nil {
			ce.Write(fields...)
		}
	}
}

func accessLevel(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// Recovery turns a handler panic into a logged 500 with the JSON error envelope.
func Recovery(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			requestID := c.GetString(GinRequestIDKey)
			base.Error("Panic recovered",
				zap.String("request_id", requestID),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("error", r),
				zap.Stack("stacktrace"))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":       "INTERNAL_ERROR",
					"message":    "Internal server error",
					"request_id": requestID,
				},
			})
		}()
		c.Next()
	}
}

// GetGinLogger returns the logger of the current request, tagged with
// whatever request, organization and user IDs the middleware has resolved.
func GetGinLogger(c *gin.Context) *zap.Logger {
	if c.Request == nil {
		return zap.NewNop()
	}
	return FromContext(c.Request.Context())
}
