package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const ginLoggerKey = "logger"

// RequestLogOption configures RequestLogger
type RequestLogOption func(*requestLogConfig)

type requestLogConfig struct {
	skip map[string]struct{}
}

// WithSkipPaths suppresses the access line for exact paths such as probes
func WithSkipPaths(paths ...string) RequestLogOption {
	return func(cfg *requestLogConfig) {
		for _, p := range paths {
			cfg.skip[p] = struct{}{}
		}
	}
}

// RequestLogger attaches a request-scoped logger to the gin and request
// contexts and writes one access line per request once it completes. The
// line is written with whatever logger the chain left behind, so it carries
// the actor set by authentication.
func RequestLogger(base *zap.Logger, opts ...RequestLogOption) gin.HandlerFunc {
	cfg := requestLogConfig{skip: map[string]struct{}{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		ctx, reqLog := WithRequestID(c.Request.Context(), base, c.GetString("request_id"))
		reqLog = reqLog.With(zap.String("method", c.Request.Method), zap.String("path", path))
		c.Request = c.Request.WithContext(WithContext(ctx, reqLog))
		c.Set(ginLoggerKey, reqLog)

		c.Next()

		if _, skip := cfg.skip[path]; skip {
			return
		}

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		log := GetGinLogger(c)
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// Recovery turns a panic into a 500 error envelope
func Recovery(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			requestID := c.GetString("request_id")
			base.Error("panic recovered",
				zap.String("request_id", requestID),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("panic", rec),
				zap.Stack("stacktrace"),
			)
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

// GetGinLogger returns the request logger, or a no-op logger outside a request
func GetGinLogger(c *gin.Context) *zap.Logger {
	if l, ok := c.Get(ginLoggerKey); ok {
		if zl, ok := l.(*zap.Logger); ok {
			return zl
		}
	}
	return zap.NewNop()
}
