package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AccessLogConfig defines the config for the AccessLog middleware.
type AccessLogConfig struct {
	// Logger receives one entry per request. Required.
	Logger *zap.Logger

	// SkipPaths lists request paths that are not logged.
	SkipPaths []string
}

// AccessLog returns a middleware that logs one structured entry per
// request: method, path, status, duration and request ID.
func AccessLog(logger *zap.Logger) echo.MiddlewareFunc {
	return AccessLogWithConfig(AccessLogConfig{Logger: logger})
}

// AccessLogWithConfig returns an AccessLog middleware with config.
func AccessLogWithConfig(config AccessLogConfig) echo.MiddlewareFunc {
	skip := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Logger == nil || skip[c.Request().URL.Path] {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			requestID, _ := c.Get("request_id").(string)
			fields := []zap.Field{
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
			}
			if requestID != "" {
				fields = append(fields, zap.String("request_id", requestID))
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}

			config.Logger.Info("request", fields...)
			return err
		}
	}
}
