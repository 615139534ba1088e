// Package middleware provides echo middleware used by the transport
// adapter in front of the dispatcher.
package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestIDConfig defines the config for the RequestID middleware.
type RequestIDConfig struct {
	// Skipper defines a function to skip the middleware.
	Skipper func(echo.Context) bool

	// Generator defines a function to generate an ID.
	// Optional. Defaults to UUID v4.
	Generator func() string

	// TargetHeader defines the header name to look for an existing
	// request ID. Optional. Defaults to X-Request-ID.
	TargetHeader string
}

// DefaultRequestIDConfig is the default RequestID middleware config.
var DefaultRequestIDConfig = RequestIDConfig{
	Skipper:      func(echo.Context) bool { return false },
	Generator:    generateRequestID,
	TargetHeader: echo.HeaderXRequestID,
}

func generateRequestID() string {
	return uuid.New().String()
}

// RequestID returns a middleware that assigns every request a unique ID,
// reusing an incoming one when present, and mirrors it on the response.
func RequestID() echo.MiddlewareFunc {
	return RequestIDWithConfig(DefaultRequestIDConfig)
}

// RequestIDWithConfig returns a RequestID middleware with config.
func RequestIDWithConfig(config RequestIDConfig) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = DefaultRequestIDConfig.Skipper
	}
	if config.Generator == nil {
		config.Generator = DefaultRequestIDConfig.Generator
	}
	if config.TargetHeader == "" {
		config.TargetHeader = DefaultRequestIDConfig.TargetHeader
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			id := c.Request().Header.Get(config.TargetHeader)
			if id == "" {
				id = config.Generator()
			}

			c.Set("request_id", id)
			c.Response().Header().Set(config.TargetHeader, id)

			return next(c)
		}
	}
}
