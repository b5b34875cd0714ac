// Package middleware provides the HTTP middleware chain for the local facade:
// request logging, session gating, tracing, and rate limiting.
package middleware

import (
	"log/slog"
	"time"

	"github.com/kanishk-8/EcoCircle/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// ContextMiddleware injects the request ID into the request context as the
// correlation ID so deep layers log it without seeing Fiber.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			c.SetUserContext(observability.WithCorrelationID(c.UserContext(), rid))
		}
		return c.Next()
	}
}

// StructuredLogger returns a Fiber middleware for logging requests using slog.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		latency := time.Since(start)

		fields := []any{
			slog.Int("status", status),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
			slog.Duration("latency", latency),
		}

		log := observability.GlobalLogger.Logger
		if err != nil {
			fields = append(fields, slog.String("error", err.Error()))
			log.ErrorContext(c.UserContext(), "request failed", fields...)
		} else {
			log.InfoContext(c.UserContext(), "request processed", fields...)
		}

		return err
	}
}
