package httpapi

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/i474232898/air-quality-monitor/internal/observability"
)

const (
	correlationHeader = "X-Correlation-ID"

	localsCorrelationID = "correlation_id"
	localsLogger        = "logger"
)

// CorrelationIDMiddleware tags each request with an id (taken from the
// X-Correlation-ID header or generated) and stores a request-scoped logger.
func CorrelationIDMiddleware(logger *zap.Logger) fiber.Handler {
	logger = observability.OrNop(logger)
	return func(c *fiber.Ctx) error {
		corrID := c.Get(correlationHeader)
		if corrID == "" {
			corrID = uuid.New().String()
		}

		c.Set(correlationHeader, corrID)
		c.Locals(localsCorrelationID, corrID)
		c.Locals(localsLogger, logger.With(zap.String("correlation_id", corrID)))

		return c.Next()
	}
}

// RequestLogger returns the request-scoped logger, or fallback when the
// correlation middleware did not run.
func RequestLogger(c *fiber.Ctx, fallback *zap.Logger) *zap.Logger {
	if logger, ok := c.Locals(localsLogger).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return observability.OrNop(fallback)
}

// ObserveMiddleware records request metrics and writes one access log line per
// request. Chain errors are rendered here through errHandler so the final
// status code is known.
func ObserveMiddleware(logger *zap.Logger, errHandler fiber.ErrorHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if chainErr := c.Next(); chainErr != nil {
			if err := errHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		duration := time.Since(start)
		status := c.Response().StatusCode()
		route := c.Route().Path
		method := c.Method()

		observability.HTTPRequestsTotal.WithLabelValues(method, route, statusCodeString(status)).Inc()
		observability.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())

		RequestLogger(c, logger).Info("request completed",
			zap.String("method", method),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", duration),
		)
		return nil
	}
}

func statusCodeString(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

// TimeoutMiddleware sets a deadline on the request's user context.
func TimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if timeout <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// RateLimitMiddleware returns 429 when the token bucket is exhausted. Disabled when limiter is nil.
func RateLimitMiddleware(limiter *rate.Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter == nil || limiter.Allow() {
			return c.Next()
		}
		RequestLogger(c, nil).Debug("rate limit denied")
		observability.RateLimitDeniedTotal.Inc()
		return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests")
	}
}

// NewLimiter builds the token bucket for RateLimitMiddleware. It returns nil
// (no limiting) when rps is not positive.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
