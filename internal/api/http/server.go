package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
	"github.com/i474232898/air-quality-monitor/internal/observability"
)

// ServerOptions tunes the Fiber app built by NewApp.
type ServerOptions struct {
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewApp builds the Fiber app with global middleware, /metrics and the API routes.
func NewApp(service *airquality.Service, zone airquality.Zone, logger *zap.Logger, opts ServerOptions) *fiber.App {
	logger = observability.OrNop(logger)
	errHandler := ErrorHandler(logger)

	app := fiber.New(fiber.Config{
		AppName:               "air-quality-monitor",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          errHandler,
	})

	// Global middleware
	app.Use(CorrelationIDMiddleware(logger))
	app.Use(ObserveMiddleware(logger, errHandler))
	app.Use(recover.New())

	app.Get("/metrics", adaptor.HTTPHandler(observability.MetricsHandler()))

	RegisterRoutes(app, service, zone,
		RateLimitMiddleware(NewLimiter(opts.RateLimitRPS, opts.RateLimitBurst)),
		TimeoutMiddleware(opts.RequestTimeout),
	)

	return app
}
