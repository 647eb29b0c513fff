package httpapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
)

// TestCorrelationIDMiddleware_GeneratesAndEchoes verifies that a request
// without an id gets a fresh UUID and that a provided id is echoed back.
func TestCorrelationIDMiddleware_GeneratesAndEchoes(t *testing.T) {
	app := fiber.New()
	app.Use(CorrelationIDMiddleware(nil))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(localsCorrelationID).(string))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	generated := resp.Header.Get(correlationHeader)
	_, parseErr := uuid.Parse(generated)
	assert.NoError(t, parseErr)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(correlationHeader, "abc-123")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get(correlationHeader))
}

func TestRateLimitMiddleware(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(nil)})
	app.Use(RateLimitMiddleware(NewLimiter(1, 1)))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestNewLimiter_DisabledWhenNotPositive(t *testing.T) {
	assert.Nil(t, NewLimiter(0, 10))
	assert.Nil(t, NewLimiter(-1, 10))
	assert.NotNil(t, NewLimiter(5, 0))
}

func TestTimeoutMiddleware_SetsDeadline(t *testing.T) {
	app := fiber.New()
	app.Use(TimeoutMiddleware(time.Second))
	app.Get("/", func(c *fiber.Ctx) error {
		if _, ok := c.UserContext().Deadline(); !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

// TestObserveMiddleware_LogsFinalStatus verifies that chain errors are
// rendered before the access log line is written.
func TestObserveMiddleware_LogsFinalStatus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)
	errHandler := ErrorHandler(logger)

	app := fiber.New(fiber.Config{ErrorHandler: errHandler})
	app.Use(CorrelationIDMiddleware(logger))
	app.Use(ObserveMiddleware(logger, errHandler))
	app.Get("/missing", func(c *fiber.Ctx) error {
		return airquality.NoDataForZone("Paris")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, fiber.StatusNotFound, fields["status"])
	assert.NotEmpty(t, fields["correlation_id"])
}

func TestErrorHandler_Mapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"invalid argument", airquality.InvalidArgument("bad"), 400, "bad"},
		{"not found", airquality.NotFound("none"), 404, "none"},
		{"upstream", airquality.Upstream("down", nil), 500, "Failed to fetch air quality data: down"},
		{"persistence", airquality.Persistence("db", errors.New("secret detail")), 500, "Internal Server Error"},
		{"unclassified", errors.New("secret detail"), 500, "Internal Server Error"},
		{"fiber client error", fiber.NewError(fiber.StatusTooManyRequests, "Too many requests"), 429, "Too many requests"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(nil)})
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			status, body := doGet(t, app, "/")

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMsg, errorMessageOf(t, body))
		})
	}
}
