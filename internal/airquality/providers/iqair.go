package providers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
	"github.com/i474232898/air-quality-monitor/internal/observability"
)

// DefaultIQAirBaseURL is the AirVisual v2 API root.
const DefaultIQAirBaseURL = "http://api.airvisual.com/v2"

// IQAirProvider implements the airquality.Provider interface for IQAir (AirVisual).
type IQAirProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewIQAirProvider(client *http.Client, baseURL, apiKey string, logger *zap.Logger) *IQAirProvider {
	logger = observability.OrNop(logger)
	if baseURL == "" {
		baseURL = DefaultIQAirBaseURL
	}

	const name = "iqair"
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("provider", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			observability.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	})

	return &IQAirProvider{
		name:    name,
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: HTTPClientConfig{Client: client},
		circuit: cb,
		logger:  logger,
	}
}

func (p *IQAirProvider) Name() string {
	return p.name
}

// NearestCity fetches current pollution for the city nearest to the given
// coordinates. Any failure is returned as an upstream *airquality.Error.
func (p *IQAirProvider) NearestCity(ctx context.Context, latitude, longitude float64) (airquality.NormalizedPollution, error) {
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", strconv.FormatFloat(latitude, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(longitude, 'f', -1, 64))
		values.Set("key", p.apiKey)

		return http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/nearest_city?"+values.Encode(), nil)
	}

	start := time.Now()
	body, err := doRequest(ctx, p.httpCfg, p.circuit, buildRequest)
	status := statusLabel(err)
	observability.ProviderCallsTotal.WithLabelValues(p.name, status).Inc()
	observability.ProviderDuration.WithLabelValues(p.name, status).Observe(time.Since(start).Seconds())

	if err != nil {
		p.logger.Debug("nearest_city call failed",
			zap.Float64("latitude", latitude),
			zap.Float64("longitude", longitude),
			zap.String("status", status),
			zap.Error(err),
		)
		return airquality.NormalizedPollution{}, airquality.Upstream(upstreamDetail(err), err)
	}

	return Normalize(body), nil
}

// upstreamDetail prefers the provider's own error message over the
// transport-level description.
func upstreamDetail(err error) string {
	var se *statusError
	if errors.As(err, &se) {
		if msg := errorMessage(se.Body); msg != "" {
			return msg
		}
	}
	return err.Error()
}

func statusLabel(err error) string {
	var se *statusError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, errCircuitOpen):
		return "circuit_open"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	case errors.As(err, &se):
		if se.StatusCode == http.StatusTooManyRequests {
			return "rate_limited"
		}
		if se.StatusCode >= 500 {
			return "server_error"
		}
		return "client_error"
	default:
		return "error"
	}
}
