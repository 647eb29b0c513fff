package airquality

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/i474232898/air-quality-monitor/internal/common"
	"github.com/i474232898/air-quality-monitor/internal/observability"
)

var validate = validator.New()

// IngestOutcome is the result of one scheduled ingestion run.
type IngestOutcome string

const (
	OutcomeStored         IngestOutcome = "stored"
	OutcomeNoData         IngestOutcome = "no_data"
	OutcomeUpstreamFailed IngestOutcome = "upstream_failed"
	OutcomePersistFailed  IngestOutcome = "persist_failed"
)

// LiveQuery holds the raw coordinates of a live lookup as received from the caller.
type LiveQuery struct {
	Latitude  string `validate:"required"`
	Longitude string `validate:"required"`
}

// Service answers live and historical queries and runs ingestion for a zone.
type Service struct {
	store    Store
	provider Provider
	logger   *zap.Logger
	now      func() time.Time

	cache    LiveCache
	cacheTTL time.Duration
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = observability.OrNop(logger) }
}

// WithClock replaces the wall clock used to stamp ingested readings.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLiveCache caches live lookups for ttl. A nil cache or non-positive ttl
// leaves live lookups uncached.
func WithLiveCache(cache LiveCache, ttl time.Duration) Option {
	return func(s *Service) {
		if cache == nil || ttl <= 0 {
			return
		}
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// NewService creates a new Service.
func NewService(store Store, provider Provider, opts ...Option) *Service {
	s := &Service{
		store:    store,
		provider: provider,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LiveLookup fetches current pollution for the nearest city of the given
// coordinates and returns the provider's normalized result unchanged.
func (s *Service) LiveLookup(ctx context.Context, q LiveQuery) (NormalizedPollution, error) {
	q.Latitude = strings.TrimSpace(q.Latitude)
	q.Longitude = strings.TrimSpace(q.Longitude)
	if err := validate.Struct(q); err != nil {
		return NormalizedPollution{}, InvalidArgument(MsgCoordinatesRequired)
	}

	lat, err := parseCoordinate(q.Latitude)
	if err != nil {
		return NormalizedPollution{}, err
	}
	lon, err := parseCoordinate(q.Longitude)
	if err != nil {
		return NormalizedPollution{}, err
	}

	key := common.CoordKey(lat, lon)
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("live cache get failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			observability.LiveCacheHitsTotal.Inc()
			return cached, nil
		}
	}

	result, err := s.provider.NearestCity(ctx, lat, lon)
	if err != nil {
		return NormalizedPollution{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
			s.logger.Warn("live cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return result, nil
}

// parseCoordinate accepts finite decimal numbers only.
func parseCoordinate(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, InvalidArgument(MsgCoordinatesNumeric)
	}
	return v, nil
}

// MostPolluted returns the reading of zone with the highest value of the
// index named by selector ("us", "china", "aqius", "aqicn"; empty means "us").
func (s *Service) MostPolluted(ctx context.Context, zone, selector string) (MostPollutedResult, error) {
	field, err := ParseSelector(selector)
	if err != nil {
		return MostPollutedResult{}, err
	}
	if zone == "" {
		return MostPollutedResult{}, InvalidArgument(MsgZoneRequired)
	}

	r, err := s.store.FindMostPolluted(ctx, zone, field)
	if err != nil {
		return MostPollutedResult{}, err
	}

	return MostPollutedResult{
		PollutionType: field,
		Date:          r.Date.UTC().Format(DateLayout),
		Time:          r.Time,
		Pollution:     r.Pollution.Value(field),
	}, nil
}

// Ingest runs one ingestion for zone: fetch, skip when there is no data,
// otherwise stamp and insert. Every failure is logged and reported only
// through the outcome.
func (s *Service) Ingest(ctx context.Context, zone Zone) IngestOutcome {
	logger := s.logger.With(zap.String("zone", zone.Name))

	result, err := s.provider.NearestCity(ctx, zone.Latitude, zone.Longitude)
	if err != nil {
		logger.Error("fetching air quality failed", zap.String("provider", s.provider.Name()), zap.Error(err))
		return OutcomeUpstreamFailed
	}

	pollution := result.Result.Pollution
	if pollution.IsEmpty() {
		logger.Warn("no data available")
		return OutcomeNoData
	}

	reading, err := NewReading(zone, s.now(), pollution)
	if err == nil {
		if pollution.TS != nil && reading.Pollution.TS.IsZero() {
			logger.Debug("provider timestamp not RFC 3339, stored as zero", zap.String("ts", *pollution.TS))
		}
		err = s.store.Insert(ctx, reading)
	}
	if err != nil {
		logger.Error("saving air quality data failed", zap.Error(err))
		return OutcomePersistFailed
	}

	logger.Info("air quality data saved",
		zap.Int("aqius", reading.Pollution.AQIUS),
		zap.Int("aqicn", reading.Pollution.AQICN),
		zap.String("time", reading.Time),
	)
	return OutcomeStored
}
