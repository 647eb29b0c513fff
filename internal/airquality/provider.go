package airquality

import (
	"context"
	"time"
)

// Provider abstracts an air-quality data source (e.g. IQAir nearest_city).
// Implementations return an *Error of KindUpstream on any failure and never
// fail on a malformed payload: missing data normalizes to an empty Pollution.
type Provider interface {
	Name() string
	NearestCity(ctx context.Context, latitude, longitude float64) (NormalizedPollution, error)
}

// Store is the contract every reading store backend must satisfy.
type Store interface {
	Insert(ctx context.Context, r Reading) error
	FindMostPolluted(ctx context.Context, zone string, field PollutantField) (Reading, error)
}

// LiveCache stores live lookup results for a short time.
type LiveCache interface {
	Get(ctx context.Context, key string) (NormalizedPollution, bool, error)
	Set(ctx context.Context, key string, value NormalizedPollution, ttl time.Duration) error
}
