package testhelpers

import (
	"context"
	"sync"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
)

// FakeProvider returns a canned result or error and records every call.
// When FailFirst is positive, Err is returned only for that many calls.
type FakeProvider struct {
	mu        sync.Mutex
	Result    airquality.NormalizedPollution
	Err       error
	FailFirst int
	Calls     []Coordinates
}

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

func (p *FakeProvider) Name() string { return "fake" }

func (p *FakeProvider) NearestCity(ctx context.Context, latitude, longitude float64) (airquality.NormalizedPollution, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, Coordinates{Latitude: latitude, Longitude: longitude})
	if p.Err != nil && (p.FailFirst <= 0 || len(p.Calls) <= p.FailFirst) {
		return airquality.NormalizedPollution{}, p.Err
	}
	return p.Result, nil
}

// CallCount returns the number of NearestCity calls so far.
func (p *FakeProvider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}

// FailingStore fails every operation with Err.
type FailingStore struct {
	Err error
}

func (s FailingStore) Insert(ctx context.Context, r airquality.Reading) error {
	return s.Err
}

func (s FailingStore) FindMostPolluted(ctx context.Context, zone string, field airquality.PollutantField) (airquality.Reading, error) {
	return airquality.Reading{}, s.Err
}
