package store

import (
	"context"
	"sync"
	"time"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
	"github.com/i474232898/air-quality-monitor/internal/observability"
)

// ReadingHistory holds the readings of one zone in insertion order.
type ReadingHistory struct {
	Readings []airquality.Reading
}

// MemoryStore is a concurrency-safe in-memory implementation of airquality.Store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: zone name, value: history
	data map[string]*ReadingHistory
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]*ReadingHistory),
	}
}

// Insert appends a reading to its zone's history.
func (s *MemoryStore) Insert(ctx context.Context, r airquality.Reading) (err error) {
	defer func(start time.Time) { observability.ObserveStore(BackendMemory, "insert", start, err) }(time.Now())

	if err := ctx.Err(); err != nil {
		return airquality.Persistence("inserting reading", err)
	}
	if err := r.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[r.Zone]
	if !ok {
		history = &ReadingHistory{}
		s.data[r.Zone] = history
	}
	history.Readings = append(history.Readings, r)
	return nil
}

// FindMostPolluted returns the reading of zone that ranks highest for field.
func (s *MemoryStore) FindMostPolluted(ctx context.Context, zone string, field airquality.PollutantField) (_ airquality.Reading, err error) {
	defer func(start time.Time) { observability.ObserveStore(BackendMemory, "find_most_polluted", start, err) }(time.Now())

	if !field.Valid() {
		return airquality.Reading{}, airquality.InvalidArgument(airquality.MsgInvalidPollutant)
	}
	if err := ctx.Err(); err != nil {
		return airquality.Reading{}, airquality.Persistence("querying readings", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[zone]
	if !ok || len(history.Readings) == 0 {
		return airquality.Reading{}, airquality.NoDataForZone(zone)
	}

	best := history.Readings[0]
	for _, r := range history.Readings[1:] {
		// Later insertions win ties.
		if !airquality.MorePolluted(best, r, field) {
			best = r
		}
	}
	return best, nil
}

// Len returns the number of readings stored for zone.
func (s *MemoryStore) Len(zone string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if history, ok := s.data[zone]; ok {
		return len(history.Readings)
	}
	return 0
}
