package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
	"github.com/i474232898/air-quality-monitor/internal/observability"
)

// DefaultInterval is used when no positive interval is configured.
const DefaultInterval = time.Minute

// Ingester runs one ingestion for a zone.
type Ingester interface {
	Ingest(ctx context.Context, zone airquality.Zone) airquality.IngestOutcome
}

// Scheduler periodically ingests air quality readings for one zone.
type Scheduler struct {
	scheduler *gocron.Scheduler
	ingester  Ingester
	zone      airquality.Zone
	interval  time.Duration
	logger    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new Scheduler. Nothing runs until Start.
func New(zone airquality.Zone, interval time.Duration, ingester Ingester, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		ingester:  ingester,
		zone:      zone,
		interval:  interval,
		logger:    observability.OrNop(logger).With(zap.String("component", "scheduler")),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start schedules the periodic job and starts the underlying scheduler. The
// first run fires immediately. Runs are not serialized: a slow run may
// overlap the next one.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).Do(func() {
		s.RunOnce(s.ctx)
	})
	if err != nil {
		return err
	}

	s.logger.Info("scheduler started",
		zap.String("zone", s.zone.Name),
		zap.Duration("interval", s.interval),
	)
	s.scheduler.StartAsync()
	return nil
}

// RunOnce performs a single ingestion and records its outcome.
func (s *Scheduler) RunOnce(ctx context.Context) airquality.IngestOutcome {
	s.logger.Debug("running air quality ingestion", zap.String("zone", s.zone.Name))

	outcome := s.ingester.Ingest(ctx, s.zone)
	observability.IngestionRunsTotal.WithLabelValues(s.zone.Name, string(outcome)).Inc()

	s.logger.Debug("completed air quality ingestion",
		zap.String("zone", s.zone.Name),
		zap.String("outcome", string(outcome)),
	)
	return outcome
}

// Stop cancels in-flight runs and stops future ones.
func (s *Scheduler) Stop() {
	s.cancel()
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
