package service

import (
	"context"
	"time"

	"solarweather/internal/logger"
	"solarweather/internal/metrics"
	"solarweather/internal/models"
	"solarweather/internal/repository"
)

const workerSolar = "solar"

// InverterClient reads one combined grid and inverter sample.
type InverterClient interface {
	Reading(ctx context.Context, at time.Time) (models.SolarReading, error)
}

// SolarPoller stores an inverter reading on every tick.
type SolarPoller struct {
	client  InverterClient
	repo    repository.SolarRepo
	stats   *StatsService
	loc     *time.Location
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewSolarPoller(client InverterClient, repo repository.SolarRepo, stats *StatsService, loc *time.Location, log *logger.Logger, m *metrics.Metrics) *SolarPoller {
	if log == nil {
		log = logger.Nop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &SolarPoller{client: client, repo: repo, stats: stats, loc: loc, log: log, metrics: m}
}

// Run polls at the given interval until ctx is canceled.
func (p *SolarPoller) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if _, err := p.Poll(ctx, now); err != nil {
				p.log.Errorw("solar_poll_failed", "err", err)
			}
		}
	}
}

// Poll takes one reading, stores it and refreshes the cached statistics.
func (p *SolarPoller) Poll(ctx context.Context, now time.Time) (int64, error) {
	id, err := p.poll(ctx, now)
	p.metrics.WorkerRun(workerSolar, err)
	return id, err
}

func (p *SolarPoller) poll(ctx context.Context, now time.Time) (int64, error) {
	reading, err := p.client.Reading(ctx, now.In(p.loc))
	if err != nil {
		return 0, err
	}
	id, err := p.repo.Insert(ctx, reading)
	if err != nil {
		return 0, err
	}
	if err := p.stats.Record(ctx, reading.Values(), now); err != nil {
		p.log.Errorw("solar_stats_update_failed", "id", id, "err", err)
	}
	p.log.Debugw("solar_reading_stored", "id", id, "inverter_ac_power", reading.InverterACPower)
	return id, nil
}
