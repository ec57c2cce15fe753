package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"solarweather/internal/models"
	"solarweather/internal/repository"
)

var (
	// ErrInvalidTimestamp is returned for history queries without a usable day.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrUnknownDashboard = errors.New("unknown dashboard")
)

const defaultTrendInterval = 5 * time.Minute

// weather metrics shown alongside the solar ones
var solarDashboardWeatherMetrics = []string{"uv_index", "solar_radiation"}

type DashboardService struct {
	stats         *StatsService
	trendInterval time.Duration
}

func NewDashboardService(stats *StatsService, trendInterval time.Duration) *DashboardService {
	if trendInterval < time.Second {
		trendInterval = defaultTrendInterval
	}
	return &DashboardService{stats: stats, trendInterval: trendInterval}
}

// Snapshot builds the per-metric summaries one dashboard renders.
func (s *DashboardService) Snapshot(ctx context.Context, q SnapshotQuery) (models.Snapshot, error) {
	at := s.stats.now()
	if q.History {
		if q.Timestamp <= 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidTimestamp, q.Timestamp)
		}
		at = time.Unix(q.Timestamp, 0)
	}

	snap := models.Snapshot{}
	switch q.Dashboard {
	case "", DashboardWeather:
		for _, m := range models.WeatherMetrics {
			if err := s.addMetric(ctx, snap, m, at, q.History, false); err != nil {
				return nil, err
			}
		}
	case DashboardSolar:
		for _, m := range models.SolarMetrics {
			if err := s.addMetric(ctx, snap, m, at, q.History, true); err != nil {
				return nil, err
			}
		}
		for _, m := range solarDashboardWeatherMetrics {
			if err := s.addMetric(ctx, snap, m, at, q.History, false); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownDashboard, q.Dashboard)
	}
	return snap, nil
}

func (s *DashboardService) addMetric(ctx context.Context, snap models.Snapshot, metric string, at time.Time, history, energy bool) error {
	var sum models.MetricSummary

	latest, ok, err := s.latest(ctx, metric, at, history)
	if err != nil {
		return fmt.Errorf("latest %s: %w", metric, err)
	}
	if ok {
		sum.Latest = &latest
	}

	for _, e := range []struct {
		dst *float64
		agg repository.Aggregate
		p   Period
	}{
		{&sum.DailyMin, repository.Min, PeriodDay},
		{&sum.DailyMax, repository.Max, PeriodDay},
		{&sum.MonthlyMin, repository.Min, PeriodMonth},
		{&sum.MonthlyMax, repository.Max, PeriodMonth},
		{&sum.YearlyMin, repository.Min, PeriodYear},
		{&sum.YearlyMax, repository.Max, PeriodYear},
	} {
		v, err := s.stats.Extreme(ctx, metric, e.agg, e.p, at)
		if err != nil {
			return fmt.Errorf("%s %s %s: %w", e.p, e.agg, metric, err)
		}
		*e.dst = v
	}

	if energy {
		for _, e := range []struct {
			dst **float64
			p   Period
		}{
			{&sum.Day, PeriodDay},
			{&sum.Week, PeriodWeek},
			{&sum.Month, PeriodMonth},
		} {
			wh, err := s.stats.Accumulated(ctx, metric, e.p, at)
			if err != nil {
				return fmt.Errorf("%s energy %s: %w", e.p, metric, err)
			}
			*e.dst = &wh
		}
	}

	trend, err := s.stats.Trend(ctx, metric, at, s.trendInterval)
	if err != nil {
		return fmt.Errorf("trend %s: %w", metric, err)
	}
	if trend == nil {
		trend = []models.TrendPoint{}
	}
	sum.DailyTrend = trend

	snap[metric] = sum
	return nil
}

func (s *DashboardService) latest(ctx context.Context, metric string, at time.Time, history bool) (float64, bool, error) {
	if !history {
		return s.stats.Latest(ctx, metric)
	}
	_, endOfDay := s.stats.periodRange(at, PeriodDay)
	return s.stats.LatestBefore(ctx, metric, endOfDay)
}
