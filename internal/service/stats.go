package service

import (
	"context"
	"fmt"
	"time"

	"solarweather/internal/cache"
	"solarweather/internal/models"
	"solarweather/internal/repository"
)

const (
	defaultStatsTTL = time.Hour
	// readings further apart than this are treated as a gap, not integrated
	maxIntegrationGap = 15 * time.Minute
)

// StatsService answers min/max, latest and accumulated-energy questions,
// keeping derived values in the cache.
type StatsService struct {
	weather repository.MetricReader
	solar   repository.MetricReader
	cache   cache.Cache
	ttl     time.Duration
	loc     *time.Location
	now     func() time.Time
}

func NewStatsService(weather, solar repository.MetricReader, c cache.Cache, ttl time.Duration, loc *time.Location) *StatsService {
	if ttl <= 0 {
		ttl = defaultStatsTTL
	}
	if loc == nil {
		loc = time.Local
	}
	return &StatsService{weather: weather, solar: solar, cache: c, ttl: ttl, loc: loc, now: time.Now}
}

// reader picks the table that owns metric.
func (s *StatsService) reader(metric string) (repository.MetricReader, error) {
	switch {
	case models.IsWeatherMetric(metric):
		return s.weather, nil
	case models.IsSolarMetric(metric):
		return s.solar, nil
	default:
		return nil, fmt.Errorf("%w: %q", repository.ErrUnknownMetric, metric)
	}
}

// periodRange returns the half-open epoch range of the period containing t.
func (s *StatsService) periodRange(t time.Time, p Period) (int64, int64) {
	t = t.In(s.loc)
	y, m, d := t.Date()
	var from, to time.Time
	switch p {
	case PeriodYear:
		from = time.Date(y, 1, 1, 0, 0, 0, 0, s.loc)
		to = from.AddDate(1, 0, 0)
	case PeriodMonth:
		from = time.Date(y, m, 1, 0, 0, 0, 0, s.loc)
		to = from.AddDate(0, 1, 0)
	case PeriodWeek:
		offset := (int(t.Weekday()) + 6) % 7 // days since Monday
		from = time.Date(y, m, d-offset, 0, 0, 0, 0, s.loc)
		to = from.AddDate(0, 0, 7)
	default:
		from = time.Date(y, m, d, 0, 0, 0, 0, s.loc)
		to = from.AddDate(0, 0, 1)
	}
	return from.Unix(), to.Unix()
}

// extremeKey is e.g. "max_outdoor_temp_2024_3_1" for a day.
func (s *StatsService) extremeKey(metric string, agg repository.Aggregate, p Period, t time.Time) string {
	t = t.In(s.loc)
	prefix := "max_"
	if agg == repository.Min {
		prefix = "min_"
	}
	switch p {
	case PeriodYear:
		return fmt.Sprintf("%s%s_%d", prefix, metric, t.Year())
	case PeriodMonth:
		return fmt.Sprintf("%s%s_%d_%d", prefix, metric, t.Year(), int(t.Month()))
	default:
		return fmt.Sprintf("%s%s_%d_%d_%d", prefix, metric, t.Year(), int(t.Month()), t.Day())
	}
}

func latestKey(metric string) string { return "latest_" + metric }

// Extreme returns the max or min of metric over the period containing at.
// A period without readings reports 0.
func (s *StatsService) Extreme(ctx context.Context, metric string, agg repository.Aggregate, p Period, at time.Time) (float64, error) {
	v, _, err := s.extreme(ctx, metric, agg, p, at)
	return v, err
}

func (s *StatsService) extreme(ctx context.Context, metric string, agg repository.Aggregate, p Period, at time.Time) (float64, bool, error) {
	key := s.extremeKey(metric, agg, p, at)
	if v, ok, err := s.cache.Get(ctx, key); err != nil {
		return 0, false, err
	} else if ok {
		return v, true, nil
	}

	r, err := s.reader(metric)
	if err != nil {
		return 0, false, err
	}
	from, to := s.periodRange(at, p)
	v, ok, err := r.Extreme(ctx, metric, agg, from, to)
	if err != nil || !ok {
		return 0, false, err
	}
	if err := s.cache.Set(ctx, key, v, s.ttl); err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// SetExtreme records value as the period's new max (or min) when it beats
// the current one, rolling the check up from day to month to year.
// It reports whether the period's extreme changed.
func (s *StatsService) SetExtreme(ctx context.Context, metric string, agg repository.Aggregate, p Period, value float64, at time.Time) (bool, error) {
	current, ok, err := s.extreme(ctx, metric, agg, p, at)
	if err != nil {
		return false, err
	}
	if ok && !beats(agg, value, current) {
		return false, nil
	}

	switch p {
	case PeriodDay:
		if _, err := s.SetExtreme(ctx, metric, agg, PeriodMonth, value, at); err != nil {
			return false, err
		}
	case PeriodMonth:
		if _, err := s.SetExtreme(ctx, metric, agg, PeriodYear, value, at); err != nil {
			return false, err
		}
	}
	if err := s.cache.Set(ctx, s.extremeKey(metric, agg, p, at), value, s.ttl); err != nil {
		return false, err
	}
	return true, nil
}

func beats(agg repository.Aggregate, value, current float64) bool {
	if agg == repository.Min {
		return value < current
	}
	return value > current
}

// Latest returns the most recent value of metric. The bool is false when
// the metric has no readings.
func (s *StatsService) Latest(ctx context.Context, metric string) (float64, bool, error) {
	if v, ok, err := s.cache.Get(ctx, latestKey(metric)); err != nil {
		return 0, false, err
	} else if ok {
		return v, true, nil
	}
	return s.LatestBefore(ctx, metric, s.now().Unix()+1)
}

// LatestBefore reads the newest stored value strictly before the epoch
// second, bypassing the cache. History dashboards use it.
func (s *StatsService) LatestBefore(ctx context.Context, metric string, before int64) (float64, bool, error) {
	r, err := s.reader(metric)
	if err != nil {
		return 0, false, err
	}
	return r.Latest(ctx, metric, before)
}

func (s *StatsService) SetLatest(ctx context.Context, metric string, value float64) error {
	return s.cache.Set(ctx, latestKey(metric), value, s.ttl)
}

// Record updates every cached statistic for one stored reading.
func (s *StatsService) Record(ctx context.Context, values map[string]float64, at time.Time) error {
	for metric, v := range values {
		if _, err := s.SetExtreme(ctx, metric, repository.Max, PeriodDay, v, at); err != nil {
			return fmt.Errorf("update max %s: %w", metric, err)
		}
		if _, err := s.SetExtreme(ctx, metric, repository.Min, PeriodDay, v, at); err != nil {
			return fmt.Errorf("update min %s: %w", metric, err)
		}
		if err := s.SetLatest(ctx, metric, v); err != nil {
			return fmt.Errorf("update latest %s: %w", metric, err)
		}
	}
	return nil
}

// Accumulated integrates a power metric (W) over the period containing at
// and returns energy in Wh.
func (s *StatsService) Accumulated(ctx context.Context, metric string, p Period, at time.Time) (float64, error) {
	r, err := s.reader(metric)
	if err != nil {
		return 0, err
	}
	from, to := s.periodRange(at, p)
	points, err := r.Series(ctx, metric, from, to)
	if err != nil {
		return 0, err
	}
	return integrate(points, maxIntegrationGap), nil
}

// integrate applies the trapezoidal rule to [epoch, W] points, skipping
// intervals longer than maxGap, and returns Wh.
func integrate(points []models.TrendPoint, maxGap time.Duration) float64 {
	var wattSeconds float64
	for i := 1; i < len(points); i++ {
		dt := points[i][0] - points[i-1][0]
		if dt <= 0 || dt > maxGap.Seconds() {
			continue
		}
		wattSeconds += (points[i][1] + points[i-1][1]) / 2 * dt
	}
	return wattSeconds / 3600
}

// Trend averages metric over bucket-sized windows of the day containing at.
func (s *StatsService) Trend(ctx context.Context, metric string, at time.Time, bucket time.Duration) ([]models.TrendPoint, error) {
	r, err := s.reader(metric)
	if err != nil {
		return nil, err
	}
	from, to := s.periodRange(at, PeriodDay)
	return r.Trend(ctx, metric, from, to, int64(bucket/time.Second))
}

// Clear drops every cached statistic.
func (s *StatsService) Clear(ctx context.Context) error {
	return s.cache.Clear(ctx)
}
