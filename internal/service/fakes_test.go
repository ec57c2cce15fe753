package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"solarweather/internal/cache"
	"solarweather/internal/models"
	"solarweather/internal/repository"
)

// fakeTable is an in-memory readings table implementing the repository
// interfaces over [epoch, value] points per metric.
type fakeTable struct {
	points   map[string][]models.TrendPoint
	isMetric func(string) bool
	queries  int
	err      error
	nextID   int64
}

func newFakeTable(isMetric func(string) bool) *fakeTable {
	return &fakeTable{points: map[string][]models.TrendPoint{}, isMetric: isMetric}
}

func (f *fakeTable) add(metric string, ts int64, v float64) {
	f.points[metric] = append(f.points[metric], models.TrendPoint{float64(ts), v})
	sort.Slice(f.points[metric], func(i, j int) bool { return f.points[metric][i][0] < f.points[metric][j][0] })
}

func (f *fakeTable) inRange(metric string, from, to int64) ([]models.TrendPoint, error) {
	f.queries++
	if f.err != nil {
		return nil, f.err
	}
	if !f.isMetric(metric) {
		return nil, repository.ErrUnknownMetric
	}
	var out []models.TrendPoint
	for _, p := range f.points[metric] {
		if int64(p[0]) >= from && int64(p[0]) < to {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeTable) Extreme(_ context.Context, metric string, agg repository.Aggregate, from, to int64) (float64, bool, error) {
	pts, err := f.inRange(metric, from, to)
	if err != nil || len(pts) == 0 {
		return 0, false, err
	}
	best := pts[0][1]
	for _, p := range pts[1:] {
		if (agg == repository.Max && p[1] > best) || (agg == repository.Min && p[1] < best) {
			best = p[1]
		}
	}
	return best, true, nil
}

func (f *fakeTable) Latest(_ context.Context, metric string, before int64) (float64, bool, error) {
	pts, err := f.inRange(metric, 0, before)
	if err != nil || len(pts) == 0 {
		return 0, false, err
	}
	return pts[len(pts)-1][1], true, nil
}

func (f *fakeTable) Trend(_ context.Context, metric string, from, to, bucket int64) ([]models.TrendPoint, error) {
	pts, err := f.inRange(metric, from, to)
	if err != nil {
		return nil, err
	}
	var out []models.TrendPoint
	var sum float64
	var n int
	flush := func(start float64) {
		if n > 0 {
			out = append(out, models.TrendPoint{start, sum / float64(n)})
		}
	}
	cur := float64(-1)
	for _, p := range pts {
		start := float64((int64(p[0]) / bucket) * bucket)
		if start != cur {
			flush(cur)
			cur, sum, n = start, 0, 0
		}
		sum += p[1]
		n++
	}
	flush(cur)
	return out, nil
}

func (f *fakeTable) Series(_ context.Context, metric string, from, to int64) ([]models.TrendPoint, error) {
	return f.inRange(metric, from, to)
}

type fakeWeatherRepo struct {
	*fakeTable
	inserted []models.WeatherReading
}

func (f *fakeWeatherRepo) Insert(_ context.Context, r models.WeatherReading) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.inserted = append(f.inserted, r)
	for m, v := range r.Values() {
		f.add(m, r.TimeStamp, v)
	}
	f.nextID++
	return f.nextID, nil
}

type fakeSolarRepo struct {
	*fakeTable
	inserted []models.SolarReading
}

func (f *fakeSolarRepo) Insert(_ context.Context, r models.SolarReading) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.inserted = append(f.inserted, r)
	for m, v := range r.Values() {
		f.add(m, r.TimeStamp, v)
	}
	f.nextID++
	return f.nextID, nil
}

var errBoom = errors.New("boom")

type statsFixture struct {
	weather *fakeWeatherRepo
	solar   *fakeSolarRepo
	cache   *cache.Memory
	stats   *StatsService
}

// testLoc is a fixed +10:00 zone so day boundaries do not depend on the host.
var testLoc = time.FixedZone("AEST", 10*3600)

func newStatsFixture(now time.Time) *statsFixture {
	f := &statsFixture{
		weather: &fakeWeatherRepo{fakeTable: newFakeTable(models.IsWeatherMetric)},
		solar:   &fakeSolarRepo{fakeTable: newFakeTable(models.IsSolarMetric)},
		cache:   cache.NewMemory(),
	}
	f.stats = NewStatsService(f.weather, f.solar, f.cache, time.Hour, testLoc)
	f.stats.now = func() time.Time { return now }
	return f
}
