package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"solarweather/internal/models"
	"solarweather/internal/repository"
)

const (
	defaultReadingsSpan = 24 * time.Hour
	maxReadingsSpan     = 31 * 24 * time.Hour
)

var (
	ErrInvalidTimeRange = errors.New("invalid time range: from must be before to")
	ErrRangeTooLarge    = fmt.Errorf("time range exceeds %s", maxReadingsSpan)
)

// ReadingFilter selects raw readings of one metric.
type ReadingFilter struct {
	Metric string
	From   time.Time // inclusive; zero means To minus one day
	To     time.Time // exclusive; zero means now
}

// Readings lists raw stored values for export and inspection.
type Readings interface {
	List(ctx context.Context, f ReadingFilter) ([]models.TrendPoint, error)
}

type ReadingsService struct {
	stats *StatsService
}

func NewReadingsService(stats *StatsService) *ReadingsService {
	return &ReadingsService{stats: stats}
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeMetric trims spaces and lowercases the metric name.
func normalizeMetric(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizeAndValidateFilter fills in default bounds and checks the range.
func normalizeAndValidateFilter(f ReadingFilter, now time.Time) (ReadingFilter, error) {
	out := ReadingFilter{
		Metric: normalizeMetric(f.Metric),
		From:   normalizeToUTC(f.From),
		To:     normalizeToUTC(f.To),
	}
	if !models.IsWeatherMetric(out.Metric) && !models.IsSolarMetric(out.Metric) {
		return ReadingFilter{}, fmt.Errorf("%w: %q", repository.ErrUnknownMetric, f.Metric)
	}
	if out.To.IsZero() {
		out.To = now.UTC()
	}
	if out.From.IsZero() {
		out.From = out.To.Add(-defaultReadingsSpan)
	}
	if !out.From.Before(out.To) {
		return ReadingFilter{}, ErrInvalidTimeRange
	}
	if out.To.Sub(out.From) > maxReadingsSpan {
		return ReadingFilter{}, ErrRangeTooLarge
	}
	return out, nil
}

func (s *ReadingsService) List(ctx context.Context, f ReadingFilter) ([]models.TrendPoint, error) {
	f, err := normalizeAndValidateFilter(f, s.stats.now())
	if err != nil {
		return nil, err
	}
	r, err := s.stats.reader(f.Metric)
	if err != nil {
		return nil, err
	}
	return r.Series(ctx, f.Metric, f.From.Unix(), f.To.Unix())
}
