package service

import (
	"context"
	"fmt"
	"time"

	"solarweather/internal/logger"
	"solarweather/internal/models"
	"solarweather/internal/repository"
	"solarweather/internal/repository/db"

	"github.com/jmoiron/sqlx"
)

type AdminService struct {
	db    *sqlx.DB
	stats *StatsService
	log   *logger.Logger
}

func NewAdminService(conn *sqlx.DB, stats *StatsService, log *logger.Logger) *AdminService {
	if log == nil {
		log = logger.Nop()
	}
	return &AdminService{db: conn, stats: stats, log: log}
}

// RebuildCache clears the cache and warms today's extremes and the latest
// value of every metric.
func (s *AdminService) RebuildCache(ctx context.Context) (RebuildResult, error) {
	start := time.Now()
	if err := s.stats.Clear(ctx); err != nil {
		return RebuildResult{}, fmt.Errorf("clear cache: %w", err)
	}

	now := s.stats.now()
	metricNames := append(append([]string{}, models.WeatherMetrics...), models.SolarMetrics...)
	for _, m := range metricNames {
		for _, p := range []Period{PeriodDay, PeriodMonth, PeriodYear} {
			for _, agg := range []repository.Aggregate{repository.Max, repository.Min} {
				if _, err := s.stats.Extreme(ctx, m, agg, p, now); err != nil {
					return RebuildResult{}, fmt.Errorf("warm %s %s %s: %w", p, agg, m, err)
				}
			}
		}
		v, ok, err := s.stats.LatestBefore(ctx, m, now.Unix()+1)
		if err != nil {
			return RebuildResult{}, fmt.Errorf("warm latest %s: %w", m, err)
		}
		if ok {
			if err := s.stats.SetLatest(ctx, m, v); err != nil {
				return RebuildResult{}, err
			}
		}
	}

	res := RebuildResult{Metrics: len(metricNames), Duration: time.Since(start)}
	s.log.Infow("cache_rebuilt", "metrics", res.Metrics, "duration", res.Duration)
	return res, nil
}

// Backup writes an sqlite copy of the database to path.
func (s *AdminService) Backup(ctx context.Context, path string) error {
	if err := db.Backup(ctx, s.db, path); err != nil {
		return err
	}
	counts, err := db.TableCounts(ctx, s.db)
	if err != nil {
		return err
	}
	s.log.Infow("database_backed_up", "path", path, "rows", counts)
	return nil
}
