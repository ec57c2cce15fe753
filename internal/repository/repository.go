package repository

import (
	"context"

	"solarweather/internal/models"

	"github.com/jmoiron/sqlx"
)

// Aggregate selects the SQL aggregate used by MetricReader.Extreme.
type Aggregate string

const (
	Max Aggregate = "MAX"
	Min Aggregate = "MIN"
)

// MetricReader answers per-metric questions over a time_stamp range.
// Ranges are half open: from <= time_stamp < to (epoch seconds).
type MetricReader interface {
	// Extreme returns the MAX/MIN of metric, and false when no rows match.
	Extreme(ctx context.Context, metric string, agg Aggregate, from, to int64) (float64, bool, error)
	// Latest returns the newest value strictly before the given time.
	Latest(ctx context.Context, metric string, before int64) (float64, bool, error)
	// Trend averages metric over buckets of bucket seconds.
	Trend(ctx context.Context, metric string, from, to, bucket int64) ([]models.TrendPoint, error)
	// Series returns every raw reading in time order.
	Series(ctx context.Context, metric string, from, to int64) ([]models.TrendPoint, error)
}

type WeatherRepo interface {
	MetricReader
	Insert(ctx context.Context, r models.WeatherReading) (int64, error)
}

type SolarRepo interface {
	MetricReader
	Insert(ctx context.Context, r models.SolarReading) (int64, error)
}

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

type Repository struct {
	Weather WeatherRepo
	Solar   SolarRepo
	Auth    Authorization
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		Weather: NewWeatherSQL(db),
		Solar:   NewSolarSQL(db),
		Auth:    NewUserRepository(db),
	}
}
