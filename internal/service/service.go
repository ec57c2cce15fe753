package service

import (
	"context"
	"net/url"
	"time"

	"solarweather/internal/cache"
	"solarweather/internal/config"
	"solarweather/internal/logger"
	"solarweather/internal/metrics"
	"solarweather/internal/models"
	"solarweather/internal/repository"

	"github.com/jmoiron/sqlx"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Station accepts uploads from the weather station.
type Station interface {
	Ingest(ctx context.Context, query url.Values) (int64, error)
}

// Dashboard builds the read-only snapshots served to dashboards.
type Dashboard interface {
	Snapshot(ctx context.Context, q SnapshotQuery) (models.Snapshot, error)
}

// Admin exposes maintenance operations.
type Admin interface {
	RebuildCache(ctx context.Context) (RebuildResult, error)
	Backup(ctx context.Context, path string) error
}

// Poller runs a background loop until ctx is canceled.
type Poller interface {
	Run(ctx context.Context, interval time.Duration)
}

type Service struct {
	Authorization
	Station
	Dashboard
	Readings
	Admin

	// Solar is nil when no inverter is configured.
	Solar Poller
	// Publisher is nil when no Kafka brokers are configured.
	Publisher Poller
	// MQTTPublisher is nil when no MQTT broker is configured.
	MQTTPublisher Poller
}

// Deps are the infrastructure pieces NewService wires together.
type Deps struct {
	Repos    *repository.Repository
	DB       *sqlx.DB
	Cache    cache.Cache
	Inverter InverterClient // optional
	Messages MessageWriter  // optional
	MQTT     MessageWriter  // optional
	Metrics  *metrics.Metrics
	Config   *config.Config
	Log      *logger.Logger
}

// NewService wires the repository layer into concrete services.
func NewService(d Deps) *Service {
	cfg := d.Config
	loc := cfg.Dashboard.Location()
	stats := NewStatsService(d.Repos.Weather, d.Repos.Solar, d.Cache, cfg.Cache.TTL, loc)

	s := &Service{
		Authorization: NewAuthService(d.Repos.Auth, cfg.Auth.SigningKey, cfg.Auth.TokenTTL),
		Station:       NewStationService(d.Repos.Weather, stats, cfg.Station, loc, d.Log),
		Dashboard:     NewDashboardService(stats, cfg.Dashboard.TrendInterval),
		Readings:      NewReadingsService(stats),
		Admin:         NewAdminService(d.DB, stats, d.Log),
	}
	if d.Inverter != nil {
		s.Solar = NewSolarPoller(d.Inverter, d.Repos.Solar, stats, loc, d.Log, d.Metrics)
	}
	if d.Messages != nil {
		s.Publisher = NewPublisher(WorkerKafka, stats, d.Messages, d.Log, d.Metrics)
	}
	if d.MQTT != nil {
		s.MQTTPublisher = NewPublisher(WorkerMQTT, stats, d.MQTT, d.Log, d.Metrics)
	}
	return s
}
