package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solarweather/internal/cache"
	"solarweather/internal/config"
	"solarweather/internal/handlers"
	"solarweather/internal/inverter"
	"solarweather/internal/logger"
	"solarweather/internal/metrics"
	"solarweather/internal/repository"
	"solarweather/internal/repository/db"
	"solarweather/internal/server"
	"solarweather/internal/service"

	"github.com/jmoiron/sqlx"
)

const (
	shutdownTimeout = 10 * time.Second
	inverterTimeout = 10 * time.Second
)

// @title        SolarWeather API
// @version      1.0
// @description  Weather station ingest, solar inverter statistics and dashboard data.
// @BasePath     /
// @securityDefinitions.apikey BearerAuth
// @in           header
// @name         Authorization
func main() {
	configPath := flag.String("config", "", "path to config.yml (default configs/config.yml)")
	backupPath := flag.String("backup", "", "write an sqlite backup to this path and exit")
	restorePath := flag.String("restore", "", "replace the sqlite database with this backup and exit")
	rebuild := flag.Bool("rebuild-cache", false, "clear and rebuild the statistics cache and exit")
	flag.Parse()

	// init logger
	log := logger.Get(logger.InfoLevel)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalw("error reading config", "err", err)
	}
	log.SetLevel(cfg.Log.Level)

	if *restorePath != "" {
		if cfg.DB.Driver != db.DriverSQLite {
			log.Fatalw("restore is only supported for sqlite", "driver", cfg.DB.Driver)
		}
		if err := db.Restore(*restorePath, cfg.DB.Path); err != nil {
			log.Fatalw("restore failed", "err", err)
		}
		log.Infow("database restored", "from", *restorePath, "to", cfg.DB.Path)
		return
	}

	conn, err := openDB(cfg)
	if err != nil {
		log.Fatalw("failed to open database", "driver", cfg.DB.Driver, "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close database", "err", cerr)
		}
	}()

	c, err := openCache(cfg, log)
	if err != nil {
		log.Fatalw("failed to connect to redis", "err", err)
	}
	defer func() { _ = c.Close() }()

	m := metrics.New()
	deps, err := buildDeps(cfg, conn, c, m, log)
	if err != nil {
		log.Fatalw("failed to connect to mqtt broker", "broker", cfg.MQTT.Broker, "err", err)
	}
	services := service.NewService(deps)

	// one-shot maintenance commands
	switch {
	case *backupPath != "":
		if err := services.Backup(context.Background(), *backupPath); err != nil {
			log.Fatalw("backup failed", "err", err)
		}
		return
	case *rebuild:
		res, err := services.RebuildCache(context.Background())
		if err != nil {
			log.Fatalw("cache rebuild failed", "err", err)
		}
		log.Infow("cache rebuilt", "metrics", res.Metrics, "duration", res.Duration)
		return
	}

	config.Watch(func(next *config.Config) {
		log.SetLevel(next.Log.Level)
		log.Infow("configuration reloaded", "log_level", next.Log.Level)
	}, func(err error) {
		log.Errorw("configuration reload rejected", "err", err)
	})

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	startWorkers(ctx, services, cfg, log)

	apiHandler := handlers.NewHandler(services, log, m)
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	waitForShutdown(cancel, srv, log)
}

func openDB(cfg *config.Config) (*sqlx.DB, error) {
	source := cfg.DB.Path
	if cfg.DB.Driver == db.DriverPostgres {
		source = cfg.DB.DSN
	}
	return db.Open(cfg.DB.Driver, source)
}

// openCache uses Redis when configured and process memory otherwise.
func openCache(cfg *config.Config, log *logger.Logger) (cache.Cache, error) {
	if cfg.Cache.RedisURL == "" {
		log.Infow("cache.redis_url not set; using in-memory cache")
		return cache.NewMemory(), nil
	}
	return cache.NewRedis(cfg.Cache.RedisURL)
}

func buildDeps(cfg *config.Config, conn *sqlx.DB, c cache.Cache, m *metrics.Metrics, log *logger.Logger) (service.Deps, error) {
	deps := service.Deps{
		Repos:   repository.NewRepository(conn),
		DB:      conn,
		Cache:   c,
		Metrics: m,
		Config:  cfg,
		Log:     log,
	}
	if cfg.Solar.APIHost != "" {
		deps.Inverter = inverter.NewClient(cfg.Solar.APIHost, &http.Client{Timeout: inverterTimeout})
	}
	if len(cfg.Kafka.Brokers) > 0 {
		deps.Messages = service.NewKafkaWriter(cfg.Kafka)
	}
	if cfg.MQTT.Broker != "" {
		w, err := service.NewMQTTWriter(cfg.MQTT)
		if err != nil {
			return service.Deps{}, err
		}
		deps.MQTT = w
	}
	return deps, nil
}

func startWorkers(ctx context.Context, s *service.Service, cfg *config.Config, log *logger.Logger) {
	if s.Solar != nil {
		log.Infow("starting solar poller", "host", cfg.Solar.APIHost, "interval", cfg.Solar.PollInterval)
		go s.Solar.Run(ctx, cfg.Solar.PollInterval)
	}
	if s.Publisher != nil {
		log.Infow("starting publisher", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
		go s.Publisher.Run(ctx, cfg.Kafka.Interval)
	}
	if s.MQTTPublisher != nil {
		log.Infow("starting mqtt publisher", "broker", cfg.MQTT.Broker, "topic", cfg.MQTT.Topic)
		go s.MQTTPublisher.Run(ctx, cfg.MQTT.Interval)
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("http server listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
