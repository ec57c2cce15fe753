package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const envPrefix = "SOLARWEATHER"

// setDefaults registers the fallback value of every key.
func setDefaults() {
	viper.SetDefault("port", "8080")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("db.driver", "sqlite")
	viper.SetDefault("db.path", "solarweather.db")
	viper.SetDefault("cache.ttl", time.Hour)
	viper.SetDefault("station.rate_limit", 1.0)
	viper.SetDefault("station.burst", 5)
	viper.SetDefault("solar.poll_interval", time.Minute)
	viper.SetDefault("dashboard.trend_interval", 5*time.Minute)
	viper.SetDefault("auth.token_ttl", time.Hour)
	viper.SetDefault("kafka.topic", "solarweather.latest")
	viper.SetDefault("kafka.interval", time.Minute)
	viper.SetDefault("mqtt.client_id", "solarweather")
	viper.SetDefault("mqtt.topic", "solarweather")
	viper.SetDefault("mqtt.interval", time.Minute)
	viper.SetDefault("client.base_url", "http://localhost:8080")
}

// Load reads configs/config.yml (or configPath when set), applies
// SOLARWEATHER_* environment overrides and validates the result.
// A missing config file is not an error; defaults apply.
func Load(configPath string) (*Config, error) {
	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("configs")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configPath != "" {
		viper.SetConfigFile(configPath)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", cfg.Log.Level)
	}

	switch cfg.DB.Driver {
	case "sqlite":
		if cfg.DB.Path == "" {
			return errors.New("db.path is required for sqlite")
		}
	case "postgres":
		if cfg.DB.DSN == "" {
			return errors.New("db.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("invalid db driver %q (must be sqlite or postgres)", cfg.DB.Driver)
	}

	if cfg.Dashboard.TrendInterval < time.Second {
		return fmt.Errorf("dashboard.trend_interval must be at least 1s, got %s", cfg.Dashboard.TrendInterval)
	}
	if cfg.Solar.APIHost != "" && cfg.Solar.PollInterval <= 0 {
		return errors.New("solar.poll_interval must be positive")
	}
	if len(cfg.Kafka.Brokers) > 0 && (cfg.Kafka.Topic == "" || cfg.Kafka.Interval <= 0) {
		return errors.New("kafka.topic and a positive kafka.interval are required when brokers are set")
	}
	if cfg.MQTT.Broker != "" && (cfg.MQTT.Topic == "" || cfg.MQTT.Interval <= 0) {
		return errors.New("mqtt.topic and a positive mqtt.interval are required when a broker is set")
	}
	if cfg.Station.RateLimit <= 0 || cfg.Station.Burst <= 0 {
		return errors.New("station.rate_limit and station.burst must be positive")
	}
	return nil
}

// Watch re-reads the configuration whenever the file changes and hands
// the validated result to callback. Invalid edits are reported through
// onError and otherwise ignored.
func Watch(callback func(*Config), onError func(error)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg := &Config{}
		if err := viper.Unmarshal(cfg); err != nil {
			onError(fmt.Errorf("unmarshal config %s: %w", e.Name, err))
			return
		}
		if err := validate(cfg); err != nil {
			onError(fmt.Errorf("invalid configuration in %s: %w", e.Name, err))
			return
		}
		callback(cfg)
	})
	viper.WatchConfig()
}
