package config

import "time"

// Config is the full application configuration.
type Config struct {
	Port      string          `mapstructure:"port"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Station   StationConfig   `mapstructure:"station"`
	Solar     SolarConfig     `mapstructure:"solar"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
	Client    ClientConfig    `mapstructure:"client"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DBConfig selects the SQL backend. Path is used by sqlite, DSN by postgres.
type DBConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

// CacheConfig configures the min/max/latest cache. An empty RedisURL keeps
// the cache in process memory.
type CacheConfig struct {
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// StationConfig guards the weather station upload endpoint.
type StationConfig struct {
	ID           string  `mapstructure:"id"`
	PasswordHash string  `mapstructure:"password_hash"`
	RateLimit    float64 `mapstructure:"rate_limit"`
	Burst        int     `mapstructure:"burst"`
}

// SolarConfig configures the inverter poller. Empty APIHost disables it.
type SolarConfig struct {
	APIHost      string        `mapstructure:"api_host"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type DashboardConfig struct {
	TrendInterval time.Duration `mapstructure:"trend_interval"`
	Timezone      string        `mapstructure:"timezone"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

// KafkaConfig configures the latest-reading publisher. No brokers disables it.
type KafkaConfig struct {
	Brokers  []string      `mapstructure:"brokers"`
	Topic    string        `mapstructure:"topic"`
	Interval time.Duration `mapstructure:"interval"`
}

// MQTTConfig configures the MQTT copy of the latest-reading publisher.
// No broker disables it. Messages go to <Topic>/<metric>.
type MQTTConfig struct {
	Broker   string        `mapstructure:"broker"`
	ClientID string        `mapstructure:"client_id"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	TLS      bool          `mapstructure:"tls"`
	Topic    string        `mapstructure:"topic"`
	Interval time.Duration `mapstructure:"interval"`
}

// ClientConfig is read by the terminal dashboard.
type ClientConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// Location resolves the dashboard timezone, falling back to the host zone.
func (d DashboardConfig) Location() *time.Location {
	if d.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
