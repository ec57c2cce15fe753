package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"solarweather/internal/config"
	"solarweather/internal/logger"
	"solarweather/internal/metrics"

	"github.com/segmentio/kafka-go"
)

const (
	// worker names reported in metrics
	WorkerKafka  = "publisher_kafka"
	WorkerMQTT   = "publisher_mqtt"
	writeTimeout = 10 * time.Second
)

// PublishedMetrics are sent on every publisher tick.
var PublishedMetrics = []string{"outdoor_temp", "wind_speed", "pressure"}

// MessageWriter is the part of *kafka.Writer the publisher uses. The MQTT
// sink implements it too.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// LatestMessage is the JSON value of each published message.
type LatestMessage struct {
	Metric    string  `json:"metric"`
	Value     float64 `json:"value"`
	Timestamp int64   `json:"time_stamp"`
}

// NewKafkaWriter builds a writer for the configured topic. Messages are
// keyed by metric so each metric stays ordered on one partition.
func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           writeTimeout,
	}
}

type Publisher struct {
	name    string
	stats   *StatsService
	writer  MessageWriter
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewPublisher builds a publisher that reports itself as name.
func NewPublisher(name string, stats *StatsService, w MessageWriter, log *logger.Logger, m *metrics.Metrics) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{name: name, stats: stats, writer: w, log: log, metrics: m}
}

// Run publishes at the given interval until ctx is canceled, then closes
// the writer.
func (p *Publisher) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer func() {
		t.Stop()
		if err := p.writer.Close(); err != nil {
			p.log.Errorw("publisher_close_failed", "publisher", p.name, "err", err)
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			err := p.Publish(ctx, now)
			p.metrics.WorkerRun(p.name, err)
			if err != nil {
				p.log.Errorw("publisher_write_failed", "publisher", p.name, "err", err)
			}
		}
	}
}

// Publish sends the latest value of every published metric that has one.
func (p *Publisher) Publish(ctx context.Context, now time.Time) error {
	msgs := make([]kafka.Message, 0, len(PublishedMetrics))
	for _, metric := range PublishedMetrics {
		v, ok, err := p.stats.Latest(ctx, metric)
		if err != nil {
			return fmt.Errorf("latest %s: %w", metric, err)
		}
		if !ok {
			continue
		}
		body, err := json.Marshal(LatestMessage{Metric: metric, Value: v, Timestamp: now.Unix()})
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{Key: []byte(metric), Value: body, Time: now})
	}
	if len(msgs) == 0 {
		return nil
	}
	return p.writer.WriteMessages(ctx, msgs...)
}
