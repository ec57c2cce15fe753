package service

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"solarweather/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/segmentio/kafka-go"
)

const (
	mqttConnectTimeout = 10 * time.Second
	mqttQuiesceMillis  = 250
)

var ErrMQTTTimeout = errors.New("mqtt operation timed out")

// mqttClient is the part of mqtt.Client the writer uses.
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTWriter publishes each message value to <topic>/<message key> with
// QoS 0, the way the station data was always sent to the broker.
type MQTTWriter struct {
	client mqttClient
	topic  string
}

// NewMQTTWriter connects to the configured broker.
func NewMQTTWriter(cfg config.MQTTConfig) (*MQTTWriter, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(mqttConnectTimeout).
		SetAutoReconnect(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username).SetPassword(cfg.Password)
	}
	if cfg.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	c := mqtt.NewClient(opts)
	token := c.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, ErrMQTTTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, err)
	}
	return &MQTTWriter{client: c, topic: cfg.Topic}, nil
}

// WriteMessages publishes msgs in order and stops at the first failure.
func (w *MQTTWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		topic := w.topic + "/" + string(m.Key)
		token := w.client.Publish(topic, 0, false, m.Value)
		select {
		case <-token.Done():
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(writeTimeout):
			return fmt.Errorf("publish %s: %w", topic, ErrMQTTTimeout)
		}
		if err := token.Error(); err != nil {
			return fmt.Errorf("publish %s: %w", topic, err)
		}
	}
	return nil
}

func (w *MQTTWriter) Close() error {
	w.client.Disconnect(mqttQuiesceMillis)
	return nil
}
