package service

import (
	"context"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/segmentio/kafka-go"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func newFakeToken(err error, finished bool) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	if finished {
		close(t.done)
	}
	return t
}

func (t *fakeToken) Wait() bool                       { <-t.done; return true }
func (t *fakeToken) WaitTimeout(d time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}            { return t.done }
func (t *fakeToken) Error() error                     { return t.err }

type published struct {
	topic   string
	payload string
}

type fakeMQTT struct {
	sent         []published
	token        func() *fakeToken
	disconnected bool
}

func (f *fakeMQTT) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	f.sent = append(f.sent, published{topic: topic, payload: string(payload.([]byte))})
	if f.token != nil {
		return f.token()
	}
	return newFakeToken(nil, true)
}

func (f *fakeMQTT) Disconnect(quiesce uint) { f.disconnected = true }

func TestMQTTWriter_PublishesPerMetricTopic(t *testing.T) {
	c := &fakeMQTT{}
	w := &MQTTWriter{client: c, topic: "solarweather"}

	err := w.WriteMessages(context.Background(),
		kafka.Message{Key: []byte("outdoor_temp"), Value: []byte(`{"value":21.5}`)},
		kafka.Message{Key: []byte("pressure"), Value: []byte(`{"value":1013}`)},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []published{
		{topic: "solarweather/outdoor_temp", payload: `{"value":21.5}`},
		{topic: "solarweather/pressure", payload: `{"value":1013}`},
	}
	if len(c.sent) != len(want) {
		t.Fatalf("expected %d publishes, got %d", len(want), len(c.sent))
	}
	for i := range want {
		if c.sent[i] != want[i] {
			t.Errorf("publish %d: expected %+v, got %+v", i, want[i], c.sent[i])
		}
	}
}

func TestMQTTWriter_StopsAtFirstError(t *testing.T) {
	errBroker := errors.New("not connected")
	c := &fakeMQTT{token: func() *fakeToken { return newFakeToken(errBroker, true) }}
	w := &MQTTWriter{client: c, topic: "t"}

	err := w.WriteMessages(context.Background(),
		kafka.Message{Key: []byte("a"), Value: []byte("1")},
		kafka.Message{Key: []byte("b"), Value: []byte("2")},
	)
	if !errors.Is(err, errBroker) {
		t.Fatalf("expected broker error, got %v", err)
	}
	if len(c.sent) != 1 {
		t.Errorf("expected publishing to stop after the failure, got %d publishes", len(c.sent))
	}
}

func TestMQTTWriter_ContextCanceled(t *testing.T) {
	c := &fakeMQTT{token: func() *fakeToken { return newFakeToken(nil, false) }}
	w := &MQTTWriter{client: c, topic: "t"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := w.WriteMessages(ctx, kafka.Message{Key: []byte("a"), Value: []byte("1")})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMQTTWriter_CloseDisconnects(t *testing.T) {
	c := &fakeMQTT{}
	if err := (&MQTTWriter{client: c}).Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.disconnected {
		t.Error("expected Disconnect to be called")
	}
}
