package lighting

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/chpego/adaptive-lighting/pkg/mqtt"
	"github.com/chpego/adaptive-lighting/pkg/redis"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeMessage implements mqtt.Message for feeding the tracker directly
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Topic() string   { return m.topic }
func (m *fakeMessage) Payload() []byte { return m.payload }

type publishRecord struct {
	Topic    string
	Payload  []byte
	Retained bool
}

// fakeMQTT implements mqtt.Client, recording publishes and failing on demand
type fakeMQTT struct {
	mu         sync.Mutex
	published  []publishRecord
	handlers   map[string]mqtt.MessageHandler
	failTopics map[string]error
}

func newFakeMQTT() *fakeMQTT {
	return &fakeMQTT{
		handlers:   make(map[string]mqtt.MessageHandler),
		failTopics: make(map[string]error),
	}
}

func (f *fakeMQTT) Connect(ctx context.Context) error { return nil }
func (f *fakeMQTT) Disconnect()                       {}
func (f *fakeMQTT) IsConnected() bool                 { return true }

func (f *fakeMQTT) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[topic] = handler
	return nil
}

func (f *fakeMQTT) Publish(topic string, qos byte, retained bool, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failTopics[topic]; ok {
		return err
	}
	f.published = append(f.published, publishRecord{Topic: topic, Payload: payload, Retained: retained})
	return nil
}

func (f *fakeMQTT) publishedTo(topic string) []publishRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []publishRecord
	for _, p := range f.published {
		if p.Topic == topic {
			out = append(out, p)
		}
	}
	return out
}

// fakeRedis implements redis.Client with an in-memory map
type fakeRedis struct {
	mu    sync.Mutex
	store map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{store: make(map[string]string)}
}

func (f *fakeRedis) Ping(ctx context.Context) error { return nil }
func (f *fakeRedis) Close() error                   { return nil }

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.store[key] = value.(string)
	return nil
}

func (f *fakeRedis) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	val, ok := f.store[key]
	if !ok {
		return "", redis.ErrKeyNotFound
	}
	return val, nil
}
