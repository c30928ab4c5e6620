package lighting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/chpego/adaptive-lighting/pkg/config"
	"github.com/chpego/adaptive-lighting/pkg/mqtt"
	"github.com/chpego/adaptive-lighting/pkg/redis"
)

// Switch is the on/off toggle for the whole integration. It is driven
// over MQTT, mirrors its state on a retained topic, and persists to Redis
// so a restart restores the previous choice.
type Switch struct {
	name   string
	mqtt   mqtt.Client
	redis  redis.Client
	logger *slog.Logger

	mu sync.RWMutex
	on bool
}

// NewSwitch creates the adaptive switch. It starts on; Restore overrides
// this with the persisted state.
func NewSwitch(cfg *config.Config, mqttClient mqtt.Client, redisClient redis.Client, logger *slog.Logger) *Switch {
	return &Switch{
		name:   cfg.Name,
		mqtt:   mqttClient,
		redis:  redisClient,
		logger: logger,
		on:     true,
	}
}

// Restore loads the persisted switch state from Redis. A missing key
// keeps the default; any other error is reported.
func (s *Switch) Restore(ctx context.Context) error {
	val, err := s.redis.Get(ctx, redis.SwitchKey(s.name))
	if errors.Is(err, redis.ErrKeyNotFound) {
		s.logger.Info("No persisted switch state, starting on", "switch", s.name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to restore switch state: %w", err)
	}

	s.mu.Lock()
	s.on = val == "on"
	s.mu.Unlock()

	s.logger.Info("Restored switch state", "switch", s.name, "on", val == "on")
	return nil
}

// Subscribe attaches the switch to its MQTT set topic and announces the
// current state.
func (s *Switch) Subscribe() error {
	topic := mqtt.SwitchSetTopic(s.name)
	if err := s.mqtt.Subscribe(topic, 0, s.handleSetMessage); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	s.publishState()
	return nil
}

// IsOn reports whether adaptation is enabled
func (s *Switch) IsOn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.on
}

// handleSetMessage processes an on/off command. The payload is the plain
// state string.
func (s *Switch) handleSetMessage(msg mqtt.Message) {
	ctx := context.Background()

	state := strings.ToLower(strings.TrimSpace(string(msg.Payload())))
	switch state {
	case "on", "off":
	default:
		s.logger.Warn("Ignoring invalid switch command", "switch", s.name, "payload", state)
		return
	}

	s.mu.Lock()
	changed := s.on != (state == "on")
	s.on = state == "on"
	s.mu.Unlock()

	if !changed {
		return
	}

	s.logger.Info("Adaptive switch toggled", "switch", s.name, "on", state == "on")

	if err := s.redis.Set(ctx, redis.SwitchKey(s.name), state, 0); err != nil {
		// Toggle still applies for this run; only restart recovery is degraded
		s.logger.Error("Failed to persist switch state", "switch", s.name, "error", err)
	}
	s.publishState()
}

func (s *Switch) publishState() {
	state := "off"
	if s.IsOn() {
		state = "on"
	}
	if err := s.mqtt.Publish(mqtt.SwitchStateTopic(s.name), 0, true, []byte(state)); err != nil {
		s.logger.Error("Failed to publish switch state", "switch", s.name, "error", err)
	}
}
