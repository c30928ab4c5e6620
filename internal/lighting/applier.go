package lighting

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/chpego/adaptive-lighting/pkg/mqtt"
)

// Applier translates a computed setting into a device command on the
// light's MQTT command topic. Fields the entity does not support are
// dropped rather than failing the apply.
type Applier struct {
	mqtt   mqtt.Client
	logger *slog.Logger
}

// NewApplier creates a new settings applier
func NewApplier(mqttClient mqtt.Client, logger *slog.Logger) *Applier {
	return &Applier{
		mqtt:   mqttClient,
		logger: logger,
	}
}

// lightCommand is the device-facing payload. Color temperature is sent in
// mired, the unit most lighting firmwares expect.
type lightCommand struct {
	ID             string   `json:"id"`
	State          string   `json:"state"`
	Brightness     *int     `json:"brightness,omitempty"`
	ColorTempMired *int     `json:"color_temp,omitempty"`
	TransitionSec  *float64 `json:"transition,omitempty"`
	Timestamp      string   `json:"timestamp"`
}

// Apply publishes the setting to the entity's command topic, honoring the
// entity's capability set. A publish error is reported to the caller and
// never retried here; the next cycle recomputes and reapplies naturally.
func (a *Applier) Apply(entityID string, setting Setting, features Features) error {
	cmd := lightCommand{
		ID:        uuid.NewString(),
		State:     "on",
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if setting.Brightness > 0 && features.Has(FeatureBrightness) {
		br := setting.Brightness
		cmd.Brightness = &br
	}
	if setting.ColorTemp > 0 && features.Has(FeatureColorTemp) {
		mired := kelvinToMired(setting.ColorTemp)
		cmd.ColorTempMired = &mired
	}
	if setting.TransitionSec > 0 && features.Has(FeatureTransition) {
		tr := setting.TransitionSec
		cmd.TransitionSec = &tr
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to marshal command for %s: %w", entityID, err)
	}

	topic := mqtt.LightCommandTopic(entityID)
	if err := a.mqtt.Publish(topic, 0, false, payload); err != nil {
		return fmt.Errorf("failed to apply setting to %s: %w", entityID, err)
	}

	a.logger.Debug("Applied lighting setting",
		"entity_id", entityID,
		"brightness", setting.Brightness,
		"color_temp", setting.ColorTemp,
		"transition_sec", setting.TransitionSec)

	return nil
}

// kelvinToMired converts a color temperature to the reciprocal mired scale
func kelvinToMired(kelvin int) int {
	return int(math.Round(1000000.0 / float64(kelvin)))
}
