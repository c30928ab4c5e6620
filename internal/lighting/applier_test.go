package lighting

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chpego/adaptive-lighting/pkg/mqtt"
)

func decodeCommand(t *testing.T, payload []byte) map[string]any {
	t.Helper()
	var cmd map[string]any
	require.NoError(t, json.Unmarshal(payload, &cmd))
	return cmd
}

func TestApplier_FullFeatureSet(t *testing.T) {
	client := newFakeMQTT()
	applier := NewApplier(client, testLogger())

	setting := Setting{ColorTemp: 4000, Brightness: 70, TransitionSec: 45}
	features := FeatureBrightness | FeatureColorTemp | FeatureTransition

	require.NoError(t, applier.Apply("light.desk", setting, features))

	records := client.publishedTo(mqtt.LightCommandTopic("light.desk"))
	require.Len(t, records, 1)

	cmd := decodeCommand(t, records[0].Payload)
	assert.Equal(t, "on", cmd["state"])
	assert.Equal(t, float64(70), cmd["brightness"])
	assert.Equal(t, float64(250), cmd["color_temp"]) // 1e6 / 4000 K in mired
	assert.Equal(t, float64(45), cmd["transition"])
	assert.NotEmpty(t, cmd["id"])
}

func TestApplier_DropsUnsupportedFields(t *testing.T) {
	client := newFakeMQTT()
	applier := NewApplier(client, testLogger())

	setting := Setting{ColorTemp: 4000, Brightness: 70, TransitionSec: 45}

	// Brightness-only bulb: color temp and transition must be omitted
	require.NoError(t, applier.Apply("light.basic", setting, FeatureBrightness))

	records := client.publishedTo(mqtt.LightCommandTopic("light.basic"))
	require.Len(t, records, 1)

	cmd := decodeCommand(t, records[0].Payload)
	assert.Equal(t, float64(70), cmd["brightness"])
	assert.NotContains(t, cmd, "color_temp")
	assert.NotContains(t, cmd, "transition")
}

func TestApplier_OmitsZeroFields(t *testing.T) {
	client := newFakeMQTT()
	applier := NewApplier(client, testLogger())

	// Brightness suppressed upstream (disable_brightness_adjust)
	setting := Setting{ColorTemp: 3000, Brightness: 0, TransitionSec: 45}
	features := FeatureBrightness | FeatureColorTemp | FeatureTransition

	require.NoError(t, applier.Apply("light.desk", setting, features))

	records := client.publishedTo(mqtt.LightCommandTopic("light.desk"))
	require.Len(t, records, 1)

	cmd := decodeCommand(t, records[0].Payload)
	assert.NotContains(t, cmd, "brightness")
	assert.Equal(t, float64(333), cmd["color_temp"])
}

func TestApplier_ReportsPublishFailure(t *testing.T) {
	client := newFakeMQTT()
	client.failTopics[mqtt.LightCommandTopic("light.broken")] = errors.New("broker gone")
	applier := NewApplier(client, testLogger())

	err := applier.Apply("light.broken", Setting{ColorTemp: 4000}, FeatureColorTemp)
	assert.Error(t, err)
}

func TestKelvinToMired(t *testing.T) {
	assert.Equal(t, 250, kelvinToMired(4000))
	assert.Equal(t, 370, kelvinToMired(2700))
	assert.Equal(t, 1000, kelvinToMired(1000))
}
