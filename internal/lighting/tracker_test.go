package lighting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chpego/adaptive-lighting/pkg/mqtt"
)

func stateMessage(entityID, payload string) *fakeMessage {
	return &fakeMessage{
		topic:   mqtt.EntityStateTopic(entityID),
		payload: []byte(payload),
	}
}

func TestTracker_StoresStateAndFeatures(t *testing.T) {
	tracker := NewTracker(testLogger())

	tracker.HandleStateMessage(stateMessage("light.desk",
		`{"state": "on", "features": ["brightness", "color_temp", "transition"]}`))

	st, ok := tracker.State("light.desk")
	require.True(t, ok)
	assert.True(t, st.On())
	assert.True(t, st.Features.Has(FeatureBrightness|FeatureColorTemp|FeatureTransition))
	assert.False(t, st.Features.Has(FeatureColor))
}

func TestTracker_TurnOnFiresOnlyOnTransition(t *testing.T) {
	tracker := NewTracker(testLogger())

	var turnedOn []string
	tracker.OnTurnedOn(func(id string) { turnedOn = append(turnedOn, id) })

	// First sight of an already-on light is a snapshot, not a transition
	tracker.HandleStateMessage(stateMessage("light.desk", `{"state": "on"}`))
	assert.Empty(t, turnedOn)

	// Repeated on-state is not a transition either
	tracker.HandleStateMessage(stateMessage("light.desk", `{"state": "on"}`))
	assert.Empty(t, turnedOn)

	tracker.HandleStateMessage(stateMessage("light.desk", `{"state": "off"}`))
	assert.Empty(t, turnedOn)

	tracker.HandleStateMessage(stateMessage("light.desk", `{"state": "on"}`))
	assert.Equal(t, []string{"light.desk"}, turnedOn)
}

func TestTracker_IgnoresMalformedInput(t *testing.T) {
	tracker := NewTracker(testLogger())

	tracker.HandleStateMessage(&fakeMessage{topic: "automation/other/light.desk", payload: []byte(`{}`)})
	tracker.HandleStateMessage(stateMessage("light.desk", `not json`))

	_, ok := tracker.State("light.desk")
	assert.False(t, ok)
}

func TestTracker_StateValueForUnknownEntity(t *testing.T) {
	tracker := NewTracker(testLogger())
	assert.Equal(t, "", tracker.StateValue("switch.unknown"))
}
