package lighting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chpego/adaptive-lighting/pkg/config"
	"github.com/chpego/adaptive-lighting/pkg/mqtt"
	"github.com/chpego/adaptive-lighting/pkg/redis"
)

func TestSwitch_DefaultsOnWithoutPersistedState(t *testing.T) {
	cfg := config.NewConfig()
	sw := NewSwitch(cfg, newFakeMQTT(), newFakeRedis(), testLogger())

	require.NoError(t, sw.Restore(context.Background()))
	assert.True(t, sw.IsOn())
}

func TestSwitch_RestoresPersistedState(t *testing.T) {
	cfg := config.NewConfig()
	store := newFakeRedis()
	store.store[redis.SwitchKey(cfg.Name)] = "off"

	sw := NewSwitch(cfg, newFakeMQTT(), store, testLogger())
	require.NoError(t, sw.Restore(context.Background()))
	assert.False(t, sw.IsOn())
}

func TestSwitch_TogglePersistsAndPublishes(t *testing.T) {
	cfg := config.NewConfig()
	client := newFakeMQTT()
	store := newFakeRedis()
	sw := NewSwitch(cfg, client, store, testLogger())

	sw.handleSetMessage(&fakeMessage{
		topic:   mqtt.SwitchSetTopic(cfg.Name),
		payload: []byte("off"),
	})

	assert.False(t, sw.IsOn())
	assert.Equal(t, "off", store.store[redis.SwitchKey(cfg.Name)])

	states := client.publishedTo(mqtt.SwitchStateTopic(cfg.Name))
	require.NotEmpty(t, states)
	last := states[len(states)-1]
	assert.Equal(t, "off", string(last.Payload))
	assert.True(t, last.Retained)
}

func TestSwitch_IgnoresInvalidCommands(t *testing.T) {
	cfg := config.NewConfig()
	client := newFakeMQTT()
	sw := NewSwitch(cfg, client, newFakeRedis(), testLogger())

	sw.handleSetMessage(&fakeMessage{
		topic:   mqtt.SwitchSetTopic(cfg.Name),
		payload: []byte("maybe"),
	})

	assert.True(t, sw.IsOn())
	assert.Empty(t, client.published)
}

func TestSwitch_RedundantCommandIsNoop(t *testing.T) {
	cfg := config.NewConfig()
	client := newFakeMQTT()
	sw := NewSwitch(cfg, client, newFakeRedis(), testLogger())

	sw.handleSetMessage(&fakeMessage{
		topic:   mqtt.SwitchSetTopic(cfg.Name),
		payload: []byte("on"),
	})

	// Already on: no persistence or state echo
	assert.True(t, sw.IsOn())
	assert.Empty(t, client.published)
}
