package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, 90, cfg.IntervalSec)
	assert.Equal(t, 45.0, cfg.TransitionSec)
	assert.Equal(t, 1.0, cfg.InitialTransitionSec)
	assert.Equal(t, 1, cfg.MinBrightness)
	assert.Equal(t, 100, cfg.MaxBrightness)
	assert.Equal(t, 2500, cfg.MinColorTemp)
	assert.Equal(t, 5500, cfg.MaxColorTemp)
	assert.Equal(t, 1, cfg.SleepBrightness)
	assert.Equal(t, 1000, cfg.SleepColorTemp)
	assert.False(t, cfg.OnlyOnce)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 90*time.Second, cfg.Interval())
}

func TestValidate_RejectsBadConfigs(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"min brightness above max", func(c *Config) { c.MinBrightness = 80; c.MaxBrightness = 20 }},
		{"brightness out of range", func(c *Config) { c.MaxBrightness = 150 }},
		{"min color temp above max", func(c *Config) { c.MinColorTemp = 6000; c.MaxColorTemp = 3000 }},
		{"color temp out of range", func(c *Config) { c.MinColorTemp = 500 }},
		{"sleep brightness out of range", func(c *Config) { c.SleepBrightness = 0 }},
		{"sleep color temp out of range", func(c *Config) { c.SleepColorTemp = 20000 }},
		{"zero interval", func(c *Config) { c.IntervalSec = 0 }},
		{"negative transition", func(c *Config) { c.TransitionSec = -1 }},
		{"latitude out of range", func(c *Config) { c.Latitude = 95 }},
		{"longitude out of range", func(c *Config) { c.Longitude = -200 }},
		{"malformed sunrise time", func(c *Config) { c.SunriseTime = "25:99" }},
		{"empty broker", func(c *Config) { c.MQTTBroker = "" }},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"empty switch name", func(c *Config) { c.Name = "" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
name: living_room
lights:
  - light.sofa
  - light.reading
interval_sec: 120
min_color_temp: 2700
max_color_temp: 6000
sleep_entity: input_boolean.sleep
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "living_room", cfg.Name)
	assert.Equal(t, []string{"light.sofa", "light.reading"}, cfg.Lights)
	assert.Equal(t, 120, cfg.IntervalSec)
	assert.Equal(t, 2700, cfg.MinColorTemp)
	assert.Equal(t, 6000, cfg.MaxColorTemp)
	assert.Equal(t, "input_boolean.sleep", cfg.SleepEntity)

	// Untouched keys keep their defaults
	assert.Equal(t, 45.0, cfg.TransitionSec)
	assert.Equal(t, "localhost", cfg.MQTTBroker)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile_MissingAndEmptyPath(t *testing.T) {
	cfg := NewConfig()
	assert.NoError(t, cfg.LoadFromFile(""))
	assert.Error(t, cfg.LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml")))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ADAPTIVE_LIGHTS", "light.desk, light.shelf")
	t.Setenv("ADAPTIVE_MIN_BRIGHTNESS", "10")
	t.Setenv("ADAPTIVE_ONLY_ONCE", "true")
	t.Setenv("ADAPTIVE_SUNRISE_OFFSET_SEC", "-900")
	t.Setenv("ADAPTIVE_DISABLE_STATES", "on,home")

	cfg := NewConfig()
	cfg.LoadFromEnv()

	assert.Equal(t, []string{"light.desk", "light.shelf"}, cfg.Lights)
	assert.Equal(t, 10, cfg.MinBrightness)
	assert.True(t, cfg.OnlyOnce)
	assert.Equal(t, -15*time.Minute, cfg.SunriseOffset())
	assert.Equal(t, []string{"on", "home"}, cfg.DisableStates)
}
