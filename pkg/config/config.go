package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config holds the configuration for the adaptive lighting agent
type Config struct {
	// MQTT configuration
	MQTTBroker   string `yaml:"mqtt_broker"`
	MQTTPort     int    `yaml:"mqtt_port"`
	MQTTUser     string `yaml:"mqtt_user"`
	MQTTPassword string `yaml:"mqtt_password"`
	MQTTClientID string `yaml:"mqtt_client_id"`

	// Redis configuration (switch state persistence)
	RedisHost     string `yaml:"redis_host"`
	RedisPort     int    `yaml:"redis_port"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// Service configuration
	ServiceName string `yaml:"service_name"`
	HealthPort  int    `yaml:"health_port"`
	LogLevel    string `yaml:"log_level"`

	// Switch / integration configuration
	Name   string   `yaml:"name"`
	Lights []string `yaml:"lights"`

	// Adjustment loop configuration
	IntervalSec          int     `yaml:"interval_sec"`
	InitialTransitionSec float64 `yaml:"initial_transition_sec"`
	TransitionSec        float64 `yaml:"transition_sec"`
	OnlyOnce             bool    `yaml:"only_once"`

	// Photometric bounds
	MinBrightness int `yaml:"min_brightness"`
	MaxBrightness int `yaml:"max_brightness"`
	MinColorTemp  int `yaml:"min_color_temp"`
	MaxColorTemp  int `yaml:"max_color_temp"`

	// Sleep mode
	SleepBrightness int      `yaml:"sleep_brightness"`
	SleepColorTemp  int      `yaml:"sleep_color_temp"`
	SleepEntity     string   `yaml:"sleep_entity"`
	SleepStates     []string `yaml:"sleep_states"`

	// Disable mode
	DisableEntity           string   `yaml:"disable_entity"`
	DisableStates           []string `yaml:"disable_states"`
	DisableBrightnessAdjust bool     `yaml:"disable_brightness_adjust"`

	// Location and sun events
	Latitude         float64 `yaml:"latitude"`
	Longitude        float64 `yaml:"longitude"`
	Elevation        float64 `yaml:"elevation"`
	Timezone         string  `yaml:"timezone"`
	SunriseTime      string  `yaml:"sunrise_time"` // fixed HH:MM override, empty = astronomical
	SunsetTime       string  `yaml:"sunset_time"`  // fixed HH:MM override, empty = astronomical
	SunriseOffsetSec int     `yaml:"sunrise_offset_sec"`
	SunsetOffsetSec  int     `yaml:"sunset_offset_sec"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		MQTTBroker:    "localhost",
		MQTTPort:      1883,
		MQTTUser:      "",
		MQTTPassword:  "",
		MQTTClientID:  "",
		RedisHost:     "localhost",
		RedisPort:     6379,
		RedisPassword: "",
		RedisDB:       0,
		ServiceName:   "adaptive-lighting",
		HealthPort:    8080,
		LogLevel:      "info",
		Name:          "adaptive_lighting",
		Lights:        []string{},
		// Loop defaults match the classic circadian integration
		IntervalSec:          90,
		InitialTransitionSec: 1,
		TransitionSec:        45,
		OnlyOnce:             false,
		MinBrightness:        1,
		MaxBrightness:        100,
		MinColorTemp:         2500,
		MaxColorTemp:         5500,
		SleepBrightness:      1,
		SleepColorTemp:       1000,
		SleepStates:          []string{"on"},
		DisableStates:        []string{"on"},
		// Helsinki coordinates
		Latitude:  60.1695,
		Longitude: 24.9354,
		Elevation: 0,
		Timezone:  "Local",
	}
}

// LoadFromFile merges configuration from a YAML file, if path is non-empty.
// File values override defaults; env and flags still override the file.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables with ADAPTIVE_ prefix
func (c *Config) LoadFromEnv() {
	// MQTT configuration
	if v := os.Getenv("ADAPTIVE_MQTT_BROKER"); v != "" {
		c.MQTTBroker = v
	}
	if v := os.Getenv("ADAPTIVE_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.MQTTPort = port
		}
	}
	if v := os.Getenv("ADAPTIVE_MQTT_USER"); v != "" {
		c.MQTTUser = v
	}
	if v := os.Getenv("ADAPTIVE_MQTT_PASSWORD"); v != "" {
		c.MQTTPassword = v
	}
	if v := os.Getenv("ADAPTIVE_MQTT_CLIENT_ID"); v != "" {
		c.MQTTClientID = v
	}

	// Redis configuration
	if v := os.Getenv("ADAPTIVE_REDIS_HOST"); v != "" {
		c.RedisHost = v
	}
	if v := os.Getenv("ADAPTIVE_REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.RedisPort = port
		}
	}
	if v := os.Getenv("ADAPTIVE_REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv("ADAPTIVE_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.RedisDB = db
		}
	}

	// Service configuration
	if v := os.Getenv("ADAPTIVE_SERVICE_NAME"); v != "" {
		c.ServiceName = v
	}
	if v := os.Getenv("ADAPTIVE_HEALTH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.HealthPort = port
		}
	}
	if v := os.Getenv("ADAPTIVE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	// Switch configuration
	if v := os.Getenv("ADAPTIVE_NAME"); v != "" {
		c.Name = v
	}
	if v := os.Getenv("ADAPTIVE_LIGHTS"); v != "" {
		c.Lights = splitList(v)
	}

	// Adjustment loop configuration
	if v := os.Getenv("ADAPTIVE_INTERVAL_SEC"); v != "" {
		if interval, err := strconv.Atoi(v); err == nil {
			c.IntervalSec = interval
		}
	}
	if v := os.Getenv("ADAPTIVE_INITIAL_TRANSITION_SEC"); v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil {
			c.InitialTransitionSec = t
		}
	}
	if v := os.Getenv("ADAPTIVE_TRANSITION_SEC"); v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil {
			c.TransitionSec = t
		}
	}
	if v := os.Getenv("ADAPTIVE_ONLY_ONCE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.OnlyOnce = b
		}
	}

	// Photometric bounds
	if v := os.Getenv("ADAPTIVE_MIN_BRIGHTNESS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MinBrightness = n
		}
	}
	if v := os.Getenv("ADAPTIVE_MAX_BRIGHTNESS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxBrightness = n
		}
	}
	if v := os.Getenv("ADAPTIVE_MIN_COLOR_TEMP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MinColorTemp = n
		}
	}
	if v := os.Getenv("ADAPTIVE_MAX_COLOR_TEMP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxColorTemp = n
		}
	}

	// Sleep mode
	if v := os.Getenv("ADAPTIVE_SLEEP_BRIGHTNESS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SleepBrightness = n
		}
	}
	if v := os.Getenv("ADAPTIVE_SLEEP_COLOR_TEMP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SleepColorTemp = n
		}
	}
	if v := os.Getenv("ADAPTIVE_SLEEP_ENTITY"); v != "" {
		c.SleepEntity = v
	}
	if v := os.Getenv("ADAPTIVE_SLEEP_STATES"); v != "" {
		c.SleepStates = splitList(v)
	}

	// Disable mode
	if v := os.Getenv("ADAPTIVE_DISABLE_ENTITY"); v != "" {
		c.DisableEntity = v
	}
	if v := os.Getenv("ADAPTIVE_DISABLE_STATES"); v != "" {
		c.DisableStates = splitList(v)
	}
	if v := os.Getenv("ADAPTIVE_DISABLE_BRIGHTNESS_ADJUST"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.DisableBrightnessAdjust = b
		}
	}

	// Location and sun events
	if v := os.Getenv("ADAPTIVE_LATITUDE"); v != "" {
		if lat, err := strconv.ParseFloat(v, 64); err == nil {
			c.Latitude = lat
		}
	}
	if v := os.Getenv("ADAPTIVE_LONGITUDE"); v != "" {
		if lon, err := strconv.ParseFloat(v, 64); err == nil {
			c.Longitude = lon
		}
	}
	if v := os.Getenv("ADAPTIVE_ELEVATION"); v != "" {
		if elev, err := strconv.ParseFloat(v, 64); err == nil {
			c.Elevation = elev
		}
	}
	if v := os.Getenv("ADAPTIVE_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("ADAPTIVE_SUNRISE_TIME"); v != "" {
		c.SunriseTime = v
	}
	if v := os.Getenv("ADAPTIVE_SUNSET_TIME"); v != "" {
		c.SunsetTime = v
	}
	if v := os.Getenv("ADAPTIVE_SUNRISE_OFFSET_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SunriseOffsetSec = n
		}
	}
	if v := os.Getenv("ADAPTIVE_SUNSET_OFFSET_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SunsetOffsetSec = n
		}
	}
}

// LoadFromFlags parses command-line flags and overrides config values
func (c *Config) LoadFromFlags() {
	// MQTT flags
	pflag.StringVar(&c.MQTTBroker, "mqtt-broker", c.MQTTBroker, "MQTT broker hostname")
	pflag.IntVar(&c.MQTTPort, "mqtt-port", c.MQTTPort, "MQTT broker port")
	pflag.StringVar(&c.MQTTUser, "mqtt-user", c.MQTTUser, "MQTT username")
	pflag.StringVar(&c.MQTTPassword, "mqtt-password", c.MQTTPassword, "MQTT password")
	pflag.StringVar(&c.MQTTClientID, "mqtt-client-id", c.MQTTClientID, "MQTT client ID")

	// Redis flags
	pflag.StringVar(&c.RedisHost, "redis-host", c.RedisHost, "Redis hostname")
	pflag.IntVar(&c.RedisPort, "redis-port", c.RedisPort, "Redis port")
	pflag.StringVar(&c.RedisPassword, "redis-password", c.RedisPassword, "Redis password")
	pflag.IntVar(&c.RedisDB, "redis-db", c.RedisDB, "Redis database number")

	// Service flags
	pflag.StringVar(&c.ServiceName, "service-name", c.ServiceName, "Service name")
	pflag.IntVar(&c.HealthPort, "health-port", c.HealthPort, "Health check HTTP port")
	pflag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")

	// Switch flags
	pflag.StringVar(&c.Name, "name", c.Name, "Adaptive switch name")
	pflag.StringSliceVar(&c.Lights, "lights", c.Lights, "Light entity IDs to control")

	// Adjustment loop flags
	pflag.IntVar(&c.IntervalSec, "interval", c.IntervalSec, "Adjustment interval in seconds")
	pflag.Float64Var(&c.InitialTransitionSec, "initial-transition", c.InitialTransitionSec, "Transition in seconds when a light turns on")
	pflag.Float64Var(&c.TransitionSec, "transition", c.TransitionSec, "Transition in seconds for periodic adjustments")
	pflag.BoolVar(&c.OnlyOnce, "only-once", c.OnlyOnce, "Adjust each light only once per on-session")

	// Photometric bounds flags
	pflag.IntVar(&c.MinBrightness, "min-brightness", c.MinBrightness, "Minimum brightness percent")
	pflag.IntVar(&c.MaxBrightness, "max-brightness", c.MaxBrightness, "Maximum brightness percent")
	pflag.IntVar(&c.MinColorTemp, "min-color-temp", c.MinColorTemp, "Minimum color temperature in Kelvin")
	pflag.IntVar(&c.MaxColorTemp, "max-color-temp", c.MaxColorTemp, "Maximum color temperature in Kelvin")

	// Sleep mode flags
	pflag.IntVar(&c.SleepBrightness, "sleep-brightness", c.SleepBrightness, "Brightness percent in sleep mode")
	pflag.IntVar(&c.SleepColorTemp, "sleep-color-temp", c.SleepColorTemp, "Color temperature in Kelvin in sleep mode")
	pflag.StringVar(&c.SleepEntity, "sleep-entity", c.SleepEntity, "Entity whose state activates sleep mode")
	pflag.StringSliceVar(&c.SleepStates, "sleep-states", c.SleepStates, "States of the sleep entity that activate sleep mode")

	// Disable mode flags
	pflag.StringVar(&c.DisableEntity, "disable-entity", c.DisableEntity, "Entity whose state disables adaptation")
	pflag.StringSliceVar(&c.DisableStates, "disable-states", c.DisableStates, "States of the disable entity that disable adaptation")
	pflag.BoolVar(&c.DisableBrightnessAdjust, "disable-brightness-adjust", c.DisableBrightnessAdjust, "Never adjust brightness, only color temperature")

	// Location flags
	pflag.Float64Var(&c.Latitude, "latitude", c.Latitude, "Geographic latitude for sun calculation")
	pflag.Float64Var(&c.Longitude, "longitude", c.Longitude, "Geographic longitude for sun calculation")
	pflag.Float64Var(&c.Elevation, "elevation", c.Elevation, "Elevation in meters above sea level")
	pflag.StringVar(&c.Timezone, "timezone", c.Timezone, "IANA timezone name, or Local")
	pflag.StringVar(&c.SunriseTime, "sunrise-time", c.SunriseTime, "Fixed sunrise time (HH:MM), overrides astronomical sunrise")
	pflag.StringVar(&c.SunsetTime, "sunset-time", c.SunsetTime, "Fixed sunset time (HH:MM), overrides astronomical sunset")
	pflag.IntVar(&c.SunriseOffsetSec, "sunrise-offset", c.SunriseOffsetSec, "Signed sunrise offset in seconds")
	pflag.IntVar(&c.SunsetOffsetSec, "sunset-offset", c.SunsetOffsetSec, "Signed sunset offset in seconds")

	pflag.Parse()
}

// Validate checks that required configuration values are set and within range.
// A validation failure is fatal: the agent must not start on a bad config.
func (c *Config) Validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT broker is required")
	}
	if c.MQTTPort <= 0 || c.MQTTPort > 65535 {
		return fmt.Errorf("MQTT port must be between 1 and 65535")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("Redis host is required")
	}
	if c.RedisPort <= 0 || c.RedisPort > 65535 {
		return fmt.Errorf("Redis port must be between 1 and 65535")
	}
	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		return fmt.Errorf("Health port must be between 1 and 65535")
	}
	if c.ServiceName == "" {
		return fmt.Errorf("Service name is required")
	}
	if c.Name == "" {
		return fmt.Errorf("switch name is required")
	}

	if c.IntervalSec <= 0 {
		return fmt.Errorf("interval must be positive, got %d", c.IntervalSec)
	}
	if c.InitialTransitionSec < 0 || c.TransitionSec < 0 {
		return fmt.Errorf("transitions must not be negative")
	}

	if err := validateRange("brightness", c.MinBrightness, c.MaxBrightness, 1, 100); err != nil {
		return err
	}
	if err := validateRange("color temperature", c.MinColorTemp, c.MaxColorTemp, 1000, 10000); err != nil {
		return err
	}
	if c.SleepBrightness < 1 || c.SleepBrightness > 100 {
		return fmt.Errorf("sleep brightness must be between 1 and 100, got %d", c.SleepBrightness)
	}
	if c.SleepColorTemp < 1000 || c.SleepColorTemp > 10000 {
		return fmt.Errorf("sleep color temperature must be between 1000 and 10000, got %d", c.SleepColorTemp)
	}

	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got %f", c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180, got %f", c.Longitude)
	}
	if c.SunriseTime != "" {
		if _, err := time.Parse("15:04", c.SunriseTime); err != nil {
			return fmt.Errorf("invalid sunrise time %q: %w", c.SunriseTime, err)
		}
	}
	if c.SunsetTime != "" {
		if _, err := time.Parse("15:04", c.SunsetTime); err != nil {
			return fmt.Errorf("invalid sunset time %q: %w", c.SunsetTime, err)
		}
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

func validateRange(what string, min, max, lo, hi int) error {
	if min < lo || min > hi {
		return fmt.Errorf("minimum %s must be between %d and %d, got %d", what, lo, hi, min)
	}
	if max < lo || max > hi {
		return fmt.Errorf("maximum %s must be between %d and %d, got %d", what, lo, hi, max)
	}
	if min > max {
		return fmt.Errorf("minimum %s (%d) must not exceed maximum (%d)", what, min, max)
	}
	return nil
}

// Interval returns the adjustment interval as a duration
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalSec) * time.Second
}

// SunriseOffset returns the signed sunrise offset as a duration
func (c *Config) SunriseOffset() time.Duration {
	return time.Duration(c.SunriseOffsetSec) * time.Second
}

// SunsetOffset returns the signed sunset offset as a duration
func (c *Config) SunsetOffset() time.Duration {
	return time.Duration(c.SunsetOffsetSec) * time.Second
}

// MQTTAddress returns the full MQTT broker address
func (c *Config) MQTTAddress() string {
	return fmt.Sprintf("tcp://%s:%d", c.MQTTBroker, c.MQTTPort)
}

// RedisAddress returns the full Redis address
func (c *Config) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
