package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":5000", cfg.HTTPAddr)
	assert.Equal(t, 5*time.Second, cfg.TickInterval)
	assert.Equal(t, 17280, cfg.HistoryCapacity)
	assert.Equal(t, 40.0, cfg.MoistureMin)
	assert.Equal(t, 99.0, cfg.MoistureMax)
	assert.Equal(t, 10.0, cfg.WSEventRate)
	assert.Equal(t, 20, cfg.WSEventBurst)
	assert.False(t, cfg.MQTTEnabled)
	assert.Equal(t, "landslide/{site_id}/update", cfg.MQTTTopicSiteUpdate)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":8080")
	t.Setenv("TICK_INTERVAL", "250ms")
	t.Setenv("HISTORY_CAPACITY", "100")
	t.Setenv("SIMULATOR_SEED", "42")
	t.Setenv("RAINFALL_MAX", "80.5")
	t.Setenv("MQTT_ENABLED", "true")

	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 100, cfg.HistoryCapacity)
	assert.Equal(t, int64(42), cfg.SimulatorSeed)
	assert.Equal(t, 80.5, cfg.RainfallMax)
	assert.True(t, cfg.MQTTEnabled)
	require.NoError(t, cfg.Validate())
}

func TestLoadFallsBackOnParseErrors(t *testing.T) {
	t.Setenv("TICK_INTERVAL", "soon")
	t.Setenv("HISTORY_CAPACITY", "lots")
	t.Setenv("MOISTURE_MIN", "wet")
	t.Setenv("MQTT_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 5*time.Second, cfg.TickInterval)
	assert.Equal(t, 17280, cfg.HistoryCapacity)
	assert.Equal(t, 40.0, cfg.MoistureMin)
	assert.False(t, cfg.MQTTEnabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero interval", func(c *Config) { c.TickInterval = 0 }},
		{"zero capacity", func(c *Config) { c.HistoryCapacity = 0 }},
		{"zero buffer", func(c *Config) { c.SubscriberBuffer = 0 }},
		{"inverted moisture", func(c *Config) { c.MoistureMin, c.MoistureMax = 90, 10 }},
		{"rainfall above 100", func(c *Config) { c.RainfallMax = 120 }},
		{"negative event rate", func(c *Config) { c.WSEventRate = -1 }},
		{"unknown gin mode", func(c *Config) { c.GinMode = "verbose" }},
		{"mqtt without broker", func(c *Config) { c.MQTTEnabled, c.MQTTBroker = true, "" }},
		{"clickhouse without addr", func(c *Config) { c.ClickHouseEnabled, c.ClickHouseAddr = true, "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
