package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP Configuration
	HTTPAddr        string
	GinMode         string
	ShutdownTimeout time.Duration

	// Producer Loop
	TickInterval     time.Duration
	HistoryCapacity  int
	SubscriberBuffer int

	// Websocket client events
	WSEventRate  float64
	WSEventBurst int

	// Simulation
	SimulatorSeed int64
	MoistureMin   float64
	MoistureMax   float64
	RainfallMin   float64
	RainfallMax   float64

	// Site and rule overrides
	SitesPath     string
	RiskRulesPath string

	// MQTT Bridge
	MQTTEnabled         bool
	MQTTBroker          string
	MQTTClientID        string
	MQTTUsername        string
	MQTTPassword        string
	MQTTTopicSiteUpdate string
	MQTTTopicSnapshot   string

	// ClickHouse Archive
	ClickHouseEnabled bool
	ClickHouseAddr    string
	ClickHouseDB      string
	ClickHouseUser    string
	ClickHousePass    string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		// HTTP Configuration
		HTTPAddr:        getEnv("HTTP_ADDR", ":5000"),
		GinMode:         getEnv("GIN_MODE", "release"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		// Producer Loop
		TickInterval:     getEnvDuration("TICK_INTERVAL", 5*time.Second),
		HistoryCapacity:  getEnvInt("HISTORY_CAPACITY", (24*3600)/5),
		SubscriberBuffer: getEnvInt("SUBSCRIBER_BUFFER", 64),

		// Websocket client events
		WSEventRate:  getEnvFloat("WS_EVENT_RATE", 10),
		WSEventBurst: getEnvInt("WS_EVENT_BURST", 20),

		// Simulation
		SimulatorSeed: int64(getEnvInt("SIMULATOR_SEED", 0)),
		MoistureMin:   getEnvFloat("MOISTURE_MIN", 40.0),
		MoistureMax:   getEnvFloat("MOISTURE_MAX", 99.0),
		RainfallMin:   getEnvFloat("RAINFALL_MIN", 0.0),
		RainfallMax:   getEnvFloat("RAINFALL_MAX", 100.0),

		// Site and rule overrides
		SitesPath:     getEnv("SITES_PATH", ""),
		RiskRulesPath: getEnv("RISK_RULES_PATH", ""),

		// MQTT Bridge
		MQTTEnabled:         getEnvBool("MQTT_ENABLED", false),
		MQTTBroker:          getEnv("MQTT_BROKER", "tcp://localhost:1883"),
		MQTTClientID:        getEnv("MQTT_CLIENT_ID", "landslide-monitor"),
		MQTTUsername:        getEnv("MQTT_USERNAME", ""),
		MQTTPassword:        getEnv("MQTT_PASSWORD", ""),
		MQTTTopicSiteUpdate: getEnv("MQTT_TOPIC_SITE_UPDATE", "landslide/{site_id}/update"),
		MQTTTopicSnapshot:   getEnv("MQTT_TOPIC_SNAPSHOT", "landslide/status"),

		// ClickHouse Archive
		ClickHouseEnabled: getEnvBool("CLICKHOUSE_ENABLED", false),
		ClickHouseAddr:    getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
		ClickHouseDB:      getEnv("CLICKHOUSE_DB", "landslide"),
		ClickHouseUser:    getEnv("CLICKHOUSE_USER", "default"),
		ClickHousePass:    getEnv("CLICKHOUSE_PASS", ""),
	}
}

// Validate rejects settings the producer loop cannot run with
func (c *Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("TICK_INTERVAL must be positive, got %v", c.TickInterval)
	}
	if c.HistoryCapacity <= 0 {
		return fmt.Errorf("HISTORY_CAPACITY must be positive, got %d", c.HistoryCapacity)
	}
	if c.SubscriberBuffer <= 0 {
		return fmt.Errorf("SUBSCRIBER_BUFFER must be positive, got %d", c.SubscriberBuffer)
	}
	if c.MoistureMin < 0 || c.MoistureMax > 100 || c.MoistureMin > c.MoistureMax {
		return fmt.Errorf("moisture range [%.2f, %.2f] must lie within [0, 100]", c.MoistureMin, c.MoistureMax)
	}
	if c.RainfallMin < 0 || c.RainfallMax > 100 || c.RainfallMin > c.RainfallMax {
		return fmt.Errorf("rainfall range [%.2f, %.2f] must lie within [0, 100]", c.RainfallMin, c.RainfallMax)
	}
	if c.WSEventRate < 0 || c.WSEventBurst < 0 {
		return fmt.Errorf("WS_EVENT_RATE and WS_EVENT_BURST must not be negative")
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("GIN_MODE must be debug, release or test, got %q", c.GinMode)
	}
	if c.MQTTEnabled && c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required when MQTT_ENABLED is set")
	}
	if c.ClickHouseEnabled && c.ClickHouseAddr == "" {
		return fmt.Errorf("CLICKHOUSE_ADDR is required when CLICKHOUSE_ENABLED is set")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: failed to parse %s as int, using default: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Warning: failed to parse %s as float, using default: %v", key, err)
		return defaultValue
	}
	return floatValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: failed to parse %s as bool, using default: %v", key, err)
		return defaultValue
	}
	return boolValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	durationValue, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: failed to parse %s as duration, using default: %v", key, err)
		return defaultValue
	}
	return durationValue
}
