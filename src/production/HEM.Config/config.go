package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server"`

	// Database configuration
	Database DatabaseConfig `json:"database"`

	// MQTT configuration
	MQTT MQTTConfig `json:"mqtt"`

	// Ingestion configuration
	Ingest IngestConfig `json:"ingest"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`

	// CORS configuration
	CORS CORSConfig `json:"cors"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         string        `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// DatabaseConfig holds the embedded SQLite store configuration
type DatabaseConfig struct {
	Path        string        `json:"path"`
	BusyTimeout time.Duration `json:"busy_timeout"`
}

// MQTTConfig holds MQTT-related configuration
type MQTTConfig struct {
	BrokerHost           string        `json:"broker_host"`
	BrokerPort           int           `json:"broker_port"`
	BrokerUser           string        `json:"broker_user"`
	BrokerPass           string        `json:"broker_pass"`
	UseTLS               bool          `json:"use_tls"`
	CACertPath           string        `json:"ca_cert_path"`
	ClientID             string        `json:"client_id"`
	KeepAlive            time.Duration `json:"keep_alive"`
	PingTimeout          time.Duration `json:"ping_timeout"`
	ConnectRetryInterval time.Duration `json:"connect_retry_interval"`
	MaxReconnectInterval time.Duration `json:"max_reconnect_interval"`
}

// IngestConfig holds ingestion-side tunables
type IngestConfig struct {
	// ElectricityTariff is the fixed price per kWh used to derive cost
	// at write time.
	ElectricityTariff float64 `json:"electricity_tariff"`

	// HeartbeatSeenOffset is added to the wall clock when a device
	// reports online. The firmware expects last_seen one hour ahead of
	// server time.
	HeartbeatSeenOffset time.Duration `json:"heartbeat_seen_offset"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level        string `json:"level"`
	Format       string `json:"format"` // json or text
	Output       string `json:"output"` // stdout or stderr
	EnableCaller bool   `json:"enable_caller"`
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	ExposedHeaders   []string `json:"exposed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	MaxAge           int      `json:"max_age"`
}

// Load loads configuration from environment variables with fallback defaults
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	if err := godotenv.Load(); err != nil {
		// Silently ignore .env file loading errors
		// This allows the application to work with environment variables set directly
	}

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "5000"),
			ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDuration("WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDuration("IDLE_TIMEOUT", 120*time.Second),
		},
		Database: DatabaseConfig{
			Path:        getEnv("SQLITE_PATH", "data/energy_data.db"),
			BusyTimeout: getDuration("SQLITE_BUSY_TIMEOUT", 5*time.Second),
		},
		MQTT: MQTTConfig{
			BrokerHost:           getEnv("BROKER_HOST", "broker.hivemq.com"),
			BrokerPort:           getInt("BROKER_PORT", 1883),
			BrokerUser:           getEnv("BROKER_USER", ""),
			BrokerPass:           getEnv("BROKER_PASS", ""),
			UseTLS:               getBool("BROKER_TLS", false),
			CACertPath:           getEnv("BROKER_CA_FILE", ""),
			ClientID:             getEnv("MQTT_CLIENT_ID", "hem-backend"),
			KeepAlive:            getDuration("MQTT_KEEP_ALIVE", 30*time.Second),
			PingTimeout:          getDuration("MQTT_PING_TIMEOUT", 10*time.Second),
			ConnectRetryInterval: getDuration("MQTT_CONNECT_RETRY_INTERVAL", 5*time.Second),
			MaxReconnectInterval: getDuration("MQTT_MAX_RECONNECT_INTERVAL", time.Minute),
		},
		Ingest: IngestConfig{
			ElectricityTariff:   getFloat("ELECTRICITY_TARIFF", 0.15),
			HeartbeatSeenOffset: getDuration("HEARTBEAT_SEEN_OFFSET", time.Hour),
		},
		Logging: LoggingConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			Format:       getEnv("LOG_FORMAT", "text"),
			Output:       getEnv("LOG_OUTPUT", "stdout"),
			EnableCaller: getBool("LOG_ENABLE_CALLER", false),
		},
		CORS: CORSConfig{
			AllowedOrigins:   getStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods:   getStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "OPTIONS"}),
			AllowedHeaders:   getStringSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept"}),
			ExposedHeaders:   getStringSlice("CORS_EXPOSED_HEADERS", []string{"Content-Length"}),
			AllowCredentials: getBool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           getInt("CORS_MAX_AGE", 43200), // 12 hours
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("SQLITE_PATH is required")
	}
	if c.MQTT.BrokerHost == "" {
		return fmt.Errorf("BROKER_HOST is required")
	}
	if c.Ingest.ElectricityTariff < 0 {
		return fmt.Errorf("ELECTRICITY_TARIFF must not be negative")
	}
	return nil
}

// GetMQTTBrokerURL returns the MQTT broker URL
func (c *Config) GetMQTTBrokerURL() string {
	scheme := "tcp"
	if c.MQTT.UseTLS {
		scheme = "tcps"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.MQTT.BrokerHost, c.MQTT.BrokerPort)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return intValue
}

func getFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return floatValue
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if value == "1" || value == "true" || value == "TRUE" {
		return true
	}
	if value == "0" || value == "false" || value == "FALSE" {
		return false
	}
	log.Fatalf("invalid %s: %q (expected true/false or 1/0)", key, value)
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return duration
}

func getStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
