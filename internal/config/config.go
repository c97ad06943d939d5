package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"godoe/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig `validate:"required"`
	Server   ServerConfig   `validate:"required"`
	Paths    PathConfig     `validate:"required"`
	Log      LogConfig
	Seed     int64
}

// DatabaseConfig holds the campaign ledger connection settings
type DatabaseConfig struct {
	Driver string `validate:"required,oneof=sqlite postgres"`
	URL    string `validate:"required"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string `validate:"required"`
	ShutdownTimeout time.Duration
}

// PathConfig holds file system paths
type PathConfig struct {
	CampaignFile string `validate:"required"`
	WorkDir      string `validate:"required"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: loadDatabaseConfig(),
		Server:   loadServerConfig(),
		Paths:    loadPathConfig(),
		Log:      LogConfig{Level: getEnvOrDefault("LOG_LEVEL", "INFO")},
		Seed:     getEnvInt64OrDefault("DOE_SEED", 0),
	}

	if err := validateStruct(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadDatabaseConfig() DatabaseConfig {
	url := getEnvOrDefault("DATABASE_URL", "doe.db")
	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = "sqlite"
		if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
			driver = "postgres"
		}
	}
	return DatabaseConfig{Driver: driver, URL: url}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:            getEnvOrDefault("PORT", "8080"),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadPathConfig() PathConfig {
	return PathConfig{
		CampaignFile: getEnvOrDefault("CAMPAIGN_FILE", "campaign.yaml"),
		WorkDir:      getEnvOrDefault("DOE_WORKDIR", "."),
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
