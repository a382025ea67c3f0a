// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir         string // Base directory for the database and optional CSV overrides
	DBPath          string // SQLite database file (defaults to <DataDir>/precept.db)
	Port            int
	DevMode         bool
	LogLevel        string
	LogPretty       bool
	RefreshSchedule string // cron spec for reference-data refresh

	Pipeline PipelineConfig
}

// PipelineConfig carries the decision thresholds that may be tuned per
// deployment. Zero values mean "use the engine default".
type PipelineConfig struct {
	ImminentMinutes       int     // time-to-close below this => urgency High
	FullSessionMinutes    int     // time-to-close at or above this => urgency Low
	LargeOrderLimitRatio  float64 // size_vs_adv above this forces a Limit order
	PatternMinSupport     int     // minimum historical matches for a usable precedent
	PatternTieBreakMargin float64 // pattern algo wins within this of the top score
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:         absDataDir,
		DBPath:          getEnv("DB_PATH", filepath.Join(absDataDir, "precept.db")),
		Port:            getEnvAsInt("PORT", 8001),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogPretty:       getEnvAsBool("LOG_PRETTY", true),
		RefreshSchedule: getEnv("REFRESH_SCHEDULE", "@every 15m"),
		Pipeline: PipelineConfig{
			ImminentMinutes:       getEnvAsInt("IMMINENT_MINUTES", 0),
			FullSessionMinutes:    getEnvAsInt("FULL_SESSION_MINUTES", 0),
			LargeOrderLimitRatio:  getEnvAsFloat("LARGE_ORDER_LIMIT_RATIO", 0),
			PatternMinSupport:     getEnvAsInt("PATTERN_MIN_SUPPORT", 0),
			PatternTieBreakMargin: getEnvAsFloat("PATTERN_TIEBREAK_MARGIN", 0),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Pipeline.ImminentMinutes < 0 || c.Pipeline.FullSessionMinutes < 0 {
		return fmt.Errorf("urgency cutoffs must be non-negative")
	}
	if c.Pipeline.ImminentMinutes > 0 && c.Pipeline.FullSessionMinutes > 0 &&
		c.Pipeline.ImminentMinutes >= c.Pipeline.FullSessionMinutes {
		return fmt.Errorf("IMMINENT_MINUTES must be below FULL_SESSION_MINUTES")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
