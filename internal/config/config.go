// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port   string
	APIKey string

	// FinalizeMinArtifacts is the number of distinct artifact categories
	// required before a session finalizes.
	FinalizeMinArtifacts int

	// HistoryLimit bounds how many trailing conversation turns feed the
	// reply generator.
	HistoryLimit int

	HFToken           string
	HFModel           string
	GenerationTimeout time.Duration

	CollectorURL     string
	CollectorTimeout time.Duration

	// DatabaseURL enables the Postgres finalize-report archive when set.
	DatabaseURL string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		APIKey:               getEnv("HP_API_KEY", ""),
		FinalizeMinArtifacts: getEnvInt("FINALIZE_MIN_ARTIFACTS", 3),
		HistoryLimit:         getEnvInt("HISTORY_LIMIT", 6),
		HFToken:              getEnv("HF_TOKEN", ""),
		HFModel:              getEnv("HF_MODEL", "meta-llama/Meta-Llama-3.1-8B-Instruct"),
		GenerationTimeout:    getEnvSeconds("HF_TIMEOUT_SECONDS", 4*time.Second),
		CollectorURL:         getEnv("COLLECTOR_URL", ""),
		CollectorTimeout:     getEnvSeconds("COLLECTOR_TIMEOUT_SECONDS", 5*time.Second),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.APIKey == "" {
		return fmt.Errorf("HP_API_KEY must be set")
	}
	if c.FinalizeMinArtifacts < 1 {
		return fmt.Errorf("FINALIZE_MIN_ARTIFACTS must be >= 1")
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("HISTORY_LIMIT cannot be negative")
	}
	if c.CollectorURL == "" {
		return fmt.Errorf("COLLECTOR_URL must be set")
	}
	return nil
}

// GenerationEnabled reports whether a generation backend is configured.
// Without one, the strategist still works: every scam reply is the fixed
// fallback.
func (c *Config) GenerationEnabled() bool {
	return c.HFToken != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvSeconds(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || secs <= 0 {
		return fallback
	}
	return time.Duration(secs * float64(time.Second))
}
