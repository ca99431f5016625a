package settings

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Settings holds process configuration read from the environment.
type Settings struct {
	Addr           string
	ModelsConfig   string
	ResourcesDir   string
	DatabaseURL    string
	SessionDir     string
	ExtractTimeout time.Duration
	StripHTML      bool
	SessionTTL     time.Duration
}

// Load reads the environment. Unset or unparsable values fall back to defaults.
func Load() *Settings {
	return &Settings{
		Addr:           getEnv("ADDR", ":8080"),
		ModelsConfig:   getEnv("MODELS_CONFIG", "config/models.yaml"),
		ResourcesDir:   getEnv("RESOURCES_DIR", "resources"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		SessionDir:     getEnv("SESSION_DIR", ""),
		ExtractTimeout: getEnvAsDuration("EXTRACT_TIMEOUT", 60*time.Second),
		StripHTML:      getEnvAsBool("STRIP_HTML", true),
		SessionTTL:     getEnvAsDuration("SESSION_TTL", 24*time.Hour),
	}
}

// Validate checks values that have no usable fallback.
func (s *Settings) Validate() error {
	if s.Addr == "" {
		return fmt.Errorf("ADDR is required")
	}
	if s.ExtractTimeout < 0 {
		return fmt.Errorf("EXTRACT_TIMEOUT must not be negative, got %s", s.ExtractTimeout)
	}
	if s.SessionTTL < 0 {
		return fmt.Errorf("SESSION_TTL must not be negative, got %s", s.SessionTTL)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
