// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	UsageAPIBaseURL    string
	SettingsPath       string
	TranscriptPath     string
	LogPath            string
	DefaultModel       string
	HistoryLimit       int
	PollInterval       time.Duration
	CostAlertThreshold float64
}

// Default values
const (
	defaultPollInterval = 10 * time.Second
	defaultHistoryLimit = 10
	defaultModel        = "gpt-4o-mini"
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		UsageAPIBaseURL:    getEnvString("USAGE_API_URL", "http://localhost:3000/api"),
		SettingsPath:       getEnvString("SETTINGS_PATH", defaultSettingsPath()),
		TranscriptPath:     getEnvString("TRANSCRIPT_PATH", defaultTranscriptPath()),
		LogPath:            getEnvString("LOG_PATH", defaultLogPath()),
		DefaultModel:       getEnvString("DEFAULT_MODEL", defaultModel),
		HistoryLimit:       getEnvInt("HISTORY_LIMIT", defaultHistoryLimit),
		PollInterval:       getEnvDuration("POLL_INTERVAL", defaultPollInterval),
		CostAlertThreshold: getEnvFloat("COST_ALERT_THRESHOLD", 0),
	}

	if cfg.UsageAPIBaseURL == "" {
		return nil, fmt.Errorf("USAGE_API_URL must not be empty")
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}

	if err := ensureDir(filepath.Dir(cfg.SettingsPath)); err != nil {
		return nil, err
	}
	if err := ensureDir(filepath.Dir(cfg.LogPath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "tokendeck", ".env"),
			filepath.Join(home, ".tokendeck", ".env"),
		)
	}

	return paths
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "tokendeck")
}

func defaultSettingsPath() string {
	return filepath.Join(configDir(), "settings.db")
}

func defaultTranscriptPath() string {
	return filepath.Join(configDir(), "live-session.json")
}

func defaultLogPath() string {
	return filepath.Join(configDir(), "tokendeck.log")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns the default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the
// default. Accepts values like "30s", "1m", "500ms", or bare seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
