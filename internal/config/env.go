package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// LoadFromEnv loads configuration from environment variables.
// Environment variables override default values.
func LoadFromEnv(cfg *Config) {
	if snapshotPath := os.Getenv("SCREENTIME_DATA_FILE"); snapshotPath != "" {
		cfg.Data.SnapshotPath = snapshotPath
	}

	if dbPath := os.Getenv("SCREENTIME_DB_PATH"); dbPath != "" {
		cfg.Data.ArchivePath = dbPath
	}

	if pollInterval := os.Getenv("SCREENTIME_POLL_INTERVAL"); pollInterval != "" {
		if seconds, err := strconv.Atoi(pollInterval); err == nil && seconds > 0 {
			interval := time.Duration(seconds) * time.Second
			if interval >= cfg.Tracker.MinPollInterval && interval <= cfg.Tracker.MaxPollInterval {
				cfg.Tracker.PollInterval = interval
			}
		}
	}

	if maxGap := os.Getenv("SCREENTIME_MAX_TICK_GAP"); maxGap != "" {
		if seconds, err := strconv.Atoi(maxGap); err == nil && seconds > 0 {
			cfg.Tracker.MaxTickGap = time.Duration(seconds) * time.Second
		}
	}

	if autosave := os.Getenv("SCREENTIME_AUTOSAVE_INTERVAL"); autosave != "" {
		if seconds, err := strconv.Atoi(autosave); err == nil && seconds > 0 {
			cfg.Tracker.AutosaveInterval = time.Duration(seconds) * time.Second
		}
	}

	if pidFile := os.Getenv("SCREENTIME_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	if logFile := os.Getenv("SCREENTIME_LOG_FILE"); logFile != "" {
		cfg.Daemon.LogFile = logFile
	}

	if logLevel := os.Getenv("SCREENTIME_LOG_LEVEL"); logLevel != "" {
		if _, err := zerolog.ParseLevel(logLevel); err == nil {
			cfg.Daemon.LogLevel = logLevel
		}
	}

	if webHost := os.Getenv("SCREENTIME_WEB_HOST"); webHost != "" {
		cfg.Web.Host = webHost
	}

	if webPort := os.Getenv("SCREENTIME_WEB_PORT"); webPort != "" {
		if port, err := strconv.Atoi(webPort); err == nil && port > 0 && port <= 65535 {
			cfg.Web.Port = port
		}
	}
}

// New creates a new Config with default values and loads from environment
func New() *Config {
	cfg := Default()
	LoadFromEnv(cfg)
	return cfg
}
