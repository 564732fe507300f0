package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config holds all application configuration
type Config struct {
	// Data file locations
	Data DataConfig

	// Tracker configuration
	Tracker TrackerConfig

	// Daemon configuration
	Daemon DaemonConfig

	// Web server configuration
	Web WebConfig
}

// DataConfig holds persistence locations
type DataConfig struct {
	SnapshotPath string // Path to the JSON usage snapshot (empty = default)
	ArchivePath  string // Path to the sqlite sample archive (empty = default)
}

// TrackerConfig holds polling behavior configuration
type TrackerConfig struct {
	PollInterval     time.Duration // How often to check the foreground window
	MinPollInterval  time.Duration // Minimum allowed poll interval
	MaxPollInterval  time.Duration // Maximum allowed poll interval
	MaxTickGap       time.Duration // Ticks with a longer measured gap are dropped
	AutosaveInterval time.Duration // How often the snapshot is flushed to disk
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile  string // Path to PID file for daemon management
	LogFile  string // Daemon log destination
	LogLevel string // Minimum log level (trace, debug, info, warn, error)
}

// WebConfig holds web server configuration
type WebConfig struct {
	Host string
	Port int
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Data: DataConfig{
			SnapshotPath: "", // Empty means ~/.config/screentime/screentime.json
			ArchivePath:  "", // Empty means ~/.config/screentime/screentime.db
		},
		Tracker: TrackerConfig{
			PollInterval:     5 * time.Second,
			MinPollInterval:  1 * time.Second,
			MaxPollInterval:  300 * time.Second,
			MaxTickGap:       15 * time.Second,
			AutosaveInterval: 60 * time.Second,
		},
		Daemon: DaemonConfig{
			PIDFile:  fmt.Sprintf("/tmp/screentime-%d.pid", os.Getuid()),
			LogFile:  fmt.Sprintf("/tmp/screentime-%d.log", os.Getuid()),
			LogLevel: "info",
		},
		Web: WebConfig{
			Host: "localhost",
			Port: 8090,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Tracker.PollInterval < c.Tracker.MinPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be less than minimum (%v)",
			c.Tracker.PollInterval, c.Tracker.MinPollInterval)
	}

	if c.Tracker.PollInterval > c.Tracker.MaxPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be greater than maximum (%v)",
			c.Tracker.PollInterval, c.Tracker.MaxPollInterval)
	}

	if c.Tracker.MaxTickGap <= c.Tracker.PollInterval {
		return fmt.Errorf("max tick gap (%v) must be greater than the poll interval (%v)",
			c.Tracker.MaxTickGap, c.Tracker.PollInterval)
	}

	if c.Tracker.AutosaveInterval <= 0 {
		return fmt.Errorf("autosave interval must be positive")
	}

	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web port must be between 1 and 65535, got %d", c.Web.Port)
	}

	if c.Web.Host == "" {
		return fmt.Errorf("web host cannot be empty")
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	if _, err := zerolog.ParseLevel(c.Daemon.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Daemon.LogLevel, err)
	}

	return nil
}

// SetPollInterval sets the poll interval with validation
func (c *Config) SetPollInterval(interval time.Duration) error {
	if interval < c.Tracker.MinPollInterval {
		return fmt.Errorf("poll interval cannot be less than %v", c.Tracker.MinPollInterval)
	}
	if interval > c.Tracker.MaxPollInterval {
		return fmt.Errorf("poll interval cannot be greater than %v", c.Tracker.MaxPollInterval)
	}
	c.Tracker.PollInterval = interval
	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Data:
    Snapshot: %s
    Archive: %s
  Tracker:
    Poll Interval: %v
    Max Tick Gap: %v
    Autosave Interval: %v
  Daemon:
    PID File: %s
    Log File: %s
    Log Level: %s
  Web:
    Host: %s
    Port: %d`,
		c.Data.SnapshotPath,
		c.Data.ArchivePath,
		c.Tracker.PollInterval,
		c.Tracker.MaxTickGap,
		c.Tracker.AutosaveInterval,
		c.Daemon.PIDFile,
		c.Daemon.LogFile,
		c.Daemon.LogLevel,
		c.Web.Host,
		c.Web.Port,
	)
}
