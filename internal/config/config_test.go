package config

import (
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() config is invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "poll interval below minimum",
			mutate:  func(c *Config) { c.Tracker.PollInterval = 500 * time.Millisecond },
			wantErr: true,
		},
		{
			name:    "poll interval above maximum",
			mutate:  func(c *Config) { c.Tracker.PollInterval = time.Hour },
			wantErr: true,
		},
		{
			name:    "tick gap not above poll interval",
			mutate:  func(c *Config) { c.Tracker.MaxTickGap = c.Tracker.PollInterval },
			wantErr: true,
		},
		{
			name:    "zero autosave interval",
			mutate:  func(c *Config) { c.Tracker.AutosaveInterval = 0 },
			wantErr: true,
		},
		{
			name:    "invalid web port",
			mutate:  func(c *Config) { c.Web.Port = 0 },
			wantErr: true,
		},
		{
			name:    "empty web host",
			mutate:  func(c *Config) { c.Web.Host = "" },
			wantErr: true,
		},
		{
			name:    "empty pid file",
			mutate:  func(c *Config) { c.Daemon.PIDFile = "" },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Daemon.LogLevel = "loud" },
			wantErr: true,
		},
		{
			name:    "debug log level",
			mutate:  func(c *Config) { c.Daemon.LogLevel = "debug" },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetPollInterval(t *testing.T) {
	cfg := Default()

	if err := cfg.SetPollInterval(30 * time.Second); err != nil {
		t.Errorf("SetPollInterval(30s) error: %v", err)
	}
	if cfg.Tracker.PollInterval != 30*time.Second {
		t.Errorf("PollInterval = %v, want 30s", cfg.Tracker.PollInterval)
	}

	if err := cfg.SetPollInterval(100 * time.Millisecond); err == nil {
		t.Error("SetPollInterval below minimum did not return an error")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SCREENTIME_DATA_FILE", "/tmp/usage.json")
	t.Setenv("SCREENTIME_DB_PATH", "/tmp/usage.db")
	t.Setenv("SCREENTIME_POLL_INTERVAL", "10")
	t.Setenv("SCREENTIME_MAX_TICK_GAP", "45")
	t.Setenv("SCREENTIME_AUTOSAVE_INTERVAL", "120")
	t.Setenv("SCREENTIME_LOG_LEVEL", "debug")
	t.Setenv("SCREENTIME_WEB_PORT", "9999")

	cfg := New()

	if cfg.Data.SnapshotPath != "/tmp/usage.json" {
		t.Errorf("SnapshotPath = %s", cfg.Data.SnapshotPath)
	}
	if cfg.Data.ArchivePath != "/tmp/usage.db" {
		t.Errorf("ArchivePath = %s", cfg.Data.ArchivePath)
	}
	if cfg.Tracker.PollInterval != 10*time.Second {
		t.Errorf("PollInterval = %v, want 10s", cfg.Tracker.PollInterval)
	}
	if cfg.Tracker.MaxTickGap != 45*time.Second {
		t.Errorf("MaxTickGap = %v, want 45s", cfg.Tracker.MaxTickGap)
	}
	if cfg.Tracker.AutosaveInterval != 120*time.Second {
		t.Errorf("AutosaveInterval = %v, want 120s", cfg.Tracker.AutosaveInterval)
	}
	if cfg.Daemon.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.Daemon.LogLevel)
	}
	if cfg.Web.Port != 9999 {
		t.Errorf("Web.Port = %d, want 9999", cfg.Web.Port)
	}
}

func TestLoadFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("SCREENTIME_POLL_INTERVAL", "not-a-number")
	t.Setenv("SCREENTIME_WEB_PORT", "70000")
	t.Setenv("SCREENTIME_LOG_LEVEL", "loud")

	cfg := New()
	def := Default()

	if cfg.Tracker.PollInterval != def.Tracker.PollInterval {
		t.Errorf("invalid poll interval changed config: %v", cfg.Tracker.PollInterval)
	}
	if cfg.Web.Port != def.Web.Port {
		t.Errorf("out-of-range port changed config: %d", cfg.Web.Port)
	}
	if cfg.Daemon.LogLevel != def.Daemon.LogLevel {
		t.Errorf("invalid log level changed config: %s", cfg.Daemon.LogLevel)
	}
}
