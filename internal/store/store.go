package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/screentime/screentime/internal/usage"
)

const (
	defaultFileName = "screentime.json"
	defaultDataDir  = ".config/screentime"
)

// DefaultPath returns the default snapshot path under the user's home
// directory, creating the data directory if needed.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	dataDir := filepath.Join(homeDir, defaultDataDir)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return filepath.Join(dataDir, defaultFileName), nil
}

// Store persists usage snapshots as a single JSON document on disk.
type Store struct {
	path   string
	logger zerolog.Logger
}

// New creates a store writing to the given path.
func New(path string, logger zerolog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger.With().Str("component", "store").Logger(),
	}
}

// Path returns the snapshot file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the last-saved snapshot. A missing or malformed file yields an
// empty snapshot, never an error: previously saved data being unreadable is
// treated as "start fresh".
func (s *Store) Load() usage.Snapshot {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("Snapshot unreadable, starting fresh")
		}
		return usage.EmptySnapshot()
	}

	var snap usage.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("Snapshot malformed, starting fresh")
		return usage.EmptySnapshot()
	}

	// Tolerate documents with missing top-level keys.
	if snap.AppUsage == nil {
		snap.AppUsage = make(map[string]float64)
	}
	if snap.DailyUsage == nil {
		snap.DailyUsage = make(map[string]map[string]float64)
	}

	return snap
}

// Save writes the snapshot to a temp file in the target directory and renames
// it into place, so a crash mid-write never leaves a half-written document.
func (s *Store) Save(snap usage.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode snapshot")
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "failed to create snapshot directory")
	}

	tmp, err := os.CreateTemp(dir, ".screentime-*.json")
	if err != nil {
		return errors.Wrap(err, "failed to create temp snapshot")
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Wrap(err, "failed to write temp snapshot")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, "failed to close temp snapshot")
	}

	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, "failed to set snapshot permissions")
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, "failed to replace snapshot")
	}

	return nil
}
