package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/screentime/screentime/internal/config"
	"github.com/screentime/screentime/internal/models"
	"github.com/screentime/screentime/internal/store"
	"github.com/screentime/screentime/internal/usage"
	"github.com/screentime/screentime/pkg/window"
)

// SampleSink receives raw tick samples and error records. Satisfied by
// archive.Repository; may be nil when the archive is disabled.
type SampleSink interface {
	CreateSample(*models.FocusSample) error
	CreateErrorLog(*models.ErrorLog) error
}

// Service drives the poll loop: each tick it resolves the foreground window
// and folds the measured elapsed time into the usage stats.
type Service struct {
	config   *config.Config
	stats    *usage.Stats
	store    *store.Store
	sink     SampleSink
	detector window.Detector
	logger   zerolog.Logger
	stopChan chan struct{}
	running  bool
	lastTick time.Time
	lastSave time.Time
}

func NewService(cfg *config.Config, stats *usage.Stats, st *store.Store, sink SampleSink, detector window.Detector, logger zerolog.Logger) *Service {
	return &Service{
		config:   cfg,
		stats:    stats,
		store:    st,
		sink:     sink,
		detector: detector,
		logger:   logger.With().Str("component", "tracker").Logger(),
		stopChan: make(chan struct{}),
	}
}

// Start runs the poll loop until the context is cancelled or Stop is called.
// The snapshot is flushed on every autosave interval and once more on the way
// out, so at most one autosave window of deltas can be lost.
func (s *Service) Start(ctx context.Context) error {
	if s.running {
		return fmt.Errorf("tracker is already running")
	}

	s.running = true
	s.stats.Start()
	now := time.Now()
	s.lastTick = now
	s.lastSave = now

	s.logger.Info().
		Dur("poll_interval", s.config.Tracker.PollInterval).
		Dur("autosave_interval", s.config.Tracker.AutosaveInterval).
		Msg("Tracker started")

	ticker := time.NewTicker(s.config.Tracker.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.shutdown("context cancelled")
			return ctx.Err()

		case <-s.stopChan:
			s.shutdown("stop requested")
			return nil

		case now := <-ticker.C:
			s.tick(now)
		}
	}
}

// Stop requests loop termination. Safe to call once.
func (s *Service) Stop() {
	if s.running {
		close(s.stopChan)
	}
}

func (s *Service) IsRunning() bool {
	return s.running
}

func (s *Service) shutdown(reason string) {
	s.stats.Stop()
	s.running = false
	s.flush()
	s.logger.Info().Str("reason", reason).Msg("Tracker stopped")
}

func (s *Service) tick(now time.Time) {
	elapsed := now.Sub(s.lastTick).Seconds()
	s.lastTick = now

	switch {
	case elapsed < 0:
		// Clock went backwards; drop the tick rather than record a
		// negative duration.
		s.logger.Warn().Float64("elapsed", elapsed).Msg("Clock moved backwards, tick dropped")
	case elapsed > s.config.Tracker.MaxTickGap.Seconds():
		// Suspend/resume or a long stall. Attributing the whole gap to
		// whatever is focused now would overcount it.
		s.logger.Debug().Float64("elapsed", elapsed).Msg("Tick gap too large, tick dropped")
	default:
		s.observe(now, elapsed)
	}

	if now.Sub(s.lastSave) >= s.config.Tracker.AutosaveInterval {
		s.flush()
		s.lastSave = now
	}
}

func (s *Service) observe(now time.Time, elapsed float64) {
	info, err := s.detector.FocusedWindow()
	if err != nil {
		s.recordError(fmt.Errorf("failed to get focused window: %w", err))
		return
	}
	if info == nil || info.AppName == "" {
		return
	}

	app := strings.ToLower(info.AppName)
	if !s.stats.RecordTick(app, elapsed, usage.DayKey(now)) {
		return
	}

	s.logger.Debug().Str("app", app).Float64("elapsed", elapsed).Msg("Tick recorded")

	if s.sink == nil {
		return
	}
	sample := &models.FocusSample{
		Timestamp:   now,
		AppName:     app,
		WindowTitle: info.WindowTitle,
		Seconds:     elapsed,
		Platform:    info.Platform,
	}
	if err := s.sink.CreateSample(sample); err != nil {
		s.logger.Error().Err(err).Msg("Failed to archive sample")
	}
}

// flush writes the current snapshot to disk. A failed save is logged and
// reported to the error log; the in-memory totals are untouched, so a later
// save retries the full state.
func (s *Service) flush() {
	if err := s.store.Save(s.stats.Snapshot()); err != nil {
		s.logger.Error().Err(err).Msg("Failed to save snapshot")
		s.recordError(fmt.Errorf("failed to save snapshot: %w", err))
	}
}

func (s *Service) recordError(err error) {
	s.logger.Warn().Err(err).Msg("Tick error")

	if s.sink == nil {
		return
	}
	entry := &models.ErrorLog{
		Timestamp: time.Now(),
		ErrorMsg:  err.Error(),
	}
	if dbErr := s.sink.CreateErrorLog(entry); dbErr != nil {
		s.logger.Error().Err(dbErr).Msg("Failed to store error log")
	}
}
