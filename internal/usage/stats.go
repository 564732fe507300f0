package usage

import (
	"sort"
	"sync"
	"time"
)

// DayKey formats a timestamp as the calendar-date key used by DailyUsage.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Snapshot is the serializable form of the accumulated usage state. It is
// also the on-disk JSON document layout.
type Snapshot struct {
	AppUsage   map[string]float64            `json:"app_usage"`
	DailyUsage map[string]map[string]float64 `json:"daily_usage"`
}

// EmptySnapshot returns a snapshot with initialized, empty maps.
func EmptySnapshot() Snapshot {
	return Snapshot{
		AppUsage:   make(map[string]float64),
		DailyUsage: make(map[string]map[string]float64),
	}
}

// AppTotal is a single row of an app ranking.
type AppTotal struct {
	AppName string  `json:"app_name"`
	Seconds float64 `json:"seconds"`
}

// Stats accumulates per-app usage time, both all-time and per calendar day.
// The poll loop is the only writer; HTTP handlers and the TUI read
// concurrently, hence the RWMutex.
type Stats struct {
	mu         sync.RWMutex
	appUsage   map[string]float64
	dailyUsage map[string]map[string]float64
	tracking   bool
}

// New creates an empty Stats.
func New() *Stats {
	return &Stats{
		appUsage:   make(map[string]float64),
		dailyUsage: make(map[string]map[string]float64),
	}
}

// FromSnapshot creates a Stats seeded with previously persisted totals.
// Missing maps in the snapshot are treated as empty.
func FromSnapshot(snap Snapshot) *Stats {
	s := New()
	for app, secs := range snap.AppUsage {
		if secs >= 0 {
			s.appUsage[app] = secs
		}
	}
	for day, apps := range snap.DailyUsage {
		for app, secs := range apps {
			if secs < 0 {
				continue
			}
			if s.dailyUsage[day] == nil {
				s.dailyUsage[day] = make(map[string]float64)
			}
			s.dailyUsage[day][app] = secs
		}
	}
	return s
}

// Start enables tick recording.
func (s *Stats) Start() {
	s.mu.Lock()
	s.tracking = true
	s.mu.Unlock()
}

// Stop disables tick recording. Totals recorded so far are kept.
func (s *Stats) Stop() {
	s.mu.Lock()
	s.tracking = false
	s.mu.Unlock()
}

// IsTracking reports whether ticks are currently accepted.
func (s *Stats) IsTracking() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracking
}

// RecordTick adds elapsed seconds to the app's all-time total and to its
// bucket for the given day. Ticks are dropped while tracking is stopped, and
// negative elapsed values (backward clock jumps) are dropped as a no-op.
// It reports whether the tick was recorded.
func (s *Stats) RecordTick(app string, elapsed float64, day string) bool {
	if app == "" || elapsed < 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tracking {
		return false
	}

	s.appUsage[app] += elapsed
	if s.dailyUsage[day] == nil {
		s.dailyUsage[day] = make(map[string]float64)
	}
	s.dailyUsage[day][app] += elapsed
	return true
}

// AppSeconds returns the all-time total for a single app.
func (s *Stats) AppSeconds(app string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.appUsage[app]
}

// DaySeconds returns the total for a single app on a single day.
func (s *Stats) DaySeconds(day, app string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dailyUsage[day][app]
}

// DayTotal returns the summed usage across all apps for a day.
func (s *Stats) DayTotal(day string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for _, secs := range s.dailyUsage[day] {
		total += secs
	}
	return total
}

// TotalSeconds returns the summed all-time usage across all apps.
func (s *Stats) TotalSeconds() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for _, secs := range s.appUsage {
		total += secs
	}
	return total
}

// TopApps returns up to limit apps ranked by all-time usage, descending.
// A limit <= 0 means no limit.
func (s *Stats) TopApps(limit int) []AppTotal {
	s.mu.RLock()
	totals := make([]AppTotal, 0, len(s.appUsage))
	for app, secs := range s.appUsage {
		totals = append(totals, AppTotal{AppName: app, Seconds: secs})
	}
	s.mu.RUnlock()

	return rankTotals(totals, limit)
}

// DayApps returns up to limit apps ranked by usage for one day, descending.
func (s *Stats) DayApps(day string, limit int) []AppTotal {
	s.mu.RLock()
	totals := make([]AppTotal, 0, len(s.dailyUsage[day]))
	for app, secs := range s.dailyUsage[day] {
		totals = append(totals, AppTotal{AppName: app, Seconds: secs})
	}
	s.mu.RUnlock()

	return rankTotals(totals, limit)
}

// Snapshot returns a deep copy of the current state, safe to serialize while
// tracking continues.
func (s *Stats) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := EmptySnapshot()
	for app, secs := range s.appUsage {
		snap.AppUsage[app] = secs
	}
	for day, apps := range s.dailyUsage {
		dayCopy := make(map[string]float64, len(apps))
		for app, secs := range apps {
			dayCopy[app] = secs
		}
		snap.DailyUsage[day] = dayCopy
	}
	return snap
}

func rankTotals(totals []AppTotal, limit int) []AppTotal {
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Seconds != totals[j].Seconds {
			return totals[i].Seconds > totals[j].Seconds
		}
		return totals[i].AppName < totals[j].AppName
	})
	if limit > 0 && len(totals) > limit {
		totals = totals[:limit]
	}
	return totals
}
