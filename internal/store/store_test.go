package store

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/screentime/screentime/internal/usage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "screentime.json")
	return New(path, zerolog.Nop())
}

func TestLoadMissingFile(t *testing.T) {
	s := newTestStore(t)

	snap := s.Load()
	if snap.AppUsage == nil || snap.DailyUsage == nil {
		t.Fatal("Load() of missing file returned nil maps")
	}
	if len(snap.AppUsage) != 0 || len(snap.DailyUsage) != 0 {
		t.Errorf("Load() of missing file is not empty: %+v", snap)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	s := newTestStore(t)
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	snap := s.Load()
	if len(snap.AppUsage) != 0 || len(snap.DailyUsage) != 0 {
		t.Errorf("Load() of malformed file is not empty: %+v", snap)
	}
}

func TestLoadMissingKeys(t *testing.T) {
	s := newTestStore(t)
	if err := os.WriteFile(s.Path(), []byte(`{"app_usage": {"firefox": 12}}`), 0644); err != nil {
		t.Fatal(err)
	}

	snap := s.Load()
	if snap.AppUsage["firefox"] != 12 {
		t.Errorf("AppUsage[firefox] = %v, want 12", snap.AppUsage["firefox"])
	}
	if snap.DailyUsage == nil {
		t.Error("missing daily_usage key was not replaced with an empty map")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	snap := usage.EmptySnapshot()
	snap.AppUsage["chrome.exe"] = 8
	snap.AppUsage["code"] = 120.5
	snap.DailyUsage["2024-01-01"] = map[string]float64{"chrome.exe": 8}

	if err := s.Save(snap); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded := s.Load()
	if !reflect.DeepEqual(loaded, snap) {
		t.Errorf("Load() = %+v, want %+v", loaded, snap)
	}
}

func TestSaveLoadSaveIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	snap := usage.EmptySnapshot()
	snap.AppUsage["firefox"] = 42
	snap.DailyUsage["2024-01-01"] = map[string]float64{"firefox": 42}

	if err := s.Save(snap); err != nil {
		t.Fatalf("first Save() error: %v", err)
	}
	first, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Save(s.Load()); err != nil {
		t.Fatalf("second Save() error: %v", err)
	}
	second, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("save(load()) changed the document:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save(usage.EmptySnapshot()); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".screentime-") {
			t.Errorf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestSaveUsesTopLevelKeys(t *testing.T) {
	s := newTestStore(t)

	snap := usage.EmptySnapshot()
	snap.AppUsage["firefox"] = 1
	if err := s.Save(snap); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"app_usage"`, `"daily_usage"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("document is missing top-level key %s:\n%s", key, data)
		}
	}
}
