package daemon

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "screentime.pid"))
}

func TestWriteReadPID(t *testing.T) {
	d := newTestDaemon(t)

	if err := d.WritePID(); err != nil {
		t.Fatalf("WritePID() error: %v", err)
	}

	pid, err := d.ReadPID()
	if err != nil {
		t.Fatalf("ReadPID() error: %v", err)
	}
	if pid != os.Getpid() {
		t.Errorf("ReadPID() = %d, want %d", pid, os.Getpid())
	}
}

func TestReadPIDMissingFile(t *testing.T) {
	d := newTestDaemon(t)

	pid, err := d.ReadPID()
	if err != nil {
		t.Fatalf("ReadPID() on missing file error: %v", err)
	}
	if pid != 0 {
		t.Errorf("ReadPID() = %d, want 0", pid)
	}
}

func TestReadPIDGarbage(t *testing.T) {
	d := newTestDaemon(t)

	if err := os.WriteFile(d.pidFile, []byte("not-a-pid"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := d.ReadPID(); err == nil {
		t.Error("ReadPID() on garbage content did not return an error")
	}
}

func TestIsRunningLiveProcess(t *testing.T) {
	d := newTestDaemon(t)

	if err := d.WritePID(); err != nil {
		t.Fatalf("WritePID() error: %v", err)
	}

	running, pid, err := d.IsRunning()
	if err != nil {
		t.Fatalf("IsRunning() error: %v", err)
	}
	if !running {
		t.Error("IsRunning() = false for the test's own live process")
	}
	if pid != os.Getpid() {
		t.Errorf("IsRunning() pid = %d, want %d", pid, os.Getpid())
	}
	if _, err := os.Stat(d.pidFile); err != nil {
		t.Errorf("PID file of a live process was removed: %v", err)
	}
}

func TestIsRunningRemovesStalePIDFile(t *testing.T) {
	d := newTestDaemon(t)

	// A PID beyond any OS pid range, so it cannot name a live process.
	if err := os.WriteFile(d.pidFile, []byte(strconv.Itoa(math.MaxInt32)), 0644); err != nil {
		t.Fatal(err)
	}

	running, _, err := d.IsRunning()
	if err != nil {
		t.Fatalf("IsRunning() error: %v", err)
	}
	if running {
		t.Error("IsRunning() = true for a stale PID")
	}
	if _, err := os.Stat(d.pidFile); !os.IsNotExist(err) {
		t.Error("stale PID file was not removed")
	}
}

func TestStopNotRunning(t *testing.T) {
	d := newTestDaemon(t)

	if err := d.Stop(); err == nil {
		t.Error("Stop() without a running daemon did not return an error")
	}
}

func TestRemovePIDMissingFile(t *testing.T) {
	d := newTestDaemon(t)

	if err := d.RemovePID(); err != nil {
		t.Errorf("RemovePID() on missing file error: %v", err)
	}
}
