package daemon

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Daemon manages the PID file of the background tracking process. Process
// liveness probing and termination are platform-specific; see process_unix.go
// and process_windows.go.
type Daemon struct {
	pidFile string
}

func New(pidFile string) *Daemon {
	return &Daemon{pidFile: pidFile}
}

func (d *Daemon) WritePID() error {
	return os.WriteFile(d.pidFile, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func (d *Daemon) ReadPID() (int, error) {
	data, err := os.ReadFile(d.pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %w", err)
	}

	return pid, nil
}

func (d *Daemon) RemovePID() error {
	if err := os.Remove(d.pidFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// IsRunning reports whether the recorded PID still refers to a live process.
// A stale PID file is removed along the way.
func (d *Daemon) IsRunning() (bool, int, error) {
	pid, err := d.ReadPID()
	if err != nil {
		return false, 0, err
	}
	if pid == 0 {
		return false, 0, nil
	}

	if !processAlive(pid) {
		d.RemovePID()
		return false, 0, nil
	}

	return true, pid, nil
}

// Stop terminates the recorded process and removes the PID file.
func (d *Daemon) Stop() error {
	running, pid, err := d.IsRunning()
	if err != nil {
		return fmt.Errorf("error checking daemon status: %w", err)
	}
	if !running {
		return fmt.Errorf("daemon is not running or PID file is stale")
	}

	if err := terminate(pid); err != nil {
		return err
	}

	return d.RemovePID()
}
