//go:build !windows

package daemon

import (
	"fmt"
	"os"
	"syscall"
)

// processAlive probes the PID with the null signal, which performs the
// permission and existence checks without delivering anything.
func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

// terminate asks the daemon to shut down with SIGTERM, giving its signal
// handler a chance to flush the snapshot.
func terminate(pid int) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		if err.Error() == "os: process already finished" {
			return fmt.Errorf("daemon process already terminated")
		}
		return fmt.Errorf("failed to send SIGTERM: %w", err)
	}

	return nil
}
