//go:build windows

package daemon

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// processAlive opens the PID and checks its exit code: STILL_ACTIVE means the
// process is running. os.Process.Signal cannot be used here, Windows only
// supports Kill through it.
func processAlive(pid int) bool {
	handle, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer windows.CloseHandle(handle)

	var code uint32
	if err := windows.GetExitCodeProcess(handle, &code); err != nil {
		return false
	}
	return code == windows.STILL_ACTIVE
}

// terminate kills the daemon process. Windows has no SIGTERM equivalent for
// a detached process, so the shutdown is not graceful; the autosave loop
// bounds the amount of unsaved usage data.
func terminate(pid int) error {
	handle, err := windows.OpenProcess(windows.PROCESS_TERMINATE, false, uint32(pid))
	if err != nil {
		return fmt.Errorf("failed to open process %d: %w", pid, err)
	}
	defer windows.CloseHandle(handle)

	if err := windows.TerminateProcess(handle, 0); err != nil {
		return fmt.Errorf("failed to terminate process %d: %w", pid, err)
	}
	return nil
}
