//go:build windows

package win32

import (
	"fmt"
	"path/filepath"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/screentime/screentime/pkg/window"
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procGetWindowTextW           = user32.NewProc("GetWindowTextW")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
)

// Detector implements window.Detector on Windows through user32 and the
// process query API.
type Detector struct{}

func NewDetector() *Detector {
	return &Detector{}
}

func (d *Detector) IsAvailable() bool {
	return true
}

func (d *Detector) Platform() string {
	return "windows"
}

func (d *Detector) Close() error {
	return nil
}

func (d *Detector) FocusedWindow() (*window.Info, error) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return nil, fmt.Errorf("no foreground window")
	}

	exe, err := executableName(windows.HWND(hwnd))
	if err != nil {
		return nil, err
	}

	return &window.Info{
		AppName:     strings.ToLower(exe),
		WindowTitle: windowTitle(hwnd),
		ProcessName: exe,
		Platform:    "windows",
	}, nil
}

func windowTitle(hwnd uintptr) string {
	buf := make([]uint16, 512)
	n, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}

// executableName resolves the foreground window's owning process and returns
// its executable base name, e.g. "chrome.exe".
func executableName(hwnd windows.HWND) (string, error) {
	var pid uint32
	procGetWindowThreadProcessId.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&pid)))
	if pid == 0 {
		return "", fmt.Errorf("foreground window has no owning process")
	}

	handle, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return "", fmt.Errorf("failed to open process %d: %w", pid, err)
	}
	defer windows.CloseHandle(handle)

	buf := make([]uint16, windows.MAX_PATH)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(handle, 0, &buf[0], &size); err != nil {
		return "", fmt.Errorf("failed to query process image name: %w", err)
	}

	path := windows.UTF16ToString(buf[:size])
	if path == "" {
		return "", fmt.Errorf("process %d has an empty image name", pid)
	}
	return filepath.Base(path), nil
}
