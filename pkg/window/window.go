package window

// Info describes the currently focused window.
type Info struct {
	AppName     string
	WindowTitle string
	ProcessName string
	Platform    string // "x11", "wayland" or "windows"
}

// Detector is the interface that all foreground-window detection
// implementations must satisfy.
type Detector interface {
	// FocusedWindow returns information about the currently focused window
	FocusedWindow() (*Info, error)

	// IsAvailable checks if this detector can run on the current system
	IsAvailable() bool

	// Platform returns the windowing platform this detector talks to
	Platform() string

	// Close cleans up any resources held by the detector
	Close() error
}
