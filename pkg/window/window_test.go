package window

import "testing"

type MockDetector struct {
	info       *Info
	available  bool
	platform   string
	closeError error
}

func (m *MockDetector) FocusedWindow() (*Info, error) {
	return m.info, nil
}

func (m *MockDetector) IsAvailable() bool {
	return m.available
}

func (m *MockDetector) Platform() string {
	return m.platform
}

func (m *MockDetector) Close() error {
	return m.closeError
}

func TestMockDetector(t *testing.T) {
	var _ Detector = (*MockDetector)(nil)

	mock := &MockDetector{
		info: &Info{
			AppName:     "firefox",
			WindowTitle: "Mozilla Firefox",
			ProcessName: "firefox",
			Platform:    "x11",
		},
		available: true,
		platform:  "x11",
	}

	info, err := mock.FocusedWindow()
	if err != nil {
		t.Errorf("FocusedWindow() error: %v", err)
	}
	if info.AppName != "firefox" {
		t.Errorf("AppName = %s, want firefox", info.AppName)
	}

	if !mock.IsAvailable() {
		t.Error("IsAvailable() = false, want true")
	}

	if mock.Platform() != "x11" {
		t.Errorf("Platform() = %s, want x11", mock.Platform())
	}

	if err := mock.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

func TestInfoFields(t *testing.T) {
	tests := []struct {
		name string
		info Info
	}{
		{
			name: "X11 window",
			info: Info{AppName: "kitty", WindowTitle: "~", ProcessName: "kitty", Platform: "x11"},
		},
		{
			name: "Wayland window",
			info: Info{AppName: "code", WindowTitle: "main.go", ProcessName: "code", Platform: "wayland"},
		},
		{
			name: "Windows window",
			info: Info{AppName: "chrome.exe", WindowTitle: "New Tab", ProcessName: "chrome.exe", Platform: "windows"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.info.AppName == "" {
				t.Error("AppName is empty")
			}
			if tt.info.Platform == "" {
				t.Error("Platform is empty")
			}
		})
	}
}
