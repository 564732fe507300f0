package wayland

import (
	"encoding/json"
	"testing"

	"github.com/screentime/screentime/pkg/window"
)

func TestDetectorInterface(t *testing.T) {
	var _ window.Detector = (*Detector)(nil)
}

func TestFindFocused(t *testing.T) {
	tree := `{
		"focused": false,
		"nodes": [
			{
				"focused": false,
				"nodes": [
					{"focused": true, "name": "workspace 1", "nodes": [
						{"focused": false, "name": "vim - main.go", "app_id": "kitty", "pid": 123, "nodes": []}
					]}
				]
			},
			{
				"focused": false,
				"floating_nodes": [
					{"focused": true, "name": "Picture in Picture", "window_properties": {"class": "Firefox"}, "pid": 456, "nodes": []}
				]
			}
		]
	}`

	var root swayNode
	if err := json.Unmarshal([]byte(tree), &root); err != nil {
		t.Fatalf("failed to unmarshal test tree: %v", err)
	}

	focused := findFocused(&root)
	if focused == nil {
		t.Fatal("findFocused returned nil")
	}
	if focused.WindowProperties.Class != "Firefox" {
		t.Errorf("focused class = %q, want Firefox", focused.WindowProperties.Class)
	}
	if focused.PID != 456 {
		t.Errorf("focused pid = %d, want 456", focused.PID)
	}
}

func TestFindFocusedEmptyTree(t *testing.T) {
	root := swayNode{}
	if found := findFocused(&root); found != nil {
		t.Errorf("findFocused on empty tree = %+v, want nil", found)
	}
}

func TestParseGdbusEvalReply(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    string
		wantErr bool
	}{
		{
			name:  "valid reply",
			reply: `(true, '{\"app\":\"firefox\",\"title\":\"Mozilla Firefox\",\"pid\":42}')`,
			want:  `{"app":"firefox","title":"Mozilla Firefox","pid":42}`,
		},
		{
			name:    "eval rejected",
			reply:   `(false, '')`,
			wantErr: true,
		},
		{
			name:    "empty payload",
			reply:   `(true, '')`,
			wantErr: true,
		},
		{
			name:    "garbage",
			reply:   `not a dbus tuple`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseGdbusEvalReply(tt.reply)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseGdbusEvalReply() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseGdbusEvalReply() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectCompositorFromEnv(t *testing.T) {
	for _, key := range []string{"SWAYSOCK", "HYPRLAND_INSTANCE_SIGNATURE", "XDG_CURRENT_DESKTOP"} {
		t.Setenv(key, "")
	}

	if got := detectCompositor(); got != CompositorUnknown {
		t.Errorf("detectCompositor() with clean env = %s, want unknown", got)
	}

	t.Setenv("XDG_CURRENT_DESKTOP", "GNOME")
	if got := detectCompositor(); got != CompositorGnome {
		t.Errorf("detectCompositor() = %s, want gnome", got)
	}

	t.Setenv("SWAYSOCK", "/run/user/1000/sway-ipc.sock")
	if got := detectCompositor(); got != CompositorSway {
		t.Errorf("detectCompositor() = %s, want sway", got)
	}
}

func TestIsAvailableRequiresWaylandDisplay(t *testing.T) {
	t.Setenv("WAYLAND_DISPLAY", "")
	t.Setenv("SWAYSOCK", "/run/user/1000/sway-ipc.sock")

	d := NewDetector()
	if d.IsAvailable() {
		t.Error("IsAvailable() = true without WAYLAND_DISPLAY")
	}

	t.Setenv("WAYLAND_DISPLAY", "wayland-0")
	if !d.IsAvailable() {
		t.Error("IsAvailable() = false with WAYLAND_DISPLAY and sway socket")
	}
}
