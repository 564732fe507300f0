package wayland

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/screentime/screentime/pkg/window"
)

// Compositor identifies which Wayland compositor we are talking to. Wayland
// has no standard focused-window protocol, so each compositor needs its own
// query tool.
type Compositor string

const (
	CompositorSway     Compositor = "sway"
	CompositorHyprland Compositor = "hyprland"
	CompositorGnome    Compositor = "gnome"
	CompositorUnknown  Compositor = "unknown"
)

type Detector struct {
	compositor Compositor
}

func NewDetector() *Detector {
	return &Detector{compositor: detectCompositor()}
}

func detectCompositor() Compositor {
	if os.Getenv("SWAYSOCK") != "" {
		return CompositorSway
	}
	if os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != "" {
		return CompositorHyprland
	}
	desktop := strings.ToLower(os.Getenv("XDG_CURRENT_DESKTOP"))
	if strings.Contains(desktop, "gnome") {
		return CompositorGnome
	}
	if strings.Contains(desktop, "sway") {
		return CompositorSway
	}
	if strings.Contains(desktop, "hyprland") {
		return CompositorHyprland
	}
	return CompositorUnknown
}

func (d *Detector) IsAvailable() bool {
	return os.Getenv("WAYLAND_DISPLAY") != "" && d.compositor != CompositorUnknown
}

func (d *Detector) Platform() string {
	return "wayland"
}

func (d *Detector) Compositor() Compositor {
	return d.compositor
}

func (d *Detector) Close() error {
	return nil
}

func (d *Detector) FocusedWindow() (*window.Info, error) {
	switch d.compositor {
	case CompositorSway:
		return d.focusedSway()
	case CompositorHyprland:
		return d.focusedHyprland()
	case CompositorGnome:
		return d.focusedGnome()
	default:
		return nil, fmt.Errorf("unsupported wayland compositor")
	}
}

// swayNode is the subset of the sway/i3 layout tree we need to find the
// focused container.
type swayNode struct {
	Focused          bool   `json:"focused"`
	Name             string `json:"name"`
	AppID            string `json:"app_id"`
	PID              int    `json:"pid"`
	WindowProperties struct {
		Class string `json:"class"`
	} `json:"window_properties"`
	Nodes         []swayNode `json:"nodes"`
	FloatingNodes []swayNode `json:"floating_nodes"`
}

func (d *Detector) focusedSway() (*window.Info, error) {
	out, err := exec.Command("swaymsg", "-t", "get_tree").Output()
	if err != nil {
		return nil, fmt.Errorf("swaymsg failed: %w", err)
	}

	var tree swayNode
	if err := json.Unmarshal(out, &tree); err != nil {
		return nil, fmt.Errorf("failed to parse sway tree: %w", err)
	}

	focused := findFocused(&tree)
	if focused == nil {
		return nil, fmt.Errorf("no focused window in sway tree")
	}

	// app_id covers native Wayland clients, window_properties.class covers
	// XWayland ones.
	appName := focused.AppID
	if appName == "" {
		appName = focused.WindowProperties.Class
	}
	if appName == "" {
		return nil, fmt.Errorf("focused sway node has no app identity")
	}

	return &window.Info{
		AppName:     strings.ToLower(appName),
		WindowTitle: focused.Name,
		ProcessName: processNameFromPID(focused.PID),
		Platform:    "wayland",
	}, nil
}

func findFocused(node *swayNode) *swayNode {
	if node.Focused && (node.AppID != "" || node.WindowProperties.Class != "") {
		return node
	}
	for i := range node.Nodes {
		if found := findFocused(&node.Nodes[i]); found != nil {
			return found
		}
	}
	for i := range node.FloatingNodes {
		if found := findFocused(&node.FloatingNodes[i]); found != nil {
			return found
		}
	}
	return nil
}

type hyprlandWindow struct {
	Class string `json:"class"`
	Title string `json:"title"`
	PID   int    `json:"pid"`
}

func (d *Detector) focusedHyprland() (*window.Info, error) {
	out, err := exec.Command("hyprctl", "activewindow", "-j").Output()
	if err != nil {
		return nil, fmt.Errorf("hyprctl failed: %w", err)
	}

	var win hyprlandWindow
	if err := json.Unmarshal(out, &win); err != nil {
		return nil, fmt.Errorf("failed to parse hyprctl output: %w", err)
	}
	if win.Class == "" {
		return nil, fmt.Errorf("no active hyprland window")
	}

	return &window.Info{
		AppName:     strings.ToLower(win.Class),
		WindowTitle: win.Title,
		ProcessName: processNameFromPID(win.PID),
		Platform:    "wayland",
	}, nil
}

type gnomeWindow struct {
	App   string `json:"app"`
	Title string `json:"title"`
	PID   int    `json:"pid"`
}

// focusedGnome asks GNOME Shell through its session D-Bus Eval interface.
// Eval requires unsafe mode on recent GNOME versions; when it is disabled
// the call returns success=false and we report that as an error.
func (d *Detector) focusedGnome() (*window.Info, error) {
	const script = `(() => {
		const w = global.display.focus_window;
		if (!w) return "";
		return JSON.stringify({app: w.get_wm_class() || "", title: w.get_title() || "", pid: w.get_pid()});
	})()`

	out, err := exec.Command("gdbus", "call", "--session",
		"--dest", "org.gnome.Shell",
		"--object-path", "/org/gnome/Shell",
		"--method", "org.gnome.Shell.Eval", script).Output()
	if err != nil {
		return nil, fmt.Errorf("gdbus call failed: %w", err)
	}

	payload, err := parseGdbusEvalReply(string(out))
	if err != nil {
		return nil, err
	}

	var win gnomeWindow
	if err := json.Unmarshal([]byte(payload), &win); err != nil {
		return nil, fmt.Errorf("failed to parse gnome shell reply: %w", err)
	}
	if win.App == "" {
		return nil, fmt.Errorf("no focused gnome window")
	}

	return &window.Info{
		AppName:     strings.ToLower(win.App),
		WindowTitle: win.Title,
		ProcessName: processNameFromPID(win.PID),
		Platform:    "wayland",
	}, nil
}

// parseGdbusEvalReply extracts the JSON payload from a reply of the form
// (true, '{"app":"firefox",...}').
func parseGdbusEvalReply(reply string) (string, error) {
	reply = strings.TrimSpace(reply)
	if !strings.HasPrefix(reply, "(true,") {
		return "", fmt.Errorf("gnome shell eval rejected (unsafe mode disabled?): %s", reply)
	}

	start := strings.Index(reply, "'")
	end := strings.LastIndex(reply, "'")
	if start < 0 || end <= start {
		return "", fmt.Errorf("malformed gdbus reply: %s", reply)
	}

	payload := reply[start+1 : end]
	// gdbus escapes the inner JSON quotes.
	payload = strings.ReplaceAll(payload, `\"`, `"`)
	if payload == "" {
		return "", fmt.Errorf("no focused gnome window")
	}
	return payload, nil
}

func processNameFromPID(pid int) string {
	if pid <= 0 {
		return ""
	}
	comm, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(comm))
}
