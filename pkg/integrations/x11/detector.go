package x11

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/screentime/screentime/pkg/window"
)

// Detector implements window.Detector for X11 by speaking the X protocol
// directly through xgb, no external tools required.
type Detector struct {
	conn  *xgb.Conn
	root  xproto.Window
	atoms map[string]xproto.Atom
}

// NewDetector connects to the X server named by DISPLAY.
func NewDetector() (*Detector, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	d := &Detector{
		conn:  conn,
		root:  xproto.Setup(conn).DefaultScreen(conn).Root,
		atoms: make(map[string]xproto.Atom),
	}
	return d, nil
}

func (d *Detector) IsAvailable() bool {
	return d.conn != nil
}

func (d *Detector) Platform() string {
	return "x11"
}

func (d *Detector) Close() error {
	if d.conn != nil {
		d.conn.Close()
		d.conn = nil
	}
	return nil
}

// FocusedWindow resolves _NET_ACTIVE_WINDOW on the root window and reads the
// active window's title, class and owning process.
func (d *Detector) FocusedWindow() (*window.Info, error) {
	if d.conn == nil {
		return nil, fmt.Errorf("detector is closed")
	}

	active, err := d.activeWindow()
	if err != nil {
		return nil, err
	}
	if active == 0 {
		return nil, fmt.Errorf("no active window")
	}

	title := d.windowTitle(active)
	class := d.windowClass(active)
	processName := d.processName(active)

	appName := class
	if appName == "" {
		appName = processName
	}
	if appName == "" {
		return nil, fmt.Errorf("active window has no identifiable application")
	}

	return &window.Info{
		AppName:     strings.ToLower(appName),
		WindowTitle: title,
		ProcessName: processName,
		Platform:    "x11",
	}, nil
}

func (d *Detector) activeWindow() (xproto.Window, error) {
	atom, err := d.atom("_NET_ACTIVE_WINDOW")
	if err != nil {
		return 0, err
	}

	reply, err := xproto.GetProperty(d.conn, false, d.root, atom,
		xproto.AtomWindow, 0, 1).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to read _NET_ACTIVE_WINDOW: %w", err)
	}
	if len(reply.Value) < 4 {
		return 0, nil
	}

	return xproto.Window(binary.LittleEndian.Uint32(reply.Value)), nil
}

// windowTitle prefers the UTF-8 _NET_WM_NAME and falls back to WM_NAME.
func (d *Detector) windowTitle(win xproto.Window) string {
	if atom, err := d.atom("_NET_WM_NAME"); err == nil {
		if utf8, err := d.atom("UTF8_STRING"); err == nil {
			reply, err := xproto.GetProperty(d.conn, false, win, atom, utf8, 0, 1024).Reply()
			if err == nil && len(reply.Value) > 0 {
				return string(reply.Value)
			}
		}
	}

	reply, err := xproto.GetProperty(d.conn, false, win, xproto.AtomWmName,
		xproto.AtomString, 0, 1024).Reply()
	if err != nil {
		return ""
	}
	return string(reply.Value)
}

// windowClass reads WM_CLASS, which survives sandboxed apps that hide their
// PID. The property holds instance and class as two NUL-terminated strings;
// the class part is the stable application identifier.
func (d *Detector) windowClass(win xproto.Window) string {
	reply, err := xproto.GetProperty(d.conn, false, win, xproto.AtomWmClass,
		xproto.AtomString, 0, 1024).Reply()
	if err != nil {
		return ""
	}
	return parseClassProperty(reply.Value)
}

func parseClassProperty(value []byte) string {
	parts := strings.Split(strings.TrimRight(string(value), "\x00"), "\x00")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

func (d *Detector) processName(win xproto.Window) string {
	atom, err := d.atom("_NET_WM_PID")
	if err != nil {
		return ""
	}

	reply, err := xproto.GetProperty(d.conn, false, win, atom,
		xproto.AtomCardinal, 0, 1).Reply()
	if err != nil || len(reply.Value) < 4 {
		return ""
	}

	pid := binary.LittleEndian.Uint32(reply.Value)
	comm, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(comm))
}

func (d *Detector) atom(name string) (xproto.Atom, error) {
	if atom, ok := d.atoms[name]; ok {
		return atom, nil
	}

	reply, err := xproto.InternAtom(d.conn, true, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to intern atom %s: %w", name, err)
	}
	d.atoms[name] = reply.Atom
	return reply.Atom, nil
}
