//go:build !windows

package detector

import (
	"fmt"
	"os"

	"github.com/screentime/screentime/pkg/integrations/wayland"
	"github.com/screentime/screentime/pkg/integrations/x11"
	"github.com/screentime/screentime/pkg/window"
)

// New picks the detector matching the current session. Wayland sessions are
// checked first since they often carry a DISPLAY pointing at XWayland, which
// only sees XWayland clients.
func New() (window.Detector, error) {
	if wl := wayland.NewDetector(); wl.IsAvailable() {
		return wl, nil
	}

	if os.Getenv("DISPLAY") != "" {
		det, err := x11.NewDetector()
		if err != nil {
			return nil, err
		}
		return det, nil
	}

	return nil, fmt.Errorf("no supported display session found (neither Wayland nor X11)")
}
