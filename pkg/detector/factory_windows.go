//go:build windows

package detector

import (
	"github.com/screentime/screentime/pkg/integrations/win32"
	"github.com/screentime/screentime/pkg/window"
)

// New returns the Windows foreground-window detector.
func New() (window.Detector, error) {
	return win32.NewDetector(), nil
}
