package utils

import "fmt"

// FormatHMS renders seconds as HH:MM:SS.
func FormatHMS(seconds float64) string {
	if seconds < 0 {
		seconds = -seconds
	}
	total := int64(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// FormatRoundedUnit renders seconds as a single rounded unit (s, m or h).
func FormatRoundedUnit(seconds float64) string {
	if seconds < 0 {
		seconds = -seconds
	}
	total := int64(seconds)
	if total < 60 {
		return fmt.Sprintf("%ds", total)
	}
	if total >= 3600 {
		return fmt.Sprintf("%dh%02dm", total/3600, (total%3600)/60)
	}
	return fmt.Sprintf("%dm", total/60)
}
