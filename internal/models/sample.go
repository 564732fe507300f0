package models

import (
	"time"
)

// FocusSample is one counted poll tick: the foreground app and how many
// seconds were attributed to it. Samples are the raw material behind the
// aggregated snapshot and the week/month reports.
type FocusSample struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
	AppName     string    `gorm:"not null;index" json:"app_name"`
	WindowTitle string    `json:"window_title"`
	Seconds     float64   `gorm:"not null;default:0" json:"seconds"`
	Platform    string    `json:"platform"` // "x11", "wayland" or "windows"
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ErrorLog records a detector or persistence failure observed by the daemon.
type ErrorLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	ErrorMsg  string    `gorm:"not null" json:"error_msg"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// AppSummary is an aggregated per-app row in a report.
type AppSummary struct {
	AppName      string  `json:"app_name"`
	TotalSeconds float64 `json:"total_seconds"`
	TotalMinutes float64 `json:"total_minutes"`
	TotalHours   float64 `json:"total_hours"`
	SampleCount  int     `json:"sample_count"`
	Percentage   float64 `json:"percentage,omitempty"`
}

// ReportPeriod is the time range a report covers.
type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Type  string    `json:"type"` // "day", "week", "month"
}

// Report is a ranked usage breakdown for a period.
type Report struct {
	Period       ReportPeriod `json:"period"`
	Apps         []AppSummary `json:"apps"`
	TotalSeconds float64      `json:"total_seconds"`
	TotalMinutes float64      `json:"total_minutes"`
	TotalHours   float64      `json:"total_hours"`
	GeneratedAt  time.Time    `json:"generated_at"`
}
