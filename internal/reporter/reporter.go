package reporter

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/screentime/screentime/internal/models"
	"github.com/screentime/screentime/internal/usage"
	"github.com/screentime/screentime/pkg/utils"
)

// SummarySource provides aggregated per-app usage since a point in time.
// Satisfied by archive.Repository.
type SummarySource interface {
	AppSummarySince(since time.Time) ([]models.AppSummary, error)
}

// Reporter handles report generation
type Reporter struct {
	source SummarySource
}

// New creates a new reporter
func New(source SummarySource) *Reporter {
	return &Reporter{source: source}
}

// GenerateReport generates a report for the specified period
func (r *Reporter) GenerateReport(periodType string) (*models.Report, error) {
	period, err := getPeriod(periodType, time.Now())
	if err != nil {
		return nil, err
	}

	summaries, err := r.source.AppSummarySince(period.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to get app summary: %w", err)
	}

	return buildReport(*period, summaries), nil
}

// DailyReport builds a report for one calendar date straight from the
// persisted snapshot, without touching the sample archive.
func DailyReport(snap usage.Snapshot, date string) (*models.Report, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", date)
	}

	summaries := make([]models.AppSummary, 0, len(snap.DailyUsage[date]))
	for app, secs := range snap.DailyUsage[date] {
		summaries = append(summaries, models.AppSummary{AppName: app, TotalSeconds: secs})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].TotalSeconds != summaries[j].TotalSeconds {
			return summaries[i].TotalSeconds > summaries[j].TotalSeconds
		}
		return summaries[i].AppName < summaries[j].AppName
	})

	period := models.ReportPeriod{Start: day, End: day.Add(24 * time.Hour), Type: "day"}
	return buildReport(period, summaries), nil
}

// buildReport fills in derived fields and percentages.
func buildReport(period models.ReportPeriod, summaries []models.AppSummary) *models.Report {
	var totalSeconds float64
	for i := range summaries {
		summaries[i].TotalMinutes = summaries[i].TotalSeconds / 60.0
		summaries[i].TotalHours = summaries[i].TotalSeconds / 3600.0
		totalSeconds += summaries[i].TotalSeconds
	}

	if totalSeconds > 0 {
		for i := range summaries {
			summaries[i].Percentage = (summaries[i].TotalSeconds / totalSeconds) * 100.0
		}
	}

	return &models.Report{
		Period:       period,
		Apps:         summaries,
		TotalSeconds: totalSeconds,
		TotalMinutes: totalSeconds / 60.0,
		TotalHours:   totalSeconds / 3600.0,
		GeneratedAt:  time.Now(),
	}
}

// getPeriod calculates the time range for the report
func getPeriod(periodType string, now time.Time) (*models.ReportPeriod, error) {
	var start, end time.Time

	switch periodType {
	case "day", "today":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end = start.Add(24 * time.Hour)

	case "week":
		// Start of week (Monday)
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday = 7
		}
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(weekday - 1))
		end = start.AddDate(0, 0, 7)

	case "month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)

	default:
		return nil, fmt.Errorf("invalid period type: %s (valid: day, week, month)", periodType)
	}

	return &models.ReportPeriod{Start: start, End: end, Type: periodType}, nil
}

// FormatReportText formats the report as human-readable text
func FormatReportText(report *models.Report) string {
	output := fmt.Sprintf("Screen Time Report - %s\n", report.Period.Type)
	output += fmt.Sprintf("Period: %s to %s\n",
		report.Period.Start.Format("2006-01-02 15:04"),
		report.Period.End.Format("2006-01-02 15:04"))
	output += fmt.Sprintf("Total Time: %s\n\n", utils.FormatHMS(report.TotalSeconds))

	if len(report.Apps) == 0 {
		output += "No activity recorded for this period.\n"
		return output
	}

	output += fmt.Sprintf("%-30s %12s %9s\n", "Application", "Time", "Percent")
	output += fmt.Sprintf("%s\n", "----------------------------------------------------")

	for _, app := range report.Apps {
		output += fmt.Sprintf("%-30s %12s %8.1f%%\n",
			truncate(app.AppName, 30),
			utils.FormatHMS(app.TotalSeconds),
			app.Percentage)
	}

	return output
}

// FormatReportJSON formats the report as JSON
func FormatReportJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// truncate shortens a string to maxLen runes.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
