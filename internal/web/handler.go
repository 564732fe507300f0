package web

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"time"

	"github.com/screentime/screentime/internal/config"
	"github.com/screentime/screentime/internal/models"
	"github.com/screentime/screentime/internal/reporter"
	"github.com/screentime/screentime/internal/usage"
	"github.com/screentime/screentime/pkg/utils"
)

// Archive is the slice of the sample archive the dashboard needs. Nil when
// the archive is disabled; archive-backed endpoints then return 503.
type Archive interface {
	AppSummarySince(since time.Time) ([]models.AppSummary, error)
	LatestSample() (*models.FocusSample, error)
}

type Handler struct {
	config  *config.Config
	stats   *usage.Stats
	archive Archive
}

func NewHandler(cfg *config.Config, stats *usage.Stats, arch Archive) *Handler {
	return &Handler{
		config:  cfg,
		stats:   stats,
		archive: arch,
	}
}

func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/usage", h.handleUsage)
	mux.HandleFunc("/api/daily", h.handleDaily)
	mux.HandleFunc("/api/report", h.handleReport)
	mux.HandleFunc("/api/status", h.handleStatus)

	mux.HandleFunc("/health", h.handleHealth)

	mux.HandleFunc("/", h.handleIndex)
}

// handleUsage serves the all-time per-app totals.
func (h *Handler) handleUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	apps := h.stats.TopApps(limit)
	total := h.stats.TotalSeconds()

	if r.Header.Get("HX-Request") == "true" {
		h.respondListingHTML(w, apps, total)
		return
	}

	respondJSON(w, map[string]interface{}{
		"apps":          apps,
		"total_seconds": total,
		"total_hms":     utils.FormatHMS(total),
	})
}

// handleDaily serves one calendar day from the accumulated state. The date
// defaults to today.
func (h *Handler) handleDaily(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = usage.DayKey(time.Now())
	}

	if r.Header.Get("HX-Request") == "true" {
		h.respondListingHTML(w, h.stats.DayApps(date, 0), h.stats.DayTotal(date))
		return
	}

	report, err := reporter.DailyReport(h.stats.Snapshot(), date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, report)
}

// handleReport serves week/month breakdowns from the sample archive.
func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.archive == nil {
		http.Error(w, "Sample archive is disabled", http.StatusServiceUnavailable)
		return
	}

	periodType := r.URL.Query().Get("period")
	if periodType == "" {
		periodType = "day"
	}

	report, err := reporter.New(h.archive).GenerateReport(periodType)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to generate report: %v", err), http.StatusBadRequest)
		return
	}

	respondJSON(w, report)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	today := usage.DayKey(time.Now())
	status := map[string]interface{}{
		"tracking":      h.stats.IsTracking(),
		"poll_interval": h.config.Tracker.PollInterval.String(),
		"today_seconds": h.stats.DayTotal(today),
		"total_seconds": h.stats.TotalSeconds(),
	}

	if h.archive != nil {
		if latest, err := h.archive.LatestSample(); err == nil && latest != nil {
			status["latest_sample"] = map[string]interface{}{
				"app_name":     latest.AppName,
				"window_title": latest.WindowTitle,
				"timestamp":    latest.Timestamp,
				"platform":     latest.Platform,
			}
		}
	}

	respondJSON(w, status)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) respondListingHTML(w http.ResponseWriter, apps []usage.AppTotal, total float64) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if len(apps) == 0 {
		w.Write([]byte(`<div class="loading">No data available</div>`))
		return
	}

	markup := `<div class="listing">`
	for _, app := range apps {
		var pct float64
		if total > 0 {
			pct = app.Seconds / total * 100
		}
		markup += fmt.Sprintf(`
		<div class="app-item" style="--bar-width: %.1f%%">
			<span class="app-name">%s</span>
			<div>
				<span class="app-time">%s</span>
				<span class="app-percentage">%.1f%%</span>
			</div>
		</div>`, pct, html.EscapeString(app.AppName), utils.FormatRoundedUnit(app.Seconds), pct)
	}
	markup += `</div>`
	markup += fmt.Sprintf(`<div class="total">Total: %s</div>`, utils.FormatHMS(total))

	w.Write([]byte(markup))
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	page := `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Screen Time</title>
    <script src="https://unpkg.com/htmx.org@1.9.10"></script>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif;
            background: #f5f5f5;
            color: #333;
            padding: 20px;
        }

        h1 { color: #1a1a1a; font-size: 2rem; margin-bottom: 30px; }

        .dashboard { display: flex; gap: 20px; flex-wrap: wrap; }

        .report-box {
            flex: 1;
            min-width: 300px;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
            padding: 24px;
        }

        .report-box h2 {
            font-size: 1.5rem;
            margin-bottom: 20px;
            color: #2c3e50;
            border-bottom: 2px solid #3498db;
            padding-bottom: 10px;
        }

        .app-item {
            display: flex;
            justify-content: space-between;
            align-items: center;
            padding: 12px 8px;
            border-bottom: 1px solid #eee;
            position: relative;
            border-radius: 4px;
        }

        .app-item::before {
            content: '';
            position: absolute;
            left: 0; top: 0; height: 100%;
            width: var(--bar-width, 0%);
            background: #3498db;
            opacity: 0.15;
            border-radius: 4px;
        }

        .app-item:last-child { border-bottom: none; }
        .app-name { font-weight: 500; }
        .app-time { color: #7f8c8d; font-size: 0.9rem; }
        .app-percentage { color: #3498db; font-weight: 600; margin-left: 10px; }
        .loading { color: #7f8c8d; font-style: italic; }

        .total {
            margin-top: 20px;
            padding-top: 15px;
            border-top: 2px solid #ecf0f1;
            font-weight: 600;
            font-size: 1.1rem;
            color: #2c3e50;
        }

        .listing { overflow-y: auto; max-height: calc(100vh - 260px); }

        @media (max-width: 1024px) {
            .dashboard { flex-direction: column; }
            .report-box { min-width: 100%; }
        }
    </style>
</head>
<body>
    <h1>Screen Time</h1>
    <div class="dashboard">
        <div class="report-box">
            <h2>Today</h2>
            <div hx-get="/api/daily" hx-trigger="load, every 30s" hx-swap="innerHTML">
                <div class="loading">Loading...</div>
            </div>
        </div>

        <div class="report-box">
            <h2>All Time</h2>
            <div hx-get="/api/usage" hx-trigger="load, every 30s" hx-swap="innerHTML">
                <div class="loading">Loading...</div>
            </div>
        </div>
    </div>
</body>
</html>`

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
