package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/screentime/screentime/internal/archive"
	"github.com/screentime/screentime/internal/config"
	"github.com/screentime/screentime/internal/daemon"
	"github.com/screentime/screentime/internal/models"
	"github.com/screentime/screentime/internal/reporter"
	"github.com/screentime/screentime/internal/store"
	"github.com/screentime/screentime/internal/tracker"
	"github.com/screentime/screentime/internal/tui"
	"github.com/screentime/screentime/internal/usage"
	"github.com/screentime/screentime/internal/web"
	"github.com/screentime/screentime/pkg/detector"
)

var (
	version = "0.1.0"
	commit  = "unknown"
	date    = "unknown"
)

const daemonChildEnv = "SCREENTIME_DAEMON_CHILD"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "start":
		startDaemon(false)
	case "serve":
		startDaemon(true)
	case "stop":
		stopDaemon()
	case "status":
		showStatus()
	case "report":
		generateReport()
	case "dash":
		runDashboard()
	case "clear":
		clearData()
	case "version":
		fmt.Printf("screentime version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`screentime - Foreground application time tracker

Usage:
  screentime <command> [options]

Commands:
  start              Start the tracking daemon
  serve              Start daemon with the web dashboard
  stop               Stop the tracking daemon
  status             Show daemon status and the current focused app
  report [period]    Generate time report (period: day, week, month; add --json)
  dash               Interactive terminal dashboard
  clear              Delete all recorded usage data
  version            Show version information
  help               Show this help message

Examples:
  screentime start
  screentime serve
  screentime status
  screentime report week --json
  screentime dash
  screentime stop

Environment Variables:
  SCREENTIME_DATA_FILE          Usage snapshot file path
  SCREENTIME_DB_PATH            Sample archive (sqlite) path
  SCREENTIME_POLL_INTERVAL      Poll interval in seconds (1-300)
  SCREENTIME_MAX_TICK_GAP       Drop ticks with a longer measured gap (seconds)
  SCREENTIME_AUTOSAVE_INTERVAL  Snapshot flush interval in seconds
  SCREENTIME_PID_FILE           PID file path
  SCREENTIME_LOG_FILE           Daemon log file path
  SCREENTIME_LOG_LEVEL          Minimum log level (trace, debug, info, warn, error)
  SCREENTIME_WEB_HOST           Web dashboard bind host
  SCREENTIME_WEB_PORT           Web dashboard port

Version: %s
`, version)
}

func logLevel(cfg *config.Config) zerolog.Level {
	lvl, err := zerolog.ParseLevel(cfg.Daemon.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// consoleLogger is used by foreground commands.
func consoleLogger(cfg *config.Config) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(logLevel(cfg)).With().Timestamp().Logger()
}

// daemonLogger writes JSON lines to the configured log file. Falls back to
// stderr if the file cannot be opened.
func daemonLogger(cfg *config.Config) (zerolog.Logger, func()) {
	lvl := logLevel(cfg)
	f, err := os.OpenFile(cfg.Daemon.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger(), func() {}
	}
	return zerolog.New(f).Level(lvl).With().Timestamp().Logger(), func() { f.Close() }
}

func snapshotStore(cfg *config.Config, logger zerolog.Logger) (*store.Store, error) {
	path := cfg.Data.SnapshotPath
	if path == "" {
		var err error
		path, err = store.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return store.New(path, logger), nil
}

// openArchive connects the sqlite sample archive. The archive is an optional
// enrichment, so callers may treat a failure as non-fatal.
func openArchive(cfg *config.Config) (*archive.DB, *archive.Repository, error) {
	path := cfg.Data.ArchivePath
	if path == "" {
		var err error
		path, err = archive.DefaultDBPath()
		if err != nil {
			return nil, nil, err
		}
	}

	db, err := archive.Connect(path)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, archive.NewRepository(db), nil
}

func startDaemon(withWeb bool) {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to check daemon status: %v\n", err)
		os.Exit(1)
	}
	if running {
		fmt.Fprintf(os.Stderr, "Daemon is already running (PID: %d)\n", pid)
		os.Exit(1)
	}

	if os.Getenv(daemonChildEnv) != "1" {
		daemonize(cfg, withWeb)
		return
	}

	runDaemon(cfg, dm, withWeb)
}

func runDaemon(cfg *config.Config, dm *daemon.Daemon, withWeb bool) {
	logger, closeLog := daemonLogger(cfg)
	defer closeLog()

	st, err := snapshotStore(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to resolve snapshot path")
	}
	stats := usage.FromSnapshot(st.Load())

	var sink tracker.SampleSink
	var webArchive web.Archive
	db, repo, err := openArchive(cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("Sample archive unavailable, continuing without it")
	} else {
		defer db.Close()
		sink = repo
		webArchive = repo
	}

	det, err := detector.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize window detector")
	}
	defer det.Close()
	logger.Info().Str("platform", det.Platform()).Msg("Window detector initialized")

	if err := dm.WritePID(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to write PID file")
	}
	defer dm.RemovePID()

	svc := tracker.NewService(cfg, stats, st, sink, det, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var webServer *web.Server
	if withWeb {
		webServer = web.NewServer(cfg, stats, webArchive, logger)
		go func() {
			if err := webServer.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("Web server error")
			}
		}()
		logger.Info().Str("addr", webServer.Address()).Msg("Web dashboard available")
	}

	go func() {
		<-sigChan
		logger.Info().Msg("Received shutdown signal")
		cancel()
		svc.Stop()
	}()

	logger.Info().Msg("Starting screentime daemon")
	logger.Info().Msg(cfg.String())

	if err := svc.Start(ctx); err != nil && err != context.Canceled {
		logger.Fatal().Err(err).Msg("Tracker error")
	}

	if webServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := webServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Error shutting down web server")
		}
	}

	logger.Info().Msg("Daemon stopped")
}

func stopDaemon() {
	cfg := config.New()
	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to check daemon status: %v\n", err)
		os.Exit(1)
	}
	if !running {
		fmt.Println("Daemon is not running")
		return
	}
	fmt.Printf("Stopping daemon (PID: %d)...\n", pid)
	if err := dm.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to stop daemon: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Daemon stopped")
}

func showStatus() {
	cfg := config.New()
	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to check daemon status: %v\n", err)
		os.Exit(1)
	}
	if !running {
		fmt.Println("Status: Not running")
	} else {
		fmt.Printf("Status: Running (PID: %d)\n", pid)
		fmt.Printf("Poll Interval: %v\n", cfg.Tracker.PollInterval)
	}

	logger := consoleLogger(cfg)
	if st, err := snapshotStore(cfg, logger); err == nil {
		stats := usage.FromSnapshot(st.Load())
		today := usage.DayKey(time.Now())
		fmt.Printf("Today: %s across %d apps\n",
			time.Duration(stats.DayTotal(today)*float64(time.Second)).Round(time.Second),
			len(stats.DayApps(today, 0)))
	}

	det, err := detector.New()
	if err != nil {
		fmt.Printf("\nCould not detect current window: %v\n", err)
		return
	}
	defer det.Close()

	info, err := det.FocusedWindow()
	if err == nil && info != nil {
		fmt.Printf("\nCurrent Window:\n")
		fmt.Printf("  App: %s\n", info.AppName)
		fmt.Printf("  Title: %s\n", info.WindowTitle)
		fmt.Printf("  Platform: %s\n", info.Platform)
	}
}

func generateReport() {
	periodType := "day"
	jsonOutput := false
	for _, arg := range os.Args[2:] {
		if arg == "--json" {
			jsonOutput = true
		} else {
			periodType = arg
		}
	}

	cfg := config.New()
	logger := consoleLogger(cfg)

	db, repo, err := openArchive(cfg)
	if err == nil {
		defer db.Close()
		r, genErr := reporter.New(repo).GenerateReport(periodType)
		if genErr != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate report: %v\n", genErr)
			os.Exit(1)
		}
		printReport(r, jsonOutput)
		return
	}

	// Without the archive only day-level reporting is possible, served from
	// the JSON snapshot.
	if periodType != "day" && periodType != "today" {
		fmt.Fprintf(os.Stderr, "Sample archive unavailable (%v); only 'day' reports are supported without it\n", err)
		os.Exit(1)
	}

	st, serr := snapshotStore(cfg, logger)
	if serr != nil {
		fmt.Fprintf(os.Stderr, "Failed to open snapshot: %v\n", serr)
		os.Exit(1)
	}
	r, derr := reporter.DailyReport(st.Load(), usage.DayKey(time.Now()))
	if derr != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate report: %v\n", derr)
		os.Exit(1)
	}
	printReport(r, jsonOutput)
}

func printReport(report *models.Report, jsonOutput bool) {
	if jsonOutput {
		jsonStr, err := reporter.FormatReportJSON(report)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to format JSON: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(jsonStr)
		return
	}
	fmt.Println(reporter.FormatReportText(report))
}

func runDashboard() {
	cfg := config.New()
	st, err := snapshotStore(cfg, consoleLogger(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open snapshot: %v\n", err)
		os.Exit(1)
	}
	if err := tui.Run(st); err != nil {
		fmt.Fprintf(os.Stderr, "Dashboard error: %v\n", err)
		os.Exit(1)
	}
}

func clearData() {
	cfg := config.New()
	fmt.Print("This will delete all recorded usage data. Are you sure? (yes/no): ")
	var response string
	fmt.Scanln(&response)
	if response != "yes" && response != "y" {
		fmt.Println("Operation cancelled")
		return
	}

	logger := consoleLogger(cfg)
	st, err := snapshotStore(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve snapshot path: %v\n", err)
		os.Exit(1)
	}
	if err := st.Save(usage.EmptySnapshot()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to reset snapshot: %v\n", err)
		os.Exit(1)
	}

	if db, repo, err := openArchive(cfg); err == nil {
		defer db.Close()
		if err := repo.Clear(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to clear sample archive: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("All usage data cleared")
}
