// Package main is the entry point for the Tokendeck TUI. It initializes
// configuration, services, and runs the Bubble Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tokendeck/tokendeck/internal/app"
	"github.com/tokendeck/tokendeck/internal/config"
	"github.com/tokendeck/tokendeck/internal/logger"
	"github.com/tokendeck/tokendeck/internal/services"
	"github.com/tokendeck/tokendeck/internal/ui/tabs/info"
	"github.com/tokendeck/tokendeck/internal/ui/tabs/sessions"
	"github.com/tokendeck/tokendeck/internal/ui/tabs/usage"
	"github.com/tokendeck/tokendeck/internal/version"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration from .env files and environment variables
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Route logs to a file; stderr belongs to the TUI
	logFile, err := logger.OpenFile(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging to stderr: %v\n", err)
	} else {
		defer func() { _ = logFile.Close() }()
	}

	// 3. Initialize the service manager: usage API client, settings store,
	// and the live transcript watcher
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	// 4. Create the root Bubble Tea model
	model := app.NewModel(svcManager)

	// 5. Initialize tabs with shared state and services
	state := model.GetState()
	tabs := []app.Tab{
		usage.New(state, svcManager),    // Tab 0: Usage - totals, trend, session
		sessions.New(state, svcManager), // Tab 1: Sessions - recent history
		info.New(state, cfg),            // Tab 2: Info - configuration and pricing
	}
	model.SetTabs(tabs)

	// 6. Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

func printUsage() {
	fmt.Println(`Tokendeck - LLM usage metering and cost dashboard

Usage:
  tokendeck [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-3             Switch between tabs (Usage, Sessions, Info)
  Tab/Shift+Tab   Navigate between tabs
  t               Toggle stats period (7 / 30 days)
  j/k, Up/Down    Navigate lists
  r               Refresh stats and history
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  USAGE_API_URL         Usage store base URL (default: http://localhost:3000/api)
  SETTINGS_PATH         SQLite settings database path
  TRANSCRIPT_PATH       Live session transcript to estimate from
  LOG_PATH              Log file path
  DEFAULT_MODEL         Model assumed for transcripts without one
  HISTORY_LIMIT         Session history fetch size (default: 10)
  POLL_INTERVAL         Stats polling interval (default: 10s)
  COST_ALERT_THRESHOLD  Desktop alert when session cost crosses this (0 = off)

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/tokendeck/.env`)
}
