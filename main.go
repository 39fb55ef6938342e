package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"tabula/cmd"
	"tabula/internal/db"
	"tabula/internal/model"
	"tabula/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	// Parse CLI flags
	config, err := cmd.ParseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if config.ShowVersion {
		fmt.Println("tabula", version)
		return
	}

	logger, closeLog, err := newLogger(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	// Open database
	database, src, err := openSource(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()
	logger.Info("starting", "version", version, "source", src.Label(), "demo", config.Demo)

	opts := ui.Options{
		Source:     src,
		PageLength: config.PageLength,
		Lengths:    config.Lengths,
		Ordering:   !config.NoSort,
		Searching:  !config.NoSearch,
		Paging:     !config.NoPaging,
		Logger:     logger,
	}

	// Create and run Bubble Tea app
	p := tea.NewProgram(ui.New(database, opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running app: %v\n", err)
		os.Exit(1)
	}
}

// newLogger writes to the -log file when set; the terminal belongs to the UI.
func newLogger(config *cmd.Config) (*slog.Logger, func(), error) {
	if config.LogPath == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := tea.LogToFile(config.LogPath, "tabula")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	level := slog.LevelInfo
	if config.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { f.Close() }, nil
}

func openSource(config *cmd.Config) (*sql.DB, model.Source, error) {
	src := config.Source()
	if config.Demo {
		database, err := db.OpenDemo(context.Background())
		if err != nil {
			return nil, src, err
		}
		if src.Table == "" && src.Query == "" {
			src.Table = db.DemoTable
		}
		return database, src, nil
	}
	database, err := db.Open(config.DBPath)
	return database, src, err
}
