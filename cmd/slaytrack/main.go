// Command slaytrack is the live slayer task tracker.
//
// Architecture Overview:
//
//	Watch (internal/watch)     - tails the game client's chat log
//	Tracker (internal/tracker) - classifies lines, increments counters
//	Counter (internal/counter) - SQLite store, source of truth
//	Bus (internal/bus)         - refresh events from tracker to panel
//	UI (internal/ui)           - Bubble Tea counter panel
//
// The chat log flows one way: watch -> tracker -> counter, with the panel
// re-reading the counter store whenever the bus says something changed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/slaytrack/internal/bus"
	"github.com/abelbrown/slaytrack/internal/config"
	"github.com/abelbrown/slaytrack/internal/counter"
	"github.com/abelbrown/slaytrack/internal/logging"
	"github.com/abelbrown/slaytrack/internal/tracker"
	"github.com/abelbrown/slaytrack/internal/ui"
	"github.com/abelbrown/slaytrack/internal/watch"
)

func main() {
	chatLog := flag.String("chatlog", "", "chat log file to tail (overrides config)")
	flag.Parse()

	// Initialize logging
	if err := logging.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	defer logging.Close()

	// Load configuration (defaults when absent)
	cfg, err := config.Load()
	if err != nil {
		fatal("Failed to load config: %v", err)
	}
	if *chatLog != "" {
		cfg.ChatLog = *chatLog
	}

	// Ensure data directory exists
	homeDir, err := os.UserHomeDir()
	if err != nil {
		fatal("Failed to get home directory: %v", err)
	}
	dataDir := filepath.Join(homeDir, ".slaytrack")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		fatal("Failed to create data directory: %v", err)
	}

	// Counter store - the source of truth
	dbPath := filepath.Join(dataDir, "counters.db")
	store, err := counter.NewStore(dbPath, counter.Group)
	if err != nil {
		fatal("Failed to initialize counter store: %v", err)
	}
	defer store.Close()
	logging.Info("Counter store initialized", "path", dbPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Refresh bus between tracker and panel
	b := bus.New(64)
	b.Start(ctx)

	// The notifier forwards confirmation notices into the running program.
	// Declared before the tracker so the closure can capture it.
	var program *tea.Program
	notify := func(text string) {
		if program != nil {
			program.Send(ui.NoticeMsg{Text: text})
		}
	}

	tr := tracker.New(store, cfg, b, notify)
	program = tea.NewProgram(ui.New(store, cfg, tr), tea.WithAltScreen())

	// Background goroutines: tail the log, dispatch lines, forward refreshes
	g, ctx := errgroup.WithContext(ctx)

	tailer := watch.NewTailer(cfg.ChatLog, 256)
	g.Go(func() error {
		if err := tailer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		for line := range tailer.Lines() {
			tr.Dispatch(line)
		}
		return nil
	})

	g.Go(func() error {
		for ev := range b.Events {
			program.Send(ui.RefreshMsg{Category: ev.Category})
		}
		return nil
	})

	logging.Info("Starting UI", "chat_log", cfg.ChatLog)
	if _, err := program.Run(); err != nil {
		logging.Error("Application error", "error", err)
		fatal("Error: %v", err)
	}

	// Wind down: stop the tailer, drain the pump, close the bus
	cancel()
	b.Stop()
	if err := g.Wait(); err != nil {
		logging.Error("Background worker error", "error", err)
	}

	logging.Info("slaytrack exiting normally")
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
