package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/claudebar/claudebar/pkg/claude"
	"github.com/claudebar/claudebar/pkg/credentials"
	"github.com/claudebar/claudebar/pkg/history"
	"github.com/claudebar/claudebar/pkg/metrics"
	"github.com/claudebar/claudebar/pkg/poller"
)

func main() {
	config, err := LoadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "claudebar: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal, so diagnostics go to a file.
	if err := os.MkdirAll(filepath.Dir(config.LogPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "claudebar: failed to create log dir: %v\n", err)
		os.Exit(1)
	}
	logFile, err := os.OpenFile(config.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "claudebar: failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	log.Println("claudebar starting")

	if err := os.MkdirAll(filepath.Dir(config.DBPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "claudebar: failed to create data dir: %v\n", err)
		os.Exit(1)
	}
	store, err := history.NewStore(config.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "claudebar: failed to open history db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if pruned, err := store.Prune(ctx, time.Now().Add(-config.HistoryKeep)); err != nil {
		log.Printf("history prune failed: %v", err)
	} else if pruned > 0 {
		log.Printf("pruned %d history samples", pruned)
	}

	if config.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(config.MetricsAddr, mux); err != nil {
				log.Printf("metrics listener failed: %v", err)
			}
		}()
	}

	creds := credentials.NewStore()
	client := claude.NewClient(config.BaseURL)
	poll := poller.New(client, creds, store, config.PollInterval)

	go poll.Run(ctx)

	p := tea.NewProgram(newModel(creds, poll), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "claudebar: %v\n", err)
		os.Exit(1)
	}

	log.Println("claudebar stopped")
}
