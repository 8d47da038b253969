package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/claudebar/claudebar/pkg/claude"
	"github.com/claudebar/claudebar/pkg/credentials"
	"github.com/claudebar/claudebar/pkg/history"
	"github.com/claudebar/claudebar/pkg/mcp"
)

func main() {
	baseURL := flag.String("base-url", os.Getenv("CLAUDEBAR_BASE_URL"), "usage API base URL (default production claude.ai)")
	dbPath := flag.String("db", os.Getenv("CLAUDEBAR_DB_PATH"), "path to the sample history database (empty disables the history resource)")
	flag.Parse()

	if f := configureLogging(os.Getenv("CLAUDEBAR_LOG_PATH"), os.Stderr); f != nil {
		defer f.Close()
	}

	path := *dbPath
	if path == "" {
		if configDir, err := os.UserConfigDir(); err == nil {
			candidate := filepath.Join(configDir, "claudebar", "history.db")
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
	}

	var samples mcp.HistorySource
	if path != "" {
		store, err := history.NewStore(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "claudebar-mcp: failed to open history db: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		samples = store
	}

	server := mcp.NewServer(claude.NewClient(*baseURL), credentials.NewStore(), samples)
	if err := server.Serve(); err != nil {
		fmt.Fprintf(os.Stderr, "claudebar-mcp: %v\n", err)
		os.Exit(1)
	}
}

// configureLogging routes diagnostics to logPath, or discards them when no
// path is given. Stdout carries the MCP wire protocol, so logging must stay
// off it; an unopenable path is noted on stderr rather than swallowed.
func configureLogging(logPath string, stderr io.Writer) *os.File {
	log.SetOutput(io.Discard)
	if logPath == "" {
		return nil
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(stderr, "claudebar-mcp: failed to open log file %s: %v\n", logPath, err)
		return nil
	}
	log.SetOutput(f)
	return f
}
