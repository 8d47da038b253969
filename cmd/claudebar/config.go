package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultPollInterval = 60 * time.Second
	defaultHistoryKeep  = 30 * 24 * time.Hour
)

type Config struct {
	BaseURL      string
	DBPath       string
	LogPath      string
	MetricsAddr  string
	PollInterval time.Duration
	HistoryKeep  time.Duration
}

func LoadConfig(args []string) (Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return Config{}, fmt.Errorf("failed to resolve config dir: %w", err)
	}
	appDir := filepath.Join(configDir, "claudebar")

	baseURL := os.Getenv("CLAUDEBAR_BASE_URL")
	dbPath := envOrDefault("CLAUDEBAR_DB_PATH", filepath.Join(appDir, "history.db"))
	logPath := envOrDefault("CLAUDEBAR_LOG_PATH", filepath.Join(appDir, "claudebar.log"))
	metricsAddr := os.Getenv("CLAUDEBAR_METRICS_ADDR")

	pollInterval := defaultPollInterval
	if v := os.Getenv("CLAUDEBAR_POLL_INTERVAL"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CLAUDEBAR_POLL_INTERVAL: %w", err)
		}
		pollInterval = parsed
	}

	flagSet := flag.NewFlagSet("claudebar", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagBaseURL := flagSet.String("base-url", baseURL, "usage API base URL (default production claude.ai)")
	flagDB := flagSet.String("db", dbPath, "path to the sample history database")
	flagLog := flagSet.String("log", logPath, "path to the diagnostic log file")
	flagMetrics := flagSet.String("metrics-addr", metricsAddr, "listen address for /metrics (empty disables)")
	flagInterval := flagSet.String("interval", pollInterval.String(), "usage poll interval")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			flagSet.SetOutput(os.Stdout)
			flagSet.PrintDefaults()
			return Config{}, err
		}
		return Config{}, err
	}

	intervalParsed, err := time.ParseDuration(*flagInterval)
	if err != nil {
		return Config{}, fmt.Errorf("invalid poll interval: %w", err)
	}
	if intervalParsed <= 0 {
		return Config{}, errors.New("poll interval must be positive")
	}

	config := Config{
		BaseURL:      strings.TrimSpace(*flagBaseURL),
		DBPath:       strings.TrimSpace(*flagDB),
		LogPath:      strings.TrimSpace(*flagLog),
		MetricsAddr:  strings.TrimSpace(*flagMetrics),
		PollInterval: intervalParsed,
		HistoryKeep:  defaultHistoryKeep,
	}

	if config.DBPath == "" {
		return Config{}, errors.New("db path cannot be empty")
	}

	return config, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
