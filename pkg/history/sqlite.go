// Package history keeps a local log of usage samples so the UI can show
// short-term trends and the MCP server can serve recent readings.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/claudebar/claudebar/pkg/usage"
)

// Sample is one persisted limit observation.
type Sample struct {
	Window      usage.WindowID `json:"window"`
	PercentUsed float64        `json:"percent_used"`
	ResetsAt    time.Time      `json:"resets_at"`
	ObservedAt  time.Time      `json:"observed_at"`
}

// Store manages the SQLite connection and schema.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the sample database at dbPath.
// WAL mode keeps the single writer from blocking reads.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		window TEXT NOT NULL,
		percent_used REAL NOT NULL,
		resets_at DATETIME,
		observed_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_samples_observed_at ON samples(observed_at);
	CREATE INDEX IF NOT EXISTS idx_samples_window ON samples(window, observed_at);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create samples table: %w", err)
	}

	return nil
}

// Append records the three windows of a snapshot in one transaction.
func (s *Store) Append(ctx context.Context, snap usage.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO samples (window, percent_used, resets_at, observed_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, id := range usage.Windows {
		w := snap.Window(id)
		if _, err := stmt.ExecContext(ctx, string(id), w.PercentUsed, w.ResetsAt.UTC(), snap.FetchedAt.UTC()); err != nil {
			return fmt.Errorf("failed to insert sample for %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// Recent returns up to limit samples for one window, newest first.
func (s *Store) Recent(ctx context.Context, window usage.WindowID, limit int) ([]Sample, error) {
	if limit <= 0 {
		limit = 60
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT window, percent_used, resets_at, observed_at
		 FROM samples WHERE window = ?
		 ORDER BY observed_at DESC, id DESC LIMIT ?`,
		string(window), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var sm Sample
		var win string
		if err := rows.Scan(&win, &sm.PercentUsed, &sm.ResetsAt, &sm.ObservedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		sm.Window = usage.WindowID(win)
		out = append(out, sm)
	}
	return out, rows.Err()
}

// Prune deletes samples observed before the cutoff and reports how many
// rows went away.
func (s *Store) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM samples WHERE observed_at < ?`, olderThan.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune samples: %w", err)
	}
	return res.RowsAffected()
}
