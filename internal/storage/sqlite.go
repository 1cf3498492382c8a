package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pfrederiksen/animalitos/internal/logger"
	"github.com/pfrederiksen/animalitos/internal/result"
)

const resultsTable = `
CREATE TABLE IF NOT EXISTS results (
	date TEXT NOT NULL,
	hour TEXT NOT NULL,
	animal TEXT NOT NULL,
	run_id TEXT,
	updated_at DATETIME,
	PRIMARY KEY (date, hour)
);
`

// SQLite keeps results in a SQLite database, one row per date and hour.
// Saving the same draw again overwrites it, so repeated runs over overlapping
// ranges do not duplicate rows. Results of one Save that share a date and hour
// also collapse into one row (the last one wins); Save counts them in Collapsed.
type SQLite struct {
	db *sql.DB
	// RunID is stored with every row written by Save
	RunID string
	// Collapsed is the number of results the last Save merged into an earlier slot
	Collapsed int
}

// OpenSQLite opens or creates the database at path and ensures the results table exists
func OpenSQLite(path string) (*SQLite, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(resultsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating results table: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Save upserts every stored result in a single transaction
func (s *SQLite) Save(ctx context.Context, store *result.Store) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO results (date, hour, animal, run_id, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date, hour) DO UPDATE SET
			animal = excluded.animal,
			run_id = excluded.run_id,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	slots := make(map[[2]string]bool, store.Len())
	collapsed := 0
	for _, r := range store.Results() {
		slot := [2]string{r.DateString(), r.Hour}
		if slots[slot] {
			collapsed++
		}
		slots[slot] = true

		if _, err := stmt.ExecContext(ctx, r.DateString(), r.Hour, r.Animal, s.RunID, now); err != nil {
			return fmt.Errorf("saving %s %s: %w", r.DateString(), r.Hour, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing results: %w", err)
	}

	s.Collapsed = collapsed
	if collapsed > 0 {
		logger.Warn("Results sharing a date and hour were stored as one row", logger.Fields{
			"collapsed": collapsed,
			"run_id":    s.RunID,
		}, nil)
	}
	return nil
}

// Load returns every stored result ordered by date
func (s *SQLite) Load(ctx context.Context) ([]result.LotteryResult, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT date, hour, animal FROM results ORDER BY date, rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var results []result.LotteryResult
	for rows.Next() {
		var date, hour, animal string
		if err := rows.Scan(&date, &hour, &animal); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}

		day, err := result.ParseDay(date)
		if err != nil {
			return nil, fmt.Errorf("invalid stored date %q: %w", date, err)
		}
		results = append(results, result.LotteryResult{Date: day, Hour: hour, Animal: animal})
	}

	return results, rows.Err()
}
