package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"docket/internal/config"
)

// Store manages entity persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the entity database. An advisory file lock
// next to the database guards against two processes reconciling the same
// region data concurrently.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	lock := flock.New(filepath.Join(filepath.Dir(dbPath), "docket.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire database lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("database %s is in use by another docket process", dbPath)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return store, nil
}

// Close releases the database connection and the advisory lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}
	return err
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Summary aggregates row counts for the status display.
type Summary struct {
	People       int
	OpenBookings int
	Periods      int
}

// Summarize reports row counts for one region.
func (s *Store) Summarize(ctx context.Context, region string) (Summary, error) {
	var summary Summary
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM people WHERE region = ?", region,
	).Scan(&summary.People); err != nil {
		return Summary{}, fmt.Errorf("count people: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM bookings b JOIN people p ON p.id = b.person_id
         WHERE p.region = ? AND b.release_date IS NULL`, region,
	).Scan(&summary.OpenBookings); err != nil {
		return Summary{}, fmt.Errorf("count open bookings: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM incarceration_periods WHERE region = ?", region,
	).Scan(&summary.Periods); err != nil {
		return Summary{}, fmt.Errorf("count periods: %w", err)
	}
	return summary, nil
}

// Dates are stored as bare YYYY-MM-DD strings; absent dates as NULL.
const dateLayout = "2006-01-02"

func nullableDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(dateLayout)
}

func parseDate(value sql.NullString) (time.Time, error) {
	if !value.Valid || value.String == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(dateLayout, value.String, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value.String, err)
	}
	return t, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
