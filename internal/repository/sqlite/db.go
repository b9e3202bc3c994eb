package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// timeFormat is fixed width so lexical order on the column equals time order.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// Options configures the connection pool.
type Options struct {
	URL           string
	MaxOpenConns  int
	MaxIdleConns  int
	BusyTimeoutMS int
}

// Open opens (or creates) the sqlite database addressed by opts.URL and
// configures the pool. Callers block when every connection is checked out.
func Open(ctx context.Context, opts Options) (*sql.DB, error) {
	path, query, err := parseURL(opts.URL)
	if err != nil {
		return nil, err
	}

	memory := path == ":memory:" || query.Get("mode") == "memory"
	if !memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	busy := opts.BusyTimeoutMS
	if busy <= 0 {
		busy = 5000
	}
	// pragmas in the DSN apply to every pooled connection
	query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy))
	if !memory {
		query.Add("_pragma", "journal_mode(WAL)")
	}

	db, err := sql.Open("sqlite", "file:"+path+"?"+query.Encode())
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 || memory {
		// every connection to :memory: would see its own empty database
		maxOpen = 1
	}
	maxIdle := opts.MaxIdleConns
	if maxIdle <= 0 || maxIdle > maxOpen {
		maxIdle = maxOpen
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	return db, nil
}

// parseURL accepts sqlite://path, sqlite:path, file:path?query and plain paths.
func parseURL(raw string) (string, url.Values, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil, fmt.Errorf("database url is required")
	}

	for _, prefix := range []string{"sqlite://", "sqlite:", "file:"} {
		if strings.HasPrefix(raw, prefix) {
			raw = strings.TrimPrefix(raw, prefix)
			break
		}
	}

	path, rawQuery, _ := strings.Cut(raw, "?")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", nil, fmt.Errorf("parse database url query: %w", err)
	}
	if path == "" {
		return "", nil, fmt.Errorf("database url has no path")
	}
	return path, query, nil
}

// Snapshot writes a consistent copy of the database to path using VACUUM INTO.
// The target must not exist yet.
func Snapshot(ctx context.Context, db *sql.DB, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	if _, err := db.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return fmt.Errorf("vacuum into %s: %w", path, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeFormat, s)
}

func isUniqueViolation(err error) bool {
	var se *moderncsqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type scanner interface {
	Scan(dest ...any) error
}
