package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// LocalStorage is a durable per-origin key/value table, the terminal
// counterpart of a browser's localStorage. Entries for different origins never
// see each other.
type LocalStorage struct {
	Origin string

	path   string
	ensure func() error
}

// OriginOf reduces a service URL to scheme://host[:port].
func OriginOf(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid service url %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid service url %q: missing scheme or host", raw)
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), nil
}

func (ls LocalStorage) open(ctx context.Context) (*sql.DB, error) {
	if ls.ensure != nil {
		if err := ls.ensure(); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(ls.path) == "" {
		return nil, errors.New("local storage: missing path")
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", ls.path)
	if err != nil {
		return nil, err
	}
	// WAL lets the TUI and CLI commands share the file; busy_timeout avoids "database is locked".
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateLocalStorage(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateLocalStorage(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS local_storage (
			origin TEXT NOT NULL,
			k TEXT NOT NULL,
			v TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL,
			PRIMARY KEY (origin, k)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// GetItem returns the value for key and whether it exists.
func (ls LocalStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	db, err := ls.open(ctx)
	if err != nil {
		return "", false, err
	}
	defer db.Close()

	var v string
	err = db.QueryRowContext(ctx, `SELECT v FROM local_storage WHERE origin = ? AND k = ?`, ls.Origin, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// SetItem fully replaces the value for key.
func (ls LocalStorage) SetItem(ctx context.Context, key, value string) error {
	db, err := ls.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `INSERT OR REPLACE INTO local_storage(origin, k, v, updated_at_unixms) VALUES(?, ?, ?, ?)`,
		ls.Origin, key, value, time.Now().UTC().UnixMilli())
	return err
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (ls LocalStorage) RemoveItem(ctx context.Context, key string) error {
	db, err := ls.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `DELETE FROM local_storage WHERE origin = ? AND k = ?`, ls.Origin, key)
	return err
}
