// Package sqlitemedium persists local session state in a SQLite file so that it
// survives process restarts.
package sqlitemedium

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jrsteele09/go-session-guard/localstore"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

var _ localstore.Medium = (*Medium)(nil)

const schema = `CREATE TABLE IF NOT EXISTS local_state (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Medium is a localstore.Medium backed by a single SQLite table.
type Medium struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Medium, error) {
	if path == "" {
		return nil, errors.New("[sqlitemedium.Open] path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("[sqlitemedium.Open] create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("[sqlitemedium.Open] open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("[sqlitemedium.Open] set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("[sqlitemedium.Open] initialise schema: %w", err)
	}

	return &Medium{db: db}, nil
}

func (m *Medium) Get(key string) (string, error) {
	var value string
	err := m.db.QueryRow(`SELECT value FROM local_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", localstore.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("[sqlitemedium.Get] %s: %w", key, err)
	}
	return value, nil
}

func (m *Medium) Set(key, value string) error {
	_, err := m.db.Exec(
		`INSERT INTO local_state (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("[sqlitemedium.Set] %s: %w", key, err)
	}
	return nil
}

func (m *Medium) Delete(key string) error {
	if _, err := m.db.Exec(`DELETE FROM local_state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("[sqlitemedium.Delete] %s: %w", key, err)
	}
	return nil
}

// Close releases the database handle.
func (m *Medium) Close() error {
	return m.db.Close()
}
