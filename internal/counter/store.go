// Package counter provides the durable counter store.
//
// Store is the source of truth for every tracked count. Counts live in a
// single SQLite table keyed by (group, name) and survive restarts; an
// in-process cache seeded at startup carries the authoritative value between
// a failed persist and the next successful one.
//
// # Thread Safety
//
// Store is safe for concurrent use. A single mutex covers the whole store:
// the read-modify-write of a counter and its persistence write form one
// critical section, which is plenty at chat-message event rates.
package counter

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/abelbrown/slaytrack/internal/logging"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// Group is the namespace all tracker counters are stored under.
const Group = "slayertaskcounter"

// Store handles persistence of named counters.
type Store struct {
	mu    sync.Mutex
	db    *sql.DB
	group string
	cache map[string]int64

	// dirty marks counters whose last persist failed. While a counter is
	// dirty the cache wins over the (stale) persisted row on reads.
	dirty map[string]bool
}

// NewStore opens (creating if needed) the counter database at the given path
// and seeds the in-process cache for the given group.
func NewStore(dbPath, group string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{db: db, group: group, cache: make(map[string]int64), dirty: make(map[string]bool)}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := s.seed(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed counters: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS counters (
		grp TEXT NOT NULL,
		name TEXT NOT NULL,
		value INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (grp, name)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// seed loads every persisted counter for the group into the cache.
// A row that fails to scan is skipped: a lost count is lower-severity
// than refusing to start.
func (s *Store) seed() error {
	rows, err := s.db.Query("SELECT name, value FROM counters WHERE grp = ?", s.group)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var value int64
		if err := rows.Scan(&name, &value); err != nil {
			logging.Warn("Skipping unreadable counter row", "group", s.group, "error", err)
			continue
		}
		if value < 0 {
			value = 0
		}
		s.cache[name] = value
	}

	return rows.Err()
}

// Get returns the current value for name, re-reading from the database first
// so externally applied changes are visible. A missing or unreadable row
// falls back to the cached value, which defaults to zero. Get never fails.
func (s *Store) Get(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(name)
}

func (s *Store) getLocked(name string) int64 {
	if s.dirty[name] {
		return s.cache[name]
	}

	var value int64
	err := s.db.QueryRow(
		"SELECT value FROM counters WHERE grp = ? AND name = ?",
		s.group, name,
	).Scan(&value)
	switch {
	case err == sql.ErrNoRows:
		// Never persisted: cache (default 0) is all we have
	case err != nil:
		logging.Warn("Counter read failed, using cached value",
			"name", name, "value", s.cache[name], "error", err)
	case value >= 0:
		s.cache[name] = value
	}
	return s.cache[name]
}

// Increment adds exactly one to the named counter, persists the new value
// synchronously, and returns it.
//
// A persistence failure is returned as a non-fatal error: the cached value
// still advances and stays authoritative until the next restart, and the
// next successful increment's write supersedes the failed one.
func (s *Store) Increment(name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache[name]++
	value := s.cache[name]

	if err := s.persist(name, value); err != nil {
		s.dirty[name] = true
		logging.Error("Failed to persist counter",
			"group", s.group, "name", name, "value", value, "error", err)
		return value, fmt.Errorf("failed to persist counter %s: %w", name, err)
	}
	delete(s.dirty, name)

	return value, nil
}

// persist writes the absolute value, not a delta, so a write that follows a
// failed one lands on the correct total.
func (s *Store) persist(name string, value int64) error {
	_, err := s.db.Exec(`
		INSERT INTO counters (grp, name, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(grp, name) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, s.group, name, value)
	return err
}

// All returns a copy of every counter currently known to the store,
// refreshed from the database where possible.
func (s *Store) All() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]int64, len(s.cache))
	for name := range s.cache {
		out[name] = s.getLocked(name)
	}
	return out
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for maintenance tooling.
//
// Use with caution - prefer Store methods for normal operations.
func (s *Store) DB() *sql.DB {
	return s.db
}
