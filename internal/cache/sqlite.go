// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

package cache

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists cache entries in a single SQLite table. It trades the
// throughput of the in-memory and Badger backends for a zero-dependency file
// that survives restarts and is trivially inspectable with the sqlite3 CLI.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	expires_at INTEGER NOT NULL,
	ttl_ms     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cache_entries_expires ON cache_entries (expires_at);
`

// sqliteDSN appends the WAL and timeout pragmas for file databases. The
// driver only honors the _pragma=name(value) form; mattn-style _journal_mode
// parameters are silently ignored.
func sqliteDSN(path string) string {
	if path == ":memory:" {
		return path
	}
	return filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
}

// NewSQLiteStore opens (or creates) a SQLite-backed cache at the given path.
// Use ":memory:" for an ephemeral database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite cache path is required")
	}

	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache: %w", err)
	}

	// modernc.org/sqlite serializes writes anyway; a single connection avoids
	// SQLITE_BUSY churn and keeps :memory: databases coherent.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite cache: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get returns the entry for key, or (nil, nil) when absent or expired.
// Expired rows are deleted on read.
func (s *SQLiteStore) Get(ctx context.Context, key string) (*Entry, error) {
	var (
		value     []byte
		expiresAt int64
		ttlMs     int64
	)
	row := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at, ttl_ms FROM cache_entries WHERE key = ?`, key)
	if err := row.Scan(&value, &expiresAt, &ttlMs); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache entry: %w", err)
	}

	exp := time.UnixMilli(expiresAt)
	if !exp.After(time.Now()) {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key)
		return nil, nil
	}

	return &Entry{
		Key:       key,
		Value:     value,
		ExpiresAt: exp,
		TTL:       time.Duration(ttlMs) * time.Millisecond,
	}, nil
}

// Set stores value under key with the given TTL, replacing any existing row.
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", ttl)
	}
	expiresAt := time.Now().Add(ttl).UnixMilli()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, value, expires_at, ttl_ms) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value,
		                                expires_at = excluded.expires_at,
		                                ttl_ms = excluded.ttl_ms`,
		key, value, expiresAt, ttl.Milliseconds())
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// List returns live entries whose key starts with prefix, sorted by key.
func (s *SQLiteStore) List(ctx context.Context, prefix string, limit int, includeValue bool) ([]Entry, error) {
	query := `SELECT key, value, expires_at, ttl_ms FROM cache_entries
	          WHERE key LIKE ? ESCAPE '\' AND expires_at > ? ORDER BY key`
	args := []any{escapeLike(prefix) + "%", time.Now().UnixMilli()}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cache entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			key       string
			value     []byte
			expiresAt int64
			ttlMs     int64
		)
		if err := rows.Scan(&key, &value, &expiresAt, &ttlMs); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		e := Entry{
			Key:       key,
			ExpiresAt: time.UnixMilli(expiresAt),
			TTL:       time.Duration(ttlMs) * time.Millisecond,
		}
		if includeValue {
			e.Value = value
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cache entries: %w", err)
	}
	return entries, nil
}

// Stats reports total, active and expired row counts.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN expires_at > ? THEN 1 ELSE 0 END), 0)
		 FROM cache_entries`, time.Now().UnixMilli())
	if err := row.Scan(&stats.Total, &stats.Active); err != nil {
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	stats.Expired = stats.Total - stats.Active
	return stats, nil
}

// Cleanup deletes expired rows and returns the number removed.
func (s *SQLiteStore) Cleanup(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE expires_at <= ?`, time.Now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("cache cleanup: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(n), nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
