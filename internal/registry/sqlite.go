package registry

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver for database/sql
)

// SQLite is a Registry backed by an embedded SQLite database.
type SQLite struct {
	conn *sql.DB
}

// NewSQLite opens (creating if needed) the database at dbPath and
// initializes the schema. Pass ":memory:" for an in-memory store.
func NewSQLite(dbPath string) (*SQLite, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL mode for concurrent host invocations sharing the file.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS line_groups (
			id       TEXT PRIMARY KEY,
			added_at INTEGER NOT NULL DEFAULT (unixepoch())
		)
	`
	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &SQLite{conn: conn}, nil
}

// Add inserts the id, silently ignoring duplicates.
func (s *SQLite) Add(ctx context.Context, groupID string) error {
	query := `INSERT INTO line_groups (id) VALUES (?) ON CONFLICT(id) DO NOTHING`
	if _, err := s.conn.ExecContext(ctx, query, groupID); err != nil {
		return fmt.Errorf("add group %q: %w", groupID, err)
	}
	return nil
}

// Remove deletes the id. Deleting an absent id affects zero rows and
// is not an error.
func (s *SQLite) Remove(ctx context.Context, groupID string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM line_groups WHERE id = ?`, groupID); err != nil {
		return fmt.Errorf("remove group %q: %w", groupID, err)
	}
	return nil
}

// ListAll returns every registered id.
func (s *SQLite) ListAll(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id FROM line_groups`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan group id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}
	return ids, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}
