package registry

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // Postgres driver for database/sql
)

// Postgres is a Registry backed by a Postgres table.
type Postgres struct {
	conn *sql.DB
}

// NewPostgres connects with the given DSN and initializes the schema.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS line_groups (
			id       TEXT PRIMARY KEY,
			added_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Postgres{conn: conn}, nil
}

// Add inserts the id, silently ignoring duplicates.
func (p *Postgres) Add(ctx context.Context, groupID string) error {
	query := `INSERT INTO line_groups (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`
	if _, err := p.conn.ExecContext(ctx, query, groupID); err != nil {
		return fmt.Errorf("add group %q: %w", groupID, err)
	}
	return nil
}

// Remove deletes the id. Deleting an absent id is not an error.
func (p *Postgres) Remove(ctx context.Context, groupID string) error {
	if _, err := p.conn.ExecContext(ctx, `DELETE FROM line_groups WHERE id = $1`, groupID); err != nil {
		return fmt.Errorf("remove group %q: %w", groupID, err)
	}
	return nil
}

// ListAll returns every registered id.
func (p *Postgres) ListAll(ctx context.Context) ([]string, error) {
	rows, err := p.conn.QueryContext(ctx, `SELECT id FROM line_groups`)
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
func (p *Postgres) Close() error {
	return p.conn.Close()
}
