// internal/artifacts/postgres.go
package artifacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"credit-risk-workers/internal/common/database"
)

var tableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?$`)

const upsertArtifact = `INSERT INTO %s (name, payload, updated_at) VALUES ($1, $2, now())
ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`

// PostgresStore reads artifacts from a (name, payload) table.
type PostgresStore struct {
	db     *database.PostgresClient
	table  string
	query  string
	upsert string
}

func NewPostgresStore(db *database.PostgresClient, table string) (*PostgresStore, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid artifact table name %q", table)
	}
	return &PostgresStore{
		db:     db,
		table:  table,
		query:  fmt.Sprintf("SELECT payload FROM %s WHERE name = $1", table),
		upsert: fmt.Sprintf(upsertArtifact, table),
	}, nil
}

func (s *PostgresStore) Fetch(ctx context.Context, name string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRow(ctx, s.query, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s in table %s: %w", name, s.table, ErrArtifactNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query artifact %s: %w", name, err)
	}
	return payload, nil
}

func (s *PostgresStore) Put(ctx context.Context, name string, payload []byte) error {
	if _, err := s.db.Exec(ctx, s.upsert, name, payload); err != nil {
		return fmt.Errorf("store artifact %s: %w", name, err)
	}
	return nil
}

func (s *PostgresStore) Describe() string {
	return "postgres:" + s.table
}
