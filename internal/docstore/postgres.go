package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// Postgres implements Store on top of a shared *sql.DB using the pgx driver.
// The documents table is created by the embedded goose migrations.
type Postgres struct {
	DB *sql.DB
}

// NewPostgres wraps an existing connection pool.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{DB: db}
}

// Put stores or overwrites the document derived from text. created_at is kept
// on overwrite so enumeration order stays stable.
func (s *Postgres) Put(ctx context.Context, text string, metadata map[string]string) (string, error) {
	id := ContentID(text)
	meta, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("postgres marshal metadata: %w", err)
	}
	const query = `
INSERT INTO documents (id, text, metadata, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
ON CONFLICT (id) DO UPDATE SET text = EXCLUDED.text, metadata = EXCLUDED.metadata, updated_at = now()`
	if _, err := s.DB.ExecContext(ctx, query, id, text, meta); err != nil {
		return "", fmt.Errorf("postgres put: %w", err)
	}
	return id, nil
}

// Get returns the documents found among ids.
func (s *Postgres) Get(ctx context.Context, ids []string) ([]Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf(
		`SELECT id, text, metadata FROM documents WHERE id IN (%s) ORDER BY created_at, id`,
		strings.Join(placeholders, ", "),
	)
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres get: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var doc Document
		var rawMeta []byte
		if err := rows.Scan(&doc.ID, &doc.Text, &rawMeta); err != nil {
			return nil, fmt.Errorf("postgres get scan: %w", err)
		}
		if err := json.Unmarshal(rawMeta, &doc.Metadata); err != nil {
			return nil, fmt.Errorf("postgres get metadata: %w", err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// List enumerates all documents ordered by insertion time.
func (s *Postgres) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, metadata FROM documents ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("postgres list: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var entry Entry
		var rawMeta []byte
		if err := rows.Scan(&entry.ID, &rawMeta); err != nil {
			return nil, fmt.Errorf("postgres list scan: %w", err)
		}
		if err := json.Unmarshal(rawMeta, &entry.Metadata); err != nil {
			return nil, fmt.Errorf("postgres list metadata: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// Ping verifies the database is reachable.
func (s *Postgres) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close closes the underlying pool.
func (s *Postgres) Close() error {
	return s.DB.Close()
}

var _ Store = (*Postgres)(nil)
