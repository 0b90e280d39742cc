package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // register the sqlite driver
)

// Schema for the documents table, applied on open.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	text TEXT NOT NULL,
	metadata TEXT NOT NULL DEFAULT '{}',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_created ON documents(created_at);
`

// SQLite is a Store backed by a local SQLite database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and ensures the
// schema exists.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// Single writer; the driver serializes access through one connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Put stores or overwrites the document derived from text. The original
// created_at is kept on overwrite so enumeration order stays stable.
func (s *SQLite) Put(ctx context.Context, text string, metadata map[string]string) (string, error) {
	id := ContentID(text)
	meta, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("sqlite marshal metadata: %w", err)
	}
	const query = `
INSERT INTO documents (id, text, metadata, created_at) VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET text = excluded.text, metadata = excluded.metadata`
	if _, err := s.db.ExecContext(ctx, query, id, text, string(meta), time.Now().UnixNano()); err != nil {
		return "", fmt.Errorf("sqlite put: %w", err)
	}
	return id, nil
}

// Get returns the documents found among ids.
func (s *SQLite) Get(ctx context.Context, ids []string) ([]Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := fmt.Sprintf(
		`SELECT id, text, metadata FROM documents WHERE id IN (%s) ORDER BY created_at, id`,
		placeholders,
	)
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite get: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var doc Document
		var rawMeta string
		if err := rows.Scan(&doc.ID, &doc.Text, &rawMeta); err != nil {
			return nil, fmt.Errorf("sqlite get scan: %w", err)
		}
		if err := json.Unmarshal([]byte(rawMeta), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("sqlite get metadata: %w", err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// List enumerates all documents ordered by insertion time.
func (s *SQLite) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, metadata FROM documents ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite list: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var entry Entry
		var rawMeta string
		if err := rows.Scan(&entry.ID, &rawMeta); err != nil {
			return nil, fmt.Errorf("sqlite list scan: %w", err)
		}
		if err := json.Unmarshal([]byte(rawMeta), &entry.Metadata); err != nil {
			return nil, fmt.Errorf("sqlite list metadata: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// Ping verifies the database is reachable.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLite)(nil)
