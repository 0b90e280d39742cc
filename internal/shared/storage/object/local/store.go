package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"docqa-backend/internal/shared/storage/object"
)

// Store implements ObjectStore using the local filesystem. Keys may contain
// slashes; each path segment is sanitized independently.
type Store struct {
	baseDir string
}

// New creates a new local object store rooted at baseDir.
func New(baseDir string) object.ObjectStore {
	return &Store{baseDir: baseDir}
}

// Save writes the reader to disk under the sanitized key.
func (s *Store) Save(ctx context.Context, key string, contentType string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	_ = contentType

	fullPath, err := s.resolve(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return 0, fmt.Errorf("mkdir: %w", err)
	}

	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		return 0, fmt.Errorf("write body: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close file: %w", err)
	}
	return size, nil
}

// Open returns a reader for a previously saved key.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("open object: %w", err)
	}
	return f, nil
}

func (s *Store) resolve(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty object key")
	}
	segments := strings.Split(key, "/")
	clean := make([]string, 0, len(segments))
	for _, seg := range segments {
		sanitized := sanitizeSegment(seg)
		if sanitized == "" {
			continue
		}
		clean = append(clean, sanitized)
	}
	if len(clean) == 0 {
		return "", fmt.Errorf("object key %q sanitizes to nothing", key)
	}
	return filepath.Join(append([]string{s.baseDir}, clean...)...), nil
}

func sanitizeSegment(seg string) string {
	seg = strings.TrimSpace(seg)
	if seg == "" || seg == "." || seg == ".." {
		return ""
	}
	var b strings.Builder
	for _, r := range seg {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), ".")
}
