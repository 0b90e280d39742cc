package docstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Document is one stored extraction result.
type Document struct {
	ID       string
	Text     string
	Metadata map[string]string
}

// Entry is the enumeration projection of a stored document.
type Entry struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata"`
}

// Store persists extracted document text keyed by content id.
//
// Put overwrites any existing document with the same id (last write wins).
// Get returns only the entries found; unknown ids are silently omitted.
// List enumerates every document in an order that is stable for the lifetime
// of the store instance.
type Store interface {
	Put(ctx context.Context, text string, metadata map[string]string) (string, error)
	Get(ctx context.Context, ids []string) ([]Document, error)
	List(ctx context.Context) ([]Entry, error)
	Ping(ctx context.Context) error
	Close() error
}

// ContentID derives a document's identifier from its extracted text. Two
// uploads with identical text share an id and overwrite each other.
func ContentID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func cloneMetadata(metadata map[string]string) map[string]string {
	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		out[k] = v
	}
	return out
}
