package docstore

import (
	"context"
	"sync"
)

// Memory is an in-memory Store for development and tests.
type Memory struct {
	mu    sync.RWMutex
	docs  map[string]Document
	order []string
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		docs: make(map[string]Document),
	}
}

// Put stores or overwrites the document derived from text.
func (s *Memory) Put(ctx context.Context, text string, metadata map[string]string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := ContentID(text)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[id]; !exists {
		s.order = append(s.order, id)
	}
	s.docs[id] = Document{ID: id, Text: text, Metadata: cloneMetadata(metadata)}
	return id, nil
}

// Get returns the documents found among ids, in request order.
func (s *Memory) Get(ctx context.Context, ids []string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Document
	for _, id := range ids {
		if doc, ok := s.docs[id]; ok {
			doc.Metadata = cloneMetadata(doc.Metadata)
			out = append(out, doc)
		}
	}
	return out, nil
}

// List enumerates all documents in insertion order.
func (s *Memory) List(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, Entry{ID: id, Metadata: cloneMetadata(s.docs[id].Metadata)})
	}
	return out, nil
}

// Ping always succeeds for the in-memory store.
func (s *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op.
func (s *Memory) Close() error {
	return nil
}

var _ Store = (*Memory)(nil)
