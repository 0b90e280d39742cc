package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Chroma is a minimal REST client to a Chroma server. The collection is used
// for exact-id lookup only; the embedding the API requires per record is a
// fixed one-dimensional placeholder and is never queried.
type Chroma struct {
	url          string
	collection   string
	collectionID string
	client       *http.Client
}

// ChromaConfig configures the Chroma store client.
type ChromaConfig struct {
	URL        string
	Collection string
	Timeout    time.Duration
}

var placeholderEmbedding = []float32{0}

// NewChroma constructs a Chroma store client. Call Init before use.
func NewChroma(cfg ChromaConfig) *Chroma {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Chroma{
		url:        cfg.URL,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// Init resolves (creating if missing) the backing collection.
func (s *Chroma) Init(ctx context.Context) error {
	body := map[string]any{
		"name":          s.collection,
		"get_or_create": true,
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := s.postJSON(ctx, fmt.Sprintf("%s/api/v1/collections", s.url), body, &resp); err != nil {
		return fmt.Errorf("chroma init collection %q: %w", s.collection, err)
	}
	if resp.ID == "" {
		return fmt.Errorf("chroma init collection %q: response missing collection id", s.collection)
	}
	s.collectionID = resp.ID
	return nil
}

// Put upserts the document derived from text.
func (s *Chroma) Put(ctx context.Context, text string, metadata map[string]string) (string, error) {
	id := ContentID(text)
	body := map[string]any{
		"ids":        []string{id},
		"documents":  []string{text},
		"metadatas":  []map[string]string{metadata},
		"embeddings": [][]float32{placeholderEmbedding},
	}
	url := fmt.Sprintf("%s/api/v1/collections/%s/upsert", s.url, s.collectionID)
	if err := s.postJSON(ctx, url, body, nil); err != nil {
		return "", fmt.Errorf("chroma put: %w", err)
	}
	return id, nil
}

// Get returns the documents found among ids; unknown ids are omitted by the
// server.
func (s *Chroma) Get(ctx context.Context, ids []string) ([]Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	body := map[string]any{
		"ids":     ids,
		"include": []string{"documents", "metadatas"},
	}
	resp, err := s.get(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("chroma get: %w", err)
	}
	var out []Document
	for i, id := range resp.IDs {
		doc := Document{ID: id}
		if i < len(resp.Documents) {
			doc.Text = resp.Documents[i]
		}
		if i < len(resp.Metadatas) {
			doc.Metadata = resp.Metadatas[i]
		}
		out = append(out, doc)
	}
	return out, nil
}

// List enumerates all documents in the collection.
func (s *Chroma) List(ctx context.Context) ([]Entry, error) {
	body := map[string]any{
		"include": []string{"metadatas"},
	}
	resp, err := s.get(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("chroma list: %w", err)
	}
	out := make([]Entry, 0, len(resp.IDs))
	for i, id := range resp.IDs {
		entry := Entry{ID: id}
		if i < len(resp.Metadatas) {
			entry.Metadata = resp.Metadatas[i]
		}
		out = append(out, entry)
	}
	return out, nil
}

// Ping checks server reachability via the heartbeat endpoint.
func (s *Chroma) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/v1/heartbeat", s.url), nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("chroma heartbeat: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("chroma heartbeat failed: %s", resp.Status)
	}
	return nil
}

// Close is a no-op; the HTTP client holds no persistent resources.
func (s *Chroma) Close() error {
	return nil
}

type chromaGetResponse struct {
	IDs       []string            `json:"ids"`
	Documents []string            `json:"documents"`
	Metadatas []map[string]string `json:"metadatas"`
}

func (s *Chroma) get(ctx context.Context, body map[string]any) (chromaGetResponse, error) {
	var resp chromaGetResponse
	url := fmt.Sprintf("%s/api/v1/collections/%s/get", s.url, s.collectionID)
	err := s.postJSON(ctx, url, body, &resp)
	return resp, err
}

func (s *Chroma) postJSON(ctx context.Context, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

var _ Store = (*Chroma)(nil)
