package docstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeChroma implements just enough of the collections API for the client.
type fakeChroma struct {
	collectionID string
	ids          []string
	docs         map[string]string
	metas        map[string]map[string]string
}

func newFakeChroma() *fakeChroma {
	return &fakeChroma{
		collectionID: "col-123",
		docs:         make(map[string]string),
		metas:        make(map[string]map[string]string),
	}
}

func (f *fakeChroma) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/heartbeat", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]int64{"nanosecond heartbeat": 1})
	})
	mux.HandleFunc("/api/v1/collections", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name        string `json:"name"`
			GetOrCreate bool   `json:"get_or_create"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || !req.GetOrCreate {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"id": f.collectionID, "name": req.Name})
	})
	mux.HandleFunc("/api/v1/collections/"+f.collectionID+"/upsert", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IDs        []string            `json:"ids"`
			Documents  []string            `json:"documents"`
			Metadatas  []map[string]string `json:"metadatas"`
			Embeddings [][]float32         `json:"embeddings"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if len(req.Embeddings) != len(req.IDs) {
			http.Error(w, "embeddings required", http.StatusUnprocessableEntity)
			return
		}
		for i, id := range req.IDs {
			if _, exists := f.docs[id]; !exists {
				f.ids = append(f.ids, id)
			}
			f.docs[id] = req.Documents[i]
			f.metas[id] = req.Metadatas[i]
		}
		json.NewEncoder(w).Encode(true)
	})
	mux.HandleFunc("/api/v1/collections/"+f.collectionID+"/get", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IDs []string `json:"ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		want := req.IDs
		if len(want) == 0 {
			want = f.ids
		}
		resp := chromaGetResponse{IDs: []string{}, Documents: []string{}, Metadatas: []map[string]string{}}
		for _, id := range want {
			doc, ok := f.docs[id]
			if !ok {
				continue
			}
			resp.IDs = append(resp.IDs, id)
			resp.Documents = append(resp.Documents, doc)
			resp.Metadatas = append(resp.Metadatas, f.metas[id])
		}
		json.NewEncoder(w).Encode(resp)
	})
	return mux
}

func newTestChroma(t *testing.T) *Chroma {
	t.Helper()
	server := httptest.NewServer(newFakeChroma().handler())
	t.Cleanup(server.Close)

	store := NewChroma(ChromaConfig{URL: server.URL, Collection: "documents"})
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return store
}

func TestChromaInitResolvesCollection(t *testing.T) {
	store := newTestChroma(t)
	if store.collectionID != "col-123" {
		t.Fatalf("expected collection id col-123, got %q", store.collectionID)
	}
}

func TestChromaPutGetList(t *testing.T) {
	store := newTestChroma(t)
	ctx := context.Background()

	id, err := store.Put(ctx, "chroma text", map[string]string{"filename": "doc.pdf", "content_type": "application/pdf"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if id != ContentID("chroma text") {
		t.Fatalf("unexpected id %q", id)
	}

	docs, err := store.Get(ctx, []string{id, "unknown"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].Text != "chroma text" {
		t.Fatalf("unexpected text %q", docs[0].Text)
	}
	if docs[0].Metadata["filename"] != "doc.pdf" {
		t.Fatalf("unexpected metadata %v", docs[0].Metadata)
	}

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != id {
		t.Fatalf("unexpected entries %v", entries)
	}
}

func TestChromaPing(t *testing.T) {
	store := newTestChroma(t)
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestChromaInitFailsOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	store := NewChroma(ChromaConfig{URL: server.URL, Collection: "documents"})
	if err := store.Init(context.Background()); err == nil {
		t.Fatalf("expected init error")
	}
}
