package docstore

import (
	"context"
	"testing"
)

func TestMemoryPutThenGet(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	id, err := store.Put(ctx, "Revenue: $500,000", map[string]string{"filename": "report.pdf", "content_type": "application/pdf"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	docs, err := store.Get(ctx, []string{id})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].Text != "Revenue: $500,000" {
		t.Fatalf("unexpected text %q", docs[0].Text)
	}
	if docs[0].Metadata["filename"] != "report.pdf" {
		t.Fatalf("unexpected filename %q", docs[0].Metadata["filename"])
	}
}

func TestMemoryPutIsDeterministicAndOverwrites(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	first, err := store.Put(ctx, "same text", map[string]string{"filename": "a.png"})
	if err != nil {
		t.Fatalf("first put: %v", err)
	}
	second, err := store.Put(ctx, "same text", map[string]string{"filename": "b.png"})
	if err != nil {
		t.Fatalf("second put: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical ids, got %q and %q", first, second)
	}

	docs, err := store.Get(ctx, []string{first})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document after overwrite, got %d", len(docs))
	}
	if docs[0].Metadata["filename"] != "b.png" {
		t.Fatalf("expected overwritten metadata, got %q", docs[0].Metadata["filename"])
	}
}

func TestMemoryGetOmitsUnknownIDs(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	id, err := store.Put(ctx, "known", map[string]string{"filename": "known.png"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	docs, err := store.Get(ctx, []string{"missing-1", id, "missing-2"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected only the known document, got %d", len(docs))
	}
	if docs[0].ID != id {
		t.Fatalf("expected id %q, got %q", id, docs[0].ID)
	}

	docs, err = store.Get(ctx, []string{"missing-only"})
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected no documents, got %d", len(docs))
	}
}

func TestMemoryListKeepsInsertionOrder(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	firstID, _ := store.Put(ctx, "first", map[string]string{"filename": "first.png"})
	secondID, _ := store.Put(ctx, "second", map[string]string{"filename": "second.png"})

	for i := 0; i < 3; i++ {
		entries, err := store.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].ID != firstID || entries[1].ID != secondID {
			t.Fatalf("list order changed between calls: %q, %q", entries[0].ID, entries[1].ID)
		}
	}
}

func TestContentIDIsPureFunctionOfText(t *testing.T) {
	if ContentID("abc") != ContentID("abc") {
		t.Fatalf("same text must yield same id")
	}
	if ContentID("abc") == ContentID("abd") {
		t.Fatalf("different text should yield different ids")
	}
	if len(ContentID("")) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(ContentID("")))
	}
}
