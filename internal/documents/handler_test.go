package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"docqa-backend/internal/docstore"
)

type stubExtractor struct {
	text string
	err  error
}

func (s stubExtractor) Extract(ctx context.Context, content []byte, contentType, fileName string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func newTestRouter(t *testing.T, ex stubExtractor, store docstore.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(NewService(ex, store, nil))
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func multipartUpload(t *testing.T, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &body, w.FormDataContentType()
}

func TestUploadReturnsIDAndText(t *testing.T) {
	store := docstore.NewMemory()
	r := newTestRouter(t, stubExtractor{text: "Revenue: $500,000"}, store)

	body, contentType := multipartUpload(t, "report.png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Text != "Revenue: $500,000" {
		t.Fatalf("unexpected text %q", resp.Text)
	}
	if resp.ID != docstore.ContentID("Revenue: $500,000") {
		t.Fatalf("unexpected id %q", resp.ID)
	}

	docs, err := store.Get(context.Background(), []string{resp.ID})
	if err != nil || len(docs) != 1 {
		t.Fatalf("stored document missing: %v %v", docs, err)
	}
	if docs[0].Metadata["filename"] != "report.png" {
		t.Fatalf("unexpected metadata %v", docs[0].Metadata)
	}
}

func TestUploadMissingFile(t *testing.T) {
	r := newTestRouter(t, stubExtractor{text: "x"}, docstore.NewMemory())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUploadExtractionFailure(t *testing.T) {
	r := newTestRouter(t, stubExtractor{err: errors.New("ocr crashed")}, docstore.NewMemory())

	body, contentType := multipartUpload(t, "report.png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}
}

func TestListDocuments(t *testing.T) {
	store := docstore.NewMemory()
	for i := 0; i < 2; i++ {
		if _, err := store.Put(context.Background(), fmt.Sprintf("text %d", i), map[string]string{"filename": fmt.Sprintf("doc%d.pdf", i)}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	r := newTestRouter(t, stubExtractor{}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Documents []docstore.Entry `json:"documents"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Documents) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(resp.Documents))
	}
	if resp.Documents[0].Metadata["filename"] != "doc0.pdf" {
		t.Fatalf("unexpected order %v", resp.Documents)
	}
}

func TestListEmptyIsArray(t *testing.T) {
	r := newTestRouter(t, stubExtractor{}, docstore.NewMemory())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Body.String(); got != `{"documents":[]}` {
		t.Fatalf("unexpected body %q", got)
	}
}
