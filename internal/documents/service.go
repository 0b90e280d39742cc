package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"docqa-backend/internal/docstore"
	"docqa-backend/internal/extract"
	"docqa-backend/internal/shared/metrics"
	"docqa-backend/internal/shared/storage/object"
	"docqa-backend/internal/shared/telemetry"
)

// ErrInvalidInput marks a malformed upload request.
var ErrInvalidInput = errors.New("invalid input")

// Service handles document ingestion and enumeration.
type Service struct {
	Extractor extract.Extractor
	Store     docstore.Store

	// Archive, when set, keeps the raw upload and its extracted text for
	// later inspection. Archive failures never fail the upload.
	Archive object.ObjectStore
}

// NewService constructs the document service.
func NewService(ex extract.Extractor, store docstore.Store, archive object.ObjectStore) *Service {
	return &Service{Extractor: ex, Store: store, Archive: archive}
}

// Upload extracts text from the file and stores it under its content id.
// Re-uploading a file with identical text overwrites the previous entry.
func (s *Service) Upload(ctx context.Context, fileName, contentType string, content []byte) (docstore.Document, error) {
	if strings.TrimSpace(fileName) == "" {
		return docstore.Document{}, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	if len(content) == 0 {
		return docstore.Document{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}

	started := time.Now()
	text, err := s.Extractor.Extract(ctx, content, contentType, fileName)
	metrics.ObserveExtractDurationMs(float64(time.Since(started).Milliseconds()))
	if err != nil {
		return docstore.Document{}, fmt.Errorf("extract text: %w", err)
	}

	metadata := map[string]string{
		"filename":     fileName,
		"content_type": contentType,
	}
	id, err := s.Store.Put(ctx, text, metadata)
	if err != nil {
		return docstore.Document{}, fmt.Errorf("store document: %w", err)
	}

	s.archive(ctx, id, fileName, contentType, content, text)

	return docstore.Document{ID: id, Text: text, Metadata: metadata}, nil
}

// List enumerates stored documents.
func (s *Service) List(ctx context.Context) ([]docstore.Entry, error) {
	entries, err := s.Store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return entries, nil
}

func (s *Service) archive(ctx context.Context, id, fileName, contentType string, content []byte, text string) {
	if s.Archive == nil {
		return
	}
	if _, err := s.Archive.Save(ctx, id+"/"+fileName, contentType, bytes.NewReader(content)); err != nil {
		telemetry.Warn("document.archive_failed", map[string]any{"document_id": id, "error": err.Error()})
		return
	}
	if _, err := s.Archive.Save(ctx, id+"/extracted.txt", "text/plain", strings.NewReader(text)); err != nil {
		telemetry.Warn("document.archive_failed", map[string]any{"document_id": id, "error": err.Error()})
	}
}
