package answers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docqa-backend/internal/docstore"
	"docqa-backend/internal/llm"
)

var (
	// ErrInvalidInput marks a malformed ask request.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDocumentsNotFound is returned when none of the requested ids
	// resolve to a stored document.
	ErrDocumentsNotFound = errors.New("documents not found")
)

// Service answers questions grounded in stored documents.
type Service struct {
	Store docstore.Store
	LLM   llm.Client
}

// NewService constructs the answering service.
func NewService(store docstore.Store, client llm.Client) *Service {
	return &Service{Store: store, LLM: client}
}

// Ask retrieves the requested documents, composes a prompt, and forwards it
// to the completion model. Unknown ids are dropped; if nothing resolves the
// call fails with ErrDocumentsNotFound.
func (s *Service) Ask(ctx context.Context, question string, documentIDs []string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: question is required", ErrInvalidInput)
	}
	if len(documentIDs) == 0 {
		return "", fmt.Errorf("%w: document_ids is required", ErrInvalidInput)
	}

	docs, err := s.Store.Get(ctx, documentIDs)
	if err != nil {
		return "", fmt.Errorf("retrieve documents: %w", err)
	}
	if len(docs) == 0 {
		return "", ErrDocumentsNotFound
	}

	grounded := make([]Grounded, 0, len(docs))
	for _, doc := range docs {
		grounded = append(grounded, Grounded{
			Filename: doc.Metadata["filename"],
			Text:     doc.Text,
		})
	}
	prompt, err := BuildPrompt(question, grounded)
	if err != nil {
		return "", err
	}

	answer, err := s.LLM.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("completion: %w", err)
	}
	return answer, nil
}

// Probe sends a fixed test message to verify completion-service
// connectivity and credentials.
func (s *Service) Probe(ctx context.Context) error {
	if _, err := s.LLM.Complete(ctx, "Hello, this is a test message."); err != nil {
		return err
	}
	return nil
}
