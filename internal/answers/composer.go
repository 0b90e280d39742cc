package answers

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyDocumentSet is returned when a prompt is requested for zero
// documents.
var ErrEmptyDocumentSet = errors.New("empty document set")

// Grounded is one retrieved document feeding a prompt.
type Grounded struct {
	Filename string
	Text     string
}

const promptInstruction = "Please provide a comprehensive answer based on all the information present in the documents. " +
	"Consider how the documents relate to each other and provide insights that combine information from multiple documents when relevant. " +
	"If certain information is not available, say so."

// BuildPrompt assembles the completion prompt from the question and the
// retrieved documents, one labeled block per document.
func BuildPrompt(question string, documents []Grounded) (string, error) {
	if len(documents) == 0 {
		return "", ErrEmptyDocumentSet
	}

	blocks := make([]string, 0, len(documents))
	for _, doc := range documents {
		blocks = append(blocks, fmt.Sprintf("Document: %s\n%s\n", doc.Filename, doc.Text))
	}
	combined := strings.Join(blocks, "\n---\n")

	var b strings.Builder
	b.WriteString("You are an expert document analysis assistant. Please analyze the following documents together and answer the question.\n\n")
	b.WriteString("Documents:\n")
	b.WriteString(combined)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\n")
	b.WriteString(promptInstruction)
	return b.String(), nil
}
