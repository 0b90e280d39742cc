package llm

import "context"

// Client sends a prompt to a completion model and returns the text answer.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
