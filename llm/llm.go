package llm

import "context"

// Client abstracts the LLM provider used by the price advisor.
// Implementations must be safe for concurrent use.
type Client interface {
	// Complete sends a prompt and returns the raw response text. The call is
	// bounded by the context deadline; a single attempt, no retries.
	Complete(ctx context.Context, prompt string) (string, error)
	// SourceName returns a short provider label for logs (e.g., "Gemini").
	SourceName() string
}
