package driven

import "context"

// CompletionService provides text-completion calls to an external AI
// collaborator. It is consumed for diff summarisation, document
// classification, content structuring, topic extraction and confidence
// assessment. The service is optional: when nil, every call site degrades
// to its deterministic fallback.
//
// All call sites must treat malformed or non-JSON output as a recoverable
// condition; parse failures are never retried, they fall back immediately.
type CompletionService interface {
	// Complete runs a chat completion over the given messages.
	Complete(ctx context.Context, messages []ChatMessage, opts CompleteOptions) (Completion, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// CompleteOptions configures a completion call.
type CompleteOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}

// Completion is the result of a completion call.
type Completion struct {
	// Text is the generated text.
	Text string

	// TokensUsed is the total token usage reported by the provider.
	TokensUsed int
}
