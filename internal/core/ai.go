package core

import "context"

// EmbeddingProvider converts one text span into a fixed-dimensionality vector.
// Implementations must not retry; retry policy belongs to the caller.
type EmbeddingProvider interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// ChatTurn is one prior message handed to the generator, oldest first.
type ChatTurn struct {
	Role    string // "user" or "assistant"
	Content string
}

// LLMProvider wraps the hosted chat-completion model.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)

	// GenerateStream invokes the model in streaming mode, calling onDelta for
	// every text fragment as it arrives. The concatenated text is returned
	// once the stream completes; an onDelta error aborts the stream.
	GenerateStream(ctx context.Context, systemPrompt string, history []ChatTurn, query string, onDelta func(delta string) error) (string, error)

	// GenerateQuiz invokes the model in JSON mode and returns the raw payload.
	// Callers own the parse-and-validate boundary.
	GenerateQuiz(ctx context.Context, systemPrompt string, userPrompt string) ([]byte, error)
}
