package ai

import "context"

// Client is the transport contract implemented by every AI provider.
// HealthCheck and ListModels never fail loudly: transport errors fold to
// false and an empty list. Generate and Chat return wrapped errors which
// callers treat as "no usable answer"; a failed call must never abort the
// feed batch.
type Client interface {
	HealthCheck(ctx context.Context) bool
	ListModels(ctx context.Context) []string
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	Chat(ctx context.Context, model string, messages []Message, temperature float32) (string, error)
}

// GenerateRequest is a single-turn completion request. Images, when present,
// carry base64-encoded payloads; each client translates them into its own
// wire format (a dedicated images field for Ollama, inline data URLs for
// OpenAI-compatible APIs, typed source blocks for Claude and Gemini).
type GenerateRequest struct {
	Model       string
	Prompt      string
	System      string
	Temperature float32
	Images      []string
}

// Message is one turn of a chat conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
