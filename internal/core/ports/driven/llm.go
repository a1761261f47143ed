// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService is the text-completion oracle used for query expansion, decomposition,
// routing, role detection, re-ranking and summaries.
// This is an optional service - when nil, every caller falls back to its default.
//
// Implementations may include:
//   - OpenAI (GPT-4o, GPT-4o-mini)
//   - Anthropic (Claude)
//   - Ollama (local models)
type LLMService interface {
	// Generate produces text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Fingerprint identifies the provider, model and credential without revealing the key.
	// Results cached for one fingerprint are never served to another.
	Fingerprint() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions tunes one oracle call. Zero values leave the provider default.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64

	// StopWords end generation when produced.
	StopWords []string

	// System is the instruction the prompt is answered under, e.g. a role description.
	System string
}
