package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
)

// --- Mock implementations ---

var errMock = errors.New("mock failure")

// mockLLM implements driven.LLMService with a scripted reply per prompt.
type mockLLM struct {
	mu          sync.Mutex
	respond     func(prompt string) (string, error)
	prompts     []string
	fingerprint string
}

func newMockLLM(respond func(prompt string) (string, error)) *mockLLM {
	return &mockLLM{respond: respond, fingerprint: "mock"}
}

// replyWith returns a mock that always answers reply.
func replyWith(reply string) *mockLLM {
	return newMockLLM(func(string) (string, error) { return reply, nil })
}

// failingLLM returns a mock whose every call fails.
func failingLLM() *mockLLM {
	return newMockLLM(func(string) (string, error) { return "", errMock })
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	return m.respond(prompt)
}

func (m *mockLLM) ModelName() string           { return "mock-llm" }
func (m *mockLLM) Fingerprint() string         { return m.fingerprint }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                { return nil }

func (m *mockLLM) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// mockEmbedding implements driven.EmbeddingService. Texts listed in vectors get
// that vector; everything else gets fallback.
type mockEmbedding struct {
	mu         sync.Mutex
	vectors    map[string][]float32
	fallback   []float32
	embedErr   error
	failBatch  int // 1-based batch number that fails; 0 never fails
	batchCalls int
	batchSizes []int
}

func (m *mockEmbedding) vectorFor(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	if m.fallback != nil {
		return m.fallback
	}
	return []float32{1, 0}
}

func (m *mockEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vectorFor(text), nil
}

func (m *mockEmbedding) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batchCalls++
	m.batchSizes = append(m.batchSizes, len(texts))
	call := m.batchCalls
	m.mu.Unlock()

	if m.embedErr != nil || call == m.failBatch {
		return nil, errMock
	}
	result := make([][]float32, len(texts))
	for i, text := range texts {
		result[i] = m.vectorFor(text)
	}
	return result, nil
}

func (m *mockEmbedding) Dimensions() int              { return 2 }
func (m *mockEmbedding) ModelName() string            { return "mock-embed" }
func (m *mockEmbedding) Ping(_ context.Context) error { return nil }
func (m *mockEmbedding) Close() error                 { return nil }

// mockReranker implements driven.Reranker.
type mockReranker struct {
	results []driven.RerankResult
	err     error
	docs    []string
}

func (m *mockReranker) Rerank(_ context.Context, _ string, docs []string, _ int) ([]driven.RerankResult, error) {
	m.docs = docs
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func (m *mockReranker) ModelName() string { return "mock-rerank" }

// mockPromptStore implements driven.PromptStore.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", errMock
}

func (m *mockPromptStore) Reload() {}
