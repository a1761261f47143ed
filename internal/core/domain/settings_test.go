package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		provider AIProvider
		expected bool
	}{
		{"ollama", AIProviderOllama, true},
		{"openai", AIProviderOpenAI, true},
		{"anthropic", AIProviderAnthropic, true},
		{"cohere", AIProviderCohere, true},
		{"empty", AIProvider(""), false},
		{"unknown", AIProvider("mistral"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderAnthropic.RequiresAPIKey())
	assert.True(t, AIProviderCohere.RequiresAPIKey())
	assert.True(t, AIProviderOllama.IsLocal())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		expected bool
	}{
		{"ollama without key", EmbeddingSettings{Provider: AIProviderOllama}, true},
		{"openai with key", EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk"}, true},
		{"openai without key", EmbeddingSettings{Provider: AIProviderOpenAI}, false},
		{"anthropic cannot embed", EmbeddingSettings{Provider: AIProviderAnthropic, APIKey: "k"}, false},
		{"empty", EmbeddingSettings{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.True(t, LLMSettings{Provider: AIProviderOllama}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderAnthropic, APIKey: "k"}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderAnthropic}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderCohere, APIKey: "k"}.IsConfigured())
	assert.False(t, LLMSettings{}.IsConfigured())
}

func TestRerankSettings_IsConfigured(t *testing.T) {
	assert.True(t, RerankSettings{Provider: AIProviderCohere, APIKey: "k"}.IsConfigured())
	assert.False(t, RerankSettings{Provider: AIProviderCohere}.IsConfigured())
	assert.False(t, RerankSettings{Provider: AIProviderOpenAI, APIKey: "k"}.IsConfigured())
}

func TestVectorBackend_IsValid(t *testing.T) {
	assert.True(t, VectorBackendSQLite.IsValid())
	assert.True(t, VectorBackendMemory.IsValid())
	assert.True(t, VectorBackendQdrant.IsValid())
	assert.False(t, VectorBackend("mongo").IsValid())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.False(t, s.Embedding.IsConfigured())
	assert.False(t, s.LLM.IsConfigured())
	assert.False(t, s.Rerank.IsConfigured())
	assert.Equal(t, 16, s.Embedding.BatchSize)
	assert.Equal(t, VectorBackendSQLite, s.VectorStore.Backend)
	assert.Equal(t, 50, s.VectorStore.NumCandidates)

	p := s.Pipeline
	assert.Equal(t, 150, p.MaxWords)
	assert.Equal(t, 30, p.MinChars)
	assert.Equal(t, 3, p.MaxRoles)
	assert.Equal(t, 3, p.TopK)
	assert.Equal(t, 2, p.Expansions)
	assert.Equal(t, FusionRRF, p.Strategy)
	assert.Equal(t, 128, p.CacheSize)
	assert.Equal(t, 30*time.Second, p.SearchTimeout)
	assert.Equal(t, 20*time.Second, p.OracleTimeout)
	assert.Contains(t, p.Taxonomy, "plumber")
}

func TestDefaultModels(t *testing.T) {
	for _, p := range AllEmbeddingProviders() {
		assert.NotEmpty(t, DefaultEmbeddingModels()[p], p)
	}
	for _, p := range AllLLMProviders() {
		assert.NotEmpty(t, DefaultLLMModels()[p], p)
	}
}
