package domain

import "time"

// AIProvider identifies an AI service provider for embeddings, LLM or reranking.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderCohere is the Cohere rerank API or a compatible endpoint.
	AIProviderCohere AIProvider = "cohere"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderCohere:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderCohere
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderCohere:
		return "Cohere rerank (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// BatchSize is the number of texts sent per request.
	BatchSize int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if e.Provider != AIProviderOllama && e.Provider != AIProviderOpenAI {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// RequestsPerSecond limits oracle calls. Zero disables limiting.
	RequestsPerSecond float64

	// Burst is the limiter bucket size.
	Burst int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if l.Provider != AIProviderOllama && l.Provider != AIProviderOpenAI && l.Provider != AIProviderAnthropic {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// RerankSettings holds external reranker configuration.
type RerankSettings struct {
	// Provider is the reranker provider. Only cohere is supported.
	Provider AIProvider

	// Model is the rerank model name.
	Model string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// APIKey is the API key.
	APIKey string
}

// IsConfigured returns true if the reranker is set up.
func (r RerankSettings) IsConfigured() bool {
	return r.Provider == AIProviderCohere && r.APIKey != ""
}

// VectorBackend identifies a passage store implementation.
type VectorBackend string

// Available passage store backends.
const (
	// VectorBackendSQLite stores passages in the local SQLite database.
	VectorBackendSQLite VectorBackend = "sqlite"

	// VectorBackendMemory keeps passages in process memory.
	VectorBackendMemory VectorBackend = "memory"

	// VectorBackendQdrant stores passages in a Qdrant collection.
	VectorBackendQdrant VectorBackend = "qdrant"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendSQLite, VectorBackendMemory, VectorBackendQdrant:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// VectorStoreSettings holds passage store configuration.
type VectorStoreSettings struct {
	// Backend selects the passage store.
	Backend VectorBackend

	// URL is the Qdrant endpoint.
	URL string

	// Collection is the Qdrant collection name.
	Collection string

	// APIKey authenticates against Qdrant Cloud.
	APIKey string

	// NumCandidates is the index breadth considered per query.
	NumCandidates int
}

// PipelineSettings holds the tuning knobs of the matching pipeline.
type PipelineSettings struct {
	// MaxWords is the soft word cap per passage.
	MaxWords int

	// MinChars is the exclusive lower bound on passage length.
	MinChars int

	// MaxRoles caps how many roles are detected per document.
	MaxRoles int

	// TopK is the default number of fused hits per search.
	TopK int

	// Expansions is the default number of query phrasings.
	Expansions int

	// Strategy is the default fusion strategy.
	Strategy FusionStrategy

	// CacheSize bounds the query expansion cache.
	CacheSize int

	// SearchTimeout bounds one search request.
	SearchTimeout time.Duration

	// OracleTimeout bounds one oracle call.
	OracleTimeout time.Duration

	// Taxonomy lists the roles the router may choose when the directory has none.
	Taxonomy []string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Rerank holds external reranker settings.
	Rerank RerankSettings

	// VectorStore holds passage store settings.
	VectorStore VectorStoreSettings

	// Pipeline holds matching pipeline settings.
	Pipeline PipelineSettings
}

// DefaultTaxonomy is the fixed role set used before any supplier is ingested.
func DefaultTaxonomy() []string {
	return []string{"software developer", "plumber", "electrician", "barber", "personal trainer"}
}

// DefaultPipelineSettings returns the pipeline defaults.
func DefaultPipelineSettings() PipelineSettings {
	return PipelineSettings{
		MaxWords:      150,
		MinChars:      30,
		MaxRoles:      3,
		TopK:          3,
		Expansions:    2,
		Strategy:      FusionRRF,
		CacheSize:     128,
		SearchTimeout: 30 * time.Second,
		OracleTimeout: 20 * time.Second,
		Taxonomy:      DefaultTaxonomy(),
	}
}

// DefaultAppSettings returns settings with sensible defaults.
// AI providers are left unconfigured by default.
// Users must explicitly configure them via settings wizard.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{BatchSize: 16},
		LLM:       LLMSettings{Burst: 1},
		Rerank:    RerankSettings{},
		VectorStore: VectorStoreSettings{
			Backend:       VectorBackendSQLite,
			Collection:    "passages",
			NumCandidates: 50,
		},
		Pipeline: DefaultPipelineSettings(),
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// DefaultRerankModel is the default Cohere rerank model.
const DefaultRerankModel = "rerank-english-v3.0"
