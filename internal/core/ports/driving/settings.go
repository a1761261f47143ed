package driving

import "github.com/custodia-labs/tradematch/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set stores a single dotted key such as "pipeline.top_k".
	// Unknown keys and malformed values are rejected with domain.ErrInvalidInput.
	Set(key, value string) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetRerankProvider configures the external reranker.
	SetRerankProvider(provider domain.AIProvider, model, apiKey string) error

	// SetStrategy sets the default fusion strategy.
	SetStrategy(strategy domain.FusionStrategy) error

	// Validate checks if current settings can run ingestion and search.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
