package services

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
	"github.com/custodia-labs/tradematch/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyEmbedBatchSize    = "embedding.batch_size"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyLLMRate           = "llm.requests_per_second"
	keyLLMBurst          = "llm.burst"
	keyRerankProvider    = "rerank.provider"
	keyRerankModel       = "rerank.model"
	keyRerankBaseURL     = "rerank.base_url"
	keyRerankAPIKey      = "rerank.api_key"
	keyVectorBackend     = "vector_store.backend"
	keyVectorURL         = "vector_store.url"
	keyVectorCollection  = "vector_store.collection"
	keyVectorAPIKey      = "vector_store.api_key"
	keyVectorCandidates  = "vector_store.num_candidates"
	keyPipelineMaxWords  = "pipeline.max_words"
	keyPipelineMinChars  = "pipeline.min_chars"
	keyPipelineMaxRoles  = "pipeline.max_roles"
	keyPipelineTopK      = "pipeline.top_k"
	keyPipelineExpand    = "pipeline.expansions"
	keyPipelineStrategy  = "pipeline.strategy"
	keyPipelineCache     = "pipeline.cache_size"
	keySearchTimeout     = "search.timeout"
	keyOracleTimeout     = "pipeline.oracle_timeout"
	keyPipelineTaxonomy  = "pipeline.taxonomy"
	defaultOllamaBaseURL = "http://localhost:11434"
)

// settingKind describes how a raw string value is parsed for a key.
type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
	kindDuration
	kindList
	kindEmbedProvider
	kindLLMProvider
	kindRerankProvider
	kindBackend
	kindStrategy
)

var settingKinds = map[string]settingKind{
	keyEmbedProvider:    kindEmbedProvider,
	keyEmbedModel:       kindString,
	keyEmbedBaseURL:     kindString,
	keyEmbedAPIKey:      kindString,
	keyEmbedBatchSize:   kindInt,
	keyLLMProvider:      kindLLMProvider,
	keyLLMModel:         kindString,
	keyLLMBaseURL:       kindString,
	keyLLMAPIKey:        kindString,
	keyLLMRate:          kindFloat,
	keyLLMBurst:         kindInt,
	keyRerankProvider:   kindRerankProvider,
	keyRerankModel:      kindString,
	keyRerankBaseURL:    kindString,
	keyRerankAPIKey:     kindString,
	keyVectorBackend:    kindBackend,
	keyVectorURL:        kindString,
	keyVectorCollection: kindString,
	keyVectorAPIKey:     kindString,
	keyVectorCandidates: kindInt,
	keyPipelineMaxWords: kindInt,
	keyPipelineMinChars: kindInt,
	keyPipelineMaxRoles: kindInt,
	keyPipelineTopK:     kindInt,
	keyPipelineExpand:   kindInt,
	keyPipelineStrategy: kindStrategy,
	keyPipelineCache:    kindInt,
	keySearchTimeout:    kindDuration,
	keyOracleTimeout:    kindDuration,
	keyPipelineTaxonomy: kindList,
}

// SettingKeys returns every key accepted by Set, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:  s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:     s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:   s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:    s.configStore.GetString(keyEmbedAPIKey),
			BatchSize: s.getInt(keyEmbedBatchSize, defaults.Embedding.BatchSize),
		},
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:             s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL),
			APIKey:            s.configStore.GetString(keyLLMAPIKey),
			RequestsPerSecond: s.configStore.GetFloat(keyLLMRate),
			Burst:             s.getInt(keyLLMBurst, defaults.LLM.Burst),
		},
		Rerank: domain.RerankSettings{
			Provider: s.getProvider(keyRerankProvider, defaults.Rerank.Provider),
			Model:    s.getString(keyRerankModel, defaults.Rerank.Model),
			BaseURL:  s.configStore.GetString(keyRerankBaseURL),
			APIKey:   s.configStore.GetString(keyRerankAPIKey),
		},
		VectorStore: domain.VectorStoreSettings{
			Backend:       s.getBackend(defaults.VectorStore.Backend),
			URL:           s.configStore.GetString(keyVectorURL),
			Collection:    s.getString(keyVectorCollection, defaults.VectorStore.Collection),
			APIKey:        s.configStore.GetString(keyVectorAPIKey),
			NumCandidates: s.getInt(keyVectorCandidates, defaults.VectorStore.NumCandidates),
		},
		Pipeline: domain.PipelineSettings{
			MaxWords:      s.getInt(keyPipelineMaxWords, defaults.Pipeline.MaxWords),
			MinChars:      s.getInt(keyPipelineMinChars, defaults.Pipeline.MinChars),
			MaxRoles:      s.getInt(keyPipelineMaxRoles, defaults.Pipeline.MaxRoles),
			TopK:          s.getInt(keyPipelineTopK, defaults.Pipeline.TopK),
			Expansions:    s.getInt(keyPipelineExpand, defaults.Pipeline.Expansions),
			Strategy:      s.getStrategy(defaults.Pipeline.Strategy),
			CacheSize:     s.getInt(keyPipelineCache, defaults.Pipeline.CacheSize),
			SearchTimeout: s.getDuration(keySearchTimeout, defaults.Pipeline.SearchTimeout),
			OracleTimeout: s.getDuration(keyOracleTimeout, defaults.Pipeline.OracleTimeout),
			Taxonomy:      s.getStringSlice(keyPipelineTaxonomy, defaults.Pipeline.Taxonomy),
		},
	}
	if settings.Rerank.Provider == domain.AIProviderCohere && settings.Rerank.Model == "" {
		settings.Rerank.Model = domain.DefaultRerankModel
	}

	return settings, nil
}

// Save persists application settings.
//
//nolint:gocyclo // Flat list of keys
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedBatchSize, settings.Embedding.BatchSize},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMRate, settings.LLM.RequestsPerSecond},
		{keyLLMBurst, settings.LLM.Burst},
		{keyRerankProvider, settings.Rerank.Provider.String()},
		{keyRerankModel, settings.Rerank.Model},
		{keyRerankBaseURL, settings.Rerank.BaseURL},
		{keyVectorBackend, settings.VectorStore.Backend.String()},
		{keyVectorURL, settings.VectorStore.URL},
		{keyVectorCollection, settings.VectorStore.Collection},
		{keyVectorCandidates, settings.VectorStore.NumCandidates},
		{keyPipelineMaxWords, settings.Pipeline.MaxWords},
		{keyPipelineMinChars, settings.Pipeline.MinChars},
		{keyPipelineMaxRoles, settings.Pipeline.MaxRoles},
		{keyPipelineTopK, settings.Pipeline.TopK},
		{keyPipelineExpand, settings.Pipeline.Expansions},
		{keyPipelineStrategy, settings.Pipeline.Strategy.String()},
		{keyPipelineCache, settings.Pipeline.CacheSize},
		{keySearchTimeout, settings.Pipeline.SearchTimeout.String()},
		{keyOracleTimeout, settings.Pipeline.OracleTimeout.String()},
		{keyPipelineTaxonomy, settings.Pipeline.Taxonomy},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// API keys are only written when present so a blank form never erases them.
	secrets := map[string]string{
		keyEmbedAPIKey:  settings.Embedding.APIKey,
		keyLLMAPIKey:    settings.LLM.APIKey,
		keyRerankAPIKey: settings.Rerank.APIKey,
		keyVectorAPIKey: settings.VectorStore.APIKey,
	}
	for key, value := range secrets {
		if value == "" {
			continue
		}
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	return nil
}

// Set parses value for key and stores it. Unknown keys and malformed values are rejected.
func (s *SettingsService) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)

	parsed, err := parseSetting(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

//nolint:gocyclo // One case per kind
func parseSetting(kind settingKind, value string) (any, error) {
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("expected a non-negative integer, got %q", value)
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("expected a non-negative number, got %q", value)
		}
		return f, nil
	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("expected a positive duration such as 30s, got %q", value)
		}
		return d.String(), nil
	case kindList:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = domain.NormaliseRoleName(item); item != "" {
				items = append(items, item)
			}
		}
		return items, nil
	case kindEmbedProvider:
		if !slices.Contains(domain.AllEmbeddingProviders(), domain.AIProvider(value)) {
			return nil, fmt.Errorf("provider %q does not support embeddings", value)
		}
		return value, nil
	case kindLLMProvider:
		if !slices.Contains(domain.AllLLMProviders(), domain.AIProvider(value)) {
			return nil, fmt.Errorf("provider %q does not support text generation", value)
		}
		return value, nil
	case kindRerankProvider:
		if value != "" && domain.AIProvider(value) != domain.AIProviderCohere {
			return nil, fmt.Errorf("provider %q does not support reranking", value)
		}
		return value, nil
	case kindBackend:
		if !domain.VectorBackend(value).IsValid() {
			return nil, fmt.Errorf("unknown vector store backend %q", value)
		}
		return value, nil
	case kindStrategy:
		if !domain.FusionStrategy(value).IsValid() {
			return nil, fmt.Errorf("unknown fusion strategy %q", value)
		}
		return value, nil
	default:
		return value, nil
	}
}

// SetStrategy updates the default fusion strategy.
func (s *SettingsService) SetStrategy(strategy domain.FusionStrategy) error {
	if !strategy.IsValid() {
		return fmt.Errorf("invalid fusion strategy: %s", strategy)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Pipeline.Strategy = strategy
	return s.Save(settings)
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if !slices.Contains(domain.AllLLMProviders(), provider) {
		return fmt.Errorf("provider %s does not support text generation", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetRerankProvider configures the external reranker.
func (s *SettingsService) SetRerankProvider(provider domain.AIProvider, model, apiKey string) error {
	if provider != domain.AIProviderCohere {
		return fmt.Errorf("provider %s does not support reranking", provider)
	}
	if apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Rerank.Provider = provider
	settings.Rerank.Model = modelOrDefault(model, domain.DefaultRerankModel)
	settings.Rerank.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks the current settings can serve ingestion and search.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider is not configured", domain.ErrEmbeddingUnavailable)
	}

	if !settings.VectorStore.Backend.IsValid() {
		return fmt.Errorf("invalid vector store backend: %s", settings.VectorStore.Backend)
	}
	if settings.VectorStore.Backend == domain.VectorBackendQdrant && settings.VectorStore.URL == "" {
		return fmt.Errorf("vector store backend %q requires %s", domain.VectorBackendQdrant, keyVectorURL)
	}

	strategy := settings.Pipeline.Strategy
	if !strategy.IsValid() {
		return fmt.Errorf("invalid fusion strategy: %s", strategy)
	}
	if strategy.RequiresLLM() && !settings.LLM.IsConfigured() {
		return fmt.Errorf("fusion strategy %q requires LLM provider to be configured", strategy.Description())
	}
	if strategy == domain.FusionExternal && !settings.Rerank.IsConfigured() {
		return fmt.Errorf("fusion strategy %q requires reranker to be configured", strategy.Description())
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

func modelOrDefault(model, fallback string) string {
	if model != "" {
		return model
	}
	return fallback
}

// baseURLFor keeps a custom endpoint for local providers and clears it for cloud ones.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return defaultOllamaBaseURL
	}
	return current
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	backend := domain.VectorBackend(s.configStore.GetString(keyVectorBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getStrategy(defaultVal domain.FusionStrategy) domain.FusionStrategy {
	strategy := domain.FusionStrategy(s.configStore.GetString(keyPipelineStrategy))
	if !strategy.IsValid() {
		return defaultVal
	}
	return strategy
}
