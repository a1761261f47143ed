// Package app wires adapters and core services into a runnable application.
package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/tradematch/internal/adapters/driven/ai"
	"github.com/custodia-labs/tradematch/internal/adapters/driven/config/file"
	"github.com/custodia-labs/tradematch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/tradematch/internal/adapters/driven/storage/qdrant"
	"github.com/custodia-labs/tradematch/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
	"github.com/custodia-labs/tradematch/internal/core/services"
	"github.com/custodia-labs/tradematch/internal/logger"
	"github.com/custodia-labs/tradematch/internal/normalisers"
	"github.com/custodia-labs/tradematch/internal/postprocessors"
)

// Environment variables that override API keys from the config file.
//
//nolint:gosec // G101: variable names, not credentials.
const (
	EnvOpenAIKey    = "TRADEMATCH_OPENAI_API_KEY"
	EnvAnthropicKey = "TRADEMATCH_ANTHROPIC_API_KEY"
	EnvCohereKey    = "TRADEMATCH_COHERE_API_KEY"
	EnvQdrantKey    = "TRADEMATCH_QDRANT_API_KEY"
)

// Options locate the configuration and data directories.
type Options struct {
	// ConfigDir holds config.toml and prompts/. Empty means ~/.tradematch.
	ConfigDir string

	// DataDir holds the SQLite database. Empty means ~/.tradematch/data.
	DataDir string
}

// App holds the constructed services. Search and Ingest are nil when no
// embedding provider could be initialised; AIError then explains why.
type App struct {
	Settings  *services.SettingsService
	Directory *services.DirectoryService
	Search    *services.SearchService
	Ingest    *services.IngestService

	AppSettings *domain.AppSettings
	AIError     error
	Warnings    []string

	closers []func() error
}

// New builds the application from the settings found in opts.ConfigDir.
//
//nolint:gocyclo // Sequential wiring steps
func New(opts Options) (*App, error) {
	logger.Section("Startup")

	// 1. Settings
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	settingsSvc := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsSvc.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	ApplyEnv(settings, os.Getenv)

	a := &App{Settings: settingsSvc, AppSettings: settings}

	// 2. Relational store
	db, err := sqlite.NewStore(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a.closers = append(a.closers, db.Close)
	directory := db.Directory()
	a.Directory = services.NewDirectoryService(directory)
	logger.Debug("database: %s", db.Path())

	// 3. Passage store
	passages, err := NewPassageStore(settings.VectorStore, db)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, passages.Close)
	logger.Info("passage store: %s", settings.VectorStore.Backend)

	// 4. AI services
	aiResult, err := ai.Initialise(settings)
	if err != nil {
		a.AIError = err
		logger.Warn("search and ingestion disabled: %v", err)
		return a, nil
	}
	a.closers = append(a.closers, func() error { aiResult.Close(); return nil })
	a.Warnings = aiResult.Warnings
	if aiResult.EmbeddingService == nil {
		a.AIError = fmt.Errorf("%w: no embedding provider configured. Run 'tradematch settings wizard' to fix",
			domain.ErrEmbeddingUnavailable)
		logger.Warn("search and ingestion disabled: %v", a.AIError)
		return a, nil
	}

	// 5. Prompts
	promptDir := ""
	if opts.ConfigDir != "" {
		promptDir = filepath.Join(opts.ConfigDir, "prompts")
	}
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		logger.Warn("using built-in prompts: %v", err)
	}

	// 6. Pipeline
	pipeline := settings.Pipeline
	llm := aiResult.LLMService

	embedder := services.NewBatchEmbedder(aiResult.EmbeddingService, settings.Embedding.BatchSize)
	transformer := services.NewQueryTransformer(llm, pipeline.CacheSize)
	router := services.NewRouter(llm, directory, pipeline.Taxonomy)
	fuser := services.NewFuser(llm, aiResult.Reranker)
	summarizer := services.NewSummarizer(llm)
	roles := services.NewRoleDetector(llm, directory, pipeline.MaxRoles)

	type oracleUser interface {
		SetPromptStore(driven.PromptStore)
		SetOracleTimeout(d time.Duration)
	}
	for _, svc := range []oracleUser{transformer, router, fuser, summarizer, roles} {
		if prompts != nil {
			svc.SetPromptStore(prompts)
		}
		svc.SetOracleTimeout(pipeline.OracleTimeout)
	}

	a.Ingest = services.NewIngestService(
		normalisers.NewDefaultRegistry(),
		postprocessors.NewChunker(pipeline),
		embedder,
		passages,
		roles,
	)

	a.Search = services.NewSearchService(
		passages,
		embedder,
		transformer,
		router,
		fuser,
		services.NewCandidateScorer(directory),
		summarizer,
	)
	a.Search.SetPipelineSettings(pipeline)
	a.Search.SetNumCandidates(settings.VectorStore.NumCandidates)

	logger.Event("Startup", map[string]any{
		"embedding": settings.Embedding.Provider,
		"llm":       llmName(llm),
		"strategy":  pipeline.Strategy,
	})
	return a, nil
}

// NewPassageStore opens the configured passage store. The SQLite backend
// shares db with the directory.
func NewPassageStore(cfg domain.VectorStoreSettings, db *sqlite.Store) (driven.PassageStore, error) {
	switch cfg.Backend {
	case domain.VectorBackendSQLite, "":
		if db == nil {
			return nil, errors.New("sqlite passage store requires a database")
		}
		return db.PassageStore(), nil
	case domain.VectorBackendMemory:
		return memory.NewPassageStore(), nil
	case domain.VectorBackendQdrant:
		return qdrant.New(qdrant.Config{
			URL:        cfg.URL,
			Collection: cfg.Collection,
			APIKey:     cfg.APIKey,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown vector store backend %q", domain.ErrInvalidInput, cfg.Backend)
	}
}

// ApplyEnv fills API keys from the environment. A set variable wins over the
// config file for every section whose provider uses it.
func ApplyEnv(settings *domain.AppSettings, getenv func(string) string) {
	keyFor := func(p domain.AIProvider) string {
		switch p {
		case domain.AIProviderOpenAI:
			return getenv(EnvOpenAIKey)
		case domain.AIProviderAnthropic:
			return getenv(EnvAnthropicKey)
		case domain.AIProviderCohere:
			return getenv(EnvCohereKey)
		default:
			return ""
		}
	}

	if k := keyFor(settings.Embedding.Provider); k != "" {
		settings.Embedding.APIKey = k
	}
	if k := keyFor(settings.LLM.Provider); k != "" {
		settings.LLM.APIKey = k
	}
	if k := keyFor(settings.Rerank.Provider); k != "" {
		settings.Rerank.APIKey = k
	}
	if k := getenv(EnvQdrantKey); k != "" {
		settings.VectorStore.APIKey = k
	}
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func llmName(llm driven.LLMService) string {
	if llm == nil {
		return "none"
	}
	return llm.ModelName()
}
