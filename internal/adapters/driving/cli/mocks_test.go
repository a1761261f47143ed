package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/ports/driving"
)

type mockSearchService struct {
	candidates []domain.RankedCandidate
	summary    domain.Summary
	err        error
	lastQuery  string
	lastOpts   domain.SearchOptions
}

func (m *mockSearchService) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.RankedCandidate, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.candidates, m.err
}

func (m *mockSearchService) Summarize(_ context.Context, _ string, _ []domain.RankedCandidate) domain.Summary {
	return m.summary
}

func (m *mockSearchService) Match(ctx context.Context, query string, opts domain.SearchOptions) (*domain.MatchResult, error) {
	candidates, err := m.Search(ctx, query, opts)
	if err != nil {
		return &domain.MatchResult{
			Candidates: []domain.RankedCandidate{},
			Summary:    domain.Summary{Reasoning: "Search failed: " + err.Error()},
		}, err
	}
	return &domain.MatchResult{Candidates: candidates, Summary: m.summary}, nil
}

type mockIngestService struct {
	result *domain.IngestResult
	err    error
	calls  []string
	role   string
}

func (m *mockIngestService) Ingest(_ context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	m.calls = append(m.calls, req.DocumentName)
	return m.result, m.err
}

func (m *mockIngestService) IngestFile(_ context.Context, ownerID, path, role string) (*domain.IngestResult, error) {
	m.calls = append(m.calls, ownerID+":"+path)
	m.role = role
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.IngestResult{OwnerID: ownerID, DocumentID: path, ChunkCount: 1}, nil
}

type mockDirectoryService struct {
	roles []domain.Role
	seeds []driving.OwnerSeed
	err   error
}

func (m *mockDirectoryService) ListRoles(_ context.Context) ([]domain.Role, error) {
	return m.roles, m.err
}

func (m *mockDirectoryService) Import(_ context.Context, seeds []driving.OwnerSeed) (*driving.ImportStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.seeds = seeds
	stats := &driving.ImportStats{Owners: len(seeds)}
	for _, s := range seeds {
		stats.RolesCreated += len(s.Roles)
		stats.Slots += len(s.Availability)
	}
	return stats, nil
}

type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	pingErr     error
	setErr      error
	sets        map[string]string
	strategy    domain.FusionStrategy
	rerankKey   string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings(), sets: map[string]string{}}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.sets[key] = value
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding.Provider, m.settings.Embedding.Model, m.settings.Embedding.APIKey = p, model, apiKey
	return nil
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.LLM.Provider, m.settings.LLM.Model, m.settings.LLM.APIKey = p, model, apiKey
	return nil
}

func (m *mockSettingsService) SetRerankProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.Rerank.Provider, m.settings.Rerank.Model, m.settings.Rerank.APIKey = p, model, apiKey
	m.rerankKey = apiKey
	return nil
}

func (m *mockSettingsService) SetStrategy(s domain.FusionStrategy) error {
	m.strategy = s
	m.settings.Pipeline.Strategy = s
	return nil
}

func (m *mockSettingsService) Validate() error                { return m.validateErr }
func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettingsService) ValidateEmbeddingConfig() error  { return m.pingErr }
func (m *mockSettingsService) ValidateLLMConfig() error        { return m.pingErr }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	search    *mockSearchService
	ingest    *mockIngestService
	directory *mockDirectoryService
	settings  *mockSettingsService
}

// setupTestServices installs fresh mocks and restores the previous state on cleanup.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	ts := &testServices{
		search:    &mockSearchService{},
		ingest:    &mockIngestService{},
		directory: &mockDirectoryService{},
		settings:  newMockSettingsService(),
	}
	SetServices(Services{
		Settings:  ts.settings,
		Search:    ts.search,
		Ingest:    ts.ingest,
		Directory: ts.directory,
	})
	t.Cleanup(resetCLIState)
	return ts
}

// resetCLIState clears services and flag values shared between tests.
func resetCLIState() {
	SetServices(Services{})
	globalOpts = GlobalOptions{}
	bootstrap = nil
	cleanup = nil
	searchOpts = searchFlags{}
	summarizeOpts = searchFlags{}
	ingestRole = ""
	rolesJSON = false
	watchSkipInitial = false
	_ = mcpServeCmd.Flags().Set("ingest-root", "")
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	err := rootCmd.Execute()
	return buf.String(), err
}
