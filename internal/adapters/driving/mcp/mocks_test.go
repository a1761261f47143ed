package mcp

import (
	"context"

	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	candidates []domain.RankedCandidate
	summary    domain.Summary
	err        error
	lastOpts   domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ string,
	opts domain.SearchOptions,
) ([]domain.RankedCandidate, error) {
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

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result  *domain.IngestResult
	err     error
	lastReq domain.IngestRequest
	path    string
}

func (m *mockIngestService) Ingest(_ context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	m.lastReq = req
	return m.result, m.err
}

func (m *mockIngestService) IngestFile(_ context.Context, ownerID, path, role string) (*domain.IngestResult, error) {
	m.path = path
	m.lastReq = domain.IngestRequest{OwnerID: ownerID, Role: role}
	return m.result, m.err
}

// mockDirectoryService is a mock implementation of driving.DirectoryService.
type mockDirectoryService struct {
	roles []domain.Role
	err   error
}

func (m *mockDirectoryService) ListRoles(_ context.Context) ([]domain.Role, error) {
	return m.roles, m.err
}

func (m *mockDirectoryService) Import(_ context.Context, seeds []driving.OwnerSeed) (*driving.ImportStats, error) {
	return &driving.ImportStats{Owners: len(seeds)}, m.err
}
