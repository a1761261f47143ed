package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/tradematch/internal/core/domain"
)

// SearchInput is the input schema for the search_suppliers and summarize_candidates tools.
type SearchInput struct {
	Query    string `json:"query" jsonschema:"the customer request in natural language"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"fused hits kept before scoring (default from settings)"`
	Strategy string `json:"strategy,omitempty" jsonschema:"fusion strategy: rrf, score, oracle or external"`
	Day      string `json:"day,omitempty" jsonschema:"weekday for the availability check, e.g. monday"`
	From     string `json:"from,omitempty" jsonschema:"start of the availability window, HH:MM"`
	To       string `json:"to,omitempty" jsonschema:"end of the availability window, HH:MM"`
}

// SearchOutput is the output schema for the search_suppliers tool.
type SearchOutput struct {
	Candidates []CandidateOutput `json:"candidates"`
	Count      int               `json:"count"`
}

// CandidateOutput represents a single ranked supplier.
type CandidateOutput struct {
	OwnerID       string  `json:"owner_id"`
	Name          string  `json:"name"`
	Role          string  `json:"role"`
	Text          string  `json:"text"`
	Similarity    float64 `json:"similarity"`
	AverageRating float64 `json:"average_rating"`
	Verified      bool    `json:"verified"`
	Available     bool    `json:"available"`
	FinalScore    float64 `json:"final_score"`
}

// SummaryOutput is the output schema for the summarize_candidates tool.
type SummaryOutput struct {
	Candidates    []CandidateOutput `json:"candidates"`
	CandidateName string            `json:"candidate_name"`
	KeyStrengths  []string          `json:"key_strengths"`
	Reasoning     string            `json:"reasoning"`
}

// IngestInput is the input schema for the ingest_profile tool.
// Either Path or Content must be set.
type IngestInput struct {
	OwnerID      string `json:"owner_id" jsonschema:"the supplier the profile belongs to"`
	Path         string `json:"path,omitempty" jsonschema:"PDF, DOCX, Markdown or text profile path inside the server's ingest root"`
	Content      string `json:"content,omitempty" jsonschema:"profile text, used when no path is given"`
	DocumentName string `json:"document_name,omitempty" jsonschema:"name recorded for content uploads"`
	Role         string `json:"role,omitempty" jsonschema:"role to assign instead of detecting one"`
}

// IngestOutput is the output schema for the ingest_profile tool.
type IngestOutput struct {
	OwnerID    string   `json:"owner_id"`
	DocumentID string   `json:"document_id"`
	Roles      []string `json:"roles"`
	Chunks     int      `json:"chunks"`
}

// ListRolesInput is the empty input schema for list_roles.
type ListRolesInput struct{}

// ListRolesOutput is the output schema for list_roles.
type ListRolesOutput struct {
	Roles []RoleOutput `json:"roles"`
}

// RoleOutput is one role.
type RoleOutput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_suppliers",
		Description: "Find suppliers whose profiles match a customer request, ranked by similarity and rating",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "summarize_candidates",
		Description: "Search suppliers and return a structured recommendation of the best one",
	}, s.handleSummarize)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_profile",
		Description: "Store a supplier profile, replacing the supplier's previous passages",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_roles",
		Description: "List every supplier role known to the directory",
	}, s.handleListRoles)
}

// options converts tool input to search options.
func (in SearchInput) options() (domain.SearchOptions, error) {
	opts := domain.SearchOptions{TopK: in.TopK}
	if in.Strategy != "" {
		opts.Strategy = domain.FusionStrategy(in.Strategy)
		if !opts.Strategy.IsValid() {
			return opts, fmt.Errorf("%w: unknown strategy %q", domain.ErrInvalidInput, in.Strategy)
		}
	}
	if in.Day != "" || in.From != "" || in.To != "" {
		w, err := domain.ParseTimeWindow(in.Day, in.From, in.To)
		if err != nil {
			return opts, err
		}
		opts.Window = &w
	}
	return opts, nil
}

func toCandidateOutputs(candidates []domain.RankedCandidate) []CandidateOutput {
	out := make([]CandidateOutput, len(candidates))
	for i := range candidates {
		c := candidates[i]
		out[i] = CandidateOutput{
			OwnerID:       c.OwnerID,
			Name:          c.OwnerName,
			Role:          c.Role,
			Text:          c.Text,
			Similarity:    c.Similarity,
			AverageRating: c.AverageRating,
			Verified:      c.Verified,
			Available:     c.Available,
			FinalScore:    c.FinalScore,
		}
	}
	return out
}

// handleSearch handles the search_suppliers tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts, err := input.options()
	if err != nil {
		return nil, SearchOutput{}, err
	}

	candidates, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	return nil, SearchOutput{
		Candidates: toCandidateOutputs(candidates),
		Count:      len(candidates),
	}, nil
}

// handleSummarize handles the summarize_candidates tool invocation.
// Search failures are reported in the reasoning rather than as a tool error.
func (s *Server) handleSummarize(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SummaryOutput, error) {
	opts, err := input.options()
	if err != nil {
		return nil, SummaryOutput{}, err
	}

	result, _ := s.ports.Search.Match(ctx, input.Query, opts) //nolint:errcheck // the summary carries the failure
	if result == nil {
		return nil, SummaryOutput{}, errors.New("mcp: match returned no result")
	}

	strengths := result.Summary.KeyStrengths
	if strengths == nil {
		strengths = []string{}
	}
	return nil, SummaryOutput{
		Candidates:    toCandidateOutputs(result.Candidates),
		CandidateName: result.Summary.CandidateName,
		KeyStrengths:  strengths,
		Reasoning:     result.Summary.Reasoning,
	}, nil
}

// handleIngest handles the ingest_profile tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if s.ports.Ingest == nil {
		return nil, IngestOutput{}, errIngestUnavailable
	}

	var (
		result *domain.IngestResult
		err    error
	)
	switch {
	case input.Path != "":
		data, name, readErr := readProfile(s.ingestRoot, input.Path)
		if readErr != nil {
			return nil, IngestOutput{}, readErr
		}
		result, err = s.ports.Ingest.Ingest(ctx, domain.IngestRequest{
			OwnerID:      input.OwnerID,
			DocumentName: name,
			Data:         data,
			Role:         input.Role,
		})
	case input.Content != "":
		name := input.DocumentName
		if name == "" {
			name = input.OwnerID + ".txt"
		}
		result, err = s.ports.Ingest.Ingest(ctx, domain.IngestRequest{
			OwnerID:      input.OwnerID,
			DocumentName: name,
			Data:         []byte(input.Content),
			Role:         input.Role,
		})
	default:
		return nil, IngestOutput{}, fmt.Errorf("%w: path or content is required", domain.ErrInvalidInput)
	}
	if err != nil {
		return nil, IngestOutput{}, err
	}

	roles := result.Roles
	if roles == nil {
		roles = []string{}
	}
	return nil, IngestOutput{
		OwnerID:    result.OwnerID,
		DocumentID: result.DocumentID,
		Roles:      roles,
		Chunks:     result.ChunkCount,
	}, nil
}

// handleListRoles handles the list_roles tool invocation.
func (s *Server) handleListRoles(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListRolesInput,
) (*mcp.CallToolResult, ListRolesOutput, error) {
	if s.ports.Directory == nil {
		return nil, ListRolesOutput{}, errDirectoryUnavailable
	}
	roles, err := s.ports.Directory.ListRoles(ctx)
	if err != nil {
		return nil, ListRolesOutput{}, err
	}
	out := ListRolesOutput{Roles: make([]RoleOutput, len(roles))}
	for i, r := range roles {
		out.Roles[i] = RoleOutput{Name: r.Name, Description: r.Description}
	}
	return nil, out, nil
}
