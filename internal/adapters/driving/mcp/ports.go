package mcp

import (
	"github.com/custodia-labs/tradematch/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search matches requests to suppliers.
	Search driving.SearchService

	// Ingest stores supplier profiles. Optional.
	Ingest driving.IngestService

	// Directory exposes roles. Optional.
	Directory driving.DirectoryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
