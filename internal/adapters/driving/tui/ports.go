// Package tui provides an interactive terminal user interface for tradematch.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/tradematch/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI talks to.
type Ports struct {
	// Search matches requests to suppliers.
	Search driving.SearchService

	// Settings manages application settings. Optional.
	Settings driving.SettingsService

	// Directory lists roles. Optional.
	Directory driving.DirectoryService
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
