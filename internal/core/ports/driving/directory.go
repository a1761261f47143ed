package driving

import (
	"context"

	"github.com/custodia-labs/tradematch/internal/core/domain"
)

// DirectoryService exposes supplier records to operators.
type DirectoryService interface {
	// ListRoles returns every known role.
	ListRoles(ctx context.Context) ([]domain.Role, error)

	// Import seeds owners, their roles and availability.
	Import(ctx context.Context, seeds []OwnerSeed) (*ImportStats, error)
}

// OwnerSeed is one supplier record to import.
type OwnerSeed struct {
	// Owner is the relational record.
	Owner domain.Owner

	// Roles are linked to the owner and created if missing.
	Roles []string

	// Availability replaces the owner's slots when non-nil.
	Availability []domain.TimeWindow
}

// ImportStats reports what an import changed.
type ImportStats struct {
	// Owners is the number of owners saved.
	Owners int

	// RolesCreated is the number of roles that did not exist before.
	RolesCreated int

	// Slots is the number of availability slots written.
	Slots int
}
