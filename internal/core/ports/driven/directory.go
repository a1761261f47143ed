package driven

import (
	"context"

	"github.com/custodia-labs/tradematch/internal/core/domain"
)

// Directory is the relational collaborator holding supplier records.
// The matching core reads owners, roles and availability, and only writes roles.
type Directory interface {
	// GetOwner returns the owner, or domain.ErrNotFound when absent or deleted.
	GetOwner(ctx context.Context, id string) (*domain.Owner, error)

	// ListRoles returns every known role ordered by name.
	ListRoles(ctx context.Context) ([]domain.Role, error)

	// GetRole returns the role, or domain.ErrNotFound.
	GetRole(ctx context.Context, name string) (*domain.Role, error)

	// EnsureRole inserts role if no role with that name exists.
	// Reports whether it was created.
	EnsureRole(ctx context.Context, role domain.Role) (bool, error)

	// LinkOwnerRole associates an owner with a role. Linking twice is a no-op.
	LinkOwnerRole(ctx context.Context, ownerID, role string) error

	// IsAvailable reports whether the owner has an availability slot covering window.
	IsAvailable(ctx context.Context, ownerID string, window domain.TimeWindow) (bool, error)
}

// DirectoryWriter seeds supplier records for tooling and tests.
type DirectoryWriter interface {
	Directory

	// SaveOwner inserts or updates an owner.
	SaveOwner(ctx context.Context, owner domain.Owner) error

	// SetAvailability replaces the owner's availability slots.
	SetAvailability(ctx context.Context, ownerID string, slots []domain.TimeWindow) error

	// OwnerRoles returns the role names linked to an owner.
	OwnerRoles(ctx context.Context, ownerID string) ([]string, error)
}
