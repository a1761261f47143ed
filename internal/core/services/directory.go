package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
	"github.com/custodia-labs/tradematch/internal/core/ports/driving"
	"github.com/custodia-labs/tradematch/internal/logger"
)

// Ensure DirectoryService implements the interface.
var _ driving.DirectoryService = (*DirectoryService)(nil)

// DirectoryService exposes supplier directory maintenance to driving adapters.
type DirectoryService struct {
	directory driven.DirectoryWriter
}

// NewDirectoryService creates a directory service.
func NewDirectoryService(directory driven.DirectoryWriter) *DirectoryService {
	return &DirectoryService{directory: directory}
}

// ListRoles returns every known role ordered by name.
func (s *DirectoryService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	if s.directory == nil {
		return nil, fmt.Errorf("%w: no directory configured", domain.ErrStoreUnavailable)
	}
	roles, err := s.directory.ListRoles(ctx)
	if err != nil {
		return nil, wrapStoreErr("list roles", err)
	}
	return roles, nil
}

// Import upserts owners with their roles and availability.
// Every seed is validated before anything is written.
func (s *DirectoryService) Import(ctx context.Context, seeds []driving.OwnerSeed) (*driving.ImportStats, error) {
	if s.directory == nil {
		return nil, fmt.Errorf("%w: no directory configured", domain.ErrStoreUnavailable)
	}

	for i, seed := range seeds {
		if strings.TrimSpace(seed.Owner.ID) == "" {
			return nil, fmt.Errorf("%w: owner %d has no id", domain.ErrInvalidInput, i+1)
		}
		for _, slot := range seed.Availability {
			if err := slot.Validate(); err != nil {
				return nil, fmt.Errorf("owner %s: %w", seed.Owner.ID, err)
			}
		}
	}

	stats := &driving.ImportStats{}
	for _, seed := range seeds {
		if err := s.directory.SaveOwner(ctx, seed.Owner); err != nil {
			return stats, wrapStoreErr("save owner "+seed.Owner.ID, err)
		}
		stats.Owners++

		for _, name := range seed.Roles {
			role := domain.NewRole(name)
			if role.Name == "" {
				continue
			}
			created, err := s.directory.EnsureRole(ctx, role)
			if err != nil {
				return stats, wrapStoreErr("ensure role "+role.Name, err)
			}
			if created {
				stats.RolesCreated++
			}
			if err := s.directory.LinkOwnerRole(ctx, seed.Owner.ID, role.Name); err != nil {
				return stats, wrapStoreErr("link role "+role.Name, err)
			}
		}

		if err := s.directory.SetAvailability(ctx, seed.Owner.ID, seed.Availability); err != nil {
			return stats, wrapStoreErr("set availability for "+seed.Owner.ID, err)
		}
		stats.Slots += len(seed.Availability)
	}

	logger.Info("imported %d owners, %d new roles, %d availability slots", stats.Owners, stats.RolesCreated, stats.Slots)
	return stats, nil
}
