package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
)

// Ensure Directory implements the interface.
var _ driven.DirectoryWriter = (*Directory)(nil)

// Directory is an in-memory supplier directory.
type Directory struct {
	mu           sync.RWMutex
	owners       map[string]domain.Owner
	roles        map[string]domain.Role
	ownerRoles   map[string]map[string]struct{}
	availability map[string][]domain.TimeWindow
}

// NewDirectory creates an empty in-memory directory.
func NewDirectory() *Directory {
	return &Directory{
		owners:       make(map[string]domain.Owner),
		roles:        make(map[string]domain.Role),
		ownerRoles:   make(map[string]map[string]struct{}),
		availability: make(map[string][]domain.TimeWindow),
	}
}

// GetOwner returns the owner or domain.ErrNotFound.
func (d *Directory) GetOwner(_ context.Context, id string) (*domain.Owner, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	owner, ok := d.owners[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &owner, nil
}

// SaveOwner inserts or updates an owner.
func (d *Directory) SaveOwner(_ context.Context, owner domain.Owner) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.owners[owner.ID] = owner
	return nil
}

// DeleteOwner removes an owner and its links.
func (d *Directory) DeleteOwner(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.owners, id)
	delete(d.ownerRoles, id)
	delete(d.availability, id)
	return nil
}

// ListRoles returns every role ordered by name.
func (d *Directory) ListRoles(_ context.Context) ([]domain.Role, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	roles := make([]domain.Role, 0, len(d.roles))
	for _, r := range d.roles {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return roles, nil
}

// GetRole returns the role or domain.ErrNotFound.
func (d *Directory) GetRole(_ context.Context, name string) (*domain.Role, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	role, ok := d.roles[domain.NormaliseRoleName(name)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &role, nil
}

// EnsureRole inserts role unless one with the same name exists.
func (d *Directory) EnsureRole(_ context.Context, role domain.Role) (bool, error) {
	role.Name = domain.NormaliseRoleName(role.Name)
	if role.Name == "" {
		return false, domain.ErrInvalidInput
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.roles[role.Name]; ok {
		return false, nil
	}
	d.roles[role.Name] = role
	return true, nil
}

// LinkOwnerRole associates an owner with a role.
func (d *Directory) LinkOwnerRole(_ context.Context, ownerID, role string) error {
	role = domain.NormaliseRoleName(role)
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.roles[role]; !ok {
		return domain.ErrNotFound
	}
	links, ok := d.ownerRoles[ownerID]
	if !ok {
		links = make(map[string]struct{})
		d.ownerRoles[ownerID] = links
	}
	links[role] = struct{}{}
	return nil
}

// OwnerRoles returns the sorted role names linked to an owner.
func (d *Directory) OwnerRoles(_ context.Context, ownerID string) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	roles := make([]string, 0, len(d.ownerRoles[ownerID]))
	for r := range d.ownerRoles[ownerID] {
		roles = append(roles, r)
	}
	sort.Strings(roles)
	return roles, nil
}

// SetAvailability replaces the owner's availability slots.
func (d *Directory) SetAvailability(_ context.Context, ownerID string, slots []domain.TimeWindow) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.availability[ownerID] = append([]domain.TimeWindow(nil), slots...)
	return nil
}

// IsAvailable reports whether any slot covers window.
func (d *Directory) IsAvailable(_ context.Context, ownerID string, window domain.TimeWindow) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, slot := range d.availability[ownerID] {
		if slot.Covers(window) {
			return true, nil
		}
	}
	return false, nil
}
