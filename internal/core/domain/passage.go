package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Role sentinels.
const (
	// RoleAll means "do not filter by role".
	RoleAll = "all"

	// RoleUnknown labels passages whose owner has no detected role.
	RoleUnknown = "unknown"
)

// Passage is a contiguous span of a supplier document together with its embedding.
// Passages are immutable once stored and replaced as a set per owner.
type Passage struct {
	// ID is unique within the store: "{ownerID}_chunk_{position}".
	ID string

	// DocumentID identifies the ingestion that produced this passage.
	DocumentID string

	// OwnerID is the supplier the passage belongs to.
	OwnerID string

	// Role is the profession label, RoleUnknown until classified.
	Role string

	// Text is the raw passage text.
	Text string

	// Embedding is the vector representation of Text.
	Embedding []float32

	// EmbeddingModel identifies the model that produced Embedding.
	EmbeddingModel string

	// SourceDocument is the name of the uploaded file.
	SourceDocument string

	// Position is the ordinal position within the document.
	Position int
}

// PassageID returns the stable identifier for the passage at position in an owner's document.
// Re-ingesting the same document yields the same ID set.
func PassageID(ownerID string, position int) string {
	return fmt.Sprintf("%s_chunk_%d", ownerID, position)
}

// Role is a named profession category.
type Role struct {
	// Name is the lowercase label, e.g. "plumber".
	Name string

	// Description is a human-readable description used when routing.
	Description string
}

// NewRole returns a role with the default description for name.
func NewRole(name string) Role {
	name = NormaliseRoleName(name)
	return Role{
		Name:        name,
		Description: fmt.Sprintf("You are a %s. You handle tasks related to %s.", name, name),
	}
}

// NormaliseRoleName lowercases and trims a role label.
func NormaliseRoleName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// RoleFilter restricts a vector search to one role, a set of roles, or none.
// The zero value matches every role.
type RoleFilter struct {
	roles map[string]struct{}
}

// AllRoles returns a filter that matches every passage.
func AllRoles() RoleFilter {
	return RoleFilter{}
}

// NewRoleFilter builds a filter from role names.
// An empty list or any name equal to RoleAll yields an unfiltered search.
func NewRoleFilter(names ...string) RoleFilter {
	roles := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = NormaliseRoleName(n)
		if n == "" {
			continue
		}
		if n == RoleAll {
			return AllRoles()
		}
		roles[n] = struct{}{}
	}
	if len(roles) == 0 {
		return AllRoles()
	}
	return RoleFilter{roles: roles}
}

// IsAll reports whether the filter is unrestricted.
func (f RoleFilter) IsAll() bool {
	return len(f.roles) == 0
}

// Matches reports whether a passage with the given role passes the filter.
func (f RoleFilter) Matches(role string) bool {
	if f.IsAll() {
		return true
	}
	_, ok := f.roles[NormaliseRoleName(role)]
	return ok
}

// Roles returns the filtered role names sorted, or nil for IsAll.
func (f RoleFilter) Roles() []string {
	if f.IsAll() {
		return nil
	}
	out := make([]string, 0, len(f.roles))
	for r := range f.roles {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// String returns "all" or the comma-joined role names.
func (f RoleFilter) String() string {
	if f.IsAll() {
		return RoleAll
	}
	return strings.Join(f.Roles(), ",")
}
