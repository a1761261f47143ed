package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPassageID(t *testing.T) {
	assert.Equal(t, "sup-1_chunk_0", PassageID("sup-1", 0))
	assert.Equal(t, "sup-1_chunk_12", PassageID("sup-1", 12))
}

func TestNewRole_DefaultDescription(t *testing.T) {
	r := NewRole("  Plumber ")

	assert.Equal(t, "plumber", r.Name)
	assert.Equal(t, "You are a plumber. You handle tasks related to plumber.", r.Description)
}

func TestRoleFilter(t *testing.T) {
	tests := []struct {
		name    string
		filter  RoleFilter
		role    string
		matches bool
		isAll   bool
	}{
		{"zero value matches all", RoleFilter{}, "barber", true, true},
		{"no names matches all", NewRoleFilter(), "barber", true, true},
		{"all sentinel", NewRoleFilter("all"), "plumber", true, true},
		{"all inside set wins", NewRoleFilter("plumber", "ALL"), "barber", true, true},
		{"single role match", NewRoleFilter("plumber"), "plumber", true, false},
		{"single role case-insensitive", NewRoleFilter("Plumber"), "PLUMBER", true, false},
		{"single role miss", NewRoleFilter("plumber"), "electrician", false, false},
		{"set membership", NewRoleFilter("plumber", "electrician"), "electrician", true, false},
		{"set miss", NewRoleFilter("plumber", "electrician"), "barber", false, false},
		{"blank names ignored", NewRoleFilter("", "  "), "barber", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.matches, tt.filter.Matches(tt.role))
			assert.Equal(t, tt.isAll, tt.filter.IsAll())
		})
	}
}

func TestRoleFilter_String(t *testing.T) {
	assert.Equal(t, "all", AllRoles().String())
	assert.Equal(t, "electrician,plumber", NewRoleFilter("plumber", "electrician").String())
	assert.Nil(t, AllRoles().Roles())
}
