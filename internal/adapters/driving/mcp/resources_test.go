package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tradematch/internal/core/domain"
)

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}}
}

func TestExtractRoleName(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{"simple role", "tradematch://roles/plumber", "plumber"},
		{"encoded space", "tradematch://roles/Gas%20Fitter", "gas fitter"},
		{"invalid prefix", "other://roles/plumber", ""},
		{"nested path", "tradematch://roles/a/b", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractRoleName(tt.uri))
		})
	}
}

func TestServer_handleRolesResource(t *testing.T) {
	ctx := context.Background()

	t.Run("lists roles as JSON", func(t *testing.T) {
		dir := &mockDirectoryService{roles: []domain.Role{domain.NewRole("barber"), domain.NewRole("plumber")}}
		server := newTestServer(t, &Ports{Directory: dir})

		result, err := server.handleRolesResource(ctx, readRequest("tradematch://roles"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)

		var roles []RoleOutput
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &roles))
		require.Len(t, roles, 2)
		assert.Equal(t, "barber", roles[0].Name)
	})

	t.Run("no directory yields empty list", func(t *testing.T) {
		server := newTestServer(t, &Ports{})

		result, err := server.handleRolesResource(ctx, readRequest("tradematch://roles"))
		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("directory error", func(t *testing.T) {
		server := newTestServer(t, &Ports{Directory: &mockDirectoryService{err: errors.New("db locked")}})

		_, err := server.handleRolesResource(ctx, readRequest("tradematch://roles"))
		assert.Error(t, err)
	})
}

func TestServer_handleRoleResource(t *testing.T) {
	ctx := context.Background()
	dir := &mockDirectoryService{roles: []domain.Role{domain.NewRole("gas fitter")}}
	server := newTestServer(t, &Ports{Directory: dir})

	result, err := server.handleRoleResource(ctx, readRequest("tradematch://roles/gas%20fitter"))
	require.NoError(t, err)
	assert.Equal(t, domain.NewRole("gas fitter").Description, result.Contents[0].Text)

	_, err = server.handleRoleResource(ctx, readRequest("tradematch://roles/barber"))
	assert.Error(t, err)

	_, err = newTestServer(t, &Ports{}).handleRoleResource(ctx, readRequest("tradematch://roles/barber"))
	assert.Error(t, err)
}
