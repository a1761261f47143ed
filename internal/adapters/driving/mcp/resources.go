package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/tradematch/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for tradematch resources.
	uriScheme = "tradematch://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing roles.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "roles",
		Name:        "roles",
		Description: "Every supplier role known to the directory",
		MIMEType:    "application/json",
	}, s.handleRolesResource)

	// Template for a single role description.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "roles/{role}",
		Name:        "role",
		Description: "Description of a specific role",
		MIMEType:    "text/plain",
	}, s.handleRoleResource)
}

// handleRolesResource returns the role catalogue as JSON.
func (s *Server) handleRolesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Directory == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	roles, err := s.ports.Directory.ListRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing roles: %w", err)
	}

	infos := make([]RoleOutput, len(roles))
	for i, r := range roles {
		infos[i] = RoleOutput{Name: r.Name, Description: r.Description}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling roles: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleRoleResource returns the description of one role.
func (s *Server) handleRoleResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Directory == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract role from URI: tradematch://roles/{role}
	name := extractRoleName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	roles, err := s.ports.Directory.ListRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing roles: %w", err)
	}
	for _, r := range roles {
		if r.Name == name {
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{{
					URI:      req.Params.URI,
					MIMEType: "text/plain",
					Text:     r.Description,
				}},
			}, nil
		}
	}
	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

// extractRoleName extracts the normalised role from a URI like tradematch://roles/{role}.
// Role names with spaces arrive percent-encoded.
func extractRoleName(uri string) string {
	const prefix = uriScheme + "roles/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	name, err := url.PathUnescape(strings.TrimPrefix(uri, prefix))
	if err != nil || strings.Contains(name, "/") {
		return ""
	}
	return domain.NormaliseRoleName(name)
}
