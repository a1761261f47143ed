package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
	"github.com/custodia-labs/tradematch/internal/logger"
)

const routeTokenLimit = 16

// Router classifies a request into exactly one known role or domain.RoleAll.
// It fails open: any doubt yields RoleAll so no supplier is wrongly filtered out.
type Router struct {
	oracle
	directory driven.Directory
	taxonomy  []string
}

// NewRouter creates a router. llm and directory may be nil.
// taxonomy is used when the directory is nil, fails, or holds no roles.
func NewRouter(llm driven.LLMService, directory driven.Directory, taxonomy []string) *Router {
	return &Router{
		oracle:    newOracle(llm),
		directory: directory,
		taxonomy:  taxonomy,
	}
}

// Route returns the chosen role name or domain.RoleAll.
func (r *Router) Route(ctx context.Context, query string) string {
	if !r.available() || strings.TrimSpace(query) == "" {
		return domain.RoleAll
	}

	roles := r.knownRoles(ctx)
	if len(roles) == 0 {
		return domain.RoleAll
	}

	prompt := fmt.Sprintf(r.template(driven.PromptRoute), strings.Join(roles, ", "), query)
	out, err := r.complete(ctx, prompt, driven.GenerateOptions{MaxTokens: routeTokenLimit})
	if err != nil {
		logger.Warn("routing failed, searching all roles: %v", err)
		return domain.RoleAll
	}

	label := normaliseLabel(out)
	for _, role := range roles {
		if label == role {
			logger.Event("Routing", map[string]any{"query": query, "role": role})
			return role
		}
	}

	logger.Event("Routing", map[string]any{"query": query, "role": domain.RoleAll, "unrecognised": label})
	return domain.RoleAll
}

// knownRoles returns the sorted role names the router may choose from.
func (r *Router) knownRoles(ctx context.Context) []string {
	seen := make(map[string]struct{})
	var names []string
	add := func(name string) {
		name = domain.NormaliseRoleName(name)
		if name == "" || name == domain.RoleAll || name == domain.RoleUnknown {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	if r.directory != nil {
		roles, err := r.directory.ListRoles(ctx)
		if err != nil {
			logger.Warn("list roles for routing: %v", err)
		}
		for _, role := range roles {
			add(role.Name)
		}
	}
	if len(names) == 0 {
		for _, name := range r.taxonomy {
			add(name)
		}
	}

	sort.Strings(names)
	return names
}

// normaliseLabel reduces oracle output to a bare lowercase label:
// first line only, no list marker, quotes or trailing punctuation.
func normaliseLabel(out string) string {
	lines := parseLines(out)
	if len(lines) == 0 {
		return ""
	}
	label := strings.TrimSpace(lines[0])
	if i := strings.IndexByte(label, ':'); i >= 0 && strings.EqualFold(strings.TrimSpace(label[:i]), "role") {
		label = label[i+1:]
	}
	label = strings.Trim(label, " \t\"'`.!")
	return domain.NormaliseRoleName(label)
}
