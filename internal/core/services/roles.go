package services

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
	"github.com/custodia-labs/tradematch/internal/logger"
)

// Role detection limits.
const (
	DefaultMaxRoles      = 3
	roleSnippetChunks    = 3
	roleSnippetMaxRunes  = 3000
	maxRoleLabelLength   = 30
	roleDetectTokenLimit = 64
)

// RoleDetector guesses supplier roles from profile text and records them in the directory.
type RoleDetector struct {
	oracle
	directory driven.Directory
	maxRoles  int
}

// NewRoleDetector creates a detector. llm and directory may be nil.
func NewRoleDetector(llm driven.LLMService, directory driven.Directory, maxRoles int) *RoleDetector {
	if maxRoles <= 0 {
		maxRoles = DefaultMaxRoles
	}
	return &RoleDetector{
		oracle:    newOracle(llm),
		directory: directory,
		maxRoles:  maxRoles,
	}
}

// Detect returns up to maxRoles normalised role labels read from the first chunks.
// It returns nil when no oracle is configured or the call fails.
func (d *RoleDetector) Detect(ctx context.Context, chunks []string) []string {
	if !d.available() || len(chunks) == 0 {
		return nil
	}

	snippet := strings.Join(chunks[:min(roleSnippetChunks, len(chunks))], " ")
	if runes := []rune(snippet); len(runes) > roleSnippetMaxRunes {
		snippet = string(runes[:roleSnippetMaxRunes])
	}

	prompt := fmt.Sprintf(d.template(driven.PromptDetectRoles), d.maxRoles, snippet)
	out, err := d.complete(ctx, prompt, driven.GenerateOptions{MaxTokens: roleDetectTokenLimit})
	if err != nil {
		logger.Warn("role detection failed: %v", err)
		return nil
	}
	return parseRoles(out, d.maxRoles)
}

// Record ensures every role exists in the directory and links it to ownerID.
func (d *RoleDetector) Record(ctx context.Context, ownerID string, roles []string) error {
	if d.directory == nil {
		return nil
	}
	for _, name := range roles {
		created, err := d.directory.EnsureRole(ctx, domain.NewRole(name))
		if err != nil {
			return wrapStoreErr("ensure role "+name, err)
		}
		if created {
			logger.Info("created role %q", name)
		}
		if err := d.directory.LinkOwnerRole(ctx, ownerID, name); err != nil {
			return wrapStoreErr("link role "+name, err)
		}
	}
	return nil
}

// parseRoles splits a comma or newline separated list into clean role labels.
func parseRoles(out string, limit int) []string {
	fields := strings.FieldsFunc(out, func(r rune) bool { return r == ',' || r == '\n' || r == ';' })

	seen := make(map[string]bool)
	var roles []string
	for _, field := range fields {
		field = listMarker.ReplaceAllString(field, "")
		label := domain.NormaliseRoleName(strings.Join(strings.Fields(stripPunctuation(field)), " "))
		if label == "" || len([]rune(label)) > maxRoleLabelLength || seen[label] {
			continue
		}
		if label == domain.RoleAll || label == domain.RoleUnknown {
			continue
		}
		seen[label] = true
		roles = append(roles, label)
		if len(roles) == limit {
			break
		}
	}
	return roles
}

// stripPunctuation drops everything except letters, digits, spaces and hyphens.
func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '-' {
			return r
		}
		return -1
	}, s)
}
