package mcp

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/tradematch/internal/core/domain"
)

// maxProfileBytes caps a profile read from the ingest root.
const maxProfileBytes = 32 << 20

var (
	// errPathIngestDisabled is returned for path uploads when no ingest root is set.
	errPathIngestDisabled = errors.New("mcp: path ingestion is disabled; pass content or start the server with --ingest-root")

	// errPathOutsideRoot is returned for paths that leave the ingest root or name hidden files.
	errPathOutsideRoot = errors.New("mcp: path is outside the ingest root")
)

// readProfile reads name from inside root. Relative names are taken from root;
// absolute names must lie under it. Symlinks that leave root are refused by os.Root.
func readProfile(root, name string) ([]byte, string, error) {
	if root == "" {
		return nil, "", errPathIngestDisabled
	}

	rel, err := relativeToRoot(root, name)
	if err != nil {
		return nil, "", err
	}

	dir, err := os.OpenRoot(root)
	if err != nil {
		return nil, "", fmt.Errorf("opening ingest root: %w", err)
	}
	defer dir.Close()

	f, err := dir.Open(rel)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", domain.ErrDocumentUnreadable, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxProfileBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", domain.ErrDocumentUnreadable, err)
	}
	if len(data) > maxProfileBytes {
		return nil, "", fmt.Errorf("%w: %s is larger than %d bytes", domain.ErrInvalidInput, name, maxProfileBytes)
	}
	return data, filepath.Base(rel), nil
}

// relativeToRoot maps name to a local path under root, rejecting escapes and dot files.
func relativeToRoot(root, name string) (string, error) {
	rel := name
	if filepath.IsAbs(name) {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return "", fmt.Errorf("resolving ingest root: %w", err)
		}
		if rel, err = filepath.Rel(absRoot, name); err != nil {
			return "", fmt.Errorf("%w: %w: %s", domain.ErrInvalidInput, errPathOutsideRoot, name)
		}
	}

	rel = filepath.Clean(rel)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %w: %s", domain.ErrInvalidInput, errPathOutsideRoot, name)
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") {
			return "", fmt.Errorf("%w: %w: %s", domain.ErrInvalidInput, errPathOutsideRoot, name)
		}
	}
	return rel, nil
}
