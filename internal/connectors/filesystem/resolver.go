package filesystem

import (
	"path/filepath"
	"strings"
)

// OwnerIDFromPath derives the supplier ID from a profile file name:
// "/profiles/acme-plumbing.pdf" belongs to owner "acme-plumbing".
func OwnerIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
}
