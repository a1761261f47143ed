package mcp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tradematch/internal/core/domain"
)

func TestRelativeToRoot(t *testing.T) {
	root := t.TempDir()

	allowed := map[string]string{
		"s1.pdf":                              "s1.pdf",
		"plumber/s1.pdf":                      filepath.Join("plumber", "s1.pdf"),
		"plumber/../s2.pdf":                   "s2.pdf",
		filepath.Join(root, "barber", "b.md"): filepath.Join("barber", "b.md"),
	}
	for in, want := range allowed {
		got, err := relativeToRoot(root, in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, in := range []string{"", "..", "../x.pdf", "/etc/passwd", ".env", "plumber/.hidden.pdf", ".git/config"} {
		_, err := relativeToRoot(root, in)
		assert.ErrorIs(t, err, errPathOutsideRoot, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, in)
	}
}

func TestReadProfile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "s1.txt"), []byte("Boilers serviced."), 0o600))

	data, name, err := readProfile(root, "s1.txt")
	require.NoError(t, err)
	assert.Equal(t, "Boilers serviced.", string(data))
	assert.Equal(t, "s1.txt", name)

	_, _, err = readProfile(root, "missing.txt")
	assert.ErrorIs(t, err, domain.ErrDocumentUnreadable)

	_, _, err = readProfile("", "s1.txt")
	assert.ErrorIs(t, err, errPathIngestDisabled)
}
