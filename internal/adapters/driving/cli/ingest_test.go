package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tradematch/internal/core/domain"
)

func TestIngestCmd(t *testing.T) {
	t.Run("prints the result", func(t *testing.T) {
		ts := setupTestServices(t)
		ts.ingest.result = &domain.IngestResult{
			OwnerID: "acme", DocumentID: "doc-1", Roles: []string{"plumber", "gas fitter"}, ChunkCount: 4,
		}

		out, err := execute(t, "ingest", "--role", "plumber", "acme", "acme.pdf")

		require.NoError(t, err)
		assert.Equal(t, []string{"acme:acme.pdf"}, ts.ingest.calls)
		assert.Equal(t, "plumber", ts.ingest.role)
		assert.Contains(t, out, "Ingested 4 passages for acme")
		assert.Contains(t, out, "Roles: plumber, gas fitter")
	})

	t.Run("no roles detected", func(t *testing.T) {
		setupTestServices(t)

		out, err := execute(t, "ingest", "acme", "acme.txt")

		require.NoError(t, err)
		assert.Contains(t, out, "Roles: none detected")
	})

	t.Run("no content is a warning", func(t *testing.T) {
		ts := setupTestServices(t)
		ts.ingest.err = domain.ErrNoContent

		out, err := execute(t, "ingest", "acme", "blank.txt")

		require.NoError(t, err)
		assert.Contains(t, out, "produced no passages")
	})

	t.Run("unreadable document fails", func(t *testing.T) {
		ts := setupTestServices(t)
		ts.ingest.err = domain.ErrDocumentUnreadable

		_, err := execute(t, "ingest", "acme", "broken.pdf")

		assert.ErrorIs(t, err, domain.ErrDocumentUnreadable)
	})

	t.Run("requires two args", func(t *testing.T) {
		setupTestServices(t)

		_, err := execute(t, "ingest", "acme")

		assert.ErrorContains(t, err, "accepts 2 arg(s)")
	})
}

func TestWatch_IngestPath(t *testing.T) {
	ts := setupTestServices(t)
	out := new(captureBuffer)
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetErr(out)

	ingestPath(t.Context(), cmd, "/profiles/acme.pdf")
	assert.Equal(t, []string{"acme:/profiles/acme.pdf"}, ts.ingest.calls)
	assert.Contains(t, out.String(), "Ingested 1 passages for acme")

	ts.ingest.err = domain.ErrNoContent
	ingestPath(t.Context(), cmd, "/profiles/blank.txt")
	assert.Contains(t, out.String(), "Skipped /profiles/blank.txt")

	ts.ingest.err = domain.ErrDocumentUnreadable
	ingestPath(t.Context(), cmd, "/profiles/broken.pdf")
	assert.Contains(t, out.String(), "Failed /profiles/broken.pdf")
}

func TestWatchCmd_InvalidDirectory(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "watch", filepath.Join(t.TempDir(), "missing"))

	assert.Error(t, err)
}

func TestWatchCmd_InitialScanThenCancel(t *testing.T) {
	ts := setupTestServices(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acme.txt"), []byte("We fix taps."), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.bin"), []byte{0x00}, 0o600))

	ctx, cancel := contextWithCancel(t)
	buf := new(captureBuffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"watch", dir})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	done := make(chan error, 1)
	go func() { done <- rootCmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return contains(buf.String(), "Watching")
	}, waitFor, tick)
	cancel()

	require.NoError(t, <-done)
	assert.Equal(t, []string{"acme:" + filepath.Join(dir, "acme.txt")}, ts.ingest.calls)
}
