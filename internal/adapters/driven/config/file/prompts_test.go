package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
)

func TestNewPromptStore_WithCustomDir(t *testing.T) {
	dir := t.TempDir()

	store, err := NewPromptStore(dir)

	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())
}

func TestNewPromptStore_NoIOInConstructor(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prompts")

	_, err := NewPromptStore(dir)

	require.NoError(t, err)
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestPromptStore_Load_SeedsFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptRoute)

	require.NoError(t, err)
	assert.Contains(t, prompt, "Known roles")
	for name := range driven.DefaultPrompts() {
		_, err := os.Stat(filepath.Join(dir, name+".txt"))
		assert.NoError(t, err, "expected %s.txt", name)
	}
	readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "rerank.txt")
}

func TestPromptStore_Load_UserEdits(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, driven.PromptRoute+".txt"), []byte("  Pick: %s for %s \n"), 0600))
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptRoute)

	require.NoError(t, err)
	assert.Equal(t, "Pick: %s for %s", prompt)
}

func TestPromptStore_Load_EmptyFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, driven.PromptSummary+".txt"), []byte("   "), 0600))
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptSummary)

	require.NoError(t, err)
	assert.Equal(t, driven.DefaultPrompt(driven.PromptSummary), prompt)
}

func TestPromptStore_Load_Unknown(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nope")

	assert.Error(t, err)
}

func TestPromptStore_Reload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	_, err = store.Load(driven.PromptDecompose)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, driven.PromptDecompose+".txt"), []byte("split: %s"), 0600))
	cached, _ := store.Load(driven.PromptDecompose)
	assert.NotEqual(t, "split: %s", cached)

	store.Reload()
	fresh, _ := store.Load(driven.PromptDecompose)
	assert.Equal(t, "split: %s", fresh)
}

func TestPromptStore_InitFailureUsesDefaults(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0600))
	store, err := NewPromptStore(filepath.Join(file, "prompts"))
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptRerank)

	require.NoError(t, err)
	assert.Equal(t, driven.DefaultPrompt(driven.PromptRerank), prompt)
}

func TestPromptStore_ConcurrentLoad(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Load(driven.PromptMultiQuery)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
