package cli

import (
	"bufio"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/services"
)

// withInput feeds the wizard prompts from lines.
func withInput(t *testing.T, lines ...string) {
	t.Helper()
	prev := stdin
	stdin = bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	t.Cleanup(func() { stdin = prev })
}

func TestMaskAPIKey(t *testing.T) {
	tests := map[string]string{
		"":                       "****",
		"abc123":                 "****",
		"12345678":               "****",
		"co-1234567890abcdef":    "co-1...cdef",
		"sk-proj-abcdefghijklmn": "sk-p...klmn",
	}

	for input, want := range tests {
		assert.Equal(t, want, maskAPIKey(input), "input %q", input)
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		input      string
		maxVal     int
		defaultVal int
		want       int
	}{
		{"", 4, 1, 1},
		{"3", 4, 1, 3},
		{"4", 4, 1, 4},
		{"0", 4, 1, 1},
		{"5", 4, 2, 2},
		{"-1", 4, 1, 1},
		{"oracle", 4, 1, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseChoice(tt.input, tt.maxVal, tt.defaultVal), "input %q", tt.input)
	}
}

func TestSettingsShowCmd(t *testing.T) {
	ts := setupTestServices(t)
	ts.settings.settings.Embedding = domain.EmbeddingSettings{
		Provider: domain.AIProviderOpenAI, Model: "text-embedding-3-small", APIKey: "sk-1234567890abcdef", BatchSize: 16,
	}
	ts.settings.settings.Pipeline.Strategy = domain.FusionOracle

	out, err := execute(t, "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Provider: OpenAI (cloud)")
	assert.Contains(t, out, "API Key: sk-1...cdef")
	assert.NotContains(t, out, "sk-1234567890abcdef")
	assert.Contains(t, out, "Provider: (none)")
	assert.Contains(t, out, "Backend: sqlite")
	assert.Contains(t, out, "Strategy: LLM re-rank")
	assert.Contains(t, out, "Taxonomy: software developer, plumber")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShowCmd_InvalidConfig(t *testing.T) {
	ts := setupTestServices(t)
	ts.settings.validateErr = errors.New("embedding provider not configured")

	out, err := execute(t, "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning: embedding provider not configured")
	assert.Contains(t, out, "settings wizard")
}

func TestSettingsSetCmd(t *testing.T) {
	ts := setupTestServices(t)

	out, err := execute(t, "settings", "set", "pipeline.top_k", "5")

	require.NoError(t, err)
	assert.Equal(t, "5", ts.settings.sets["pipeline.top_k"])
	assert.Contains(t, out, "Set pipeline.top_k")

	ts.settings.setErr = domain.ErrInvalidInput
	_, err = execute(t, "settings", "set", "pipeline.nope", "1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsKeysCmd(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "settings", "keys")

	require.NoError(t, err)
	for _, k := range services.SettingKeys() {
		assert.Contains(t, out, k)
	}
}

func TestSettingsWizard_ExternalStrategy(t *testing.T) {
	ts := setupTestServices(t)
	withInput(t,
		"1", "", // ollama embeddings, default model
		"n",     // skip the LLM
		"4",     // external reranker
		"", "co-secret-key-42",
	)

	out, err := execute(t, "settings", "wizard")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, ts.settings.settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", ts.settings.settings.Embedding.Model)
	assert.Equal(t, domain.FusionExternal, ts.settings.strategy)
	assert.Equal(t, "co-secret-key-42", ts.settings.rerankKey)
	assert.Equal(t, domain.DefaultRerankModel, ts.settings.settings.Rerank.Model)
	assert.Contains(t, out, "Skipped.")
	assert.Contains(t, out, "All settings are valid and saved.")
}

func TestSettingsWizard_WithLLM(t *testing.T) {
	ts := setupTestServices(t)
	withInput(t,
		"1", "mxbai-embed-large",
		"y", "3", "", "sk-ant-0123456789",
		"",
	)

	_, err := execute(t, "settings", "wizard")

	require.NoError(t, err)
	assert.Equal(t, "mxbai-embed-large", ts.settings.settings.Embedding.Model)
	assert.Equal(t, domain.AIProviderAnthropic, ts.settings.settings.LLM.Provider)
	assert.Equal(t, "claude-3-5-sonnet-latest", ts.settings.settings.LLM.Model)
	assert.Equal(t, domain.FusionRRF, ts.settings.strategy)
}

func TestSettingsWizard_Failures(t *testing.T) {
	t.Run("embedding ping fails", func(t *testing.T) {
		ts := setupTestServices(t)
		ts.settings.pingErr = domain.ErrEmbeddingUnavailable
		withInput(t, "1", "")

		out, err := execute(t, "settings", "wizard")

		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
		assert.Contains(t, out, "FAILED")
	})

	t.Run("missing api key", func(t *testing.T) {
		setupTestServices(t)
		withInput(t, "2", "", "")

		_, err := execute(t, "settings", "wizard")

		assert.ErrorContains(t, err, "API key is required")
	})
}

func TestSettingsProviderCmds(t *testing.T) {
	ts := setupTestServices(t)
	withInput(t, "2", "", "sk-openai-0123456789")

	_, err := execute(t, "settings", "llm")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, ts.settings.settings.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", ts.settings.settings.LLM.Model)
}
