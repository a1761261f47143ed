package anthropic

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tradematch/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewLLMService(Config{APIKey: "sk-ant", BaseURL: srv.URL})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.Error(t, err)

	svc, err := NewLLMService(Config{APIKey: "sk-ant"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.NoError(t, svc.Close())
}

func TestGenerate(t *testing.T) {
	var got messagesRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"3, 1"},{"type":"tool_use"},{"type":"text","text":", 2"}]}`))
	})

	out, err := svc.Generate(t.Context(), "rank", driven.GenerateOptions{System: "judge", StopWords: []string{"\n\n"}})

	require.NoError(t, err)
	assert.Equal(t, "3, 1, 2", out)
	assert.Equal(t, "judge", got.System)
	assert.Equal(t, defaultMaxTokens, got.MaxTokens)
	assert.Equal(t, []string{"\n\n"}, got.StopSeqs)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
}

func TestGenerate_Errors(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"bad model"}}`))
	})
	_, err := svc.Generate(t.Context(), "p", driven.GenerateOptions{})
	assert.ErrorContains(t, err, "bad model")

	empty := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	})
	_, err = empty.Generate(t.Context(), "p", driven.GenerateOptions{})
	assert.ErrorContains(t, err, "no text content")

	limited := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err = limited.Generate(t.Context(), "p", driven.GenerateOptions{})
	assert.ErrorIs(t, err, httpjson.ErrRateLimited)
}

func TestPing(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	assert.NoError(t, svc.Ping(t.Context()))
}

func TestFingerprint(t *testing.T) {
	a, _ := NewLLMService(Config{APIKey: "one"})
	b, _ := NewLLMService(Config{APIKey: "two"})

	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	assert.NotContains(t, a.Fingerprint(), "one")
}
