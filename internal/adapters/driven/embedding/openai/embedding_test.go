package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, cfg Config, handler http.HandlerFunc) *EmbeddingService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg.APIKey = "sk-test"
	cfg.BaseURL = srv.URL
	svc, err := NewEmbeddingService(cfg)
	require.NoError(t, err)
	return svc
}

func TestNewEmbeddingService(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.Error(t, err)

	svc, err := NewEmbeddingService(Config{APIKey: "k", Model: "text-embedding-3-large"})
	require.NoError(t, err)
	assert.Equal(t, 3072, svc.Dimensions())

	svc, err = NewEmbeddingService(Config{APIKey: "k", Model: "custom"})
	require.NoError(t, err)
	assert.Equal(t, 1536, svc.Dimensions())
}

func TestEmbedBatch_OrdersByIndex(t *testing.T) {
	var got embeddingRequest
	svc := newTestService(t, Config{}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":[{"index":1,"embedding":[0,1]},{"index":0,"embedding":[1,0]}]}`))
	})

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})

	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vecs)
	assert.Zero(t, got.Dimensions, "model default dimensions are not sent")
}

func TestEmbedBatch_SendsCustomDimensions(t *testing.T) {
	var got embeddingRequest
	svc := newTestService(t, Config{Dimensions: 256}, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[1]}]}`))
	})

	_, err := svc.Embed(context.Background(), "a")

	require.NoError(t, err)
	assert.Equal(t, 256, got.Dimensions)
}

func TestEmbedBatch_PartialResponseFails(t *testing.T) {
	tests := map[string]string{
		"missing index":  `{"data":[{"index":0,"embedding":[1,0]}]}`,
		"index too high": `{"data":[{"index":0,"embedding":[1]},{"index":5,"embedding":[1]}]}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			svc := newTestService(t, Config{}, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})

			assert.Error(t, err)
			assert.Nil(t, vecs)
		})
	}
}

func TestEmbedBatch_APIError(t *testing.T) {
	svc := newTestService(t, Config{}, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid key"}}`))
	})

	_, err := svc.Embed(context.Background(), "a")

	assert.ErrorContains(t, err, "invalid key")
}

func TestEmbedBatch_Empty(t *testing.T) {
	svc := newTestService(t, Config{}, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected")
	})

	vecs, err := svc.EmbedBatch(context.Background(), nil)

	require.NoError(t, err)
	assert.Nil(t, vecs)
}

func TestPing(t *testing.T) {
	svc := newTestService(t, Config{}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}
