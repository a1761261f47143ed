package httpjson

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New("acme", srv.URL+"/", time.Second)
}

func TestPost(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/echo", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		assert.Equal(t, "2023-06-01", r.Header.Get("X-Version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["text"]})
	}).WithBearer("k").WithHeader("X-Version", "2023-06-01")

	var out struct{ Echo string }
	require.NoError(t, c.Post(t.Context(), "/v1/echo", map[string]string{"text": "fix tap"}, &out))
	assert.Equal(t, "fix tap", out.Echo)
}

func TestPost_StatusErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"nested error", `{"error":{"type":"invalid","message":"bad model"}}`, "bad model"},
		{"flat error", `{"error":"model not loaded"}`, "model not loaded"},
		{"message", `{"message":"invalid api token"}`, "invalid api token"},
		{"plain text", "upstream down\n", "upstream down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tt.body))
			})

			err := c.Post(t.Context(), "/x", struct{}{}, nil)

			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, http.StatusBadRequest, se.StatusCode)
			assert.Equal(t, tt.want, se.Message)
			assert.Contains(t, err.Error(), "acme error (status 400)")
		})
	}
}

func TestErrorMessage_Truncates(t *testing.T) {
	msg := errorMessage([]byte(strings.Repeat("x", maxErrorBody*2)))
	assert.Len(t, msg, maxErrorBody+3)
}

func TestPost_DecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	var out map[string]any
	assert.ErrorContains(t, c.Post(t.Context(), "/x", struct{}{}, &out), "decode response")
}

func TestRateLimited(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	err := c.Post(t.Context(), "/x", struct{}{}, nil)

	assert.ErrorIs(t, err, ErrRateLimited)
	var rle *RateLimitError
	require.ErrorAs(t, err, &rle)
	assert.Equal(t, 7*time.Second, rle.RetryAfter)
	assert.Contains(t, err.Error(), "retry after 7s")
}

func TestPing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		if r.URL.Path != "/models" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	assert.NoError(t, c.Ping(t.Context(), "/models"))
	assert.ErrorContains(t, c.Ping(t.Context(), "/other"), "acme: ping failed")
}

func TestParseRetryAfter(t *testing.T) {
	assert.Zero(t, parseRetryAfter(""))
	assert.Zero(t, parseRetryAfter("soon"))
	assert.Equal(t, 2*time.Second, parseRetryAfter("2"))

	d := parseRetryAfter(time.Now().Add(time.Minute).UTC().Format(http.TimeFormat))
	assert.Greater(t, d, 50*time.Second)
}
