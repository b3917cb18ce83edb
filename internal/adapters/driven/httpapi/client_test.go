package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilah-labs/pilah/internal/core/domain"
)

func TestClient_PostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/echo", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["msg"]})
	}))
	defer server.Close()

	c := New("test", server.URL+"/", time.Second, http.Header{"Authorization": {"Bearer secret"}})
	assert.Equal(t, server.URL, c.BaseURL())

	var out map[string]string
	require.NoError(t, c.PostJSON(context.Background(), "/v1/echo", map[string]string{"msg": "halo"}, &out))
	assert.Equal(t, "halo", out["echo"])
}

func TestClient_StatusErrors(t *testing.T) {
	status := http.StatusInternalServerError
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("model not found"))
	}))
	defer server.Close()

	c := New("ollama", server.URL, time.Second, nil)

	err := c.Get(context.Background(), "/api/tags", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama error (status 500): model not found")

	status = http.StatusTooManyRequests
	err = c.PostJSON(context.Background(), "/x", struct{}{}, nil)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestClient_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	var out map[string]any
	err := New("test", server.URL, time.Second, nil).Get(context.Background(), "/", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}
