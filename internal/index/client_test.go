package index

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/mods", r.URL.Path)
		assert.Equal(t, "devtools", r.URL.Query().Get("query"))
		assert.Equal(t, "5", r.URL.Query().Get("per_page"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"error": "",
			"payload": {
				"data": [
					{
						"id": "geode.devtools",
						"featured": true,
						"download_count": 12345,
						"developers": [{"username": "geode", "display_name": "Geode Team"}],
						"versions": [{"name": "DevTools", "version": "1.0.0", "description": "debugging", "download_count": 12000}]
					}
				],
				"count": 1
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	mods, err := client.Search(context.Background(), "devtools", 5)
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Equal(t, "geode.devtools", mods[0].ID)
	assert.Equal(t, "DevTools", mods[0].DisplayName())
	assert.True(t, mods[0].Featured)
	assert.Equal(t, int64(12345), mods[0].DownloadCount)
	require.Len(t, mods[0].Developers, 1)
	assert.Equal(t, "Geode Team", mods[0].Developers[0].DisplayName)
}

func TestClient_GetMod(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/mods/geode.devtools", r.URL.Path)
		w.Write([]byte(`{"error": "", "payload": {"id": "geode.devtools", "download_count": 7}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	mod, err := client.GetMod(context.Background(), "geode.devtools")
	require.NoError(t, err)
	assert.Equal(t, "geode.devtools", mod.ID)
	assert.Equal(t, int64(7), mod.DownloadCount)
	assert.Equal(t, "geode.devtools", mod.DisplayName(), "falls back to ID without versions")
}

func TestClient_GetMod_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "mod not found", "payload": null}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.GetMod(context.Background(), "missing.mod")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mod not found")
	assert.Contains(t, err.Error(), "404")
}

func TestClient_PendingCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pending", r.URL.Query().Get("status"))
		w.Write([]byte(`{"error": "", "payload": {"data": [], "count": 42}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	count, err := client.PendingCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
}

func TestClient_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.PendingCount(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
}
