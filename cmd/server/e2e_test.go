package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/handler"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/launcher"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/opener"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/config"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/logger"
)

func TestIntegration(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "bookmarks.db")
	var opened []string
	open := opener.Func(func(url string) error {
		opened = append(opened, url)
		return nil
	})

	commands := launcher.NewCommands(launcher.FileStore(dbPath, logger.Nop()), open, logger.Nop())
	server := httptest.NewServer(handler.NewRouter(&config.Config{}, commands, logger.Nop()))
	defer server.Close()

	client := server.Client()

	send := func(method, path string, payload interface{}) *http.Response {
		t.Helper()
		var body bytes.Buffer
		if payload != nil {
			require.NoError(t, json.NewEncoder(&body).Encode(payload))
		}
		req, err := http.NewRequest(method, server.URL+path, &body)
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		resp, err := client.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	// Create
	resp := send(http.MethodPost, "/api/v1/bookmarks", map[string]string{
		"url":   "https://go.dev",
		"title": "Go",
		"tags":  "lang,go",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, int64(1), created.ID)

	resp = send(http.MethodPost, "/api/v1/bookmarks", map[string]string{
		"url":  "https://rust-lang.org",
		"tags": "lang",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Duplicate URL
	resp = send(http.MethodPost, "/api/v1/bookmarks", map[string]string{"url": "https://go.dev"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Search with tag AND
	resp = send(http.MethodGet, "/api/v1/bookmarks/search?tags=lang,go", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var found []launcher.BookmarkResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&found))
	require.Len(t, found, 1)
	assert.Equal(t, "https://go.dev", found[0].URI)
	assert.Equal(t, "lang, go", found[0].Tags)

	// Rename tag
	resp = send(http.MethodPut, "/api/v1/tags/lang", map[string]string{"name": "language"})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = send(http.MethodGet, "/api/v1/tags", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tags []domain.Tag
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tags))
	assert.Equal(t, []domain.Tag{{Name: "language", Count: 2}, {Name: "go", Count: 1}}, tags)

	// Open
	resp = send(http.MethodPost, "/api/v1/bookmarks/1/open", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []string{"https://go.dev"}, opened)

	// Delete then Get
	resp = send(http.MethodDelete, "/api/v1/bookmarks/1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = send(http.MethodGet, "/api/v1/bookmarks/1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = send(http.MethodGet, "/api/v1/bookmarks", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all []launcher.BookmarkResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&all))
	require.Len(t, all, 1)
	assert.Equal(t, "https://rust-lang.org", all[0].URI)
}
