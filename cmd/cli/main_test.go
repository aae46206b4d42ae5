package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/launcher"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/opener"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
)

type cli struct {
	t      *testing.T
	db     string
	opened []string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	color.NoColor = true
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("LOG_LEVEL", "error")
	return &cli{t: t, db: filepath.Join(t.TempDir(), "bookmarks.db")}
}

func (c *cli) run(args ...string) (int, string, string) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	open := opener.Func(func(url string) error {
		c.opened = append(c.opened, url)
		return nil
	})
	code := run(context.Background(), append([]string{"--db", c.db}, args...), &stdout, &stderr, open)
	return code, stdout.String(), stderr.String()
}

func TestAddListAndSearch(t *testing.T) {
	c := newCLI(t)

	code, out, _ := c.run("add", "https://go.dev", "--title", "Go", "-t", "lang, go")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Added bookmark 1")

	code, _, _ = c.run("add", "https://rust-lang.org", "-t", "lang")
	require.Equal(t, 0, code)

	code, out, _ = c.run("--json", "search", "-t", "go")
	require.Equal(t, 0, code)
	var found []launcher.BookmarkResponse
	require.NoError(t, json.Unmarshal([]byte(out), &found))
	require.Len(t, found, 1)
	assert.Equal(t, "https://go.dev", found[0].URI)
	assert.Equal(t, "lang, go", found[0].Tags)

	code, out, _ = c.run("list", "-n", "1")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "https://rust-lang.org")
	assert.NotContains(t, out, "https://go.dev")
}

func TestDuplicateURL(t *testing.T) {
	c := newCLI(t)

	code, _, _ := c.run("add", "https://go.dev")
	require.Equal(t, 0, code)

	code, _, errOut := c.run("add", "https://go.dev")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "a bookmark with this URL already exists")
}

func TestUpdateAndTags(t *testing.T) {
	c := newCLI(t)

	c.run("add", "https://go.dev", "-t", "lang")
	code, _, _ := c.run("update", "1", "--title", "Go", "-t", "go,lang")
	require.Equal(t, 0, code)

	code, _, _ = c.run("rename-tag", "lang", "language")
	require.Equal(t, 0, code)

	code, out, _ := c.run("--json", "tags")
	require.Equal(t, 0, code)
	var tags []domain.Tag
	require.NoError(t, json.Unmarshal([]byte(out), &tags))
	assert.Equal(t, []domain.Tag{{Name: "go", Count: 1}, {Name: "language", Count: 1}}, tags)

	code, _, _ = c.run("delete-tag", "go")
	require.Equal(t, 0, code)

	code, out, _ = c.run("get", "1")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Go")
	assert.Contains(t, out, "# language")
}

func TestOpenAndDelete(t *testing.T) {
	c := newCLI(t)

	c.run("add", "https://go.dev")
	code, _, _ := c.run("open", "1")
	require.Equal(t, 0, code)
	assert.Equal(t, []string{"https://go.dev"}, c.opened)

	code, _, _ = c.run("delete", "1")
	require.Equal(t, 0, code)

	code, _, errOut := c.run("get", "1")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "bookmark not found")

	code, _, errOut = c.run("open", "1")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "bookmark not found")
}

func TestExportImport(t *testing.T) {
	src := newCLI(t)
	src.run("add", "https://a.test", "-t", "x")
	src.run("add", "https://b.test", "-d", "second")

	file := filepath.Join(t.TempDir(), "dump.json")
	code, _, _ := src.run("export", "-o", file)
	require.Equal(t, 0, code)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	var dumped []domain.Bookmark
	require.NoError(t, json.Unmarshal(data, &dumped))
	require.Len(t, dumped, 2)
	assert.Equal(t, "https://a.test", dumped[0].URL)

	dst := newCLI(t)
	dst.run("add", "https://b.test")
	code, out, _ := dst.run("--json", "import", "-f", file)
	require.Equal(t, 0, code)
	assert.JSONEq(t, `{"added": 1, "skipped": 1}`, out)
}

func TestUsageErrors(t *testing.T) {
	c := newCLI(t)

	code, _, _ := c.run()
	assert.Equal(t, 2, code)

	code, _, errOut := c.run("frobnicate")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "unknown command")

	code, _, errOut = c.run("get", "abc")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "is not a number")

	code, _, _ = c.run("get")
	assert.Equal(t, 2, code)

	code, _, _ = c.run("import")
	assert.Equal(t, 2, code)

	code, out, _ := c.run("--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "rename-tag")
}
