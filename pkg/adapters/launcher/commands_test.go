package launcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/opener"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/logger"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/ports"
)

// countingRepo tracks how many handles are open at once
type countingRepo struct {
	ports.BookmarkRepository
	open *int
}

func (r countingRepo) Close() error {
	*r.open--
	return r.BookmarkRepository.Close()
}

func newTestCommands(t *testing.T) (*Commands, *int, *[]string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bookmarks.db")
	openCount := 0
	base := FileStore(path, logger.Nop())
	open := func(ctx context.Context) (ports.BookmarkRepository, error) {
		repo, err := base(ctx)
		if err != nil {
			return nil, err
		}
		openCount++
		return countingRepo{BookmarkRepository: repo, open: &openCount}, nil
	}

	var opened []string
	urlOpener := opener.Func(func(url string) error {
		opened = append(opened, url)
		return nil
	})
	return NewCommands(open, urlOpener, logger.Nop()), &openCount, &opened
}

func strPtr(s string) *string { return &s }

func TestCommands_AddListGet(t *testing.T) {
	c, openCount, _ := newTestCommands(t)
	ctx := context.Background()

	id, err := c.Add(ctx, "https://a.test", strPtr("A"), strPtr(" x , y,,"), nil)
	require.NoError(t, err)
	assert.Zero(t, *openCount, "store handle left open")

	list, err := c.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, BookmarkResponse{Index: id, URI: "https://a.test", Title: "A", Tags: "x, y"}, list[0])

	got, err := c.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, list[0], *got)

	missing, err := c.Get(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.Zero(t, *openCount)
}

func TestCommands_SearchParsesTagFilter(t *testing.T) {
	c, _, _ := newTestCommands(t)
	ctx := context.Background()

	_, err := c.Add(ctx, "https://ab.test", nil, strPtr("a,b"), nil)
	require.NoError(t, err)
	_, err = c.Add(ctx, "https://bc.test", nil, strPtr("b,c"), nil)
	require.NoError(t, err)
	_, err = c.Add(ctx, "https://c.test", nil, strPtr("c"), nil)
	require.NoError(t, err)

	got, err := c.Search(ctx, "", strPtr(" a , c "), true)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = c.Search(ctx, "", strPtr("a, c"), false)
	require.NoError(t, err)
	assert.Empty(t, got)

	all, err := c.List(ctx, nil)
	require.NoError(t, err)
	got, err = c.Search(ctx, "", strPtr(" , "), false)
	require.NoError(t, err)
	assert.Equal(t, all, got)
}

func TestCommands_UpdateTags(t *testing.T) {
	c, _, _ := newTestCommands(t)
	ctx := context.Background()

	id, err := c.Add(ctx, "https://a.test", nil, strPtr("x"), strPtr("desc"))
	require.NoError(t, err)

	require.NoError(t, c.Update(ctx, id, nil, nil, strPtr("p, q"), nil))
	got, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "p, q", got.Tags)
	assert.Equal(t, "desc", got.Description)

	require.NoError(t, c.Update(ctx, id, nil, nil, strPtr(""), nil))
	got, err = c.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "", got.Tags)
}

func TestCommands_TagOperations(t *testing.T) {
	c, openCount, _ := newTestCommands(t)
	ctx := context.Background()

	_, err := c.Add(ctx, "https://a.test", nil, strPtr("x,y"), nil)
	require.NoError(t, err)
	_, err = c.Add(ctx, "https://b.test", nil, strPtr("y"), nil)
	require.NoError(t, err)

	require.NoError(t, c.RenameTag(ctx, "y", "z"))
	require.NoError(t, c.DeleteTag(ctx, "x"))

	tags, err := c.ListTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Tag{{Name: "z", Count: 2}}, tags)
	assert.Zero(t, *openCount)
}

func TestCommands_Open(t *testing.T) {
	c, _, opened := newTestCommands(t)
	ctx := context.Background()

	id, err := c.Add(ctx, "https://open.test", nil, nil, nil)
	require.NoError(t, err)

	require.NoError(t, c.Open(ctx, id))
	assert.Equal(t, []string{"https://open.test"}, *opened)

	err = c.Open(ctx, id+1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCommands_ExportImport(t *testing.T) {
	src, _, _ := newTestCommands(t)
	ctx := context.Background()

	_, err := src.Add(ctx, "https://1.test", strPtr("one"), strPtr("a"), nil)
	require.NoError(t, err)
	_, err = src.Add(ctx, "https://2.test", nil, nil, strPtr("two"))
	require.NoError(t, err)

	dump, err := src.Export(ctx)
	require.NoError(t, err)
	require.Len(t, dump, 2)
	assert.Equal(t, "https://1.test", dump[0].URL)

	dst, _, _ := newTestCommands(t)
	_, err = dst.Add(ctx, "https://2.test", nil, nil, nil)
	require.NoError(t, err)

	res, err := dst.Import(ctx, dump)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Added: 1, Skipped: 1}, res)

	got, err := dst.Search(ctx, "one", nil, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Tags)
}

func TestCommands_OpenFailure(t *testing.T) {
	boom := errors.New("disk gone")
	c := NewCommands(func(ctx context.Context) (ports.BookmarkRepository, error) {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, boom)
	}, nil, nil)

	_, err := c.List(context.Background(), nil)
	require.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Contains(t, Message(err), "disk gone")
}

func TestMessage(t *testing.T) {
	c, _, _ := newTestCommands(t)
	ctx := context.Background()

	_, err := c.Add(ctx, "https://dup.test", nil, nil, nil)
	require.NoError(t, err)
	_, err = c.Add(ctx, "https://dup.test", nil, nil, nil)
	require.Error(t, err)

	assert.Equal(t, "a bookmark with this URL already exists", Message(err))
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "bookmark not found: 7", Message(fmt.Errorf("%w: %d", domain.ErrNotFound, 7)))
}
