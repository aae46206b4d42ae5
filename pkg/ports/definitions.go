package ports

import (
	"context"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/query"
)

// BookmarkRepository defines row-level storage operations. Tag fields are
// passed through in their encoded form.
type BookmarkRepository interface {
	Insert(ctx context.Context, row domain.BookmarkRow) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.BookmarkRow, error) // nil, nil when absent
	Update(ctx context.Context, id int64, changes domain.RowChanges) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit int) ([]domain.BookmarkRow, error) // limit < 0 means no limit
	Find(ctx context.Context, filter query.Filter) ([]domain.BookmarkRow, error)
	TagFields(ctx context.Context) ([]string, error)
	ReplaceTag(ctx context.Context, from, to string) (int64, error) // bulk substring rewrite of the tags column
	Close() error
}

// URLOpener hands a URL to the host's default handler
type URLOpener interface {
	OpenURL(url string) error
}

// BookmarkService defines the public bookmark operations
type BookmarkService interface {
	List(ctx context.Context, limit *int) ([]domain.Bookmark, error)
	Search(ctx context.Context, text string, tags []string, tagOr bool) ([]domain.Bookmark, error)
	Get(ctx context.Context, id int64) (*domain.Bookmark, error)
	Open(ctx context.Context, id int64) error
	Add(ctx context.Context, input domain.BookmarkInput) (int64, error)
	Update(ctx context.Context, id int64, patch domain.BookmarkPatch) error
	Delete(ctx context.Context, id int64) error
	ListTags(ctx context.Context) ([]domain.Tag, error)
	RenameTag(ctx context.Context, oldTag, newTag string) error
	DeleteTag(ctx context.Context, tag string) error
}
