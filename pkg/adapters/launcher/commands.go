// Package launcher is the call/response surface that front ends (the CLI,
// the HTTP API, a desktop shell) use to reach the bookmark store.
//
// Every call opens its own store handle and closes it before returning, so
// no connection outlives one logical operation. Inputs are plain strings and
// optional fields; failures carry a single descriptive message (see Message).
package launcher

import (
	"context"
	"errors"
	"strings"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/services"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/tagcodec"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/logger"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/ports"
)

// OpenFunc returns a fresh repository handle. The caller closes it.
type OpenFunc func(ctx context.Context) (ports.BookmarkRepository, error)

// BookmarkResponse is the shape front ends display
type BookmarkResponse struct {
	Index       int64  `json:"index"`
	URI         string `json:"uri"`
	Title       string `json:"title"`
	Tags        string `json:"tags"`
	Description string `json:"description"`
}

func NewBookmarkResponse(b domain.Bookmark) BookmarkResponse {
	return BookmarkResponse{
		Index:       b.ID,
		URI:         b.URL,
		Title:       b.Title,
		Tags:        strings.Join(b.Tags, ", "),
		Description: b.Description,
	}
}

type Commands struct {
	open   OpenFunc
	opener ports.URLOpener
	log    logger.Logger
}

func NewCommands(open OpenFunc, opener ports.URLOpener, log logger.Logger) *Commands {
	if log == nil {
		log = logger.Nop()
	}
	return &Commands{open: open, opener: opener, log: log}
}

// FileStore returns an OpenFunc for the database file at path
func FileStore(path string, log logger.Logger) OpenFunc {
	return func(ctx context.Context) (ports.BookmarkRepository, error) {
		return sqlite.Open(path, log)
	}
}

// withService runs fn against a store opened for this call only
func (c *Commands) withService(ctx context.Context, fn func(*services.BookmarkService) error) error {
	repo, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := repo.Close(); cerr != nil {
			c.log.Warn("closing store", logger.Error(cerr))
		}
	}()

	return fn(services.NewBookmarkService(repo, c.opener, c.log))
}

func (c *Commands) List(ctx context.Context, limit *int) ([]BookmarkResponse, error) {
	var out []BookmarkResponse
	err := c.withService(ctx, func(s *services.BookmarkService) error {
		bs, err := s.List(ctx, limit)
		out = responses(bs)
		return err
	})
	return out, err
}

// Search takes the tag filter as typed: a comma-separated list.
func (c *Commands) Search(ctx context.Context, text string, tagFilter *string, tagOr bool) ([]BookmarkResponse, error) {
	var tags []string
	if tagFilter != nil {
		tags = tagcodec.ParseList(*tagFilter)
	}

	var out []BookmarkResponse
	err := c.withService(ctx, func(s *services.BookmarkService) error {
		bs, err := s.Search(ctx, text, tags, tagOr)
		out = responses(bs)
		return err
	})
	return out, err
}

// Get returns nil, nil when no bookmark has the id
func (c *Commands) Get(ctx context.Context, id int64) (*BookmarkResponse, error) {
	var out *BookmarkResponse
	err := c.withService(ctx, func(s *services.BookmarkService) error {
		b, err := s.Get(ctx, id)
		if b != nil {
			r := NewBookmarkResponse(*b)
			out = &r
		}
		return err
	})
	return out, err
}

func (c *Commands) Open(ctx context.Context, id int64) error {
	return c.withService(ctx, func(s *services.BookmarkService) error {
		return s.Open(ctx, id)
	})
}

func (c *Commands) Add(ctx context.Context, url string, title, tags, description *string) (int64, error) {
	input := domain.BookmarkInput{URL: url, Title: title, Description: description}
	if tags != nil {
		input.Tags = tagcodec.ParseList(*tags)
	}

	var id int64
	err := c.withService(ctx, func(s *services.BookmarkService) error {
		var err error
		id, err = s.Add(ctx, input)
		return err
	})
	return id, err
}

func (c *Commands) Update(ctx context.Context, id int64, url, title, tags, description *string) error {
	patch := domain.BookmarkPatch{URL: url, Title: title, Description: description}
	if tags != nil {
		parsed := tagcodec.ParseList(*tags)
		patch.Tags = &parsed
	}

	return c.withService(ctx, func(s *services.BookmarkService) error {
		return s.Update(ctx, id, patch)
	})
}

func (c *Commands) Delete(ctx context.Context, id int64) error {
	return c.withService(ctx, func(s *services.BookmarkService) error {
		return s.Delete(ctx, id)
	})
}

func (c *Commands) ListTags(ctx context.Context) ([]domain.Tag, error) {
	var out []domain.Tag
	err := c.withService(ctx, func(s *services.BookmarkService) error {
		var err error
		out, err = s.ListTags(ctx)
		return err
	})
	return out, err
}

func (c *Commands) RenameTag(ctx context.Context, oldTag, newTag string) error {
	return c.withService(ctx, func(s *services.BookmarkService) error {
		return s.RenameTag(ctx, oldTag, newTag)
	})
}

func (c *Commands) DeleteTag(ctx context.Context, tag string) error {
	return c.withService(ctx, func(s *services.BookmarkService) error {
		return s.DeleteTag(ctx, tag)
	})
}

// Export returns every bookmark, oldest first, with tags as a list
func (c *Commands) Export(ctx context.Context) ([]domain.Bookmark, error) {
	var out []domain.Bookmark
	err := c.withService(ctx, func(s *services.BookmarkService) error {
		bs, err := s.List(ctx, nil)
		if err != nil {
			return err
		}
		for i := len(bs) - 1; i >= 0; i-- {
			out = append(out, bs[i])
		}
		return nil
	})
	return out, err
}

// ImportResult counts what Import did
type ImportResult struct {
	Added   int
	Skipped int
}

// Import adds each bookmark in one store session. Bookmarks whose URL is
// already stored are skipped; any other failure stops the import.
func (c *Commands) Import(ctx context.Context, bookmarks []domain.Bookmark) (ImportResult, error) {
	var res ImportResult
	err := c.withService(ctx, func(s *services.BookmarkService) error {
		for _, b := range bookmarks {
			title, desc := b.Title, b.Description
			_, err := s.Add(ctx, domain.BookmarkInput{
				URL:         b.URL,
				Title:       &title,
				Tags:        b.Tags,
				Description: &desc,
			})
			if errors.Is(err, domain.ErrConstraintViolation) {
				c.log.Info("skipping existing bookmark", logger.String("url", b.URL))
				res.Skipped++
				continue
			}
			if err != nil {
				return err
			}
			res.Added++
		}
		return nil
	})
	return res, err
}

// Message renders err as the one-line text shown to users
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrConstraintViolation):
		return "a bookmark with this URL already exists"
	default:
		return err.Error()
	}
}

func responses(bs []domain.Bookmark) []BookmarkResponse {
	if bs == nil {
		return nil
	}
	out := make([]BookmarkResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, NewBookmarkResponse(b))
	}
	return out
}
