package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/query"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/tagcodec"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/logger"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/ports"
)

const noLimit = -1

type BookmarkService struct {
	repo   ports.BookmarkRepository
	opener ports.URLOpener
	log    logger.Logger
}

func NewBookmarkService(repo ports.BookmarkRepository, opener ports.URLOpener, log logger.Logger) *BookmarkService {
	if log == nil {
		log = logger.Nop()
	}
	return &BookmarkService{repo: repo, opener: opener, log: log}
}

// List returns bookmarks newest first, at most *limit of them when limit is set.
func (s *BookmarkService) List(ctx context.Context, limit *int) ([]domain.Bookmark, error) {
	n := noLimit
	if limit != nil {
		if *limit < 0 {
			return nil, fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidInput)
		}
		n = *limit
	}

	rows, err := s.repo.List(ctx, n)
	if err != nil {
		return nil, err
	}
	return toBookmarks(rows), nil
}

// Search filters on free text and tags. With no text and no tags it is List(nil).
func (s *BookmarkService) Search(ctx context.Context, text string, tags []string, tagOr bool) ([]domain.Bookmark, error) {
	tags, err := prepareTags(tags)
	if err != nil {
		return nil, err
	}

	combinator := query.And
	if tagOr {
		combinator = query.Or
	}

	filter, ok := query.Build(text, tags, combinator)
	if !ok {
		return s.List(ctx, nil)
	}

	s.log.Debug("searching bookmarks",
		logger.String("text", text),
		logger.Strings("tags", tags),
		logger.String("combinator", combinator.String()))

	rows, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toBookmarks(rows), nil
}

// Get returns nil without error when the bookmark does not exist.
func (s *BookmarkService) Get(ctx context.Context, id int64) (*domain.Bookmark, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	b := toBookmark(*row)
	return &b, nil
}

func (s *BookmarkService) Open(ctx context.Context, id int64) error {
	b, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if b == nil {
		return fmt.Errorf("%w: %d", domain.ErrNotFound, id)
	}

	if err := s.opener.OpenURL(b.URL); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrOpenFailed, b.URL, err)
	}
	s.log.Debug("opened bookmark", logger.Int64("id", id), logger.String("url", b.URL))
	return nil
}

func (s *BookmarkService) Add(ctx context.Context, input domain.BookmarkInput) (int64, error) {
	url := strings.TrimSpace(input.URL)
	if url == "" {
		return 0, fmt.Errorf("%w: URL is required", domain.ErrInvalidInput)
	}

	tags, err := prepareTags(input.Tags)
	if err != nil {
		return 0, err
	}

	row := domain.BookmarkRow{
		URL:  url,
		Tags: tagcodec.Encode(tags),
	}
	if input.Title != nil {
		row.Title = *input.Title
	}
	if input.Description != nil {
		row.Description = *input.Description
	}

	id, err := s.repo.Insert(ctx, row)
	if err != nil {
		return 0, err
	}
	s.log.Info("bookmark added", logger.Int64("id", id), logger.String("url", url))
	return id, nil
}

// Update writes only the fields present in patch. An empty patch, or an id
// that does not exist, changes nothing and is not an error.
func (s *BookmarkService) Update(ctx context.Context, id int64, patch domain.BookmarkPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	changes := domain.RowChanges{
		Title:       patch.Title,
		Description: patch.Description,
	}
	if patch.URL != nil {
		url := strings.TrimSpace(*patch.URL)
		if url == "" {
			return fmt.Errorf("%w: URL must not be empty", domain.ErrInvalidInput)
		}
		changes.URL = &url
	}
	if patch.Tags != nil {
		tags, err := prepareTags(*patch.Tags)
		if err != nil {
			return err
		}
		encoded := tagcodec.Encode(tags)
		changes.Tags = &encoded
	}

	if err := s.repo.Update(ctx, id, changes); err != nil {
		return err
	}
	s.log.Info("bookmark updated", logger.Int64("id", id))
	return nil
}

func (s *BookmarkService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("bookmark deleted", logger.Int64("id", id))
	return nil
}

// ListTags counts, for every tag in use, the bookmarks carrying it. Sorted by
// count descending, then name ascending.
func (s *BookmarkService) ListTags(ctx context.Context) ([]domain.Tag, error) {
	fields, err := s.repo.TagFields(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, f := range fields {
		for _, t := range tagcodec.Normalize(tagcodec.Decode(f)) {
			counts[t]++
		}
	}

	tags := make([]domain.Tag, 0, len(counts))
	for name, count := range counts {
		tags = append(tags, domain.Tag{Name: name, Count: count})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Name < tags[j].Name
	})
	return tags, nil
}

// RenameTag replaces oldTag with newTag on every bookmark in one bulk rewrite.
func (s *BookmarkService) RenameTag(ctx context.Context, oldTag, newTag string) error {
	if err := tagcodec.Validate(oldTag); err != nil {
		return err
	}
	if err := tagcodec.Validate(newTag); err != nil {
		return err
	}
	oldTag, newTag = strings.TrimSpace(oldTag), strings.TrimSpace(newTag)

	n, err := s.repo.ReplaceTag(ctx, tagcodec.Pattern(oldTag), tagcodec.Pattern(newTag))
	if err != nil {
		return err
	}
	s.log.Info("tag renamed", logger.String("from", oldTag), logger.String("to", newTag), logger.Int64("bookmarks", n))
	return nil
}

// DeleteTag strips tag from every bookmark, leaving the rest of each set intact.
func (s *BookmarkService) DeleteTag(ctx context.Context, tag string) error {
	if err := tagcodec.Validate(tag); err != nil {
		return err
	}
	tag = strings.TrimSpace(tag)

	n, err := s.repo.ReplaceTag(ctx, tagcodec.Pattern(tag), tagcodec.Delimiter)
	if err != nil {
		return err
	}
	s.log.Info("tag deleted", logger.String("tag", tag), logger.Int64("bookmarks", n))
	return nil
}

func prepareTags(tags []string) ([]string, error) {
	tags = tagcodec.Normalize(tags)
	for _, t := range tags {
		if err := tagcodec.Validate(t); err != nil {
			return nil, err
		}
	}
	return tags, nil
}

func toBookmark(row domain.BookmarkRow) domain.Bookmark {
	return domain.Bookmark{
		ID:          row.ID,
		URL:         row.URL,
		Title:       row.Title,
		Tags:        tagcodec.Normalize(tagcodec.Decode(row.Tags)),
		Description: row.Description,
	}
}

func toBookmarks(rows []domain.BookmarkRow) []domain.Bookmark {
	out := make([]domain.Bookmark, 0, len(rows))
	for _, r := range rows {
		out = append(out, toBookmark(r))
	}
	return out
}

// Ensure interface compliance
var _ ports.BookmarkService = (*BookmarkService)(nil)
