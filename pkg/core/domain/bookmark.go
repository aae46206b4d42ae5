package domain

// Bookmark is a stored URL with its decoded tag set
type Bookmark struct {
	ID          int64    `json:"id"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
}

// BookmarkInput carries the fields for a new bookmark.
// A nil Title, Description or Tags is stored as the column default.
type BookmarkInput struct {
	URL         string
	Title       *string
	Tags        []string
	Description *string
}

// BookmarkPatch describes a partial update. Nil fields are left untouched.
type BookmarkPatch struct {
	URL         *string
	Title       *string
	Tags        *[]string
	Description *string
}

// IsEmpty reports whether the patch would change nothing
func (p BookmarkPatch) IsEmpty() bool {
	return p.URL == nil && p.Title == nil && p.Tags == nil && p.Description == nil
}

// BookmarkRow is a bookmark as stored, with the tag set still encoded
type BookmarkRow struct {
	ID          int64
	URL         string
	Title       string
	Tags        string
	Description string
}

// RowChanges lists the encoded column values an update should write
type RowChanges struct {
	URL         *string
	Title       *string
	Tags        *string
	Description *string
}

// Tag is a derived projection: a tag name and how many bookmarks carry it
type Tag struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
