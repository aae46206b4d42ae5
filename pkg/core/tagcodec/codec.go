// Package tagcodec packs a bookmark's tag set into the single delimiter-wrapped
// text column and back.
//
// The stored form always starts and ends with the delimiter and joins tags with
// exactly one delimiter, so a tag t is a member of a stored set s iff s contains
// Pattern(t). Every read, search, rename and delete path goes through this
// package so that membership tests agree with what was written.
package tagcodec

import (
	"fmt"
	"strings"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
)

// Delimiter separates and wraps tags in the stored form
const Delimiter = ","

// Empty is the stored form of an empty tag set
const Empty = Delimiter

// Encode returns the delimiter-wrapped form of tags. It does not deduplicate.
func Encode(tags []string) string {
	if len(tags) == 0 {
		return Empty
	}
	return Delimiter + strings.Join(tags, Delimiter) + Delimiter
}

// Decode unpacks a stored tag field. Empty segments are dropped so malformed
// or legacy values still yield the tags that can be recovered.
func Decode(stored string) []string {
	inner := strings.Trim(stored, Delimiter)
	if inner == "" {
		return []string{}
	}

	parts := strings.Split(inner, Delimiter)
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// Pattern is the substring whose presence in a stored field means the tag is set
func Pattern(tag string) string {
	return Delimiter + tag + Delimiter
}

// Validate rejects tag names that would break the stored encoding
func Validate(tag string) error {
	if strings.TrimSpace(tag) == "" {
		return fmt.Errorf("%w: tag name is empty", domain.ErrInvalidTag)
	}
	if strings.Contains(tag, Delimiter) {
		return fmt.Errorf("%w: %q contains %q", domain.ErrInvalidTag, tag, Delimiter)
	}
	return nil
}

// Normalize trims each tag, drops empties and collapses duplicates keeping
// the first occurrence. Case is preserved.
func Normalize(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ParseList splits a raw comma-separated tag list as typed by a user.
// Segments are trimmed and empty ones dropped; nil is returned when nothing is left.
func ParseList(raw string) []string {
	var tags []string
	for _, p := range strings.Split(raw, Delimiter) {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
