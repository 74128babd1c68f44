package domain

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// MaxContentLength bounds Extraction.Content and Bookmark.Content, in runes.
const MaxContentLength = 1000

// Source identifies which extraction strategy produced a record.
// Values are the labels stored in the collection.
type Source string

const (
	SourceFeedPost  Source = "LinkedIn"
	SourceShortPost Source = "Twitter"
	SourceVideo     Source = "YouTube"
	SourceArticle   Source = "Article"
)

// Extraction is the transient, best-effort result of reading a page.
type Extraction struct {
	URL          string `json:"url"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	Author       string `json:"author"`
	Source       Source `json:"source"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// Bookmark is a persisted, classified extraction.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the creation time in Unix milliseconds, as a decimal string.
	ID string `json:"id"`

	// Date is the ISO-8601 creation timestamp.
	Date string `json:"date"`

	// ─────────────────────────────
	// Extracted metadata (immutable)
	// ─────────────────────────────

	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
	Source  Source `json:"source"`

	// ThumbnailURL is a data: URL when the image could be fetched at
	// creation time, the original remote URL otherwise.
	ThumbnailURL string `json:"thumbnailUrl"`

	// ─────────────────────────────
	// Classification (user-mutable)
	// ─────────────────────────────

	Topic string `json:"topic"`
}

// UnmarshalJSON also accepts avatarUrl, the thumbnail key written by the
// browser extension. thumbnailUrl wins when both are set.
func (b *Bookmark) UnmarshalJSON(data []byte) error {
	type plain Bookmark
	var rec struct {
		plain
		AvatarURL string `json:"avatarUrl"`
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*b = Bookmark(rec.plain)
	if b.ThumbnailURL == "" {
		b.ThumbnailURL = rec.AvatarURL
	}
	return nil
}

// Truncate returns the first n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// RuneLen returns the number of runes in s.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// IsInline reports whether a thumbnail reference is already self-contained.
func IsInline(ref string) bool {
	return strings.HasPrefix(ref, "data:")
}
