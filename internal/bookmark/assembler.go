package bookmark

import (
	"context"
	"strconv"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

const (
	// DateLayout is ISO-8601 with milliseconds, always rendered in UTC.
	DateLayout = "2006-01-02T15:04:05.000Z07:00"

	defaultTitle = "No Title"
)

// ThumbnailEncoder inlines remote images. It must return its input on failure.
type ThumbnailEncoder interface {
	Encode(ctx context.Context, ref string) string
}

// Assembler turns an extraction into a persisted record.
type Assembler struct {
	taxonomy domain.Taxonomy
	thumbs   ThumbnailEncoder
}

// NewAssembler creates an assembler. A nil encoder keeps thumbnails as-is.
func NewAssembler(taxonomy domain.Taxonomy, thumbs ThumbnailEncoder) *Assembler {
	return &Assembler{taxonomy: taxonomy, thumbs: thumbs}
}

// Assemble never fails: every missing piece falls back to a default.
//
// The id is the Unix millisecond of now, so two records assembled within the
// same millisecond share an id.
func (a *Assembler) Assemble(ctx context.Context, ex domain.Extraction, now time.Time) *domain.Bookmark {
	content := domain.Truncate(ex.Content, domain.MaxContentLength)

	classified := content
	if classified == "" {
		classified = ex.Title
	}

	title := ex.Title
	if title == "" {
		title = defaultTitle
	}

	thumb := ex.ThumbnailURL
	if a.thumbs != nil && thumb != "" && !domain.IsInline(thumb) {
		thumb = a.thumbs.Encode(ctx, thumb)
	}

	return &domain.Bookmark{
		ID:           strconv.FormatInt(now.UnixMilli(), 10),
		Date:         now.UTC().Format(DateLayout),
		URL:          ex.URL,
		Title:        title,
		Content:      content,
		Author:       ex.Author,
		Source:       ex.Source,
		ThumbnailURL: thumb,
		Topic:        a.taxonomy.Classify(classified),
	}
}
