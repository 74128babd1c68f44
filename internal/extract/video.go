package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/page"
)

const (
	videoItem        = "ytd-rich-item-renderer, ytd-video-renderer, ytd-grid-video-renderer, ytd-compact-video-renderer, ytd-rich-grid-media, ytd-reel-item-renderer"
	videoItemTitle   = "#video-title, #video-title-link"
	videoItemLink    = "a#video-title-link, a#thumbnail, a#video-title, a.ytd-command-run-renderer"
	videoItemChannel = "#channel-name a, #text-container a, .ytd-channel-name a"

	videoDefaultContent = "YouTube Video"
	videoUnknownChannel = "Unknown Channel"
	videoThumbnailURL   = "https://img.youtube.com/vi/%s/default.jpg"
)

// Video extracts video listings (scoped to one item) and video detail pages.
type Video struct{}

func (Video) Extract(p page.Accessor, in Interaction) domain.Extraction {
	ex := base(p, domain.SourceVideo)

	if t := in.target(); t != nil {
		if item := t.Closest(videoItem); item.Exists() {
			listingItem(p, item, &ex)
			return ex
		}
	}
	detailPage(p, &ex)
	return ex
}

func listingItem(p page.Accessor, item page.Element, ex *domain.Extraction) {
	ex.Title = firstOf(
		present(item.Find(videoItemTitle), func(el page.Element) string {
			return firstOf(value(el.Text()), value(el.Attr("title")))
		}),
		literal(ex.Title),
	)
	ex.URL = firstOf(
		nonEmpty(item.Find(videoItemLink), resolved(p, "href")),
		literal(ex.URL),
	)
	ex.Author = firstOf(present(item.Find(videoItemChannel), text))
	ex.ThumbnailURL = firstOf(present(item.Find("img"), resolved(p, "src")))
	ex.Content = videoDefaultContent
}

func detailPage(p page.Accessor, ex *domain.Extraction) {
	ex.Title = firstOf(
		nonEmpty(p.Query(`meta[name="title"]`), attr("content")),
		literal(ex.Title),
	)
	ex.Author = firstOf(
		nonEmpty(p.Query(`link[itemprop="name"]`), attr("content")),
		nonEmpty(p.Query("#upload-info #channel-name a"), text),
		nonEmpty(p.Query(".ytd-channel-name a"), text),
		literal(videoUnknownChannel),
	)
	ex.ThumbnailURL = firstOf(
		value(thumbnailFor(VideoID(ex.URL))),
		present(p.Query(`meta[property="og:image"]`), attr("content")),
	)
	ex.Content = firstOf(
		nonEmpty(p.Query(`meta[name="description"]`), attr("content")),
		nonEmpty(p.Query("#description-inline-expander"), text),
		nonEmpty(p.Query("ytd-text-inline-expander span"), text),
		literal(videoDefaultContent),
	)
}

// VideoID returns the video identifier carried by a watch URL (v parameter)
// or a short link (last path segment), or "" when there is none.
func VideoID(raw string) string {
	switch {
	case strings.Contains(raw, "youtube.com/watch"):
		u, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		return u.Query().Get("v")
	case strings.Contains(raw, "youtu.be/"):
		u, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		p := strings.TrimRight(u.Path, "/")
		return p[strings.LastIndex(p, "/")+1:]
	default:
		return ""
	}
}

func thumbnailFor(id string) string {
	if id == "" {
		return ""
	}
	return fmt.Sprintf(videoThumbnailURL, url.PathEscape(id))
}
