package extract

import (
	"strings"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/page"
)

const (
	feedPostScoped  = ".feed-shared-update-v2, [data-urn]"
	feedPostPage    = ".feed-shared-update-v2"
	feedPostText    = ".feed-shared-update-v2__description-wrapper, .update-components-text, .feed-shared-text"
	feedPostActor   = ".update-components-actor__name, .feed-shared-actor__name"
	feedPostImage   = ".feed-shared-image__image, .update-components-article__image img, .update-components-image__image"
	feedPostAvatar  = ".update-components-actor__image img, .feed-shared-actor__image img"
	feedPostLink    = `a[href*="/feed/update/urn:li:activity:"]`
	feedPostURLBase = "https://www.linkedin.com/feed/update/"

	feedSnippetLen = 200
)

// feedSections are the well-known feed pages that hold no post of their own.
var feedSections = []struct {
	marker  string
	title   string
	content string
}{
	{marker: "/notifications", title: "LinkedIn Notifications", content: "Your LinkedIn notifications and updates."},
	{marker: "/messaging", title: "LinkedIn Messages", content: "Your LinkedIn direct messages."},
	{marker: "/jobs", title: "LinkedIn Jobs", content: "LinkedIn job opportunities and applications."},
	{marker: "/mynetwork", title: "LinkedIn Network", content: "Your LinkedIn professional network and connections."},
}

// FeedPost extracts professional network feed posts.
type FeedPost struct{}

func (FeedPost) Extract(p page.Accessor, in Interaction) domain.Extraction {
	ex := base(p, domain.SourceFeedPost)

	post := container(p, in, feedPostScoped, feedPostPage)
	if !post.Exists() {
		feedSection(p, &ex)
		return ex
	}

	ex.Content = firstOf(
		present(post.Find(feedPostText), func(el page.Element) string { return snippet(el.Text(), feedSnippetLen) }),
		present(post, text),
	)
	ex.Author = firstOf(present(post.Find(feedPostActor), text))
	ex.ThumbnailURL = firstOf(
		nonEmpty(post.Find(feedPostImage), resolved(p, "src")),
		nonEmpty(post.Find(feedPostAvatar), resolved(p, "src")),
	)
	ex.URL = firstOf(
		present(post.Find(feedPostLink), resolved(p, "href")),
		nonEmpty(post, func(el page.Element) string {
			if urn := el.Attr("data-urn"); urn != "" {
				return feedPostURLBase + urn
			}
			return ""
		}),
		literal(ex.URL),
	)
	return ex
}

// feedSection describes a feed page when no post container is on it.
func feedSection(p page.Accessor, ex *domain.Extraction) {
	for _, s := range feedSections {
		if strings.Contains(ex.URL, s.marker) {
			ex.Title = s.title
			ex.Content = s.content
			return
		}
	}

	ex.Content = firstOf(
		nonEmpty(p.Query("main"), func(el page.Element) string {
			t := trimmedPrefix(el.Text(), feedSnippetLen)
			if t == "" || strings.Contains(t, "0 notifications") {
				return ""
			}
			return t + "..."
		}),
		literal("LinkedIn page - "+ex.Title),
	)
}
