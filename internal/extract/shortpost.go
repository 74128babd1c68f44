package extract

import (
	"strings"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/page"
)

const (
	shortPostContainer = `article[role="article"]`
	shortPostText      = `[data-testid="tweetText"]`
	shortPostAuthor    = `[data-testid="User-Name"]`
	shortPostPhoto     = `[data-testid="tweetPhoto"] img`
	shortPostAvatar    = `img[src*="profile_images"]`
	shortPostLink      = `a[href*="/status/"]`
	shortPostHost      = "https://twitter.com"

	shortSnippetLen = 200
	bodySnippetLen  = 500
)

// ShortPost extracts microblog posts.
type ShortPost struct{}

func (ShortPost) Extract(p page.Accessor, in Interaction) domain.Extraction {
	ex := base(p, domain.SourceShortPost)

	post := container(p, in, shortPostContainer, shortPostContainer)
	if !post.Exists() {
		ex.Content = domain.Truncate(p.Body().Text(), bodySnippetLen)
		return ex
	}

	clip := func(el page.Element) string { return snippet(el.Text(), shortSnippetLen) }
	ex.Content = firstOf(
		present(post.Find(shortPostText), clip),
		present(post, clip),
	)
	ex.Author = firstOf(present(post.Find(shortPostAuthor), text))
	ex.ThumbnailURL = firstOf(
		nonEmpty(post.Find(shortPostPhoto), resolved(p, "src")),
		present(post.Find(shortPostAvatar), resolved(p, "src")),
	)
	ex.URL = firstOf(
		nonEmpty(post.Find(shortPostLink), statusURL),
		literal(ex.URL),
	)
	return ex
}

// statusURL keeps absolute hrefs and roots relative ones on the canonical host.
func statusURL(el page.Element) string {
	href := el.Attr("href")
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return shortPostHost + href
}
