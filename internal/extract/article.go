package extract

import (
	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/page"
)

// Article is the default strategy for any page no other source claims.
type Article struct{}

func (Article) Extract(p page.Accessor, _ Interaction) domain.Extraction {
	ex := base(p, domain.SourceArticle)

	art := p.Query("article")
	if !art.Exists() {
		ex.Content = domain.Truncate(p.Body().Text(), bodySnippetLen)
		return ex
	}

	ex.Content = art.Text()
	ex.ThumbnailURL = firstOf(present(p.Query(`meta[property="og:image"]`), attr("content")))
	return ex
}
