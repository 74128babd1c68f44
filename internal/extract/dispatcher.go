package extract

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/metrics"
	"github.com/MrSnakeDoc/shelf/internal/page"
)

const titleSnippetLen = 50

// genericTitleMarkers flag post titles that describe the site instead of the post.
var genericTitleMarkers = []string{"LinkedIn", "Twitter", "X.com", "Feed"}

type rule struct {
	markers  []string
	source   domain.Source
	strategy Strategy
}

// Dispatcher routes a page to its source strategy.
//
// Rules are URL substring matches evaluated in order; a URL no rule claims
// goes to the Article strategy. Matching is by substring, so "x.com"
// also claims hosts such as "netflix.com".
type Dispatcher struct {
	rules    []rule
	fallback rule
	log      logger.Logger
	metrics  *metrics.Metrics
}

func NewDispatcher(log logger.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		rules: []rule{
			{markers: []string{"linkedin.com"}, source: domain.SourceFeedPost, strategy: FeedPost{}},
			{markers: []string{"twitter.com", "x.com"}, source: domain.SourceShortPost, strategy: ShortPost{}},
			{markers: []string{"youtube.com", "youtu.be"}, source: domain.SourceVideo, strategy: Video{}},
		},
		fallback: rule{source: domain.SourceArticle, strategy: Article{}},
		log:      log,
		metrics:  m,
	}
}

func (d *Dispatcher) match(rawURL string) rule {
	for _, r := range d.rules {
		for _, m := range r.markers {
			if strings.Contains(rawURL, m) {
				return r
			}
		}
	}
	return d.fallback
}

// Select reports the source a URL is dispatched to.
func (d *Dispatcher) Select(rawURL string) domain.Source {
	return d.match(rawURL).source
}

// Extract runs the strategy owning the page URL and post-processes its result.
// It never panics.
func (d *Dispatcher) Extract(p page.Accessor, in Interaction) domain.Extraction {
	r := d.match(p.URL())
	ex := d.run(r, p, in)
	d.metrics.ObserveExtraction(string(r.source), in.Mode.String())
	return PostProcess(ex)
}

func (d *Dispatcher) run(r rule, p page.Accessor, in Interaction) (ex domain.Extraction) {
	defer func() {
		if rec := recover(); rec != nil {
			d.log.Error("extraction strategy panicked",
				logger.String("source", string(r.source)),
				logger.String("url", p.URL()),
				logger.String("panic", fmt.Sprint(rec)),
			)
			d.metrics.ObserveExtractionPanic()
			ex = base(p, r.source)
		}
	}()
	return r.strategy.Extract(p, in)
}

// PostProcess applies the rules shared by every strategy: post sources get a
// title derived from their content when the page title is generic, and
// content is capped at domain.MaxContentLength runes.
func PostProcess(ex domain.Extraction) domain.Extraction {
	if ex.Source == domain.SourceFeedPost || ex.Source == domain.SourceShortPost {
		if genericTitle(ex.Title) && ex.Content != "" {
			title := trimmedPrefix(ex.Content, titleSnippetLen)
			if domain.RuneLen(ex.Content) > titleSnippetLen {
				title += "..."
			}
			ex.Title = title
		}
	}
	ex.Content = domain.Truncate(ex.Content, domain.MaxContentLength)
	return ex
}

func genericTitle(title string) bool {
	if title == "" {
		return true
	}
	for _, m := range genericTitleMarkers {
		if strings.Contains(title, m) {
			return true
		}
	}
	return false
}
