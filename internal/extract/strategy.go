// Package extract turns a loaded page into a domain.Extraction.
//
// One strategy exists per source family (feed posts, short posts, videos,
// articles). The Dispatcher picks one from the page URL, runs it and applies
// the shared post-processing. No lookup ever fails: a missing element leaves
// the field at its default.
package extract

import (
	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/page"
)

// Mode tells whether the user bookmarked the whole page or one element of it.
type Mode int

const (
	ModePage Mode = iota
	ModeElement
)

func (m Mode) String() string {
	if m == ModeElement {
		return "element"
	}
	return "page"
}

// Interaction carries the context of a bookmark request.
// Target is the element the user pointed at; it is only consulted in
// ModeElement and may be nil.
type Interaction struct {
	Mode   Mode
	Target page.Element
}

// PageLevel is the interaction for a whole-page bookmark.
func PageLevel() Interaction { return Interaction{Mode: ModePage} }

// Scoped is the interaction for a bookmark of one element. A nil target
// degrades to page-level behaviour.
func Scoped(target page.Element) Interaction {
	return Interaction{Mode: ModeElement, Target: target}
}

// target returns the scoped element, or nil when the request is page-level
// or carries no usable element.
func (in Interaction) target() page.Element {
	if in.Mode != ModeElement || in.Target == nil || !in.Target.Exists() {
		return nil
	}
	return in.Target
}

// Strategy extracts the metadata of one source family.
type Strategy interface {
	Extract(p page.Accessor, in Interaction) domain.Extraction
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(p page.Accessor, in Interaction) domain.Extraction

func (f StrategyFunc) Extract(p page.Accessor, in Interaction) domain.Extraction {
	return f(p, in)
}

// base is the starting point of every strategy: page URL and document title.
func base(p page.Accessor, source domain.Source) domain.Extraction {
	return domain.Extraction{
		URL:    p.URL(),
		Title:  p.Title(),
		Source: source,
	}
}

// container finds the element a strategy reads from: the nearest ancestor of
// the scoped target matching scopedSel, or the first page element matching
// pageSel. The returned element may not exist.
func container(p page.Accessor, in Interaction, scopedSel, pageSel string) page.Element {
	if t := in.target(); t != nil {
		return t.Closest(scopedSel)
	}
	return p.Query(pageSel)
}
