// Package page provides the host page accessor used by extraction strategies.
//
// Lookups never fail: a selector that matches nothing yields an Element whose
// Exists reports false and whose Text and Attr return "".
package page

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Accessor reads a loaded page.
type Accessor interface {
	// URL is the address the page was loaded from.
	URL() string
	// Title is the document title.
	Title() string
	// Query returns the first element of the document matching selector.
	Query(selector string) Element
	// Body returns the document body.
	Body() Element
	// Resolve turns a possibly relative reference into an absolute URL.
	Resolve(ref string) string
}

// Element is a single, possibly absent, node of a page.
type Element interface {
	Exists() bool
	// Find returns the first descendant matching selector.
	Find(selector string) Element
	// Closest returns the nearest ancestor (or the element itself) matching selector.
	Closest(selector string) Element
	// Text returns the rendered text with whitespace collapsed.
	Text() string
	Attr(name string) string
}

// Document is the goquery implementation of Accessor.
type Document struct {
	doc  *goquery.Document
	url  string
	base *url.URL
}

// Parse loads an HTML document served from pageURL.
func Parse(r io.Reader, pageURL string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	base, _ := url.Parse(pageURL)
	return &Document{doc: doc, url: pageURL, base: base}, nil
}

// ParseString is Parse over an in-memory document.
func ParseString(html, pageURL string) (*Document, error) {
	return Parse(strings.NewReader(html), pageURL)
}

func (d *Document) URL() string { return d.url }

func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

func (d *Document) Query(selector string) Element {
	return wrap(d.doc.Find(selector))
}

func (d *Document) Body() Element {
	return wrap(d.doc.Find("body"))
}

func (d *Document) Resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || d.base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return d.base.ResolveReference(u).String()
}

// Target resolves the element a user interacted with, identified by a CSS
// selector. An empty or unmatched selector yields nil.
func (d *Document) Target(selector string) Element {
	if strings.TrimSpace(selector) == "" {
		return nil
	}
	el := d.Query(selector)
	if !el.Exists() {
		return nil
	}
	return el
}

type node struct {
	sel *goquery.Selection
}

func wrap(sel *goquery.Selection) Element {
	return node{sel: sel.First()}
}

func (n node) Exists() bool { return n.sel.Length() > 0 }

func (n node) Find(selector string) Element {
	if !n.Exists() {
		return n
	}
	return wrap(n.sel.Find(selector))
}

func (n node) Closest(selector string) Element {
	if !n.Exists() {
		return n
	}
	return wrap(n.sel.Closest(selector))
}

func (n node) Text() string {
	if !n.Exists() {
		return ""
	}
	clone := n.sel.Clone()
	clone.Find("script, style, noscript").Remove()
	return collapse(clone.Text())
}

func (n node) Attr(name string) string {
	v, _ := n.sel.Attr(name)
	return strings.TrimSpace(v)
}

// collapse folds every whitespace run into one space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
