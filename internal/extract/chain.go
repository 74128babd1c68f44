package extract

import (
	"strings"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/page"
)

// step is one link of a fallback chain. ok reports whether the lookup
// succeeded; the first successful step wins.
type step func() (value string, ok bool)

// firstOf evaluates steps in order and returns the first successful value,
// or "" when every step misses.
func firstOf(steps ...step) string {
	for _, s := range steps {
		if v, ok := s(); ok {
			return v
		}
	}
	return ""
}

// present succeeds whenever el exists, even if read returns "".
func present(el page.Element, read func(page.Element) string) step {
	return func() (string, bool) {
		if !el.Exists() {
			return "", false
		}
		return read(el), true
	}
}

// nonEmpty succeeds when el exists and read returns a non-empty value.
func nonEmpty(el page.Element, read func(page.Element) string) step {
	return func() (string, bool) {
		if !el.Exists() {
			return "", false
		}
		v := read(el)
		return v, v != ""
	}
}

// value succeeds when v is non-empty.
func value(v string) step {
	return func() (string, bool) { return v, v != "" }
}

// literal always succeeds.
func literal(v string) step {
	return func() (string, bool) { return v, true }
}

func text(el page.Element) string { return el.Text() }

func attr(name string) func(page.Element) string {
	return func(el page.Element) string { return el.Attr(name) }
}

// resolved reads an URL attribute and makes it absolute against the page.
func resolved(p page.Accessor, name string) func(page.Element) string {
	return func(el page.Element) string { return p.Resolve(el.Attr(name)) }
}

// snippet cuts s to n runes and appends an ellipsis.
func snippet(s string, n int) string {
	return domain.Truncate(s, n) + "..."
}

// trimmedPrefix cuts s to n runes and trims the result.
func trimmedPrefix(s string, n int) string {
	return strings.TrimSpace(domain.Truncate(s, n))
}
