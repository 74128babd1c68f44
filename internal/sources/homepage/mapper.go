package homepage

import (
	"errors"
	"net/url"
	"sort"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

// ErrEmpty is returned when a file holds no importable link.
var ErrEmpty = errors.New("no valid links found in homepage config")

// Mapper converts Homepage entries to extractions
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// Map converts either layout of f. Source is left empty for the caller to
// resolve from the URL.
func (m *Mapper) Map(f File) ([]domain.Extraction, error) {
	var out []domain.Extraction
	if f.Bookmarks != nil {
		out = m.MapBookmarks(f.Bookmarks)
	} else {
		out = m.MapServices(f.Services)
	}
	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}

// MapServices converts services.yaml entries. The description becomes the
// content so it takes part in classification.
func (m *Mapper) MapServices(config ServicesConfig) []domain.Extraction {
	var out []domain.Extraction
	for _, groupMap := range config {
		for _, group := range sortedKeys(groupMap) {
			for _, serviceMap := range groupMap[group] {
				for _, name := range sortedKeys(serviceMap) {
					props := serviceMap[name]
					if !linkable(props.Href) {
						continue
					}
					out = append(out, domain.Extraction{
						URL:          props.Href,
						Title:        name,
						Content:      props.Description,
						ThumbnailURL: iconURL(props.Icon),
					})
				}
			}
		}
	}
	return out
}

// MapBookmarks converts bookmarks.yaml entries. Each bookmark name maps to
// a list with a single entry.
func (m *Mapper) MapBookmarks(config BookmarksConfig) []domain.Extraction {
	var out []domain.Extraction
	for _, category := range config {
		for _, cat := range sortedKeys(category) {
			for _, bookmarkMap := range category[cat] {
				for _, name := range sortedKeys(bookmarkMap) {
					entries := bookmarkMap[name]
					if len(entries) == 0 || !linkable(entries[0].Href) {
						continue
					}
					entry := entries[0]
					out = append(out, domain.Extraction{
						URL:          entry.Href,
						Title:        name,
						ThumbnailURL: iconURL(entry.Icon),
					})
				}
			}
		}
	}
	return out
}

// linkable accepts absolute http(s) URLs with a host.
func linkable(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Hostname() != ""
}

// iconURL keeps icons given as URLs. Homepage icon names ("jellyfin.svg",
// "mdi-home") only resolve inside Homepage itself.
func iconURL(icon string) string {
	if linkable(icon) {
		return icon
	}
	return ""
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
