package domain

import (
	"sort"
	"strings"
)

// FilterAll disables the topic or source filter.
const FilterAll = "all"

// Filter narrows a record collection.
type Filter struct {
	Search string // case-insensitive substring of title or content, "" matches all
	Topic  string // exact label or FilterAll
	Source string // exact source label or FilterAll
}

// TopicGroup is one bucket of GroupByTopic.
type TopicGroup struct {
	Topic     string      `json:"topic"`
	Bookmarks []*Bookmark `json:"bookmarks"`
}

// Query returns the records matching f, preserving their relative order.
// The input slice is not modified.
func Query(records []*Bookmark, f Filter) []*Bookmark {
	search := strings.ToLower(f.Search)
	out := make([]*Bookmark, 0, len(records))
	for _, b := range records {
		if b == nil {
			continue
		}
		if !matchesField(f.Topic, b.Topic) || !matchesField(f.Source, string(b.Source)) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(b.Title), search) &&
			!strings.Contains(strings.ToLower(b.Content), search) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func matchesField(want, got string) bool {
	return want == "" || want == FilterAll || want == got
}

// GroupByTopic buckets records by topic in taxonomy order, newest first
// inside each bucket. Empty buckets are omitted. Records with a topic the
// taxonomy does not know are counted under the catch-all label.
func GroupByTopic(records []*Bookmark, t Taxonomy) []TopicGroup {
	buckets := make(map[string][]*Bookmark, len(t))
	for _, b := range records {
		if b == nil {
			continue
		}
		topic := b.Topic
		if !t.Has(topic) {
			topic = t.CatchAll()
		}
		buckets[topic] = append(buckets[topic], b)
	}

	groups := make([]TopicGroup, 0, len(buckets))
	for _, label := range t.Labels() {
		list := buckets[label]
		if len(list) == 0 {
			continue
		}
		// ISO-8601 UTC strings of equal layout sort chronologically.
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Date > list[j].Date
		})
		groups = append(groups, TopicGroup{Topic: label, Bookmarks: list})
	}
	return groups
}
