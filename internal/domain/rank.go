package domain

import (
	"net/url"
	"sort"
	"strings"
)

const (
	// Scoring weights
	ScoreExactMatch     = 100.0
	ScorePrefixMatch    = 75.0
	ScoreSubstringMatch = 50.0
	ScoreWordsMatch     = 25.0

	// Position bonus (earlier is better)
	ScorePositionBonus = 10.0

	// Matches on the host count for a fraction of title matches
	ScoreHostWeight = 0.5
)

// Candidate is a bookmark with its match score
type Candidate struct {
	Bookmark *Bookmark
	Score    float64
}

// ScoreText scores how well query matches text. Both are compared
// lower-cased; 0 means no match.
func ScoreText(query, text string) float64 {
	query = strings.ToLower(strings.TrimSpace(query))
	text = strings.ToLower(strings.TrimSpace(text))
	if query == "" || text == "" {
		return 0.0
	}

	// Exact match (highest score)
	if query == text {
		return ScoreExactMatch
	}

	// Prefix match
	if strings.HasPrefix(text, query) {
		return ScorePrefixMatch
	}

	// Substring match, earlier is better
	if i := strings.Index(text, query); i >= 0 {
		return ScoreSubstringMatch + ScorePositionBonus*(1.0-float64(i)/float64(len(text)))
	}

	// Every query word appears somewhere in text
	words := strings.Fields(query)
	if len(words) > 1 {
		for _, w := range words {
			if !strings.Contains(text, w) {
				return 0.0
			}
		}
		return ScoreWordsMatch
	}

	return 0.0
}

// ScoreBookmark scores a bookmark by its title, then by the host of its URL.
func ScoreBookmark(query string, b *Bookmark) float64 {
	if b == nil {
		return 0.0
	}
	if s := ScoreText(query, b.Title); s > 0 {
		return s
	}
	return ScoreText(query, host(b.URL)) * ScoreHostWeight
}

// Rank returns the matching bookmarks, best first. Equal scores keep the
// stored order.
func Rank(query string, records []*Bookmark) []Candidate {
	candidates := make([]Candidate, 0, len(records))
	for _, b := range records {
		if s := ScoreBookmark(query, b); s > 0 {
			candidates = append(candidates, Candidate{Bookmark: b, Score: s})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

// Best returns the best matching bookmark, or nil.
func Best(query string, records []*Bookmark) *Bookmark {
	c := Rank(query, records)
	if len(c) == 0 {
		return nil
	}
	return c[0].Bookmark
}

func host(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
