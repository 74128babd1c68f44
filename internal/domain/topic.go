package domain

import (
	"errors"
	"fmt"
	"strings"
)

// CatchAllTopic is the label every unmatched text falls into with the default taxonomy.
const CatchAllTopic = "Other"

// ErrInvalidTaxonomy is returned by Taxonomy.Validate.
var ErrInvalidTaxonomy = errors.New("invalid taxonomy")

// TopicRule is one labeled keyword set of a taxonomy.
type TopicRule struct {
	Label    string
	Keywords []string
}

// Taxonomy is an ordered list of topic rules.
//
// Order is significant: Classify returns the first label whose keyword set
// matches, so an earlier label wins when a text carries keywords of two labels.
// The last rule is the catch-all and has no keywords.
type Taxonomy []TopicRule

// DefaultTaxonomy returns the built-in topic taxonomy.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		{Label: "AI/ML", Keywords: []string{"ai", "ml", "artificial intelligence", "machine learning", "neural", "model", "llm", "gpt", "openai", "claude", "gemini", "chatgpt", "deep learning", "transformers"}},
		{Label: "Health", Keywords: []string{"health", "medical", "fitness", "nutrition", "wellness", "disease", "treatment", "therapy", "doctor", "patient", "clinical", "glucose", "diabetes", "exercise", "diet", "medication"}},
		{Label: "Prototyping", Keywords: []string{"build", "demo", "how to", "tutorial", "prototype", "coding", "programming", "development", "framework", "library", "github", "code"}},
		{Label: "Product Strategy", Keywords: []string{"product", "strategy", "roadmap", "vision", "growth", "metrics", "business", "market", "startup", "founder"}},
		{Label: "News", Keywords: []string{"news", "announcement", "breaking", "update", "latest", "report", "trends"}},
		{Label: "Prompt", Keywords: []string{"prompt", "system prompt", "instruction", "chain of thought", "prompting"}},
		{Label: CatchAllTopic},
	}
}

var defaultTaxonomy = DefaultTaxonomy()

// Classify maps text to a label of the default taxonomy.
func Classify(text string) string {
	return defaultTaxonomy.Classify(text)
}

// Classify returns the first label (in declared order) having a keyword
// contained in the lower-cased text, or the catch-all label.
func (t Taxonomy) Classify(text string) string {
	if text == "" {
		return t.CatchAll()
	}
	text = strings.ToLower(text)
	for _, rule := range t {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				return rule.Label
			}
		}
	}
	return t.CatchAll()
}

// CatchAll returns the zero-keyword fallback label.
func (t Taxonomy) CatchAll() string {
	if len(t) == 0 {
		return CatchAllTopic
	}
	return t[len(t)-1].Label
}

// Labels returns the labels in declared order.
func (t Taxonomy) Labels() []string {
	labels := make([]string, 0, len(t))
	for _, rule := range t {
		labels = append(labels, rule.Label)
	}
	return labels
}

// Has reports whether label belongs to the taxonomy.
func (t Taxonomy) Has(label string) bool {
	for _, rule := range t {
		if rule.Label == label {
			return true
		}
	}
	return false
}

// Validate checks the structural rules every taxonomy must satisfy:
// unique non-empty labels, keywords on every label except the last,
// and a keyword-free catch-all in last position.
func (t Taxonomy) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: no topics", ErrInvalidTaxonomy)
	}

	seen := make(map[string]bool, len(t))
	for i, rule := range t {
		label := strings.TrimSpace(rule.Label)
		if label == "" {
			return fmt.Errorf("%w: topic %d has an empty label", ErrInvalidTaxonomy, i)
		}
		if seen[label] {
			return fmt.Errorf("%w: duplicate label %q", ErrInvalidTaxonomy, label)
		}
		seen[label] = true

		last := i == len(t)-1
		if last && len(rule.Keywords) > 0 {
			return fmt.Errorf("%w: catch-all %q must not have keywords", ErrInvalidTaxonomy, label)
		}
		if !last && len(rule.Keywords) == 0 {
			return fmt.Errorf("%w: topic %q has no keywords", ErrInvalidTaxonomy, label)
		}
		for _, kw := range rule.Keywords {
			if strings.TrimSpace(kw) == "" {
				return fmt.Errorf("%w: topic %q has an empty keyword", ErrInvalidTaxonomy, label)
			}
		}
	}
	return nil
}

// Normalize lower-cases and trims every keyword so they compare against
// lower-cased text.
func (t Taxonomy) Normalize() Taxonomy {
	out := make(Taxonomy, 0, len(t))
	for _, rule := range t {
		kws := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			kws = append(kws, strings.ToLower(strings.TrimSpace(kw)))
		}
		out = append(out, TopicRule{Label: strings.TrimSpace(rule.Label), Keywords: kws})
	}
	return out
}
