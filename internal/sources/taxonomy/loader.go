// Package taxonomy loads a topic taxonomy from a YAML file.
package taxonomy

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

// ErrInvalid is returned for a file that parses but is not a usable taxonomy.
var ErrInvalid = errors.New("invalid taxonomy file")

// Loader handles loading and parsing of the taxonomy file
type Loader struct {
	filePath string
}

// NewLoader creates a new taxonomy loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads, parses and validates the file. Unknown fields are rejected.
func (l *Loader) Load() (domain.Taxonomy, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a taxonomy document.
func Parse(data []byte) (domain.Taxonomy, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse taxonomy yaml: %v", ErrInvalid, err)
	}
	return ToTaxonomy(cfg)
}

// ToTaxonomy normalizes and validates a parsed file.
func ToTaxonomy(cfg Config) (domain.Taxonomy, error) {
	tax := make(domain.Taxonomy, 0, len(cfg.Topics))
	for _, t := range cfg.Topics {
		tax = append(tax, domain.TopicRule{Label: t.Label, Keywords: t.Keywords})
	}
	tax = tax.Normalize()

	if err := tax.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return tax, nil
}

// LoadOrDefault loads filePath, or returns the built-in taxonomy when
// filePath is empty.
func LoadOrDefault(filePath string) (domain.Taxonomy, error) {
	if filePath == "" {
		return domain.DefaultTaxonomy(), nil
	}
	return NewLoader(filePath).Load()
}
