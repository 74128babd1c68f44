// Package homepage imports links from a Homepage dashboard configuration
// (services.yaml or bookmarks.yaml) into the bookmark collection.
package homepage

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

var templateVar = regexp.MustCompile(`\{\{[^}]+\}\}`)

// Loader handles loading and parsing of a Homepage services.yaml or bookmarks.yaml
type Loader struct {
	filePath string
}

// NewLoader creates a new Homepage loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads the file and parses it as bookmarks.yaml, then as services.yaml.
func (l *Loader) Load() (File, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return File{}, fmt.Errorf("failed to read homepage file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a Homepage document. The two layouts differ only in their
// innermost node (a list of entries for bookmarks, a mapping for services).
func Parse(data []byte) (File, error) {
	// Strip Homepage template variables ({{HOMEPAGE_VAR_...}})
	data = stripTemplateVariables(data)

	var bookmarks BookmarksConfig
	bmErr := yaml.Unmarshal(data, &bookmarks)
	if bmErr == nil {
		return File{Bookmarks: bookmarks}, nil
	}

	var services ServicesConfig
	if err := yaml.Unmarshal(data, &services); err != nil {
		return File{}, fmt.Errorf("failed to parse homepage yaml: %w", err)
	}
	return File{Services: services}, nil
}

// stripTemplateVariables removes Homepage template variables from YAML
// Example: {{HOMEPAGE_VAR_ADGUARD_USER}} -> ""
func stripTemplateVariables(data []byte) []byte {
	return templateVar.ReplaceAll(data, []byte(`""`))
}
