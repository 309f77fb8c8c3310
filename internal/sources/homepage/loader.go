package homepage

import (
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// SourceName labels records imported from Homepage.
const SourceName = "homepage"

var templateVar = regexp.MustCompile(`\{\{[^}]+\}\}`)

// Load reads and parses a bookmarks.yaml file.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bookmarks file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes bookmarks.yaml from r. Homepage template variables
// ({{HOMEPAGE_VAR_...}}) are replaced with empty strings first.
func Parse(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read bookmarks yaml: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(stripTemplateVariables(data), &cfg); err != nil {
		return nil, fmt.Errorf("parse bookmarks yaml: %w", err)
	}
	return cfg, nil
}

func stripTemplateVariables(data []byte) []byte {
	return templateVar.ReplaceAll(data, []byte(`""`))
}
