package homepage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleYAML = `---
- Developer:
    - Github:
        - abbr: GH
          href: https://github.com/
          icon: github.svg
    - Go:
        - href: https://go.dev
          description: The Go site
    - Broken:
        - abbr: BR
- Secrets:
    - Vault:
        - href: {{HOMEPAGE_VAR_VAULT_URL}}
`

func TestParseAndInputs(t *testing.T) {
	cfg, err := Parse(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(cfg) != 2 {
		t.Fatalf("Parse() returned %d groups, want 2", len(cfg))
	}

	inputs := Inputs(cfg)
	if len(inputs) != 2 {
		t.Fatalf("Inputs() returned %d records, want 2: %+v", len(inputs), inputs)
	}

	gh := inputs[0]
	if gh.Title != "Github" || gh.URL != "https://github.com/" {
		t.Errorf("first record = %+v", gh)
	}
	if len(gh.Tags) != 2 || gh.Tags[0] != "Developer" || gh.Tags[1] != "GH" {
		t.Errorf("first record tags = %v, want [Developer GH]", gh.Tags)
	}
	if gh.Favicon != "github.svg" {
		t.Errorf("favicon = %q", gh.Favicon)
	}

	if inputs[1].Note != "The Go site" {
		t.Errorf("second record note = %q", inputs[1].Note)
	}
}

func TestLoadFileNotFound(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() with a missing file should return an error")
	}
}

func TestLoadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := len(Inputs(cfg)); got != 2 {
		t.Errorf("Inputs() = %d records, want 2", got)
	}
}

func TestStripTemplateVariables(t *testing.T) {
	tests := []struct {
		name, input, want string
	}{
		{"single variable", "url: {{HOMEPAGE_VAR_URL}}", `url: ""`},
		{"no variable", "plain text", "plain text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(stripTemplateVariables([]byte(tt.input))); got != tt.want {
				t.Errorf("stripTemplateVariables() = %q, want %q", got, tt.want)
			}
		})
	}
}
