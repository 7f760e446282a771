// Package processing turns raw markdown story files into structured corpus
// records. Extraction is rule-based first, with optional LLM enhancement
// layered on top; the pipeline always degrades to rule-based output when the
// model is unavailable or fails.
package processing

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Frontmatter holds the YAML header of a story markdown file. Title, summary,
// company, and role are required; everything else is derived from the body.
type Frontmatter struct {
	Title     string `yaml:"title"`
	Summary   string `yaml:"summary"`
	Company   string `yaml:"company"`
	Role      string `yaml:"role"`
	Timeframe string `yaml:"timeframe"`
}

const frontmatterDelimiter = "---"

// ParseDocument splits a markdown document into its YAML frontmatter and
// body. The document must open with a `---` fence on the first line.
func ParseDocument(raw []byte) (Frontmatter, string, error) {
	var fm Frontmatter

	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	if !strings.HasPrefix(text, frontmatterDelimiter+"\n") {
		return fm, "", fmt.Errorf("document has no frontmatter block")
	}

	rest := text[len(frontmatterDelimiter)+1:]
	end := strings.Index(rest, "\n"+frontmatterDelimiter)
	if end < 0 {
		return fm, "", fmt.Errorf("frontmatter block is not closed")
	}

	header := rest[:end]
	body := rest[end+len(frontmatterDelimiter)+1:]
	body = strings.TrimPrefix(body, "\n")

	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return fm, "", fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	return fm, strings.TrimSpace(body), nil
}

// Validate checks the required frontmatter fields.
func (f *Frontmatter) Validate() error {
	var missing []string
	if strings.TrimSpace(f.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(f.Summary) == "" {
		missing = append(missing, "summary")
	}
	if strings.TrimSpace(f.Company) == "" {
		missing = append(missing, "company")
	}
	if strings.TrimSpace(f.Role) == "" {
		missing = append(missing, "role")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required frontmatter fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
