// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/roylo/portfolio/internal/search"
	"github.com/roylo/portfolio/internal/story"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSearchResults outputs the ranked search results with scores and
// the per-query retrieval metadata.
func (p *Printer) PrintSearchResults(results []search.Result) {
	if len(results) == 0 {
		p.printBox("SEARCH RESULTS", "No matching stories found.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Method: %s", results[0].Metadata.SearchMethod))
	if reason := results[0].Metadata.FallbackReason; reason != "" {
		sb.WriteString(fmt.Sprintf("\nFallback: %s", truncate(reason, 45)))
	}
	sb.WriteString("\n\n")

	count := min(len(results), maxItemsToShow)
	for i := 0; i < count; i++ {
		r := results[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, truncate(r.Story.Title, 48)))
		sb.WriteString(fmt.Sprintf("    Score: %.2f (%s)", r.RelevanceScore, r.Source))
		if r.VectorScore > 0 && r.KeywordScore > 0 {
			sb.WriteString(fmt.Sprintf(" [v %.2f / k %.2f]", r.VectorScore, r.KeywordScore))
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("    %s • %s\n", r.Story.Company, truncate(r.Story.Role, 35)))
		if len(r.Story.Competencies) > 0 {
			sb.WriteString(fmt.Sprintf("    Competencies: %s\n", truncate(strings.Join(r.Story.Competencies, ", "), 40)))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(results) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more results", len(results)-maxItemsToShow))
	}

	p.printBox("SEARCH RESULTS", sb.String())
}

// PrintStory outputs a single story in full, including its STAR breakdown.
func (p *Printer) PrintStory(s *story.Story) {
	if s == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:    %s\n", truncate(s.Title, 43)))
	sb.WriteString(fmt.Sprintf("Company:  %s\n", s.Company))
	sb.WriteString(fmt.Sprintf("Role:     %s\n", truncate(s.Role, 43)))
	sb.WriteString(fmt.Sprintf("Impact:   %s / %s\n", s.ImpactLevel, s.SeniorityLevel))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Situation: %s\n", truncate(s.STAR.Situation, 42)))
	sb.WriteString(fmt.Sprintf("Task:      %s\n", truncate(s.STAR.Task, 42)))

	if len(s.STAR.Actions) > 0 {
		sb.WriteString("Actions:\n")
		count := min(len(s.STAR.Actions), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", truncate(s.STAR.Actions[i], 48)))
		}
		if len(s.STAR.Actions) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(s.STAR.Actions)-3))
		}
	}
	if len(s.STAR.Results) > 0 {
		sb.WriteString("Results:\n")
		count := min(len(s.STAR.Results), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", truncate(s.STAR.Results[i], 48)))
		}
		if len(s.STAR.Results) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(s.STAR.Results)-3))
		}
	}

	p.printBox("STORY: "+truncate(s.Slug, 44), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStats outputs the counts and availability of both retrieval paths.
func (p *Printer) PrintStats(stats search.Stats) {
	var sb strings.Builder

	sb.WriteString("Keyword store:\n")
	sb.WriteString(fmt.Sprintf("  Stories:      %d\n", stats.Keyword.Count))
	sb.WriteString(fmt.Sprintf("  Competencies: %d\n", stats.Keyword.Competencies))
	sb.WriteString(fmt.Sprintf("  Companies:    %d\n", stats.Keyword.Companies))
	sb.WriteString("\n")

	sb.WriteString("Vector store:\n")
	if stats.Vector.Available {
		sb.WriteString("  Status:     available\n")
		sb.WriteString(fmt.Sprintf("  Embeddings: %d", stats.Vector.Count))
	} else if stats.Vector.Error != "" {
		sb.WriteString("  Status: unavailable\n")
		sb.WriteString(fmt.Sprintf("  Error:  %s", truncate(stats.Vector.Error, 44)))
	} else {
		sb.WriteString("  Status: not configured")
	}

	p.printBox("SEARCH INDEX STATS", sb.String())
}

// PrintCorpusSummary outputs a short overview of a loaded story corpus.
func (p *Printer) PrintCorpusSummary(corpus *story.Corpus) {
	if corpus == nil || corpus.Len() == 0 {
		p.printBox("STORY CORPUS", "No stories loaded.")
		return
	}

	metrics := corpus.Metrics()
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Stories:      %d\n", metrics.TotalStories))
	sb.WriteString(fmt.Sprintf("Competencies: %d\n", metrics.CompetenciesCount))
	sb.WriteString(fmt.Sprintf("Companies:    %d\n", metrics.CompaniesCount))
	sb.WriteString("\n")

	count := min(corpus.Len(), maxItemsToShow)
	all := corpus.All()
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("• %s (%s)\n", truncate(all[i].Title, 38), all[i].Company))
	}
	if corpus.Len() > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more stories\n", corpus.Len()-maxItemsToShow))
	}

	p.printBox("STORY CORPUS", strings.TrimSuffix(sb.String(), "\n"))
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	if limit <= 3 {
		return s[:limit]
	}
	return s[:limit-3] + "..."
}
