package vectorstore

import (
	"fmt"
	"strings"

	"github.com/roylo/portfolio/internal/story"
)

// Metadata is the snapshot of story fields stored alongside each embedding.
// It carries everything the index needs for push-down filtering plus enough
// of the record to reconstruct a story stub at query time.
type Metadata struct {
	Slug                string `json:"slug"`
	Company             string `json:"company"`
	Role                string `json:"role"`
	Timeframe           string `json:"timeframe"`
	SeniorityLevel      string `json:"seniorityLevel"`
	ImpactLevel         string `json:"impactLevel"`
	Competencies        string `json:"competencies"`
	InterviewCategories string `json:"interviewCategories"`
	QuestionTypes       string `json:"questionTypes"`
	HasMetrics          bool   `json:"hasMetrics"`
	HasResults          bool   `json:"hasResults"`
	CompetencyCount     int    `json:"competencyCount"`
}

// buildMetadata extracts the filter/ranking snapshot from a story. List
// fields are flattened to comma-separated strings for jsonb querying.
func buildMetadata(s story.Story) Metadata {
	return Metadata{
		Slug:                s.Slug,
		Company:             s.Company,
		Role:                s.Role,
		Timeframe:           s.Timeframe,
		SeniorityLevel:      string(s.SeniorityLevel),
		ImpactLevel:         string(s.ImpactLevel),
		Competencies:        strings.Join(s.Competencies, ","),
		InterviewCategories: strings.Join(s.InterviewCategories, ","),
		QuestionTypes:       strings.Join(s.QuestionTypes, ","),
		HasMetrics:          len(s.Metrics) > 0,
		HasResults:          len(s.STAR.Results) > 0,
		CompetencyCount:     len(s.Competencies),
	}
}

// toStory reconstructs a story stub from an index row. Free-text fields not
// stored in the snapshot stay empty; callers resolve the full record from
// the corpus by slug.
func (m Metadata) toStory(title, content string) story.Story {
	return story.Story{
		Slug:                m.Slug,
		Title:               title,
		Company:             m.Company,
		Role:                m.Role,
		Timeframe:           m.Timeframe,
		Competencies:        splitList(m.Competencies),
		InterviewCategories: splitList(m.InterviewCategories),
		QuestionTypes:       splitList(m.QuestionTypes),
		ImpactLevel:         story.ImpactLevel(m.ImpactLevel),
		SeniorityLevel:      story.SeniorityLevel(m.SeniorityLevel),
		Content:             content,
	}
}

func splitList(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ",")
}

// buildContext concatenates a story's structured fields into the dense text
// the embedding is generated from. Labels give the embedding model the role
// of each field.
func buildContext(s story.Story) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", s.Title)
	fmt.Fprintf(&b, "Summary: %s\n\n", s.Summary)
	fmt.Fprintf(&b, "Context: %s\n", s.STAR.Situation)
	fmt.Fprintf(&b, "Challenge: %s\n", s.STAR.Task)
	fmt.Fprintf(&b, "Actions: %s\n", strings.Join(s.STAR.Actions, ". "))
	fmt.Fprintf(&b, "Results: %s\n\n", strings.Join(s.STAR.Results, ". "))
	fmt.Fprintf(&b, "Company: %s (%s)\n", s.Company, s.Timeframe)
	fmt.Fprintf(&b, "Role: %s\n", s.Role)
	fmt.Fprintf(&b, "Seniority: %s\n", s.SeniorityLevel)
	fmt.Fprintf(&b, "Impact: %s\n\n", s.ImpactLevel)
	fmt.Fprintf(&b, "Competencies: %s\n", strings.Join(s.Competencies, ", "))
	fmt.Fprintf(&b, "Interview Categories: %s\n", strings.Join(s.InterviewCategories, ", "))
	fmt.Fprintf(&b, "Question Types: %s\n\n", strings.Join(s.QuestionTypes, ", "))
	fmt.Fprintf(&b, "Key Metrics: %s\n", strings.Join(s.Metrics, ", "))
	fmt.Fprintf(&b, "Keywords: %s", strings.Join(s.Keywords, ", "))
	return b.String()
}

// encodeVector renders an embedding in the pgvector text format,
// e.g. "[0.1,0.2,0.3]".
func encodeVector(v []float32) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%g", x)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
