// Package story defines the processed career story records that the search
// and chat layers consume, and the in-memory corpus loaded from disk.
package story

import (
	"fmt"
	"strings"
)

// ImpactLevel classifies how broad a story's impact was.
type ImpactLevel string

// Impact levels, lowest to highest.
const (
	ImpactLow    ImpactLevel = "low"
	ImpactMedium ImpactLevel = "medium"
	ImpactHigh   ImpactLevel = "high"
)

// SeniorityLevel classifies the role level a story was performed at.
type SeniorityLevel string

// Seniority levels, lowest to highest.
const (
	SeniorityJunior    SeniorityLevel = "junior"
	SeniorityMid       SeniorityLevel = "mid"
	SenioritySenior    SeniorityLevel = "senior"
	SeniorityExecutive SeniorityLevel = "executive"
)

// STARStructure holds the Situation/Task/Action/Result decomposition of a story.
type STARStructure struct {
	Situation string   `json:"situation"`
	Task      string   `json:"task"`
	Actions   []string `json:"actions"`
	Results   []string `json:"results"`
}

// Story is a processed career anecdote. Records are immutable once loaded;
// Slug uniquely identifies a story across the keyword and vector stores.
type Story struct {
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Company   string `json:"company"`
	Role      string `json:"role"`
	Timeframe string `json:"timeframe"`

	Competencies        []string `json:"competencies"`
	InterviewCategories []string `json:"interviewCategories"`
	QuestionTypes       []string `json:"questionTypes"`
	Metrics             []string `json:"metrics"`
	Keywords            []string `json:"keywords"`

	STAR           STARStructure  `json:"starStructure"`
	ImpactLevel    ImpactLevel    `json:"impactLevel"`
	SeniorityLevel SeniorityLevel `json:"seniorityLevel"`

	Content string `json:"content"`
}

// Validate checks that the story has all required fields. Stories failing
// validation are excluded from indexing rather than crashing a batch.
func (s *Story) Validate() error {
	var missing []string
	if strings.TrimSpace(s.Slug) == "" {
		missing = append(missing, "slug")
	}
	if strings.TrimSpace(s.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(s.Summary) == "" {
		missing = append(missing, "summary")
	}
	if strings.TrimSpace(s.Company) == "" {
		missing = append(missing, "company")
	}
	if strings.TrimSpace(s.Role) == "" {
		missing = append(missing, "role")
	}
	if len(missing) > 0 {
		return fmt.Errorf("story is missing required fields: %s", strings.Join(missing, ", "))
	}
	switch s.ImpactLevel {
	case ImpactLow, ImpactMedium, ImpactHigh:
	default:
		return fmt.Errorf("story %s has invalid impact level %q", s.Slug, s.ImpactLevel)
	}
	switch s.SeniorityLevel {
	case SeniorityJunior, SeniorityMid, SenioritySenior, SeniorityExecutive:
	default:
		return fmt.Errorf("story %s has invalid seniority level %q", s.Slug, s.SeniorityLevel)
	}
	return nil
}

// PrimaryCompetency returns the first competency tag, or "" when untagged.
// The diversity re-ranker keys its competency penalty on this value.
func (s *Story) PrimaryCompetency() string {
	if len(s.Competencies) == 0 {
		return ""
	}
	return s.Competencies[0]
}

// TopCompetencies returns up to n competency tags for display surfaces
// (carousel cards show the top three).
func (s *Story) TopCompetencies(n int) []string {
	if n > len(s.Competencies) {
		n = len(s.Competencies)
	}
	return s.Competencies[:n]
}

// ImpactWeight returns the mild ranking bias applied by the keyword scorer.
// The weights are deliberately close together so low and medium impact
// stories remain competitive.
func (s *Story) ImpactWeight() float64 {
	switch s.ImpactLevel {
	case ImpactHigh:
		return 1.5
	case ImpactMedium:
		return 1.2
	default:
		return 1.0
	}
}

// FormatForChat renders a short markdown summary of the story for chat
// responses.
func (s *Story) FormatForChat(includeContent bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n%s", s.Title, s.Summary)
	if includeContent {
		content := s.Content
		if len(content) > 300 {
			content = content[:300] + "..."
		}
		fmt.Fprintf(&b, "\n\n%s", content)
	}
	fmt.Fprintf(&b, "\n\n*%s • %s • %s*", s.Company, s.Role, s.Timeframe)
	return b.String()
}
