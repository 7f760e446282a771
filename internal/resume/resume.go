// Package resume loads the processed résumé document and answers structured
// queries against it for the chat and job-description analysis surfaces.
package resume

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/roylo/portfolio/internal/schemas"
	"github.com/roylo/portfolio/internal/story"
)

// PersonalInfo is the contact block of the résumé.
type PersonalInfo struct {
	Name      string   `json:"name"`
	Location  string   `json:"location"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	LinkedIn  string   `json:"linkedin"`
	Website   string   `json:"website"`
	Languages []string `json:"languages"`
}

// WorkExperience is one position in the résumé's work history.
type WorkExperience struct {
	Company          string               `json:"company"`
	Role             string               `json:"role"`
	Location         string               `json:"location"`
	StartDate        string               `json:"startDate"`
	EndDate          string               `json:"endDate"`
	Duration         string               `json:"duration"`
	Responsibilities []string             `json:"responsibilities"`
	Achievements     []string             `json:"achievements"`
	Metrics          []string             `json:"metrics"`
	Technologies     []string             `json:"technologies"`
	KeyProjects      []string             `json:"keyProjects"`
	Competencies     []string             `json:"competencies"`
	ImpactLevel      story.ImpactLevel    `json:"impactLevel"`
	SeniorityLevel   story.SeniorityLevel `json:"seniorityLevel"`
}

// Education is one entry in the education history.
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	Location    string `json:"location"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

// SkillGroup is a named group of related skills.
type SkillGroup struct {
	Category         string   `json:"category"`
	Skills           []string `json:"skills"`
	ProficiencyLevel string   `json:"proficiencyLevel"`
}

// Summary is the career-level summary of the résumé.
type Summary struct {
	TotalYearsExperience int      `json:"totalYearsExperience"`
	PrimaryExpertise     []string `json:"primaryExpertise"`
	IndustryExperience   []string `json:"industryExperience"`
	LeadershipExperience string   `json:"leadershipExperience"`
	TechnicalBackground  string   `json:"technicalBackground"`
	KeyAchievements      []string `json:"keyAchievements"`
}

// CompetencyEvidence records how strongly a competency is evidenced.
type CompetencyEvidence struct {
	Strength     int      `json:"strength"`
	Examples     []string `json:"examples"`
	EvidenceType string   `json:"evidenceType"`
}

// Resume is the processed résumé document.
type Resume struct {
	PersonalInfo      PersonalInfo                  `json:"personalInfo"`
	WorkExperience    []WorkExperience              `json:"workExperience"`
	Education         []Education                   `json:"education"`
	Skills            []SkillGroup                  `json:"skills"`
	Summary           Summary                       `json:"summary"`
	CompetencyProfile map[string]CompetencyEvidence `json:"competencyProfile"`
}

// Load reads and parses the processed résumé JSON. When schemaPath is
// non-empty the document is validated against the schema first.
func Load(path, schemaPath string) (*Resume, error) {
	if schemaPath != "" {
		if err := schemas.ValidateJSON(schemaPath, path); err != nil {
			return nil, fmt.Errorf("resume failed schema validation: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resume: %w", err)
	}

	var r Resume
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse resume: %w", err)
	}
	return &r, nil
}

// ExperienceByCompany returns the first position whose company name contains
// the query, case-insensitively.
func (r *Resume) ExperienceByCompany(company string) *WorkExperience {
	needle := strings.ToLower(company)
	for i := range r.WorkExperience {
		if strings.Contains(strings.ToLower(r.WorkExperience[i].Company), needle) {
			return &r.WorkExperience[i]
		}
	}
	return nil
}

// ExperienceByCompetency returns positions tagged with the competency.
func (r *Resume) ExperienceByCompetency(competency string) []WorkExperience {
	var out []WorkExperience
	for _, exp := range r.WorkExperience {
		for _, comp := range exp.Competencies {
			if comp == competency {
				out = append(out, exp)
				break
			}
		}
	}
	return out
}

// Technologies returns the distinct technologies across work history and the
// skills section.
func (r *Resume) Technologies() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(tech string) {
		if _, ok := seen[tech]; ok {
			return
		}
		seen[tech] = struct{}{}
		out = append(out, tech)
	}
	for _, exp := range r.WorkExperience {
		for _, tech := range exp.Technologies {
			add(tech)
		}
	}
	for _, group := range r.Skills {
		for _, skill := range group.Skills {
			add(skill)
		}
	}
	return out
}

// KeyMetrics returns the distinct metrics across all positions.
func (r *Resume) KeyMetrics() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, exp := range r.WorkExperience {
		for _, m := range exp.Metrics {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}

// QuickSummary renders a one-line career summary for chat intros.
func (r *Resume) QuickSummary() string {
	return fmt.Sprintf("%s is a %s with %d years of experience in %s. Primary expertise in %s.",
		r.PersonalInfo.Name,
		r.Summary.LeadershipExperience,
		r.Summary.TotalYearsExperience,
		strings.Join(r.Summary.IndustryExperience, ", "),
		strings.Join(r.Summary.PrimaryExpertise, " and "))
}

// FormatExperienceForChat renders a position as a short markdown block with
// its top achievements.
func FormatExperienceForChat(exp WorkExperience) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** at **%s** (%s)", exp.Role, exp.Company, exp.Duration)
	achievements := exp.Achievements
	if len(achievements) > 3 {
		achievements = achievements[:3]
	}
	for _, a := range achievements {
		fmt.Fprintf(&b, "\n- %s", a)
	}
	return b.String()
}
