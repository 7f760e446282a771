package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/roylo/portfolio/internal/llm"
	"github.com/roylo/portfolio/internal/prompts"
	"github.com/roylo/portfolio/internal/search"
)

// ErrResumeUnavailable is returned when an intent requires the résumé and it
// was not loaded.
var ErrResumeUnavailable = errors.New("resume data not available")

// MatchedExperience is one position relevant to the analyzed job description.
type MatchedExperience struct {
	Company       string   `json:"company"`
	Role          string   `json:"role"`
	Relevance     string   `json:"relevance"`
	KeyHighlights []string `json:"keyHighlights"`
}

// CompetencyMatch is one competency relevant to the job description, with
// supporting evidence.
type CompetencyMatch struct {
	Competency string   `json:"competency"`
	Strength   int      `json:"strength"`
	Evidence   []string `json:"evidence"`
}

// GapAnalysis lists honest gaps and growth suggestions.
type GapAnalysis struct {
	MissingSkills    []string `json:"missingSkills"`
	DevelopmentAreas []string `json:"developmentAreas"`
	Suggestions      []string `json:"suggestions"`
}

// JDAnalysis is a job-candidate fit report.
type JDAnalysis struct {
	OverallMatch        int                 `json:"overallMatch"`
	MatchedExperience   []MatchedExperience `json:"matchedExperience"`
	MatchedCompetencies []CompetencyMatch   `json:"matchedCompetencies"`
	GapAnalysis         GapAnalysis         `json:"gapAnalysis"`
	Summary             string              `json:"summary"`
	SuggestedStories    []string            `json:"suggestedStories"`
}

// AnalyzeJobDescription matches the résumé and story corpus against a job
// description. Vector similarity is weighted heavily here since job postings
// rarely share exact vocabulary with the corpus. The model analysis falls
// back to a rule-based report when generation fails.
func (a *Assistant) AnalyzeJobDescription(ctx context.Context, jobDescription string) (JDAnalysis, error) {
	if a.resume == nil {
		return JDAnalysis{}, ErrResumeUnavailable
	}

	opts := search.DefaultOptions()
	opts.VectorWeight = 0.8
	opts.KeywordWeight = 0.2
	results, err := a.search.SearchStories(ctx, "job description requirements: "+jobDescription, opts)
	if err != nil {
		log.Printf("warning: story search failed for JD analysis: %v", err)
	}

	slugs := make([]string, len(results))
	var storyContext strings.Builder
	for i, result := range results {
		s := result.Story
		slugs[i] = s.Slug
		fmt.Fprintf(&storyContext, "\nStory %d: %s\nCompany: %s | Role: %s\nImpact: %s\nCompetencies: %s\nSummary: %s\nKey Results: %s\n",
			i+1, s.Title, s.Company, s.Role, s.ImpactLevel,
			strings.Join(s.Competencies, ", "), s.Summary,
			strings.Join(s.STAR.Results, " | "))
	}

	prompt := prompts.Format(prompts.MustGet("chat.json", "jd_analysis"), map[string]string{
		"Name":           a.name,
		"JobDescription": jobDescription,
		"Profile":        a.profileJSON(),
		"Stories":        storyContext.String(),
	})

	response, err := a.client.GenerateJSON(ctx, prompt, llm.TierAnalysis)
	if err != nil {
		log.Printf("warning: JD analysis generation failed, using rule-based fallback: %v", err)
		return a.ruleBasedJDAnalysis(jobDescription), nil
	}

	var analysis JDAnalysis
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(response)), &analysis); err != nil {
		log.Printf("warning: could not parse JD analysis: %v", err)
		return a.ruleBasedJDAnalysis(jobDescription), nil
	}

	analysis.SuggestedStories = slugs
	return analysis, nil
}

// profileJSON renders the full candidate profile for the analysis prompt.
func (a *Assistant) profileJSON() string {
	profile := map[string]any{
		"summary":           a.resume.Summary,
		"workExperience":    a.resume.WorkExperience,
		"education":         a.resume.Education,
		"competencyProfile": a.resume.CompetencyProfile,
	}
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// ruleBasedJDAnalysis builds a fit report from résumé matching alone.
func (a *Assistant) ruleBasedJDAnalysis(jobDescription string) JDAnalysis {
	match := a.resume.RelevantExperienceForJD(jobDescription)

	experience := match.RelevantExperience
	if len(experience) > 3 {
		experience = experience[:3]
	}
	matchedExperience := make([]MatchedExperience, len(experience))
	for i, exp := range experience {
		highlights := exp.Achievements
		if len(highlights) > 2 {
			highlights = highlights[:2]
		}
		matchedExperience[i] = MatchedExperience{
			Company:       exp.Company,
			Role:          exp.Role,
			Relevance:     fmt.Sprintf("%s experience in %s", exp.Duration, strings.Join(exp.Competencies, ", ")),
			KeyHighlights: highlights,
		}
	}

	matchedCompetencies := make([]CompetencyMatch, len(match.MatchedCompetencies))
	for i, comp := range match.MatchedCompetencies {
		strength := 5
		var evidence []string
		if profile, ok := a.resume.CompetencyProfile[comp]; ok {
			strength = profile.Strength
			evidence = profile.Examples
		}
		matchedCompetencies[i] = CompetencyMatch{Competency: comp, Strength: strength, Evidence: evidence}
	}

	return JDAnalysis{
		OverallMatch:        match.RelevanceScore,
		MatchedExperience:   matchedExperience,
		MatchedCompetencies: matchedCompetencies,
		GapAnalysis: GapAnalysis{
			Suggestions: []string{
				"Consider highlighting relevant project experience",
				"Emphasize leadership and technical skills",
			},
		},
		Summary: fmt.Sprintf("Based on %d years of experience in %s, there appears to be strong alignment with this role.",
			a.resume.Summary.TotalYearsExperience,
			strings.Join(a.resume.Summary.IndustryExperience, ", ")),
	}
}

// jdAnalysisMessage renders a JD analysis as a markdown chat message.
func (a *Assistant) jdAnalysisMessage(ctx context.Context, message string) Message {
	analysis, err := a.AnalyzeJobDescription(ctx, message)
	if err != nil {
		log.Printf("warning: JD analysis failed: %v", err)
		return newAssistantMessage(technicalDifficulties, TypeText)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Job Description Analysis\n\n**Overall Match: %d%%**\n\n%s\n", analysis.OverallMatch, analysis.Summary)

	if len(analysis.MatchedExperience) > 0 {
		b.WriteString("\n### Relevant Experience\n")
		for _, exp := range analysis.MatchedExperience {
			fmt.Fprintf(&b, "\n**%s** at **%s**\n%s\n", exp.Role, exp.Company, exp.Relevance)
			if len(exp.KeyHighlights) > 0 {
				b.WriteString("\n*Key Highlights:*\n")
				for _, h := range exp.KeyHighlights {
					fmt.Fprintf(&b, "- %s\n", h)
				}
			}
		}
	}

	if len(analysis.MatchedCompetencies) > 0 {
		b.WriteString("\n### Key Competencies\n")
		for _, comp := range analysis.MatchedCompetencies {
			fmt.Fprintf(&b, "\n**%s** (Strength: %d/10)\n", comp.Competency, comp.Strength)
			evidence := comp.Evidence
			if len(evidence) > 2 {
				evidence = evidence[:2]
			}
			for _, e := range evidence {
				fmt.Fprintf(&b, "- %s\n", e)
			}
		}
	}

	if len(analysis.GapAnalysis.Suggestions) > 0 {
		b.WriteString("\n### Development Opportunities\n")
		for _, s := range analysis.GapAnalysis.Suggestions {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}

	competencies := make([]string, len(analysis.MatchedCompetencies))
	for i, comp := range analysis.MatchedCompetencies {
		competencies[i] = comp.Competency
	}

	msg := newAssistantMessage(b.String(), TypeJDAnalysis)
	msg.Metadata = &Metadata{
		RelevanceScore:      analysis.OverallMatch,
		MatchedCompetencies: competencies,
		SuggestedStories:    analysis.SuggestedStories,
	}
	return msg
}
