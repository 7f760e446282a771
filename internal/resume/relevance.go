package resume

import (
	"sort"
	"strings"

	"github.com/roylo/portfolio/internal/story"
)

// Relevance point values and score caps for matching work history against a
// job description.
const (
	rolePoints        = 3
	competencyPoints  = 2
	technologyPoints  = 1
	achievementPoints = 1

	experienceScorePerMatch = 20
	experienceScoreCap      = 60
	competencyScorePerMatch = 8
	competencyScoreCap      = 25
	technologyScorePerMatch = 3
	technologyScoreCap      = 15
)

// achievementKeywords are the verbs whose co-occurrence in an achievement and
// the job description counts as a weak signal.
var achievementKeywords = []string{
	"lead", "manage", "scale", "grow", "launch", "develop", "build", "create",
	"ai", "product", "team",
}

var impactRank = map[story.ImpactLevel]int{
	story.ImpactHigh:   3,
	story.ImpactMedium: 2,
	story.ImpactLow:    1,
}

var seniorityRank = map[story.SeniorityLevel]int{
	story.SeniorityExecutive: 4,
	story.SenioritySenior:    3,
	story.SeniorityMid:       2,
	story.SeniorityJunior:    1,
}

// JDMatch is the result of matching the résumé against a job description.
type JDMatch struct {
	RelevantExperience  []WorkExperience `json:"relevantExperience"`
	MatchedCompetencies []string         `json:"matchedCompetencies"`
	MatchedTechnologies []string         `json:"matchedTechnologies"`
	RelevanceScore      int              `json:"relevanceScore"`
}

// RelevantExperienceForJD scores every position against the job description
// and returns the matching ones ordered by impact and seniority, plus an
// overall 0-100 relevance score.
func (r *Resume) RelevantExperienceForJD(jobDescription string) JDMatch {
	jdLower := strings.ToLower(jobDescription)

	var relevant []WorkExperience
	matchedCompetencies := make(map[string]struct{})
	var competencyOrder []string
	matchedTech := make(map[string]struct{})
	var techOrder []string

	for _, exp := range r.WorkExperience {
		points := 0

		roleLower := strings.ToLower(exp.Role)
		if strings.Contains(jdLower, roleLower) ||
			(strings.Contains(roleLower, "product") && strings.Contains(jdLower, "product")) ||
			(strings.Contains(roleLower, "director") && strings.Contains(jdLower, "director")) {
			points += rolePoints
		}

		for _, comp := range exp.Competencies {
			if strings.Contains(jdLower, strings.ReplaceAll(comp, "_", " ")) {
				if _, ok := matchedCompetencies[comp]; !ok {
					matchedCompetencies[comp] = struct{}{}
					competencyOrder = append(competencyOrder, comp)
				}
				points += competencyPoints
			}
		}

		for _, tech := range exp.Technologies {
			if strings.Contains(jdLower, strings.ToLower(tech)) {
				if _, ok := matchedTech[tech]; !ok {
					matchedTech[tech] = struct{}{}
					techOrder = append(techOrder, tech)
				}
				points += technologyPoints
			}
		}

		for _, item := range append(append([]string{}, exp.Achievements...), exp.Responsibilities...) {
			if hasSharedKeyword(strings.ToLower(item), jdLower) {
				points += achievementPoints
			}
		}

		if points > 0 {
			relevant = append(relevant, exp)
		}
	}

	sort.SliceStable(relevant, func(i, j int) bool {
		scoreI := impactRank[relevant[i].ImpactLevel] + seniorityRank[relevant[i].SeniorityLevel]
		scoreJ := impactRank[relevant[j].ImpactLevel] + seniorityRank[relevant[j].SeniorityLevel]
		return scoreI > scoreJ
	})

	return JDMatch{
		RelevantExperience:  relevant,
		MatchedCompetencies: competencyOrder,
		MatchedTechnologies: techOrder,
		RelevanceScore:      relevanceScore(len(relevant), len(competencyOrder), len(techOrder)),
	}
}

func hasSharedKeyword(text, jobDescription string) bool {
	for _, keyword := range achievementKeywords {
		if strings.Contains(text, keyword) && strings.Contains(jobDescription, keyword) {
			return true
		}
	}
	return false
}

// relevanceScore combines match counts into a capped 0-100 score. Experience
// breadth dominates; competency and technology overlap refine it.
func relevanceScore(expCount, compCount, techCount int) int {
	return capped(expCount*experienceScorePerMatch, experienceScoreCap) +
		capped(compCount*competencyScorePerMatch, competencyScoreCap) +
		capped(techCount*technologyScorePerMatch, technologyScoreCap)
}

func capped(v, maxVal int) int {
	if v > maxVal {
		return maxVal
	}
	return v
}
