package processing

import (
	"regexp"
	"sort"
	"strings"

	"github.com/roylo/portfolio/internal/story"
)

// competencyPatterns maps competency tags to the vocabulary that signals
// them. A tag is assigned when at least minCompetencyMatches distinct
// keywords appear in the story body. Ordered for deterministic output.
var competencyPatterns = []struct {
	name     string
	keywords []string
}{
	{"leadership", []string{
		"lead", "manage", "team", "culture", "people", "direct reports",
		"organization", "retention", "hire", "mentor", "coach", "vision",
	}},
	{"product_management", []string{
		"product", "feature", "roadmap", "launch", "user", "customer",
		"requirements", "stakeholder", "strategy", "vision", "mvp",
	}},
	{"innovation", []string{
		"new", "first", "novel", "innovative", "creative", "breakthrough",
		"pioneered", "invented", "developed from scratch", "ai", "llm",
	}},
	{"crisis_management", []string{
		"crisis", "emergency", "urgent", "pressure", "deadline", "critical",
		"risk", "threat", "challenge", "problem", "weeks",
	}},
	{"growth", []string{
		"scale", "expand", "grow", "increase", "revenue", "clients",
		"market", "adoption", "users", "arr", "yoy",
	}},
	{"technical", []string{
		"engineering", "system", "architecture", "api", "integration",
		"technical", "development", "code", "platform", "sdk",
	}},
	{"culture_building", []string{
		"culture", "values", "retention", "morale", "team building",
		"onboarding", "survey", "feedback", "collaboration",
	}},
	{"international", []string{
		"japan", "korea", "asia", "global", "international", "market expansion",
		"localization", "regional", "geographic",
	}},
}

const minCompetencyMatches = 2

var metricPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\d+%\s*(?:increase|improvement|growth|adoption|retention|client|annual)`),
	regexp.MustCompile(`(?i)\$\d+(?:,\d+)*\s*(?:M|million|K|thousand)`),
	regexp.MustCompile(`(?i)\d+\s*(?:clients?|users?|people|team members?|reports?)`),
	regexp.MustCompile(`(?i)\d+(?:,\d+)*\s*(?:MAU|DAU|requests?|transactions?)`),
	regexp.MustCompile(`(?i)(?:within|in)\s+\d+\s*(?:weeks?|months?|days?)`),
	regexp.MustCompile(`(?i)\d+(?:\.\d+)?\s*(?:M|million)\s*(?:ARR|revenue)`),
}

const (
	maxMetrics  = 10
	maxKeywords = 15
	maxActions  = 8
	maxResults  = 8
)

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "her": {}, "was": {}, "one": {},
	"our": {}, "had": {}, "have": {}, "this": {}, "that": {}, "with": {},
	"from": {}, "they": {}, "were": {}, "been": {}, "their": {}, "said": {},
	"each": {}, "which": {}, "will": {}, "what": {}, "there": {}, "when": {},
	"make": {}, "like": {}, "time": {}, "very": {}, "just": {}, "into": {},
	"more": {}, "then": {}, "some": {}, "would": {}, "could": {}, "other": {},
}

var nonWordChars = regexp.MustCompile(`[^\w\s]`)

// extraction is the rule-based portion of a processed story.
type extraction struct {
	Competencies   []string             `json:"competencies"`
	Metrics        []string             `json:"metrics"`
	Keywords       []string             `json:"keywords"`
	STAR           story.STARStructure  `json:"starStructure"`
	ImpactLevel    story.ImpactLevel    `json:"impactLevel"`
	SeniorityLevel story.SeniorityLevel `json:"seniorityLevel"`
}

func extractRuleBased(content string, fm Frontmatter) extraction {
	return extraction{
		Competencies:   extractCompetencies(content),
		Metrics:        extractMetrics(content),
		Keywords:       extractKeywords(content),
		STAR:           identifySTARStructure(content),
		ImpactLevel:    assessImpactLevel(content),
		SeniorityLevel: determineSeniorityLevel(fm.Role, content),
	}
}

func extractCompetencies(content string) []string {
	contentLower := strings.ToLower(content)

	var found []string
	for _, pattern := range competencyPatterns {
		matches := 0
		for _, keyword := range pattern.keywords {
			if strings.Contains(contentLower, keyword) {
				matches++
			}
		}
		if matches >= minCompetencyMatches {
			found = append(found, pattern.name)
		}
	}
	return found
}

func extractMetrics(content string) []string {
	seen := make(map[string]struct{})
	var metrics []string
	for _, pattern := range metricPatterns {
		for _, match := range pattern.FindAllString(content, -1) {
			if _, ok := seen[match]; ok {
				continue
			}
			seen[match] = struct{}{}
			metrics = append(metrics, match)
		}
	}
	if len(metrics) > maxMetrics {
		metrics = metrics[:maxMetrics]
	}
	return metrics
}

func extractKeywords(content string) []string {
	normalized := nonWordChars.ReplaceAllString(strings.ToLower(content), " ")

	counts := make(map[string]int)
	for _, word := range strings.Fields(normalized) {
		if len(word) <= 3 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		counts[word]++
	}

	words := make([]string, 0, len(counts))
	for word := range counts {
		words = append(words, word)
	}
	// Frequency descending, alphabetical within ties, so output is stable
	// across runs.
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > maxKeywords {
		words = words[:maxKeywords]
	}
	return words
}

// section is a markdown heading plus the text beneath it.
type section struct {
	title   string
	content string
}

func splitIntoSections(content string) []section {
	var sections []section
	current := section{}

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "#") {
			if current.title != "" || strings.TrimSpace(current.content) != "" {
				sections = append(sections, current)
			}
			current = section{title: strings.TrimLeft(line, "# ")}
			continue
		}
		current.content += line + "\n"
	}
	if current.title != "" || strings.TrimSpace(current.content) != "" {
		sections = append(sections, current)
	}
	return sections
}

func identifySTARStructure(content string) story.STARStructure {
	sections := splitIntoSections(content)
	return story.STARStructure{
		Situation: findSituation(sections),
		Task:      findTask(sections),
		Actions:   findActions(sections),
		Results:   findResults(sections),
	}
}

var situationKeywords = []string{"situation", "context", "background", "challenge", "problem"}

func findSituation(sections []section) string {
	for _, s := range sections {
		titleLower := strings.ToLower(s.title)
		for _, keyword := range situationKeywords {
			if strings.Contains(titleLower, keyword) {
				return strings.TrimSpace(s.content)
			}
		}
	}
	// No explicit situation section: fall back to the first paragraph.
	if len(sections) > 0 {
		first, _, _ := strings.Cut(sections[0].content, "\n\n")
		return strings.TrimSpace(first)
	}
	return ""
}

var (
	taskTitleKeywords  = []string{"task", "goal", "objective", "needed", "had to"}
	taskPhraseKeywords = []string{"needed to", "had to", "goal was"}
)

func findTask(sections []section) string {
	for _, s := range sections {
		titleLower := strings.ToLower(s.title)
		for _, keyword := range taskTitleKeywords {
			if strings.Contains(titleLower, keyword) {
				return strings.TrimSpace(s.content)
			}
		}
	}
	// Fall back to the first sentence containing a task-indicating phrase.
	for _, s := range sections {
		for _, sentence := range strings.Split(s.content, ".") {
			sentenceLower := strings.ToLower(sentence)
			for _, phrase := range taskPhraseKeywords {
				if strings.Contains(sentenceLower, phrase) {
					return strings.TrimSpace(sentence)
				}
			}
		}
	}
	return ""
}

var actionTitleKeywords = []string{"action", "did", "approach", "solution", "implemented", "steps"}

var listItemPrefix = regexp.MustCompile(`^[\s\-\*\d\.]+`)

func findActions(sections []section) []string {
	var actions []string
	for _, s := range sections {
		titleLower := strings.ToLower(s.title)
		matched := false
		for _, keyword := range actionTitleKeywords {
			if strings.Contains(titleLower, keyword) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		for _, line := range strings.Split(s.content, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if !strings.Contains(line, "-") && !strings.Contains(line, "*") && !strings.Contains(line, "1.") {
				continue
			}
			item := strings.TrimSpace(listItemPrefix.ReplaceAllString(line, ""))
			if len(item) > 10 {
				actions = append(actions, item)
			}
		}
	}
	if len(actions) > maxActions {
		actions = actions[:maxActions]
	}
	return actions
}

var (
	resultTitleKeywords = []string{"result", "outcome", "impact", "achieved", "success"}
	percentPattern      = regexp.MustCompile(`\d+%`)
)

func findResults(sections []section) []string {
	seen := make(map[string]struct{})
	var results []string
	add := func(item string) {
		if _, ok := seen[item]; ok {
			return
		}
		seen[item] = struct{}{}
		results = append(results, item)
	}

	for _, s := range sections {
		titleLower := strings.ToLower(s.title)
		matched := false
		for _, keyword := range resultTitleKeywords {
			if strings.Contains(titleLower, keyword) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		for _, line := range strings.Split(s.content, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if !strings.Contains(line, "-") && !strings.Contains(line, "*") &&
				!percentPattern.MatchString(line) && !strings.Contains(line, "achieved") {
				continue
			}
			item := strings.TrimSpace(listItemPrefix.ReplaceAllString(line, ""))
			if len(item) > 5 {
				add(item)
			}
		}
	}

	// Metrics anywhere in the document count as results too.
	var all strings.Builder
	for _, s := range sections {
		all.WriteString(s.content)
		all.WriteString("\n")
	}
	metrics := extractMetrics(all.String())
	if len(metrics) > 5 {
		metrics = metrics[:5]
	}
	for _, m := range metrics {
		add(m)
	}

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

var growthPercentPattern = regexp.MustCompile(`\d+%`)

func assessImpactLevel(content string) story.ImpactLevel {
	contentLower := strings.ToLower(content)

	switch {
	case strings.Contains(contentLower, "million"),
		strings.Contains(contentLower, "company"),
		strings.Contains(contentLower, "organization"),
		strings.Contains(contentLower, "strategic"),
		growthPercentPattern.MatchString(contentLower) &&
			(strings.Contains(contentLower, "growth") || strings.Contains(contentLower, "increase")):
		return story.ImpactHigh
	case strings.Contains(contentLower, "team"),
		strings.Contains(contentLower, "department"),
		strings.Contains(contentLower, "product"),
		strings.Contains(contentLower, "client"):
		return story.ImpactMedium
	}
	return story.ImpactLow
}

func determineSeniorityLevel(role, content string) story.SeniorityLevel {
	roleLower := strings.ToLower(role)
	contentLower := strings.ToLower(content)

	switch {
	case strings.Contains(roleLower, "director"),
		strings.Contains(roleLower, "vp"),
		strings.Contains(roleLower, "ceo"),
		strings.Contains(roleLower, "cto"),
		strings.Contains(roleLower, "founder"),
		strings.Contains(contentLower, "organization"),
		strings.Contains(contentLower, "company-wide"):
		return story.SeniorityExecutive
	case strings.Contains(roleLower, "senior"),
		strings.Contains(roleLower, "lead"),
		strings.Contains(roleLower, "principal"),
		strings.Contains(contentLower, "team") && strings.Contains(contentLower, "manage"):
		return story.SenioritySenior
	case strings.Contains(roleLower, "manager"),
		strings.Contains(contentLower, "project"):
		return story.SeniorityMid
	}
	return story.SeniorityJunior
}
