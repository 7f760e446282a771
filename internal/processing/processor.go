package processing

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/roylo/portfolio/internal/llm"
	"github.com/roylo/portfolio/internal/prompts"
	"github.com/roylo/portfolio/internal/story"
)

// Processor converts markdown story files into corpus records. When an LLM
// client is configured, extraction is enhanced with model-derived interview
// categories and question types; otherwise rule-based defaults apply.
type Processor struct {
	client llm.Client
}

// NewProcessor creates a story processor. client may be nil for rule-based
// processing only.
func NewProcessor(client llm.Client) *Processor {
	return &Processor{client: client}
}

// enhancement is the model's additive analysis of a story.
type enhancement struct {
	InterviewCategories    []string `json:"interviewCategories"`
	QuestionTypes          []string `json:"questionTypes"`
	AdditionalCompetencies []string `json:"additionalCompetencies"`
}

// ProcessFile converts one markdown story file into a Story. The slug is the
// file name without extension.
func (p *Processor) ProcessFile(ctx context.Context, path string) (story.Story, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return story.Story{}, fmt.Errorf("failed to read story file: %w", err)
	}

	fm, content, err := ParseDocument(raw)
	if err != nil {
		return story.Story{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	if err := fm.Validate(); err != nil {
		return story.Story{}, fmt.Errorf("invalid frontmatter in %s: %w", filepath.Base(path), err)
	}

	extracted := extractRuleBased(content, fm)
	enhanced := p.enhance(ctx, content, fm, extracted)

	timeframe := fm.Timeframe
	if timeframe == "" {
		timeframe = "Unknown"
	}

	interviewCategories := enhanced.InterviewCategories
	if len(interviewCategories) == 0 {
		interviewCategories = defaultInterviewCategories(extracted.Competencies)
	}
	questionTypes := enhanced.QuestionTypes
	if len(questionTypes) == 0 {
		questionTypes = defaultQuestionTypes(extracted.Competencies)
	}

	return story.Story{
		Slug:                strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Title:               fm.Title,
		Summary:             fm.Summary,
		Company:             fm.Company,
		Role:                fm.Role,
		Timeframe:           timeframe,
		Competencies:        mergeUnique(extracted.Competencies, enhanced.AdditionalCompetencies),
		InterviewCategories: interviewCategories,
		QuestionTypes:       questionTypes,
		Metrics:             extracted.Metrics,
		Keywords:            extracted.Keywords,
		STAR:                extracted.STAR,
		ImpactLevel:         extracted.ImpactLevel,
		SeniorityLevel:      extracted.SeniorityLevel,
		Content:             content,
	}, nil
}

// ProcessDir processes every .md file under dir (recursively). Files that
// fail are logged and skipped; the error return covers only directory access.
func (p *Processor) ProcessDir(ctx context.Context, dir string) ([]story.Story, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".md") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk stories directory: %w", err)
	}
	sort.Strings(paths)

	var stories []story.Story
	for _, path := range paths {
		s, err := p.ProcessFile(ctx, path)
		if err != nil {
			log.Printf("warning: skipping %s: %v", filepath.Base(path), err)
			continue
		}
		stories = append(stories, s)
	}
	return stories, nil
}

// enhance asks the model for additive analysis. Failures degrade to an empty
// enhancement so rule-based output stands on its own.
func (p *Processor) enhance(ctx context.Context, content string, fm Frontmatter, extracted extraction) enhancement {
	if p.client == nil {
		return enhancement{}
	}

	metadata, err := json.MarshalIndent(fm, "", "  ")
	if err != nil {
		return enhancement{}
	}
	extractedJSON, err := json.MarshalIndent(extracted, "", "  ")
	if err != nil {
		return enhancement{}
	}

	template, err := prompts.Get("processing.json", "enhance_story")
	if err != nil {
		log.Printf("warning: enhancement prompt unavailable: %v", err)
		return enhancement{}
	}
	prompt := prompts.Format(template, map[string]string{
		"Metadata":   string(metadata),
		"Content":    content,
		"Extraction": string(extractedJSON),
	})

	response, err := p.client.GenerateJSON(ctx, prompt, llm.TierChat)
	if err != nil {
		log.Printf("warning: LLM enhancement failed, using rule-based extraction: %v", err)
		return enhancement{}
	}

	var enhanced enhancement
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(response)), &enhanced); err != nil {
		log.Printf("warning: could not parse enhancement response: %v", err)
		return enhancement{}
	}
	return enhanced
}

var interviewCategoryMap = map[string][]string{
	"leadership":        {"leadership_and_management", "team_building"},
	"crisis_management": {"working_under_pressure", "problem_solving"},
	"innovation":        {"driving_innovation", "leading_change"},
	"growth":            {"scaling_business", "achieving_results"},
	"culture_building":  {"building_team_culture", "employee_development"},
}

var questionTypeMap = map[string][]string{
	"leadership":        {"Tell me about a time you led a team", "How do you motivate people?"},
	"crisis_management": {"Describe a time you worked under pressure", "Tell me about a challenging situation"},
	"innovation":        {"Give an example of when you innovated", "How do you approach new challenges?"},
	"growth":            {"Tell me about a time you achieved significant results", "How do you drive growth?"},
}

func defaultInterviewCategories(competencies []string) []string {
	return collectMapped(interviewCategoryMap, competencies)
}

func defaultQuestionTypes(competencies []string) []string {
	return collectMapped(questionTypeMap, competencies)
}

func collectMapped(m map[string][]string, competencies []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, comp := range competencies {
		for _, entry := range m[comp] {
			if _, ok := seen[entry]; ok {
				continue
			}
			seen[entry] = struct{}{}
			out = append(out, entry)
		}
	}
	return out
}

func mergeUnique(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, entry := range list {
			if _, ok := seen[entry]; ok {
				continue
			}
			seen[entry] = struct{}{}
			out = append(out, entry)
		}
	}
	return out
}
