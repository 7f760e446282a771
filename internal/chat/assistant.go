package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/roylo/portfolio/internal/llm"
	"github.com/roylo/portfolio/internal/prompts"
	"github.com/roylo/portfolio/internal/resume"
	"github.com/roylo/portfolio/internal/search"
)

// technicalDifficulties is shown to users whenever response generation fails
// outright. Raw errors never reach the client.
const technicalDifficulties = "I'm experiencing some technical difficulties. Please try again or reach out directly."

// StorySearcher is the retrieval dependency of the assistant. *search.Hybrid
// satisfies it.
type StorySearcher interface {
	SearchStories(ctx context.Context, query string, opts search.Options) ([]search.Result, error)
}

// Assistant answers portfolio chat messages in the owner's voice.
type Assistant struct {
	search StorySearcher
	resume *resume.Resume
	client llm.Client
	name   string
}

// NewAssistant creates an assistant. resume may be nil when the résumé is not
// provisioned; resume-backed intents then degrade gracefully.
func NewAssistant(searcher StorySearcher, r *resume.Resume, client llm.Client) *Assistant {
	name := "the portfolio owner"
	if r != nil && r.PersonalInfo.Name != "" {
		name = r.PersonalInfo.Name
	}
	return &Assistant{search: searcher, resume: r, client: client, name: name}
}

// ProcessMessage routes a user message by intent and returns the assistant
// response. Errors are absorbed into fallback messages.
func (a *Assistant) ProcessMessage(ctx context.Context, message string) Message {
	messageLower := strings.ToLower(message)

	switch {
	case containsAny(messageLower, "job description", "jd", "role"):
		return a.jdAnalysisMessage(ctx, message)
	case containsAny(messageLower, "behavioral", "interview", "tell me about", "describe a time"):
		return a.behavioralMessage(ctx, message)
	case containsAny(messageLower, "how to", "interact", "approach", "suggest"):
		return a.suggestionMessage(ctx, message)
	default:
		return a.generalMessage(ctx, message)
	}
}

func containsAny(s string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

// generalMessage answers open-ended questions in the owner's voice, backed by
// the top few relevant stories.
func (a *Assistant) generalMessage(ctx context.Context, message string) Message {
	if a.resume == nil {
		return newAssistantMessage(
			"I don't have access to my complete background information right now. Please try again later.",
			TypeText)
	}

	opts := search.DefaultOptions()
	opts.Limit = 3
	opts.VectorWeight = 0.6
	opts.KeywordWeight = 0.4
	results, err := a.search.SearchStories(ctx, message, opts)
	if err != nil {
		log.Printf("warning: story search failed for general message: %v", err)
	}

	var stories strings.Builder
	if len(results) > 0 {
		stories.WriteString("RELEVANT STORIES & EXAMPLES:\n")
		for i, result := range results {
			preview := result.Story.Content
			if len(preview) > 400 {
				preview = preview[:400] + "..."
			}
			fmt.Fprintf(&stories, "\nStory %d: %s\nCompany: %s | Role: %s\nSummary: %s\nKey Competencies: %s\nImpact Level: %s\nContent Preview: %s\n",
				i+1, result.Story.Title, result.Story.Company, result.Story.Role,
				result.Story.Summary, strings.Join(result.Story.Competencies, ", "),
				result.Story.ImpactLevel, preview)
		}
	}

	prompt := prompts.Format(prompts.MustGet("chat.json", "general"), map[string]string{
		"Name":       a.name,
		"Question":   message,
		"Background": a.backgroundJSON(),
		"Stories":    stories.String(),
	})

	content, err := a.client.GenerateContent(ctx, prompt, llm.TierChat)
	if err != nil {
		log.Printf("warning: general chat generation failed: %v", err)
		return newAssistantMessage(technicalDifficulties, TypeText)
	}
	return newAssistantMessage(content, TypeText)
}

// backgroundJSON renders the résumé context block shared by the chat prompts:
// summary, recent positions, and the strongest competencies.
func (a *Assistant) backgroundJSON() string {
	if a.resume == nil {
		return "{}"
	}

	experience := a.resume.WorkExperience
	if len(experience) > 4 {
		experience = experience[:4]
	}

	background := map[string]any{
		"summary":           a.resume.Summary,
		"workExperience":    experience,
		"competencyProfile": topCompetencies(a.resume, 8),
	}
	data, err := json.MarshalIndent(background, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// topCompetencies returns the n strongest competencies from the profile,
// strongest first.
func topCompetencies(r *resume.Resume, n int) []map[string]any {
	type entry struct {
		name     string
		evidence resume.CompetencyEvidence
	}
	entries := make([]entry, 0, len(r.CompetencyProfile))
	for name, evidence := range r.CompetencyProfile {
		entries = append(entries, entry{name, evidence})
	}
	// Strength descending, name ascending for stable prompt content.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].evidence.Strength != entries[j].evidence.Strength {
			return entries[i].evidence.Strength > entries[j].evidence.Strength
		}
		return entries[i].name < entries[j].name
	})
	if len(entries) > n {
		entries = entries[:n]
	}

	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]any{
			"competency": e.name,
			"strength":   e.evidence.Strength,
			"examples":   e.evidence.Examples,
		})
	}
	return out
}
