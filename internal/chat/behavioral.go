package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/roylo/portfolio/internal/llm"
	"github.com/roylo/portfolio/internal/prompts"
	"github.com/roylo/portfolio/internal/search"
	"github.com/roylo/portfolio/internal/story"
)

// Behavioral answer tuning. Five candidates are retrieved and the three most
// diverse survive, so one dominant competency cannot fill every card.
const (
	behavioralCandidates = 5
	behavioralSelected   = 3

	noStoryConfidence  = 20
	fallbackConfidence = 60
	defaultConfidence  = 75
)

// RelatedStory is a compact story reference returned with a behavioral answer.
type RelatedStory struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Slug      string `json:"slug"`
	Relevance string `json:"relevance"`
}

// BehavioralAnswer is a STAR-method response to a behavioral interview
// question.
type BehavioralAnswer struct {
	Answer          string         `json:"answer"`
	RelevantStories []RelatedStory `json:"relevantStories"`
	Confidence      int            `json:"confidence"`
	Stories         []story.Story  `json:"-"`
}

// AnswerBehavioralQuestion retrieves diverse supporting stories and drafts a
// first-person STAR answer. Model failures fall back to the primary story's
// summary.
func (a *Assistant) AnswerBehavioralQuestion(ctx context.Context, question string) (BehavioralAnswer, error) {
	opts := search.DefaultOptions()
	opts.Limit = behavioralCandidates
	results, err := a.search.SearchStories(ctx, "behavioral interview question: "+question, opts)
	if err != nil {
		return BehavioralAnswer{}, fmt.Errorf("story search failed: %w", err)
	}

	candidates := make([]story.Story, len(results))
	for i, result := range results {
		candidates[i] = result.Story
	}

	stories := search.SelectDiverse(candidates, behavioralSelected)
	if len(stories) == 0 {
		return BehavioralAnswer{
			Answer: "I don't have a specific story that directly addresses this question, but my background shows strong experience in leadership, product management, and innovation. I'd be happy to discuss this further in more detail.",
			Confidence: noStoryConfidence,
		}, nil
	}

	prompt := prompts.Format(prompts.MustGet("chat.json", "behavioral"), map[string]string{
		"Name":       a.name,
		"Question":   question,
		"Stories":    formatStoriesForPrompt(stories),
		"Background": a.backgroundJSON(),
	})

	response, err := a.client.GenerateJSON(ctx, prompt, llm.TierChat)
	if err != nil {
		log.Printf("warning: behavioral answer generation failed: %v", err)
		return fallbackBehavioralAnswer(stories), nil
	}

	var parsed struct {
		Answer     string `json:"answer"`
		Confidence int    `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(response)), &parsed); err != nil {
		log.Printf("warning: could not parse behavioral answer: %v", err)
		return fallbackBehavioralAnswer(stories), nil
	}
	if parsed.Answer == "" {
		parsed.Answer = "I'd be happy to discuss this further in person."
	}
	if parsed.Confidence == 0 {
		parsed.Confidence = defaultConfidence
	}

	return BehavioralAnswer{
		Answer:          parsed.Answer,
		RelevantStories: relatedStories(stories, "This story demonstrates "),
		Confidence:      parsed.Confidence,
		Stories:         stories,
	}, nil
}

func fallbackBehavioralAnswer(stories []story.Story) BehavioralAnswer {
	primary := stories[0]
	return BehavioralAnswer{
		Answer:          fmt.Sprintf("Based on my experience, particularly at %s, %s", primary.Company, primary.Summary),
		RelevantStories: relatedStories(stories, "Relevant experience in "),
		Confidence:      fallbackConfidence,
		Stories:         stories,
	}
}

func relatedStories(stories []story.Story, relevancePrefix string) []RelatedStory {
	out := make([]RelatedStory, len(stories))
	for i, s := range stories {
		out[i] = RelatedStory{
			Title:     s.Title,
			Summary:   s.Summary,
			Slug:      s.Slug,
			Relevance: relevancePrefix + strings.Join(s.TopCompetencies(3), ", "),
		}
	}
	return out
}

func formatStoriesForPrompt(stories []story.Story) string {
	var b strings.Builder
	for i, s := range stories {
		fmt.Fprintf(&b, "=== STORY %d: %s ===\n", i+1, s.Title)
		fmt.Fprintf(&b, "Company: %s\nRole: %s\nTimeframe: %s\nSummary: %s\n", s.Company, s.Role, s.Timeframe, s.Summary)
		fmt.Fprintf(&b, "Competencies Demonstrated: %s\n", strings.Join(s.Competencies, ", "))
		fmt.Fprintf(&b, "Impact Level: %s\n", s.ImpactLevel)
		if len(s.QuestionTypes) > 0 {
			fmt.Fprintf(&b, "Question Types This Addresses: %s\n", strings.Join(s.QuestionTypes, ", "))
		}
		fmt.Fprintf(&b, "\nFULL STORY CONTENT:\n%s\n", s.Content)
		fmt.Fprintf(&b, "\nSTAR STRUCTURE:\n- Situation: %s\n- Task: %s\n- Actions: %s\n- Results: %s\n\n",
			s.STAR.Situation, s.STAR.Task,
			strings.Join(s.STAR.Actions, " | "), strings.Join(s.STAR.Results, " | "))
	}
	return b.String()
}

// behavioralMessage wraps a behavioral answer as a chat message with related
// story cards.
func (a *Assistant) behavioralMessage(ctx context.Context, message string) Message {
	answer, err := a.AnswerBehavioralQuestion(ctx, message)
	if err != nil {
		log.Printf("warning: behavioral question failed: %v", err)
		return newAssistantMessage(technicalDifficulties, TypeText)
	}

	msg := newAssistantMessage(answer.Answer, TypeBehavioral)
	slugs := make([]string, len(answer.RelevantStories))
	for i, s := range answer.RelevantStories {
		slugs[i] = s.Slug
	}
	msg.Metadata = &Metadata{
		RelevanceScore:   answer.Confidence,
		SuggestedStories: slugs,
	}

	if len(answer.RelevantStories) > 0 {
		cards := make([]CarouselCard, len(answer.RelevantStories))
		for i, related := range answer.RelevantStories {
			card := CarouselCard{
				ID:          related.Slug,
				Title:       related.Title,
				Description: related.Summary,
				Details:     related.Relevance,
			}
			if i < len(answer.Stories) {
				full := answer.Stories[i]
				card.Metadata = CardMetadata{
					Company:      full.Company,
					Role:         full.Role,
					Impact:       string(full.ImpactLevel),
					Competencies: full.TopCompetencies(3),
				}
			}
			cards[i] = card
		}
		msg.CarouselCards = &CarouselCards{Title: "Related Stories", Cards: cards}
	}
	return msg
}
