package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/roylo/portfolio/internal/llm"
	"github.com/roylo/portfolio/internal/prompts"
)

// SuggestionGroup is a titled list of interaction suggestions.
type SuggestionGroup struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

// InteractionSuggestions advises a visitor on how to engage with the owner.
type InteractionSuggestions struct {
	Suggestions         []SuggestionGroup `json:"suggestions"`
	PersonalityInsights []string          `json:"personalityInsights"`
}

// GenerateInteractionSuggestions produces engagement advice from the résumé
// profile, with a canned fallback when generation fails.
func (a *Assistant) GenerateInteractionSuggestions(ctx context.Context, contextText string) (InteractionSuggestions, error) {
	if a.resume == nil {
		return InteractionSuggestions{}, nil
	}

	prompt := prompts.Format(prompts.MustGet("chat.json", "suggestions"), map[string]string{
		"Name":    a.name,
		"Context": contextText,
		"Profile": a.backgroundJSON(),
	})

	response, err := a.client.GenerateJSON(ctx, prompt, llm.TierChat)
	if err != nil {
		log.Printf("warning: suggestion generation failed, using fallback: %v", err)
		return fallbackSuggestions(), nil
	}

	var suggestions InteractionSuggestions
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(response)), &suggestions); err != nil {
		log.Printf("warning: could not parse suggestions: %v", err)
		return fallbackSuggestions(), nil
	}
	return suggestions, nil
}

func fallbackSuggestions() InteractionSuggestions {
	return InteractionSuggestions{
		Suggestions: []SuggestionGroup{
			{
				Category: "Interview Approach",
				Items: []string{
					"Ask about specific product challenges and solutions",
					"Focus on leadership and team building experience",
					"Discuss technical architecture decisions",
				},
			},
			{
				Category: "Discussion Topics",
				Items: []string{
					"AI/ML product development experience",
					"Startup scaling and acquisition insights",
					"Cross-cultural team management",
				},
			},
			{
				Category: "Questions to Ask",
				Items: []string{
					"How do you approach product-market fit validation?",
					"What's your experience with AI integration in products?",
					"How do you build and maintain high-performing teams?",
				},
			},
		},
		PersonalityInsights: []string{
			"Values data-driven decision making",
			"Strong focus on team culture and retention",
			"Combines technical depth with business strategy",
		},
	}
}

// suggestionMessage renders interaction suggestions as a markdown chat
// message.
func (a *Assistant) suggestionMessage(ctx context.Context, message string) Message {
	suggestions, err := a.GenerateInteractionSuggestions(ctx, message)
	if err != nil {
		log.Printf("warning: suggestion message failed: %v", err)
		return newAssistantMessage(technicalDifficulties, TypeText)
	}

	var b strings.Builder
	b.WriteString("## Interaction Suggestions\n")
	for _, group := range suggestions.Suggestions {
		fmt.Fprintf(&b, "\n### %s\n", group.Category)
		for _, item := range group.Items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	if len(suggestions.PersonalityInsights) > 0 {
		b.WriteString("\n### Personality Insights\n")
		for _, insight := range suggestions.PersonalityInsights {
			fmt.Fprintf(&b, "- %s\n", insight)
		}
	}
	return newAssistantMessage(b.String(), TypeSuggestion)
}
