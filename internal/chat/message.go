// Package chat generates assistant responses over the story corpus and the
// processed résumé. Incoming messages are routed by intent to a behavioral
// answer, a job-description analysis, interaction suggestions, or a general
// persona response, each with a rule-based fallback so users never see a raw
// model error.
package chat

import (
	"time"

	"github.com/google/uuid"
)

// MessageType classifies an assistant response for client rendering.
type MessageType string

// Response types.
const (
	TypeText       MessageType = "text"
	TypeBehavioral MessageType = "behavioral-question"
	TypeJDAnalysis MessageType = "jd-analysis"
	TypeSuggestion MessageType = "suggestion"
)

// Metadata carries ranking context alongside a response.
type Metadata struct {
	RelevanceScore      int      `json:"relevanceScore,omitempty"`
	MatchedCompetencies []string `json:"matchedCompetencies,omitempty"`
	SuggestedStories    []string `json:"suggestedStories,omitempty"`
}

// CardMetadata is the provenance block on a carousel card.
type CardMetadata struct {
	Company      string   `json:"company,omitempty"`
	Role         string   `json:"role,omitempty"`
	Impact       string   `json:"impact,omitempty"`
	Competencies []string `json:"competencies,omitempty"`
}

// CarouselCard is one related-story card attached to a response.
type CarouselCard struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Details     string       `json:"details,omitempty"`
	Metadata    CardMetadata `json:"metadata"`
}

// CarouselCards is a titled group of related-story cards.
type CarouselCards struct {
	Title string         `json:"title"`
	Cards []CarouselCard `json:"cards"`
}

// Message is an assistant response.
type Message struct {
	ID            string         `json:"id"`
	Content       string         `json:"content"`
	Role          string         `json:"role"`
	Timestamp     time.Time      `json:"timestamp"`
	Type          MessageType    `json:"type"`
	Metadata      *Metadata      `json:"metadata,omitempty"`
	CarouselCards *CarouselCards `json:"carouselCards,omitempty"`
}

func newAssistantMessage(content string, msgType MessageType) Message {
	return Message{
		ID:        uuid.NewString(),
		Content:   content,
		Role:      "assistant",
		Timestamp: time.Now().UTC(),
		Type:      msgType,
	}
}
