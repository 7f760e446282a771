package processing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roylo/portfolio/internal/llm"
	"github.com/roylo/portfolio/internal/story"
)

const sampleStory = `---
title: "Scaling the Activation Team"
summary: "Grew the activation team while holding retention steady"
company: "Northwind"
role: "Director of Growth"
timeframe: "2022"
---

# Background

The company needed to scale onboarding as signups doubled year over year.

# What I Did

- Hired and mentored five new team members across two regions
- Rebuilt the onboarding flow around customer feedback

# Results

- 35% increase in activation within 3 months
- Retention held at 92% through the reorg
`

func writeStory(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// stubLLM returns a canned response or error for every call.
type stubLLM struct {
	response string
	err      error
}

func (s *stubLLM) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return s.response, s.err
}

func (s *stubLLM) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return s.response, s.err
}

func (s *stubLLM) Close() error { return nil }

func TestProcessFile_RuleBased(t *testing.T) {
	dir := t.TempDir()
	path := writeStory(t, dir, "scaling-activation.md", sampleStory)

	processor := NewProcessor(nil)
	s, err := processor.ProcessFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "scaling-activation", s.Slug)
	assert.Equal(t, "Scaling the Activation Team", s.Title)
	assert.Equal(t, "Northwind", s.Company)
	assert.Equal(t, "2022", s.Timeframe)
	assert.Equal(t, story.SeniorityExecutive, s.SeniorityLevel)
	assert.NotEmpty(t, s.Competencies)
	assert.NotEmpty(t, s.Metrics)
	assert.NotEmpty(t, s.Keywords)
	assert.NotEmpty(t, s.STAR.Situation)
	require.NoError(t, s.Validate())
}

func TestProcessFile_DefaultTimeframe(t *testing.T) {
	dir := t.TempDir()
	content := `---
title: "Quick Fix"
summary: "Fixed an outage"
company: "Acme"
role: "Engineer"
---

Resolved the incident.
`
	path := writeStory(t, dir, "quick-fix.md", content)

	processor := NewProcessor(nil)
	s, err := processor.ProcessFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Unknown", s.Timeframe)
}

func TestProcessFile_MissingFrontmatter(t *testing.T) {
	dir := t.TempDir()
	path := writeStory(t, dir, "bad.md", "---\ntitle: \"Only Title\"\n---\n\nBody.")

	processor := NewProcessor(nil)
	_, err := processor.ProcessFile(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frontmatter")
}

func TestProcessFile_EnhancementApplied(t *testing.T) {
	dir := t.TempDir()
	path := writeStory(t, dir, "scaling-activation.md", sampleStory)

	client := &stubLLM{response: `{
		"interviewCategories": ["scaling_teams"],
		"questionTypes": ["How do you scale a team?"],
		"additionalCompetencies": ["change_management"]
	}`}

	processor := NewProcessor(client)
	s, err := processor.ProcessFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"scaling_teams"}, s.InterviewCategories)
	assert.Equal(t, []string{"How do you scale a team?"}, s.QuestionTypes)
	assert.Contains(t, s.Competencies, "change_management")
}

func TestProcessFile_EnhancementFailureDegrades(t *testing.T) {
	dir := t.TempDir()
	path := writeStory(t, dir, "scaling-activation.md", sampleStory)

	client := &stubLLM{err: errors.New("model unavailable")}

	processor := NewProcessor(client)
	s, err := processor.ProcessFile(context.Background(), path)
	require.NoError(t, err)

	// Rule-based defaults stand in for the model output.
	assert.NotEmpty(t, s.Competencies)
	assert.NotContains(t, s.Competencies, "change_management")
}

func TestProcessDir_SkipsBadFiles(t *testing.T) {
	dir := t.TempDir()
	writeStory(t, dir, "good.md", sampleStory)
	writeStory(t, dir, "bad.md", "no frontmatter at all")
	writeStory(t, dir, "notes.txt", "ignored")

	processor := NewProcessor(nil)
	stories, err := processor.ProcessDir(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, "good", stories[0].Slug)
}

func TestGroupByCategory(t *testing.T) {
	stories := []story.Story{
		{Slug: "a", Competencies: []string{"leadership"}},
		{Slug: "b", Competencies: []string{"product_management", "growth"}},
		{Slug: "c", Competencies: []string{"obscure"}},
	}

	groups := GroupByCategory(stories)

	assert.Len(t, groups["leadership"], 1)
	assert.Len(t, groups["product"], 1)
	assert.Len(t, groups["business"], 1)
	// Unmatched stories land in personal.
	require.Len(t, groups["personal"], 1)
	assert.Equal(t, "c", groups["personal"][0].Slug)
}

func TestWriteCorpusRoundTrip(t *testing.T) {
	dir := t.TempDir()
	stories := []story.Story{
		{
			Slug: "lead-story", Title: "T", Summary: "S", Company: "Acme", Role: "VP",
			Competencies: []string{"leadership"},
			ImpactLevel:  story.ImpactHigh, SeniorityLevel: story.SeniorityExecutive,
		},
	}

	require.NoError(t, WriteCorpus(dir, stories))

	corpus, err := story.LoadCorpus(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, corpus.Len())
	got, _ := corpus.BySlug("lead-story")
	assert.NotNil(t, got)

	_, err = os.Stat(filepath.Join(dir, "index.json"))
	assert.NoError(t, err)
}
