package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roylo/portfolio/internal/story"
)

func keywordCorpus() *story.Corpus {
	return story.NewCorpus([]story.Story{
		{
			Slug:           "leading-through-change",
			Title:          "Leading Through Change",
			Summary:        "Led the organization through a strategic pivot",
			Company:        "BotBonnie",
			Role:           "CEO",
			Competencies:   []string{"leadership", "crisis_management"},
			Keywords:       []string{"pivot", "strategy"},
			ImpactLevel:    story.ImpactHigh,
			SeniorityLevel: story.SeniorityExecutive,
		},
		{
			Slug:           "enterprise-launch",
			Title:          "Enterprise Product Launch",
			Summary:        "Launched an enterprise product line",
			Company:        "Appier",
			Role:           "Senior PM",
			Competencies:   []string{"product_management"},
			Keywords:       []string{"enterprise", "launch"},
			QuestionTypes:  []string{"Tell me about a time you led a launch"},
			ImpactLevel:    story.ImpactMedium,
			SeniorityLevel: story.SenioritySenior,
		},
		{
			Slug:           "team-mentoring",
			Title:          "Mentoring a Growing Team",
			Summary:        "Built a mentoring program",
			Company:        "Appier",
			Role:           "Senior PM",
			Competencies:   []string{"culture_building"},
			Keywords:       []string{"mentoring"},
			ImpactLevel:    story.ImpactLow,
			SeniorityLevel: story.SenioritySenior,
		},
	})
}

func TestKeywordScorer_Deterministic(t *testing.T) {
	scorer := NewKeywordScorer(keywordCorpus(), nil)

	first := scorer.Search("leadership strategy", 10)
	for i := 0; i < 5; i++ {
		again := scorer.Search("leadership strategy", 10)
		require.Equal(t, len(first), len(again))
		for j := range first {
			assert.Equal(t, first[j].Story.Slug, again[j].Story.Slug)
			assert.Equal(t, first[j].Score, again[j].Score)
		}
	}
}

func TestKeywordScorer_ZeroScoresDropped(t *testing.T) {
	scorer := NewKeywordScorer(keywordCorpus(), nil)

	results := scorer.Search("completely unrelated topic", 10)
	assert.Empty(t, results)
}

func TestKeywordScorer_CompetencyMatch(t *testing.T) {
	scorer := NewKeywordScorer(keywordCorpus(), nil)

	// "crisis management" matches the underscored competency tag.
	stories := scorer.FindRelevant("crisis management", 10)
	require.NotEmpty(t, stories)
	assert.Equal(t, "leading-through-change", stories[0].Slug)
}

func TestKeywordScorer_QuestionTypeMatch(t *testing.T) {
	scorer := NewKeywordScorer(keywordCorpus(), nil)

	// The semantic pattern table pairs "time"-style queries with
	// "tell"-style question types.
	stories := scorer.FindRelevant("tell me about a time you faced pressure", 10)
	require.NotEmpty(t, stories)
	assert.Equal(t, "enterprise-launch", stories[0].Slug)
}

func TestKeywordScorer_ImpactWeightBreaksTies(t *testing.T) {
	corpus := story.NewCorpus([]story.Story{
		{
			Slug: "low", Title: "Quiet Quarter", Summary: "A modest win",
			Company: "Acme", Role: "PM", Keywords: []string{"shared"},
			ImpactLevel: story.ImpactLow, SeniorityLevel: story.SeniorityMid,
		},
		{
			Slug: "high", Title: "Big Quarter", Summary: "A company win",
			Company: "Beta", Role: "PM", Keywords: []string{"shared"},
			ImpactLevel: story.ImpactHigh, SeniorityLevel: story.SeniorityMid,
		},
	})
	scorer := NewKeywordScorer(corpus, nil)

	stories := scorer.FindRelevant("shared", 10)
	require.Len(t, stories, 2)
	assert.Equal(t, "high", stories[0].Slug)
}

func TestKeywordScorer_NormalizedScoreBounds(t *testing.T) {
	scorer := NewKeywordScorer(keywordCorpus(), nil)

	results := scorer.Search("leadership enterprise mentoring strategy", 10)
	require.NotEmpty(t, results)

	assert.Equal(t, 1.0, results[0].Score, "top result scores 1.0")
	for _, r := range results {
		assert.Greater(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0)
	}
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Score, results[i-1].Score)
	}
}

func TestKeywordScorer_DuplicateSlugsScoredOnce(t *testing.T) {
	corpus := story.NewCorpus([]story.Story{
		{
			Slug: "dup", Title: "First Copy", Summary: "One",
			Company: "Acme", Role: "PM", Keywords: []string{"match"},
			ImpactLevel: story.ImpactLow, SeniorityLevel: story.SeniorityMid,
		},
		{
			Slug: "dup", Title: "Second Copy", Summary: "Two",
			Company: "Acme", Role: "PM", Keywords: []string{"match"},
			ImpactLevel: story.ImpactLow, SeniorityLevel: story.SeniorityMid,
		},
	})
	scorer := NewKeywordScorer(corpus, nil)

	stories := scorer.FindRelevant("match", 10)
	require.Len(t, stories, 1)
	assert.Equal(t, "First Copy", stories[0].Title)
}

func TestKeywordScorer_LimitRespected(t *testing.T) {
	scorer := NewKeywordScorer(keywordCorpus(), nil)

	stories := scorer.FindRelevant("leadership enterprise mentoring strategy", 1)
	assert.Len(t, stories, 1)
}

type yesMatcher struct{}

func (yesMatcher) Matches(_, _ string) bool { return true }

func TestKeywordScorer_CustomMatcher(t *testing.T) {
	scorer := NewKeywordScorer(keywordCorpus(), yesMatcher{})

	// With an always-matching matcher, the story carrying a question type
	// scores even for an otherwise unrelated query.
	stories := scorer.FindRelevant("zzz", 10)
	require.Len(t, stories, 1)
	assert.Equal(t, "enterprise-launch", stories[0].Slug)
}
