package search

import (
	"sort"
	"strings"

	"github.com/roylo/portfolio/internal/story"
)

// Lexical match points. The question-type signal is strongest because a
// matching question type is the most direct evidence a story answers the
// visitor's question.
const (
	titlePoints        = 3
	summaryPoints      = 2
	competencyPoints   = 2
	keywordPoints      = 1
	categoryPoints     = 2
	questionTypePoints = 3
)

// minNormalizedScore floors rank-normalized keyword scores so even the last
// ranked story keeps a usable score for fusion.
const minNormalizedScore = 0.1

// SemanticMatcher decides whether a query semantically matches one of a
// story's question types. It is a pluggable strategy so the matching table
// can be refined without touching the merge or re-rank logic.
type SemanticMatcher interface {
	Matches(query, questionType string) bool
}

// patternMatcher is the default SemanticMatcher: a small hand-coded table of
// query keyword classes paired with question-type keyword classes.
type patternMatcher struct{}

var semanticPatterns = []struct {
	queryKeywords []string
	typeKeywords  []string
}{
	{[]string{"time", "when", "example"}, []string{"describe", "tell", "example"}},
	{[]string{"challenge", "difficult", "problem"}, []string{"challenge", "difficult", "obstacle"}},
	{[]string{"lead", "leadership", "manage"}, []string{"lead", "manage", "leadership"}},
	{[]string{"team", "teamwork", "collaboration"}, []string{"team", "collaborate", "work"}},
}

func (patternMatcher) Matches(query, questionType string) bool {
	for _, p := range semanticPatterns {
		queryHit := false
		for _, kw := range p.queryKeywords {
			if strings.Contains(query, kw) {
				queryHit = true
				break
			}
		}
		if !queryHit {
			continue
		}
		for _, kw := range p.typeKeywords {
			if strings.Contains(questionType, kw) {
				return true
			}
		}
	}
	return false
}

// ScoredStory is a keyword search hit with its rank-normalized score in
// (0, 1].
type ScoredStory struct {
	Story story.Story
	Score float64
}

// KeywordScorer scores corpus stories against a free-text query using
// lexical heuristics. It performs no I/O and is deterministic for a fixed
// corpus.
type KeywordScorer struct {
	corpus  *story.Corpus
	matcher SemanticMatcher
}

// NewKeywordScorer creates a scorer over the given corpus. A nil matcher
// selects the default pattern table.
func NewKeywordScorer(corpus *story.Corpus, matcher SemanticMatcher) *KeywordScorer {
	if matcher == nil {
		matcher = patternMatcher{}
	}
	return &KeywordScorer{corpus: corpus, matcher: matcher}
}

// FindRelevant returns up to limit stories ranked by lexical relevance.
// Stories scoring zero are dropped; ranking multiplies the raw score by the
// story's impact weight.
func (k *KeywordScorer) FindRelevant(query string, limit int) []story.Story {
	queryLower := strings.ToLower(query)

	type scored struct {
		story story.Story
		score float64
	}
	var hits []scored
	seen := make(map[string]struct{})

	for _, s := range k.corpus.All() {
		// A slug is scored at most once even when the corpus exposes the
		// same logical story through multiple access paths.
		if _, dup := seen[s.Slug]; dup {
			continue
		}
		seen[s.Slug] = struct{}{}

		score := 0
		if strings.Contains(strings.ToLower(s.Title), queryLower) {
			score += titlePoints
		}
		if strings.Contains(strings.ToLower(s.Summary), queryLower) {
			score += summaryPoints
		}
		for _, comp := range s.Competencies {
			if strings.Contains(queryLower, strings.ReplaceAll(comp, "_", " ")) {
				score += competencyPoints
			}
		}
		for _, kw := range s.Keywords {
			if strings.Contains(queryLower, kw) {
				score += keywordPoints
			}
		}
		for _, category := range s.InterviewCategories {
			if strings.Contains(queryLower, strings.ToLower(category)) {
				score += categoryPoints
			}
		}
		for _, qt := range s.QuestionTypes {
			if k.matcher.Matches(queryLower, strings.ToLower(qt)) {
				score += questionTypePoints
			}
		}

		if score > 0 {
			hits = append(hits, scored{story: s, score: float64(score) * s.ImpactWeight()})
		}
	}

	// Stable sort keeps ties in corpus order for reproducible results.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	if limit < len(hits) {
		hits = hits[:limit]
	}
	out := make([]story.Story, len(hits))
	for i, h := range hits {
		out[i] = h.story
	}
	return out
}

// Search runs keyword retrieval and normalizes scores for downstream fusion:
// the top story scores 1.0 and scores fall off linearly by rank, floored at
// minNormalizedScore.
func (k *KeywordScorer) Search(query string, limit int) []ScoredStory {
	stories := k.FindRelevant(query, limit*2)
	results := make([]ScoredStory, len(stories))
	for i, s := range stories {
		score := 1 - float64(i)/float64(len(stories))
		if score < minNormalizedScore {
			score = minNormalizedScore
		}
		results[i] = ScoredStory{Story: s, Score: score}
	}
	return results
}
