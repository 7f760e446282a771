package search

import (
	"sort"

	"github.com/roylo/portfolio/internal/story"
)

// VectorHit is a single vector index match: the story stub reconstructed
// from index metadata, its raw distance, and the inverse-distance relevance.
type VectorHit struct {
	Story          story.Story
	Distance       float64
	RelevanceScore float64
}

// merge fuses vector and keyword results into one ranked list keyed by slug.
// It is invoked only when BOTH sub-searches produced results; the
// single-signal case bypasses the merger entirely so native scores are not
// deflated by a weight with no second signal to combine against.
func (h *Hybrid) merge(vectorResults []VectorHit, keywordResults []ScoredStory, opts Options) []Result {
	merged := make(map[string]*Result, len(vectorResults)+len(keywordResults))
	order := make([]string, 0, len(vectorResults)+len(keywordResults))

	for _, v := range vectorResults {
		// The vector index stores a projection of the story; resolve the
		// full record from the corpus by slug.
		full, ok := h.corpus.BySlug(v.Story.Slug)
		if !ok {
			continue
		}
		merged[v.Story.Slug] = &Result{
			Story:          *full,
			RelevanceScore: v.RelevanceScore * opts.VectorWeight,
			Source:         SourceVector,
			VectorScore:    v.RelevanceScore,
		}
		order = append(order, v.Story.Slug)
	}

	for _, kw := range keywordResults {
		if existing, ok := merged[kw.Story.Slug]; ok {
			existing.RelevanceScore += kw.Score * opts.KeywordWeight
			existing.KeywordScore = kw.Score
			existing.Source = SourceHybrid
			continue
		}
		merged[kw.Story.Slug] = &Result{
			Story:          kw.Story,
			RelevanceScore: kw.Score * opts.KeywordWeight,
			Source:         SourceKeyword,
			KeywordScore:   kw.Score,
		}
		order = append(order, kw.Story.Slug)
	}

	results := make([]Result, 0, len(order))
	for _, slug := range order {
		results = append(results, *merged[slug])
	}

	if opts.DiversityBoost {
		results = ApplyDiversityBoost(results, DefaultDiversityConfig())
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	return results
}
