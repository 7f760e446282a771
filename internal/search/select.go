package search

import "github.com/roylo/portfolio/internal/story"

// Diversity bonus weights for SelectDiverse. A candidate earns bonuses
// against each already-selected story; shared competencies and similar
// titles reduce the score.
const (
	companyMismatchBonus   = 3.0
	competencyBonusCeiling = 5.0
	impactMismatchBonus    = 2.0
	titleSimilarityWeight  = 3.0
)

// SelectDiverse greedily picks a limit-sized subset from a relevance-sorted
// candidate pool. The highest-relevance candidate is always taken first;
// each subsequent pick maximizes the diversity score against the stories
// already selected. Deterministic for a fixed input ordering: ties keep the
// earlier (more relevant) candidate.
//
// This is distinct from ApplyDiversityBoost, which re-weights a full ranked
// list; SelectDiverse bounds the subset handed to the answer-generation
// step, which only presents a few stories.
func SelectDiverse(candidates []story.Story, limit int) []story.Story {
	if len(candidates) <= limit {
		return candidates
	}

	selected := make([]story.Story, 0, limit)
	remaining := make([]story.Story, len(candidates))
	copy(remaining, candidates)

	selected = append(selected, remaining[0])
	remaining = remaining[1:]

	for len(selected) < limit && len(remaining) > 0 {
		bestIndex := 0
		bestScore := -1.0

		for i, candidate := range remaining {
			score := 0.0
			candidateWords := titleWords(candidate.Title)

			for _, chosen := range selected {
				if candidate.Company != chosen.Company {
					score += companyMismatchBonus
				}

				shared := sharedCompetencies(candidate.Competencies, chosen.Competencies)
				bonus := competencyBonusCeiling - float64(shared)
				if bonus > 0 {
					score += bonus
				}

				if candidate.ImpactLevel != chosen.ImpactLevel {
					score += impactMismatchBonus
				}

				score -= titleOverlap(candidateWords, titleWords(chosen.Title)) * titleSimilarityWeight
			}

			if score > bestScore {
				bestScore = score
				bestIndex = i
			}
		}

		selected = append(selected, remaining[bestIndex])
		remaining = append(remaining[:bestIndex], remaining[bestIndex+1:]...)
	}

	return selected
}

// sharedCompetencies counts tags present in both lists.
func sharedCompetencies(a, b []string) int {
	set := make(map[string]struct{}, len(b))
	for _, c := range b {
		set[c] = struct{}{}
	}
	shared := 0
	for _, c := range a {
		if _, ok := set[c]; ok {
			shared++
		}
	}
	return shared
}
