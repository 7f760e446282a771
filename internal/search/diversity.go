package search

import (
	"sort"
	"strings"
)

// DiversityConfig holds the penalty constants for the diversity re-rank
// pass. The values are empirically chosen; they are exposed as configuration
// rather than literals so they can be tuned without code changes.
type DiversityConfig struct {
	// CompanyPenaltyStep is subtracted per repeated company occurrence;
	// CompanyPenaltyFloor is the minimum multiplier.
	CompanyPenaltyStep  float64
	CompanyPenaltyFloor float64

	// CompetencyPenaltyStep / CompetencyPenaltyFloor penalize repeats of a
	// story's primary competency.
	CompetencyPenaltyStep  float64
	CompetencyPenaltyFloor float64

	// HighImpactPenalty applies once more than HighImpactAllowance
	// high-impact stories have been emitted, to encourage a mix of levels.
	HighImpactPenalty   float64
	HighImpactAllowance int

	// TitleOverlapThreshold is the word-overlap ratio above which two titles
	// are considered similar; TitleSimilarityPenalty stacks per similar
	// prior title.
	TitleOverlapThreshold  float64
	TitleSimilarityPenalty float64
}

// DefaultDiversityConfig returns the standard penalty constants.
func DefaultDiversityConfig() DiversityConfig {
	return DiversityConfig{
		CompanyPenaltyStep:     0.3,
		CompanyPenaltyFloor:    0.4,
		CompetencyPenaltyStep:  0.2,
		CompetencyPenaltyFloor: 0.6,
		HighImpactPenalty:      0.8,
		HighImpactAllowance:    2,
		TitleOverlapThreshold:  0.4,
		TitleSimilarityPenalty: 0.85,
	}
}

// ApplyDiversityBoost re-weights an already-sorted result list so that
// results sharing a company, primary competency, or near-duplicate title do
// not all surface together, then re-sorts by the adjusted score. It is a
// cheap single-pass heuristic, not a globally optimal diversity algorithm.
func ApplyDiversityBoost(results []Result, cfg DiversityConfig) []Result {
	companyCounts := make(map[string]int)
	competencyCounts := make(map[string]int)
	highImpactCount := 0
	var acceptedTitles []map[string]struct{}

	seen := make(map[string]struct{}, len(results))
	diversified := make([]Result, 0, len(results))

	for _, r := range results {
		// Duplicate slugs should not occur after merging; the guard is a
		// safety invariant against the same story arriving via two sources.
		if _, dup := seen[r.Story.Slug]; dup {
			continue
		}
		seen[r.Story.Slug] = struct{}{}

		company := r.Story.Company
		competency := r.Story.PrimaryCompetency()

		companyCounts[company]++
		if competency != "" {
			competencyCounts[competency]++
		}
		if r.Story.ImpactLevel == "high" {
			highImpactCount++
		}

		multiplier := 1.0

		if count := companyCounts[company]; count > 1 {
			penalty := 1 - float64(count-1)*cfg.CompanyPenaltyStep
			if penalty < cfg.CompanyPenaltyFloor {
				penalty = cfg.CompanyPenaltyFloor
			}
			multiplier *= penalty
		}

		if competency != "" {
			if count := competencyCounts[competency]; count > 1 {
				penalty := 1 - float64(count-1)*cfg.CompetencyPenaltyStep
				if penalty < cfg.CompetencyPenaltyFloor {
					penalty = cfg.CompetencyPenaltyFloor
				}
				multiplier *= penalty
			}
		}

		if r.Story.ImpactLevel == "high" && highImpactCount > cfg.HighImpactAllowance {
			multiplier *= cfg.HighImpactPenalty
		}

		// Title similarity stacks against every previously accepted title.
		words := titleWords(r.Story.Title)
		for _, prior := range acceptedTitles {
			if titleOverlap(words, prior) > cfg.TitleOverlapThreshold {
				multiplier *= cfg.TitleSimilarityPenalty
			}
		}
		acceptedTitles = append(acceptedTitles, words)

		r.RelevanceScore *= multiplier
		diversified = append(diversified, r)
	}

	sort.SliceStable(diversified, func(i, j int) bool {
		return diversified[i].RelevanceScore > diversified[j].RelevanceScore
	})
	return diversified
}

// titleWords tokenizes a title into its lower-cased word set.
func titleWords(title string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(title)) {
		words[w] = struct{}{}
	}
	return words
}

// titleOverlap returns the word-overlap ratio between two title word sets,
// normalized by the smaller set.
func titleOverlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	overlap := 0
	for w := range a {
		if _, ok := b[w]; ok {
			overlap++
		}
	}
	smaller := len(a)
	if len(b) < smaller {
		smaller = len(b)
	}
	return float64(overlap) / float64(smaller)
}
