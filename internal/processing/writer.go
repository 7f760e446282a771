package processing

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/roylo/portfolio/internal/story"
)

// corpusCategories are the category files written to the knowledge base, in
// output order. A story may appear in more than one category; the corpus
// loader de-duplicates by slug.
var corpusCategories = []string{"leadership", "product", "technical", "business", "personal"}

// GroupByCategory assigns stories to corpus categories based on their
// competency tags. Stories matching nothing land in "personal".
func GroupByCategory(stories []story.Story) map[string][]story.Story {
	groups := make(map[string][]story.Story, len(corpusCategories))
	for _, category := range corpusCategories {
		groups[category] = nil
	}

	for _, s := range stories {
		placed := false
		if hasAny(s.Competencies, "leadership", "culture_building") {
			groups["leadership"] = append(groups["leadership"], s)
			placed = true
		}
		if hasAny(s.Competencies, "product_management", "innovation") {
			groups["product"] = append(groups["product"], s)
			placed = true
		}
		if hasAny(s.Competencies, "technical") {
			groups["technical"] = append(groups["technical"], s)
			placed = true
		}
		if hasAny(s.Competencies, "growth", "international") {
			groups["business"] = append(groups["business"], s)
			placed = true
		}
		if hasAny(s.Competencies, "crisis_management") ||
			strings.Contains(strings.ToLower(s.Content), "personal") ||
			strings.Contains(strings.ToLower(s.Content), "family") ||
			!placed {
			groups["personal"] = append(groups["personal"], s)
		}
	}
	return groups
}

func hasAny(tags []string, wanted ...string) bool {
	for _, tag := range tags {
		for _, w := range wanted {
			if tag == w {
				return true
			}
		}
	}
	return false
}

// Index summarizes a processed corpus. Written alongside the category files
// so operators can inspect coverage without loading everything.
type Index struct {
	TotalStories    int            `json:"totalStories"`
	Competencies    []string       `json:"competencies"`
	Companies       []string       `json:"companies"`
	SeniorityLevels map[string]int `json:"seniorityLevels"`
	ImpactLevels    map[string]int `json:"impactLevels"`
	LastUpdated     time.Time      `json:"lastUpdated"`
}

// BuildIndex derives the corpus index from processed stories.
func BuildIndex(stories []story.Story) Index {
	competencies := make(map[string]struct{})
	companies := make(map[string]struct{})
	seniority := make(map[string]int)
	impact := make(map[string]int)

	for _, s := range stories {
		for _, c := range s.Competencies {
			competencies[c] = struct{}{}
		}
		companies[s.Company] = struct{}{}
		seniority[string(s.SeniorityLevel)]++
		impact[string(s.ImpactLevel)]++
	}

	return Index{
		TotalStories:    len(stories),
		Competencies:    sortedKeys(competencies),
		Companies:       sortedKeys(companies),
		SeniorityLevels: seniority,
		ImpactLevels:    impact,
		LastUpdated:     time.Now().UTC(),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WriteCorpus writes the grouped category files and the corpus index under
// dir. Empty categories are skipped.
func WriteCorpus(dir string, stories []story.Story) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create corpus directory: %w", err)
	}

	groups := GroupByCategory(stories)
	for _, category := range corpusCategories {
		group := groups[category]
		if len(group) == 0 {
			continue
		}
		if err := writeJSON(filepath.Join(dir, category+".json"), group); err != nil {
			return fmt.Errorf("failed to write %s corpus: %w", category, err)
		}
	}

	if err := writeJSON(filepath.Join(dir, "index.json"), BuildIndex(stories)); err != nil {
		return fmt.Errorf("failed to write corpus index: %w", err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
