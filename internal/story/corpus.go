package story

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// categoryFiles are the corpus category files loaded from the stories
// directory, in load order.
var categoryFiles = []string{"leadership", "product", "technical", "business", "personal"}

// Corpus is the immutable in-memory collection of processed stories.
// It is read-mostly: loaded once at startup and shared across requests.
type Corpus struct {
	stories []Story
	bySlug  map[string]*Story
}

// Metrics summarizes the corpus for stats reporting.
type Metrics struct {
	TotalStories      int `json:"totalStories"`
	CompetenciesCount int `json:"competenciesCount"`
	CompaniesCount    int `json:"companiesCount"`
}

// LoadCorpus reads the category JSON files under dir. Missing category files
// are skipped; malformed records are excluded with a logged warning rather
// than failing the load.
func LoadCorpus(dir string) (*Corpus, error) {
	var all []Story
	for _, category := range categoryFiles {
		path := filepath.Join(dir, category+".json")
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read story file %s: %w", path, err)
		}

		var stories []Story
		if err := json.Unmarshal(data, &stories); err != nil {
			return nil, fmt.Errorf("failed to parse story file %s: %w", path, err)
		}
		all = append(all, stories...)
	}
	return NewCorpus(all), nil
}

// NewCorpus builds a corpus from the given stories, dropping records that
// fail validation or duplicate an earlier slug.
func NewCorpus(stories []Story) *Corpus {
	valid := make([]Story, 0, len(stories))
	seen := make(map[string]struct{}, len(stories))
	for _, s := range stories {
		if err := s.Validate(); err != nil {
			log.Printf("warning: skipping story: %v", err)
			continue
		}
		if _, dup := seen[s.Slug]; dup {
			log.Printf("warning: skipping duplicate story slug %s", s.Slug)
			continue
		}
		seen[s.Slug] = struct{}{}
		valid = append(valid, s)
	}

	c := &Corpus{
		stories: valid,
		bySlug:  make(map[string]*Story, len(valid)),
	}
	for i := range c.stories {
		c.bySlug[c.stories[i].Slug] = &c.stories[i]
	}
	return c
}

// All returns every story in the corpus in load order.
func (c *Corpus) All() []Story {
	return c.stories
}

// Len returns the number of stories in the corpus.
func (c *Corpus) Len() int {
	return len(c.stories)
}

// BySlug looks up a story by its unique slug.
func (c *Corpus) BySlug(slug string) (*Story, bool) {
	s, ok := c.bySlug[slug]
	return s, ok
}

// ByCompetency returns stories tagged with the given competency.
func (c *Corpus) ByCompetency(competency string) []Story {
	var out []Story
	for _, s := range c.stories {
		for _, comp := range s.Competencies {
			if comp == competency {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// ByCompany returns stories whose company contains the given name,
// case-insensitively.
func (c *Corpus) ByCompany(company string) []Story {
	needle := strings.ToLower(company)
	var out []Story
	for _, s := range c.stories {
		if strings.Contains(strings.ToLower(s.Company), needle) {
			out = append(out, s)
		}
	}
	return out
}

// Metrics computes corpus-level counts for the stats endpoint.
func (c *Corpus) Metrics() Metrics {
	companies := make(map[string]struct{})
	competencies := make(map[string]struct{})
	for _, s := range c.stories {
		companies[s.Company] = struct{}{}
		for _, comp := range s.Competencies {
			competencies[comp] = struct{}{}
		}
	}
	return Metrics{
		TotalStories:      len(c.stories),
		CompetenciesCount: len(competencies),
		CompaniesCount:    len(companies),
	}
}
