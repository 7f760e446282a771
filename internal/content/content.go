// Package content serves the site's markdown content: blog posts, projects,
// and photo fragments, each a markdown file with YAML frontmatter under its
// own directory.
package content

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Content directories under the content root.
const (
	DirPosts     = "posts"
	DirProjects  = "projects"
	DirFragments = "fragments"
)

// Metadata is the frontmatter of a content file. Projects and fragments use
// subsets or extensions of the same fields, so one shape covers all three
// directories.
type Metadata struct {
	Title       string   `yaml:"title" json:"title,omitempty"`
	Summary     string   `yaml:"summary" json:"summary,omitempty"`
	Image       string   `yaml:"image" json:"image,omitempty"`
	Author      string   `yaml:"author" json:"author,omitempty"`
	URL         string   `yaml:"url" json:"url,omitempty"`
	Location    string   `yaml:"location" json:"location,omitempty"`
	PublishedAt string   `yaml:"publishedAt" json:"publishedAt,omitempty"`
	Skills      []string `yaml:"skill" json:"skill,omitempty"`
	TechStack   []string `yaml:"techStack" json:"techStack,omitempty"`
	Slug        string   `yaml:"-" json:"slug"`
}

// Entry is a full content document: frontmatter plus markdown body.
type Entry struct {
	Metadata Metadata `json:"metadata"`
	Content  string   `json:"content"`
}

// Store reads content from a root directory. Zero-config: directories that
// do not exist simply list as empty.
type Store struct {
	root string
	rand *rand.Rand
}

// NewStore creates a content store over root.
func NewStore(root string) *Store {
	return &Store{
		root: root,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// BySlug returns the full document for a slug within a directory, or nil
// when it does not exist.
func (s *Store) BySlug(slug, directory string) (*Entry, error) {
	raw, err := os.ReadFile(filepath.Join(s.root, directory, slug+".md"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}

	metadata, body, err := parseFrontmatter(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s/%s: %w", directory, slug, err)
	}
	metadata.Slug = slug
	return &Entry{Metadata: metadata, Content: body}, nil
}

// List returns metadata for every document in a directory, newest first.
// limit <= 0 returns everything.
func (s *Store) List(directory string, limit int) ([]Metadata, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, directory))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list content directory: %w", err)
	}

	var out []Metadata
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		slug := strings.TrimSuffix(entry.Name(), ".md")
		doc, err := s.BySlug(slug, directory)
		if err != nil || doc == nil {
			continue
		}
		out = append(out, doc.Metadata)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt > out[j].PublishedAt
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// RandomFragments returns up to limit fragments in shuffled order.
func (s *Store) RandomFragments(limit int) ([]Metadata, error) {
	fragments, err := s.List(DirFragments, 0)
	if err != nil {
		return nil, err
	}

	shuffled := make([]Metadata, len(fragments))
	copy(shuffled, fragments)
	s.rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if limit > 0 && len(shuffled) > limit {
		shuffled = shuffled[:limit]
	}
	return shuffled, nil
}

func parseFrontmatter(raw []byte) (Metadata, string, error) {
	var metadata Metadata

	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	if !strings.HasPrefix(text, "---\n") {
		// No frontmatter: the whole file is body.
		return metadata, strings.TrimSpace(text), nil
	}

	rest := text[4:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return metadata, "", fmt.Errorf("frontmatter block is not closed")
	}
	if err := yaml.Unmarshal([]byte(rest[:end]), &metadata); err != nil {
		return metadata, "", fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	body := rest[end+len("\n---"):]
	body = strings.TrimPrefix(body, "\n")
	return metadata, strings.TrimSpace(body), nil
}
