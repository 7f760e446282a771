package server

import (
	"net/http"
	"strconv"

	"github.com/roylo/portfolio/internal/content"
)

// defaultFragmentCount matches the landing-page carousel size.
const defaultFragmentCount = 4

// StorySummary is the public projection of a story. Full STAR content stays
// server-side; clients get what the story cards render.
type StorySummary struct {
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	Company      string   `json:"company"`
	Role         string   `json:"role"`
	Competencies []string `json:"competencies,omitempty"`
}

// handleListStories returns summaries for the whole corpus.
func (s *Server) handleListStories(w http.ResponseWriter, _ *http.Request) {
	all := s.corpus.All()
	summaries := make([]StorySummary, len(all))
	for i, st := range all {
		summaries[i] = StorySummary{
			Slug:         st.Slug,
			Title:        st.Title,
			Summary:      st.Summary,
			Company:      st.Company,
			Role:         st.Role,
			Competencies: st.TopCompetencies(3),
		}
	}
	s.jsonResponse(w, http.StatusOK, summaries)
}

// handleGetStory returns one full story by slug.
func (s *Server) handleGetStory(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	st, ok := s.corpus.BySlug(slug)
	if !ok {
		err := &ErrNotFound{Resource: "story", Slug: slug}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, st)
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	s.listContent(w, r, content.DirPosts)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	s.getContent(w, r, content.DirPosts, "post")
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	s.listContent(w, r, content.DirProjects)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	s.getContent(w, r, content.DirProjects, "project")
}

// handleListFragments returns a random sample of fragments. Each call
// reshuffles, so repeated requests rotate the visible set.
func (s *Server) handleListFragments(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, defaultFragmentCount)
	fragments, err := s.content.RandomFragments(limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to load fragments")
		return
	}
	s.jsonResponse(w, http.StatusOK, fragments)
}

// listContent lists a content directory newest first.
func (s *Server) listContent(w http.ResponseWriter, r *http.Request, directory string) {
	entries, err := s.content.List(directory, queryLimit(r, 0))
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to load "+directory)
		return
	}
	if entries == nil {
		entries = []content.Metadata{}
	}
	s.jsonResponse(w, http.StatusOK, entries)
}

// getContent returns one full content document by slug.
func (s *Server) getContent(w http.ResponseWriter, r *http.Request, directory, resource string) {
	slug := r.PathValue("slug")
	entry, err := s.content.BySlug(slug, directory)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to load "+resource)
		return
	}
	if entry == nil {
		notFound := &ErrNotFound{Resource: resource, Slug: slug}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, entry)
}

// queryLimit parses the optional ?limit= parameter. Zero means unlimited.
func queryLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return fallback
	}
	return limit
}
