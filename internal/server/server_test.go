package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roylo/portfolio/internal/chat"
	"github.com/roylo/portfolio/internal/content"
	"github.com/roylo/portfolio/internal/search"
	"github.com/roylo/portfolio/internal/story"
)

type stubAssistant struct {
	message chat.Message
	panics  bool
}

func (a *stubAssistant) ProcessMessage(_ context.Context, _ string) chat.Message {
	if a.panics {
		panic("model exploded")
	}
	return a.message
}

type stubSearch struct {
	stats       search.Stats
	populateErr error
	clearErr    error
	populated   bool
	cleared     bool
}

func (s *stubSearch) SearchStories(_ context.Context, _ string, _ search.Options) ([]search.Result, error) {
	return nil, nil
}

func (s *stubSearch) PopulateVectorStore(_ context.Context) error {
	if s.populateErr != nil {
		return s.populateErr
	}
	s.populated = true
	return nil
}

func (s *stubSearch) ClearVectorStore(_ context.Context) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	s.cleared = true
	return nil
}

func (s *stubSearch) GetStats(_ context.Context) search.Stats {
	return s.stats
}

func testCorpus() *story.Corpus {
	return story.NewCorpus([]story.Story{
		{
			Slug:           "chat-platform",
			Title:          "Scaling the Chat Platform",
			Summary:        "Scaled a chat platform to enterprise customers",
			Company:        "BotBonnie",
			Role:           "CEO",
			Competencies:   []string{"leadership", "growth", "product_management", "technical"},
			ImpactLevel:    story.ImpactHigh,
			SeniorityLevel: story.SeniorityExecutive,
		},
		{
			Slug:           "enterprise-launch",
			Title:          "Enterprise Product Launch",
			Summary:        "Launched an enterprise product line",
			Company:        "Appier",
			Role:           "Senior PM",
			ImpactLevel:    story.ImpactMedium,
			SeniorityLevel: story.SenioritySenior,
		},
	})
}

func writeTestContent(t *testing.T, root, dir, slug, frontmatter, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	raw := fmt.Sprintf("---\n%s---\n\n%s\n", frontmatter, body)
	require.NoError(t, os.WriteFile(filepath.Join(root, dir, slug+".md"), []byte(raw), 0o644))
}

type testServerConfig struct {
	assistant ChatAssistant
	search    SearchService
	adminKey  string
}

func newTestServer(t *testing.T, cfg testServerConfig) (*Server, http.Handler) {
	t.Helper()

	root := t.TempDir()
	writeTestContent(t, root, content.DirPosts, "first-post",
		"title: First Post\npublishedAt: \"2025-01-10\"\n", "Hello.")
	writeTestContent(t, root, content.DirPosts, "second-post",
		"title: Second Post\npublishedAt: \"2025-03-01\"\n", "World.")
	writeTestContent(t, root, content.DirProjects, "side-project",
		"title: Side Project\npublishedAt: \"2024-06-01\"\n", "A project.")
	writeTestContent(t, root, content.DirFragments, "thought",
		"title: A Thought\n", "Fragmentary.")

	if cfg.assistant == nil {
		cfg.assistant = &stubAssistant{message: chat.Message{
			ID:      "msg-1",
			Content: "Hello there.",
			Role:    "assistant",
			Type:    chat.TypeText,
		}}
	}
	if cfg.search == nil {
		cfg.search = &stubSearch{stats: search.Stats{
			Vector:  search.VectorStats{Available: true, Count: 2},
			Keyword: search.KeywordStats{Available: true, Count: 2},
		}}
	}

	srv := New(Config{
		Port:        0,
		AdminAPIKey: cfg.adminKey,
		Assistant:   cfg.assistant,
		Search:      cfg.search,
		Content:     content.NewStore(root),
		Corpus:      testCorpus(),
		Delay:       func(int) time.Duration { return 0 },
	})
	t.Cleanup(srv.rateLimiter.Stop)

	return srv, srv.httpServer.Handler
}

func TestHandleHealth(t *testing.T) {
	_, handler := newTestServer(t, testServerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(2), body["stories"])
	assert.Equal(t, true, body["vectorAvailable"])
}

func TestHandleChat(t *testing.T) {
	_, handler := newTestServer(t, testServerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"message": "tell me about leadership"}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var msg chat.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))
	assert.Equal(t, "msg-1", msg.ID)
	assert.Equal(t, "Hello there.", msg.Content)
	assert.Equal(t, "assistant", msg.Role)
}

func TestHandleChat_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty message", `{"message": ""}`},
		{"missing message", `{}`},
		{"invalid json", `{not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, handler := newTestServer(t, testServerConfig{})

			req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}

func TestHandleChatStream(t *testing.T) {
	assistant := &stubAssistant{message: chat.Message{
		ID:      "msg-1",
		Content: "First paragraph.\n\nSecond paragraph.",
		Role:    "assistant",
		Type:    chat.TypeText,
		Metadata: &chat.Metadata{
			SuggestedStories: []string{"chat-platform"},
		},
	}}
	_, handler := newTestServer(t, testServerConfig{assistant: assistant})

	req := httptest.NewRequest(http.MethodPost, "/api/chat/stream",
		strings.NewReader(`{"message": "hi"}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Contains(t, body, "event: start")
	assert.Contains(t, body, "event: paragraph_start")
	assert.Contains(t, body, "event: paragraph_complete")
	assert.Contains(t, body, "event: complete")
	assert.Contains(t, body, "-para-0")
	assert.Contains(t, body, "-para-1")
	assert.Contains(t, body, "First paragraph.")
	assert.Contains(t, body, "Second paragraph.")
	assert.Contains(t, body, `"totalParagraphs":2`)

	// Metadata rides only on the final paragraph and the complete frame.
	assert.Equal(t, 2, strings.Count(body, "suggestedStories"))
}

func TestHandleChatStream_GenerationFailure(t *testing.T) {
	_, handler := newTestServer(t, testServerConfig{assistant: &stubAssistant{panics: true}})

	req := httptest.NewRequest(http.MethodPost, "/api/chat/stream",
		strings.NewReader(`{"message": "hi"}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	body := w.Body.String()
	assert.Contains(t, body, "event: start")
	assert.Contains(t, body, "event: error")
	assert.Contains(t, body, "technical difficulties")
	assert.NotContains(t, body, "model exploded")
}

func TestHandleChatStream_Validation(t *testing.T) {
	_, handler := newTestServer(t, testServerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/chat/stream",
		strings.NewReader(`{"message": ""}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleListStories(t *testing.T) {
	_, handler := newTestServer(t, testServerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/stories", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var summaries []StorySummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summaries))
	require.Len(t, summaries, 2)
	assert.Equal(t, "chat-platform", summaries[0].Slug)
	assert.Equal(t, "BotBonnie", summaries[0].Company)
	assert.Len(t, summaries[0].Competencies, 3)

	// Full STAR content is not part of the listing payload.
	assert.NotContains(t, w.Body.String(), "starStructure")
}

func TestHandleGetStory(t *testing.T) {
	_, handler := newTestServer(t, testServerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/stories/chat-platform", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var st story.Story
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, "Scaling the Chat Platform", st.Title)
}

func TestHandleGetStory_NotFound(t *testing.T) {
	_, handler := newTestServer(t, testServerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/stories/missing", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleListPosts_NewestFirst(t *testing.T) {
	_, handler := newTestServer(t, testServerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var posts []content.Metadata
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
	require.Len(t, posts, 2)
	assert.Equal(t, "second-post", posts[0].Slug)
	assert.Equal(t, "first-post", posts[1].Slug)
}

func TestHandleListPosts_Limit(t *testing.T) {
	_, handler := newTestServer(t, testServerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/posts?limit=1", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var posts []content.Metadata
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
	assert.Len(t, posts, 1)
}

func TestHandleGetPost(t *testing.T) {
	_, handler := newTestServer(t, testServerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/posts/first-post", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var entry content.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
	assert.Equal(t, "First Post", entry.Metadata.Title)
	assert.Contains(t, entry.Content, "Hello.")
}

func TestHandleGetPost_NotFound(t *testing.T) {
	_, handler := newTestServer(t, testServerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/posts/missing", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleListProjects(t *testing.T) {
	_, handler := newTestServer(t, testServerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var projects []content.Metadata
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &projects))
	require.Len(t, projects, 1)
	assert.Equal(t, "side-project", projects[0].Slug)
}

func TestHandleListFragments(t *testing.T) {
	_, handler := newTestServer(t, testServerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/fragments", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var fragments []content.Metadata
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fragments))
	assert.Len(t, fragments, 1)
}

func TestAdminEndpoints_RequireKey(t *testing.T) {
	_, handler := newTestServer(t, testServerConfig{adminKey: "admin-secret"})

	endpoints := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/admin/vectors/populate"},
		{http.MethodDelete, "/api/admin/vectors"},
		{http.MethodGet, "/api/search/stats"},
	}

	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			req := httptest.NewRequest(ep.method, ep.path, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAdminEndpoints_DisabledWithoutKey(t *testing.T) {
	_, handler := newTestServer(t, testServerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/vectors/populate", nil)
	req.Header.Set("Authorization", "Bearer anything")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandlePopulateVectors(t *testing.T) {
	searcher := &stubSearch{stats: search.Stats{
		Vector: search.VectorStats{Available: true, Count: 2},
	}}
	_, handler := newTestServer(t, testServerConfig{adminKey: "admin-secret", search: searcher})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/vectors/populate", nil)
	req.Header.Set("Authorization", "Bearer admin-secret")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, searcher.populated)
	assert.Contains(t, w.Body.String(), "populated")
}

func TestHandlePopulateVectors_Unavailable(t *testing.T) {
	searcher := &stubSearch{populateErr: fmt.Errorf("connection refused")}
	_, handler := newTestServer(t, testServerConfig{adminKey: "admin-secret", search: searcher})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/vectors/populate", nil)
	req.Header.Set("Authorization", "Bearer admin-secret")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "vector store unavailable")
}

func TestHandleClearVectors(t *testing.T) {
	searcher := &stubSearch{}
	_, handler := newTestServer(t, testServerConfig{adminKey: "admin-secret", search: searcher})

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/vectors", nil)
	req.Header.Set("Authorization", "Bearer admin-secret")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, searcher.cleared)
}

func TestHandleSearchStats(t *testing.T) {
	searcher := &stubSearch{stats: search.Stats{
		Vector:  search.VectorStats{Available: true, Count: 12},
		Keyword: search.KeywordStats{Available: true, Count: 12, Competencies: 8, Companies: 3},
	}}
	_, handler := newTestServer(t, testServerConfig{adminKey: "admin-secret", search: searcher})

	req := httptest.NewRequest(http.MethodGet, "/api/search/stats", nil)
	req.Header.Set("Authorization", "Bearer admin-secret")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var stats search.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 12, stats.Vector.Count)
	assert.Equal(t, 8, stats.Keyword.Competencies)
}

func TestCORSPreflight(t *testing.T) {
	_, handler := newTestServer(t, testServerConfig{})

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
