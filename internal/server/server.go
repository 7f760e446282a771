// Package server provides the HTTP API for the portfolio chat assistant and
// story retrieval engine.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/roylo/portfolio/internal/chat"
	"github.com/roylo/portfolio/internal/content"
	"github.com/roylo/portfolio/internal/search"
	"github.com/roylo/portfolio/internal/server/middleware"
	"github.com/roylo/portfolio/internal/server/ratelimit"
	"github.com/roylo/portfolio/internal/story"
)

// ChatAssistant produces a complete assistant response for one user message.
// Implementations never surface raw errors; degraded paths return a fallback
// message instead.
type ChatAssistant interface {
	ProcessMessage(ctx context.Context, message string) chat.Message
}

// SearchService is the retrieval facade the HTTP layer exposes.
type SearchService interface {
	SearchStories(ctx context.Context, query string, opts search.Options) ([]search.Result, error)
	PopulateVectorStore(ctx context.Context) error
	ClearVectorStore(ctx context.Context) error
	GetStats(ctx context.Context) search.Stats
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	assistant   ChatAssistant
	search      SearchService
	content     *content.Store
	corpus      *story.Corpus
	rateLimiter *ratelimit.Limiter
	delay       chat.DelayFunc
}

// Config holds server configuration
type Config struct {
	Port        int
	AdminAPIKey string
	Assistant   ChatAssistant
	Search      SearchService
	Content     *content.Store
	Corpus      *story.Corpus

	// Delay paces SSE paragraph emission. Nil selects chat.DefaultDelay.
	Delay chat.DelayFunc
}

// New creates a new server instance
func New(cfg Config) *Server {
	s := &Server{
		assistant: cfg.Assistant,
		search:    cfg.Search,
		content:   cfg.Content,
		corpus:    cfg.Corpus,
		delay:     cfg.Delay,
	}
	if s.delay == nil {
		s.delay = chat.DefaultDelay
	}

	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes(cfg.AdminAPIKey)))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for SSE streams
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// routes builds the request mux. Admin routes are gated behind the API key;
// an empty key disables them.
func (s *Server) routes(adminKey string) http.Handler {
	mux := http.NewServeMux()

	// Chat endpoints
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/chat/stream", s.handleChatStream)

	// Story and content endpoints
	mux.HandleFunc("GET /api/stories", s.handleListStories)
	mux.HandleFunc("GET /api/stories/{slug}", s.handleGetStory)
	mux.HandleFunc("GET /api/posts", s.handleListPosts)
	mux.HandleFunc("GET /api/posts/{slug}", s.handleGetPost)
	mux.HandleFunc("GET /api/projects", s.handleListProjects)
	mux.HandleFunc("GET /api/projects/{slug}", s.handleGetProject)
	mux.HandleFunc("GET /api/fragments", s.handleListFragments)

	mux.HandleFunc("GET /health", s.handleHealth)

	// Admin endpoints
	admin := middleware.RequireAPIKey(adminKey)
	mux.Handle("POST /api/admin/vectors/populate", admin(http.HandlerFunc(s.handlePopulateVectors)))
	mux.Handle("DELETE /api/admin/vectors", admin(http.HandlerFunc(s.handleClearVectors)))
	mux.Handle("GET /api/search/stats", admin(http.HandlerFunc(s.handleSearchStats)))

	return mux
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		if !allowed {
			s.setRateLimitHeaders(w, info)
			s.rateLimitResponse(w, info)
			return
		}

		s.setRateLimitHeaders(w, info)
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":  "ok",
		"stories": s.corpus.Len(),
	}
	if s.search != nil {
		stats := s.search.GetStats(r.Context())
		status["vectorAvailable"] = stats.Vector.Available
	}
	s.jsonResponse(w, http.StatusOK, status)
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr.
// In the future, this could use X-Forwarded-For header (only from trusted proxies).
func (s *Server) extractClientID(r *http.Request) string {
	// Get IP from RemoteAddr (format: "IP:port")
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// If parsing fails, use the whole RemoteAddr
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
