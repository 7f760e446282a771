package server

import (
	"log"
	"net/http"
)

// handlePopulateVectors re-embeds the entire corpus into the vector store.
// Runs synchronously; administrative re-indexing is rare and the caller
// wants the outcome.
func (s *Server) handlePopulateVectors(w http.ResponseWriter, r *http.Request) {
	if err := s.search.PopulateVectorStore(r.Context()); err != nil {
		log.Printf("vector populate failed: %v", err)
		unavailable := &ErrVectorUnavailable{Reason: err.Error()}
		s.errorResponse(w, HTTPStatus(unavailable), unavailable.Error())
		return
	}

	stats := s.search.GetStats(r.Context())
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":  "populated",
		"indexed": stats.Vector.Count,
	})
}

// handleClearVectors removes every embedding record.
func (s *Server) handleClearVectors(w http.ResponseWriter, r *http.Request) {
	if err := s.search.ClearVectorStore(r.Context()); err != nil {
		log.Printf("vector clear failed: %v", err)
		unavailable := &ErrVectorUnavailable{Reason: err.Error()}
		s.errorResponse(w, HTTPStatus(unavailable), unavailable.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// handleSearchStats reports counts and availability from both retrieval
// paths. Vector store failures surface in the payload, not as HTTP errors.
func (s *Server) handleSearchStats(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.search.GetStats(r.Context()))
}
