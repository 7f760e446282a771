package search

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/roylo/portfolio/internal/story"
)

// VectorQuery parameterizes one vector index lookup.
type VectorQuery struct {
	Limit     int
	Threshold float64
	Filters   *Filters
}

// VectorSearcher is the persistent vector index the facade orchestrates.
// Availability is not guaranteed: implementations sit behind an external
// store and an embedding service, and every operation fails closed when
// either is unreachable.
type VectorSearcher interface {
	// Available reports whether the index can serve requests. A non-nil
	// error carries the reason it cannot.
	Available(ctx context.Context) error
	Search(ctx context.Context, query string, q VectorQuery) ([]VectorHit, error)
	AddStory(ctx context.Context, s story.Story) error
	AddStories(ctx context.Context, stories []story.Story) error
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// Stats reports counts and availability from both sub-stores.
type Stats struct {
	Vector  VectorStats  `json:"vector"`
	Keyword KeywordStats `json:"keyword"`
}

// VectorStats describes the vector store side of Stats.
type VectorStats struct {
	Available bool   `json:"available"`
	Count     int    `json:"count"`
	Error     string `json:"error,omitempty"`
}

// KeywordStats describes the keyword store side of Stats. The keyword store
// is derived from the static corpus and is always available.
type KeywordStats struct {
	Available    bool `json:"available"`
	Count        int  `json:"count"`
	Competencies int  `json:"competencies"`
	Companies    int  `json:"companies"`
}

// Hybrid orchestrates the keyword scorer and the vector index behind a
// single SearchStories entry point with a defined fallback protocol.
// Construct it once at startup and pass it to request handlers explicitly.
type Hybrid struct {
	corpus  *story.Corpus
	keyword *KeywordScorer
	vector  VectorSearcher

	mu          sync.RWMutex
	lastFailure string
}

// NewHybrid creates the search facade. vector may be nil, in which case
// every query degrades to keyword-only.
func NewHybrid(corpus *story.Corpus, keyword *KeywordScorer, vector VectorSearcher) *Hybrid {
	return &Hybrid{corpus: corpus, keyword: keyword, vector: vector}
}

// Degraded reports whether the most recent vector-path interaction failed.
func (h *Hybrid) Degraded() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastFailure != ""
}

// LastFailure returns the machine-readable reason for the most recent
// vector-path failure, or "" when the last interaction succeeded.
func (h *Hybrid) LastFailure() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastFailure
}

func (h *Hybrid) setFailure(reason string) {
	h.mu.Lock()
	h.lastFailure = reason
	h.mu.Unlock()
}

// SearchStories runs the hybrid retrieval protocol: check vector
// availability, attempt vector search inside a recoverable boundary, always
// run keyword search, then merge or fall back per the single-signal rule.
// An empty return with a nil error is a legitimate "no matches" outcome.
func (h *Hybrid) SearchStories(ctx context.Context, query string, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Threshold == 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.VectorWeight == 0 && opts.KeywordWeight == 0 {
		opts.VectorWeight = DefaultVectorWeight
		opts.KeywordWeight = DefaultKeywordWeight
	}

	meta := Metadata{SearchMethod: MethodKeywordOnly}

	vectorAvailable := false
	if !opts.UseVector {
		meta.FallbackReason = "vector search disabled by options"
	} else if h.vector == nil {
		meta.FallbackReason = "vector store not configured"
	} else if err := h.vector.Available(ctx); err != nil {
		meta.FallbackReason = fmt.Sprintf("vector store not available: %v", err)
		h.setFailure(meta.FallbackReason)
	} else {
		vectorAvailable = true
	}
	meta.VectorAvailable = vectorAvailable

	candidates := int(math.Ceil(float64(opts.Limit) * 1.5))

	var (
		vectorResults  []VectorHit
		keywordResults []ScoredStory
		vectorErr      error
	)

	// The sub-searches are independent; order of completion is irrelevant
	// since both must finish before merging.
	g, gctx := errgroup.WithContext(ctx)
	if vectorAvailable {
		g.Go(func() error {
			vectorResults, vectorErr = h.vector.Search(gctx, query, VectorQuery{
				Limit:     candidates,
				Threshold: opts.Threshold,
				Filters:   opts.Filters,
			})
			// Vector failures are recoverable: record and continue unless
			// the caller disabled fallback.
			if vectorErr != nil && !opts.FallbackToKeyword {
				return vectorErr
			}
			return nil
		})
	}
	g.Go(func() error {
		// Keyword search is cheap and always available; it runs regardless
		// of the vector outcome.
		keywordResults = h.keyword.Search(query, candidates)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	if vectorErr != nil {
		meta.FallbackReason = fmt.Sprintf("vector search error: %v", vectorErr)
		h.setFailure(meta.FallbackReason)
		log.Printf("vector search failed, falling back to keyword search: %v", vectorErr)
		vectorResults = nil
	} else if vectorAvailable {
		h.setFailure("")
	}

	switch {
	case len(vectorResults) == 0 && len(keywordResults) == 0:
		return []Result{}, nil

	case len(vectorResults) == 0:
		meta.SearchMethod = MethodKeywordOnly
		return h.keywordOnly(keywordResults, opts.Limit, meta), nil

	case len(keywordResults) == 0:
		meta.SearchMethod = MethodVectorOnly
		return h.vectorOnly(vectorResults, opts.Limit, meta), nil
	}

	meta.SearchMethod = MethodHybrid
	results := h.merge(vectorResults, keywordResults, opts)
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	for i := range results {
		results[i].Metadata = meta
	}
	return results, nil
}

// keywordOnly converts keyword hits directly to results with their native
// normalized scores, bypassing the merger.
func (h *Hybrid) keywordOnly(hits []ScoredStory, limit int, meta Metadata) []Result {
	if len(hits) > limit {
		hits = hits[:limit]
	}
	results := make([]Result, len(hits))
	for i, hit := range hits {
		results[i] = Result{
			Story:          hit.Story,
			RelevanceScore: hit.Score,
			Source:         SourceKeyword,
			KeywordScore:   hit.Score,
			Metadata:       meta,
		}
	}
	return results
}

// vectorOnly converts vector hits directly to results with their native
// relevance scores, bypassing the merger.
func (h *Hybrid) vectorOnly(hits []VectorHit, limit int, meta Metadata) []Result {
	if len(hits) > limit {
		hits = hits[:limit]
	}
	results := make([]Result, len(hits))
	for i, hit := range hits {
		s := hit.Story
		if full, ok := h.corpus.BySlug(hit.Story.Slug); ok {
			s = *full
		}
		m := meta
		m.VectorDistance = hit.Distance
		results[i] = Result{
			Story:          s,
			RelevanceScore: hit.RelevanceScore,
			Source:         SourceVector,
			VectorScore:    hit.RelevanceScore,
			Metadata:       m,
		}
	}
	return results
}

// PopulateVectorStore re-embeds the entire corpus into the vector store,
// clearing it first. Safe to re-run; callers serialize administrative
// re-indexing themselves.
func (h *Hybrid) PopulateVectorStore(ctx context.Context) error {
	if h.vector == nil {
		return fmt.Errorf("vector store not configured")
	}
	if err := h.vector.Available(ctx); err != nil {
		return fmt.Errorf("vector store not available: %w", err)
	}
	if err := h.vector.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear vector store: %w", err)
	}

	all := h.corpus.All()
	log.Printf("populating vector store with %d stories", len(all))
	if err := h.vector.AddStories(ctx, all); err != nil {
		return fmt.Errorf("failed to populate vector store: %w", err)
	}
	return nil
}

// AddStory indexes a single story into the vector store. The keyword store
// is derived from the static corpus and needs no separate add.
func (h *Hybrid) AddStory(ctx context.Context, s story.Story) error {
	if h.vector == nil {
		return fmt.Errorf("vector store not configured")
	}
	if err := h.vector.Available(ctx); err != nil {
		return fmt.Errorf("vector store not available: %w", err)
	}
	return h.vector.AddStory(ctx, s)
}

// ClearVectorStore removes every embedding record. Idempotent.
func (h *Hybrid) ClearVectorStore(ctx context.Context) error {
	if h.vector == nil {
		return fmt.Errorf("vector store not configured")
	}
	if err := h.vector.Available(ctx); err != nil {
		return fmt.Errorf("vector store not available: %w", err)
	}
	return h.vector.Clear(ctx)
}

// GetStats reports counts from both sub-stores. Vector store failures are
// reported in the stats rather than returned as errors.
func (h *Hybrid) GetStats(ctx context.Context) Stats {
	metrics := h.corpus.Metrics()
	stats := Stats{
		Keyword: KeywordStats{
			Available:    true,
			Count:        metrics.TotalStories,
			Competencies: metrics.CompetenciesCount,
			Companies:    metrics.CompaniesCount,
		},
	}

	if h.vector == nil {
		return stats
	}
	if err := h.vector.Available(ctx); err != nil {
		stats.Vector.Error = err.Error()
		return stats
	}
	count, err := h.vector.Count(ctx)
	if err != nil {
		stats.Vector.Error = err.Error()
		return stats
	}
	stats.Vector.Available = true
	stats.Vector.Count = count
	return stats
}
