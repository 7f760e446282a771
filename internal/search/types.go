// Package search implements hybrid story retrieval: dense vector similarity
// combined with sparse keyword scoring, weighted score fusion, and a
// diversity-boosting re-rank pass.
package search

import "github.com/roylo/portfolio/internal/story"

// Source identifies which retrieval path produced a result.
type Source string

// Result sources.
const (
	SourceVector  Source = "vector"
	SourceKeyword Source = "keyword"
	SourceHybrid  Source = "hybrid"
)

// Method identifies how a query was actually served, for observability.
type Method string

// Search methods.
const (
	MethodVectorOnly  Method = "vector_only"
	MethodKeywordOnly Method = "keyword_only"
	MethodHybrid      Method = "hybrid"
)

// Metadata carries per-query diagnostics. It is required output, not
// optional telemetry: callers use it to distinguish "no matches" from
// "search infrastructure degraded".
type Metadata struct {
	VectorAvailable bool    `json:"vectorAvailable"`
	SearchMethod    Method  `json:"searchMethod"`
	FallbackReason  string  `json:"fallbackReason,omitempty"`
	VectorDistance  float64 `json:"vectorDistance,omitempty"`
}

// Result is a transient per-query scored story. Ordering is by descending
// RelevanceScore with stable tie-breaking, so repeated queries over a fixed
// corpus reproduce the same list.
type Result struct {
	Story          story.Story `json:"story"`
	RelevanceScore float64     `json:"relevanceScore"`
	Source         Source      `json:"source"`
	VectorScore    float64     `json:"vectorScore"`
	KeywordScore   float64     `json:"keywordScore"`
	Metadata       Metadata    `json:"searchMetadata"`
}

// Filters restrict vector search to exact metadata matches. They are pushed
// down to the index query, not applied as post-filtering.
type Filters struct {
	Company        string               `json:"company,omitempty"`
	Role           string               `json:"role,omitempty"`
	ImpactLevel    story.ImpactLevel    `json:"impactLevel,omitempty"`
	SeniorityLevel story.SeniorityLevel `json:"seniorityLevel,omitempty"`
}

// Options configures a single SearchStories call.
type Options struct {
	Limit             int
	VectorWeight      float64
	KeywordWeight     float64
	DiversityBoost    bool
	FallbackToKeyword bool
	UseVector         bool
	Threshold         float64
	Filters           *Filters
}

// Defaults mirrored by DefaultOptions.
const (
	DefaultLimit         = 5
	DefaultVectorWeight  = 0.7
	DefaultKeywordWeight = 0.3
	DefaultThreshold     = 0.2
)

// DefaultOptions returns the standard hybrid configuration: vector-weighted
// fusion with keyword fallback and diversity boosting enabled.
func DefaultOptions() Options {
	return Options{
		Limit:             DefaultLimit,
		VectorWeight:      DefaultVectorWeight,
		KeywordWeight:     DefaultKeywordWeight,
		DiversityBoost:    true,
		FallbackToKeyword: true,
		UseVector:         true,
		Threshold:         DefaultThreshold,
	}
}
