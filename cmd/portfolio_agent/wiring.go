package main

import (
	"context"
	"fmt"
	"log"

	"github.com/roylo/portfolio/internal/config"
	"github.com/roylo/portfolio/internal/embedding"
	"github.com/roylo/portfolio/internal/search"
	"github.com/roylo/portfolio/internal/story"
	"github.com/roylo/portfolio/internal/vectorstore"
)

// loadCorpus reads the processed story corpus from the configured data
// directory.
func loadCorpus() (*story.Corpus, *config.DataConfig, error) {
	data := config.NewDataConfig()
	corpus, err := story.LoadCorpus(data.StoriesDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load story corpus: %w", err)
	}
	return corpus, data, nil
}

// newVectorStore connects the embedding service and the pgvector store.
// Returns a nil store without error when DATABASE_URL is unset; the caller
// degrades to keyword-only retrieval.
func newVectorStore(ctx context.Context, apiKey string) (*vectorstore.Store, func(), error) {
	dbCfg := config.NewDatabaseConfig()
	if dbCfg.URL == "" {
		return nil, func() {}, nil
	}

	embedder, err := embedding.NewGeminiEmbedder(ctx, apiKey, embedding.DefaultModel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	store, err := vectorstore.Connect(ctx, dbCfg.URL, embedder, vectorstore.DefaultDimensions)
	if err != nil {
		_ = embedder.Close()
		return nil, nil, fmt.Errorf("failed to connect vector store: %w", err)
	}

	cleanup := func() {
		store.Close()
		if err := embedder.Close(); err != nil {
			log.Printf("failed to close embedder: %v", err)
		}
	}
	return store, cleanup, nil
}

// newHybrid assembles the retrieval facade. store may be nil.
func newHybrid(corpus *story.Corpus, store *vectorstore.Store) *search.Hybrid {
	keyword := search.NewKeywordScorer(corpus, nil)
	var vector search.VectorSearcher
	if store != nil {
		vector = store
	}
	return search.NewHybrid(corpus, keyword, vector)
}
