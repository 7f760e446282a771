// Package vectorstore implements the persistent embedding index on
// PostgreSQL with the pgvector extension: one embedding row per story,
// upserted by slug, queried by cosine distance.
package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"

	"github.com/roylo/portfolio/internal/embedding"
	"github.com/roylo/portfolio/internal/search"
	"github.com/roylo/portfolio/internal/story"
)

// Indexing parameters. Batches are small and throttled to respect the
// embedding service's rate limits; the delay is a throttle, not a
// correctness requirement.
const (
	DefaultDimensions = 768
	batchSize         = 5
	batchInterval     = time.Second
)

// Store is a pgvector-backed embedding store. Writes only happen during
// explicit administrative re-indexing; queries are read-only.
type Store struct {
	pool       *pgxpool.Pool
	embedder   embedding.Embedder
	dimensions int
	limiter    *rate.Limiter
}

// Statically assert the facade contract.
var _ search.VectorSearcher = (*Store)(nil)

// Connect establishes a connection pool and verifies it.
func Connect(ctx context.Context, databaseURL string, embedder embedding.Embedder, dimensions int) (*Store, error) {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{
		pool:       pool,
		embedder:   embedder,
		dimensions: dimensions,
		limiter:    rate.NewLimiter(rate.Every(batchInterval), 1),
	}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the pgvector extension and the stories table if they
// do not exist. Idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS stories (
		id         text PRIMARY KEY,
		title      text NOT NULL,
		content    text NOT NULL,
		embedding  vector(%d) NOT NULL,
		metadata   jsonb NOT NULL,
		created_at timestamptz NOT NULL DEFAULT NOW()
	)`, s.dimensions)
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create stories table: %w", err)
	}
	return nil
}

// Available reports whether the store can serve requests: the database must
// answer and the stories table must exist.
func (s *Store) Available(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return ErrUnavailable
	}
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var relation *string
	if err := s.pool.QueryRow(ctx, `SELECT to_regclass('stories')::text`).Scan(&relation); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if relation == nil {
		return fmt.Errorf("%w: stories table does not exist", ErrUnavailable)
	}
	return nil
}

// AddStory embeds one story and upserts its record by slug. Re-indexing is
// a full replace; rows are never mutated in place.
func (s *Store) AddStory(ctx context.Context, st story.Story) error {
	if err := s.Available(ctx); err != nil {
		return err
	}
	if err := st.Validate(); err != nil {
		return fmt.Errorf("story not indexable: %w", err)
	}
	return s.upsert(ctx, st)
}

func (s *Store) upsert(ctx context.Context, st story.Story) error {
	denseContext := buildContext(st)
	vec, err := s.embedder.Embed(ctx, denseContext)
	if err != nil {
		return fmt.Errorf("failed to embed story %s: %w", st.Slug, err)
	}

	meta, err := json.Marshal(buildMetadata(st))
	if err != nil {
		return fmt.Errorf("failed to marshal metadata for %s: %w", st.Slug, err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO stories (id, title, content, embedding, metadata)
		 VALUES ($1, $2, $3, $4::vector, $5)
		 ON CONFLICT (id) DO UPDATE
		 SET title = $2, content = $3, embedding = $4::vector, metadata = $5, created_at = NOW()`,
		st.Slug, st.Title, denseContext, encodeVector(vec), meta,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert story %s: %w", st.Slug, err)
	}
	return nil
}

// AddStories bulk-indexes stories in throttled batches. A failure aborts
// the current batch (no partial batch commits) and stops; previously
// committed batches stay. Stories failing validation are skipped with a
// warning rather than aborting the run.
func (s *Store) AddStories(ctx context.Context, stories []story.Story) error {
	if err := s.Available(ctx); err != nil {
		return err
	}

	indexable := make([]story.Story, 0, len(stories))
	for _, st := range stories {
		if err := st.Validate(); err != nil {
			log.Printf("warning: excluding story from indexing: %v", err)
			continue
		}
		indexable = append(indexable, st)
	}

	for start := 0; start < len(indexable); start += batchSize {
		end := start + batchSize
		if end > len(indexable) {
			end = len(indexable)
		}

		if start > 0 {
			if err := s.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("batch throttle interrupted: %w", err)
			}
		}

		if err := s.addBatch(ctx, indexable[start:end]); err != nil {
			return fmt.Errorf("batch starting at story %d failed: %w", start, err)
		}
		log.Printf("indexed batch %d/%d", start/batchSize+1, (len(indexable)+batchSize-1)/batchSize)
	}
	return nil
}

// addBatch embeds and writes one batch inside a transaction so a failure
// commits nothing from the batch.
func (s *Store) addBatch(ctx context.Context, batch []story.Story) error {
	type row struct {
		st      story.Story
		context string
		vec     []float32
		meta    []byte
	}
	rows := make([]row, 0, len(batch))
	for _, st := range batch {
		denseContext := buildContext(st)
		vec, err := s.embedder.Embed(ctx, denseContext)
		if err != nil {
			return fmt.Errorf("failed to embed story %s: %w", st.Slug, err)
		}
		meta, err := json.Marshal(buildMetadata(st))
		if err != nil {
			return fmt.Errorf("failed to marshal metadata for %s: %w", st.Slug, err)
		}
		rows = append(rows, row{st: st, context: denseContext, vec: vec, meta: meta})
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin batch transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	for _, r := range rows {
		_, err := tx.Exec(ctx,
			`INSERT INTO stories (id, title, content, embedding, metadata)
			 VALUES ($1, $2, $3, $4::vector, $5)
			 ON CONFLICT (id) DO UPDATE
			 SET title = $2, content = $3, embedding = $4::vector, metadata = $5, created_at = NOW()`,
			r.st.Slug, r.st.Title, r.context, encodeVector(r.vec), r.meta,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert story %s: %w", r.st.Slug, err)
		}
	}
	return tx.Commit(ctx)
}

// Search embeds the query and returns the nearest stories by cosine
// distance. Filters are pushed down into the SQL; the relevance transform
// is max(0, 1/(1+distance)) and the threshold applies to relevance, not
// distance.
func (s *Store) Search(ctx context.Context, query string, q search.VectorQuery) ([]search.VectorHit, error) {
	if err := s.Available(ctx); err != nil {
		return nil, err
	}
	if q.Limit <= 0 {
		q.Limit = 5
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	sql := `SELECT id, title, content, metadata, embedding <=> $1::vector AS distance
		FROM stories`
	args := []any{encodeVector(vec)}

	if q.Filters != nil {
		clauses, filterArgs := filterClauses(q.Filters, len(args)+1)
		if len(clauses) > 0 {
			sql += " WHERE " + joinAnd(clauses)
			args = append(args, filterArgs...)
		}
	}
	// Over-fetch so threshold filtering still fills the limit.
	sql += fmt.Sprintf(" ORDER BY embedding <=> $1::vector LIMIT %d", q.Limit*2)

	dbRows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("vector search query failed: %w", err)
	}
	defer dbRows.Close()

	var hits []search.VectorHit
	for dbRows.Next() {
		var (
			id, title, content string
			metaRaw            []byte
			distance           float64
		)
		if err := dbRows.Scan(&id, &title, &content, &metaRaw, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan search row: %w", err)
		}

		relevance := 1 / (1 + distance)
		if relevance < 0 {
			relevance = 0
		}
		if relevance < q.Threshold {
			continue
		}

		var meta Metadata
		if err := json.Unmarshal(metaRaw, &meta); err != nil {
			return nil, fmt.Errorf("failed to decode metadata for %s: %w", id, err)
		}

		hits = append(hits, search.VectorHit{
			Story:          meta.toStory(title, content),
			Distance:       distance,
			RelevanceScore: relevance,
		})
	}
	if err := dbRows.Err(); err != nil {
		return nil, fmt.Errorf("vector search rows failed: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].RelevanceScore > hits[j].RelevanceScore
	})
	if len(hits) > q.Limit {
		hits = hits[:q.Limit]
	}
	return hits, nil
}

// Count returns the number of indexed stories.
func (s *Store) Count(ctx context.Context) (int, error) {
	if err := s.Available(ctx); err != nil {
		return 0, err
	}
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM stories`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count stories: %w", err)
	}
	return count, nil
}

// Clear deletes every embedding record. Idempotent.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.Available(ctx); err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM stories`); err != nil {
		return fmt.Errorf("failed to clear vector store: %w", err)
	}
	return nil
}

// filterClauses builds push-down WHERE clauses for the metadata filters,
// numbering placeholders from next.
func filterClauses(f *search.Filters, next int) ([]string, []any) {
	var clauses []string
	var args []any
	add := func(field, value string) {
		clauses = append(clauses, fmt.Sprintf("metadata->>'%s' = $%d", field, next))
		args = append(args, value)
		next++
	}
	if f.Company != "" {
		add("company", f.Company)
	}
	if f.Role != "" {
		add("role", f.Role)
	}
	if f.ImpactLevel != "" {
		add("impactLevel", string(f.ImpactLevel))
	}
	if f.SeniorityLevel != "" {
		add("seniorityLevel", string(f.SeniorityLevel))
	}
	return clauses, args
}

func joinAnd(clauses []string) string {
	out := clauses[0]
	for _, c := range clauses[1:] {
		out += " AND " + c
	}
	return out
}
