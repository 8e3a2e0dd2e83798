package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/poiesic/elimu/ai"
	"github.com/poiesic/elimu/core"
	"github.com/poiesic/elimu/storage"
)

const (
	defaultEmbeddingTimeout = 2 * time.Second
	snippetLength           = 200
)

// Searcher coordinates document retrieval: filtered counts and candidate
// pages from the datastore, faceted aggregation, optional query embedding,
// and lexical scoring with a guaranteed fallback when embedding fails.
type Searcher struct {
	documentRepository storage.DocumentRepository
	chunkRepository    storage.ChunkRepository
	embedder           ai.Embedder
	scorer             *LexicalScorer
	aggregator         *FacetAggregator
	embeddingTimeout   time.Duration
	logger             *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithScoringPolicy overrides the lexical scoring weights.
func WithScoringPolicy(policy ScoringPolicy) Option {
	return func(s *Searcher) error {
		s.scorer = NewLexicalScorer(policy)
		return nil
	}
}

// WithEmbeddingTimeout bounds the query-embedding call. On expiry the
// search continues lexically.
func WithEmbeddingTimeout(d time.Duration) Option {
	return func(s *Searcher) error {
		if d > 0 {
			s.embeddingTimeout = d
		}
		return nil
	}
}

// WithChunkRepository enables chunk-level similarity search.
func WithChunkRepository(repo storage.ChunkRepository) Option {
	return func(s *Searcher) error {
		s.chunkRepository = repo
		return nil
	}
}

// NewSearcher creates a new searcher. The embedder may be nil when no
// embedding service is configured; searches then always take the lexical
// path.
func NewSearcher(
	documentRepository storage.DocumentRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Searcher, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}

	s := &Searcher{
		documentRepository: documentRepository,
		embedder:           embedder,
		scorer:             NewLexicalScorer(DefaultScoringPolicy()),
		aggregator:         NewFacetAggregator(documentRepository),
		embeddingTimeout:   defaultEmbeddingTimeout,
		logger:             slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// embeddingOutcome is the explicit two-branch result of the query-embedding
// attempt. The coordinator matches on it rather than steering control flow
// through errors: a failed outcome selects the lexical-only path.
type embeddingOutcome struct {
	vector []float32
	err    error
}

func (o embeddingOutcome) succeeded() bool {
	return o.err == nil && len(o.vector) > 0
}

// Search resolves a search request into scored, paginated results plus stats.
func (s *Searcher) Search(ctx context.Context, query *core.SearchQuery) (*core.SearchResponse, error) {
	return s.SearchWithMonitor(ctx, query, nil)
}

// SearchWithMonitor runs Search with per-stage observation hooks.
//
// The count, page-fetch, and facet queries run concurrently; so does the
// embedding attempt when the query text is non-empty. Datastore failures are
// hard errors. Embedding failures are not: the search degrades to lexical
// ranking and still returns a complete result.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query *core.SearchQuery, monitor SearchMonitor) (*core.SearchResponse, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	started := time.Now()
	monitor.Start(query.Query)

	if err := query.Validate(); err != nil {
		return nil, err
	}

	filter := &query.Filter

	var (
		wg       sync.WaitGroup
		total    uint64
		docs     []*core.Document
		facets   *core.Facets
		countErr error
		fetchErr error
		facetErr error
		outcome  embeddingOutcome
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		total, countErr = s.documentRepository.Count(ctx, filter)
	}()
	go func() {
		defer wg.Done()
		docs, fetchErr = s.documentRepository.FindMany(ctx, filter, query.Skip(), query.Limit, query.SortBy, query.SortOrder)
	}()
	go func() {
		defer wg.Done()
		facets, facetErr = s.aggregator.Aggregate(ctx, filter)
	}()

	wantEmbedding := query.Query != ""
	if wantEmbedding {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome = s.fetchQueryEmbedding(ctx, query.Query)
		}()
	}
	wg.Wait()

	for _, err := range []error{countErr, fetchErr, facetErr} {
		if err != nil {
			s.logger.Error("search retrieval failed", "query", query.Query, "err", err)
			return nil, fmt.Errorf("%w: %w", ErrRetrievalFailed, err)
		}
	}
	monitor.AfterCount(total)
	monitor.AfterFetch(docs)
	monitor.AfterFacets(facets)

	var results []*core.SearchResult
	if query.Query == "" {
		// No scoring: candidates pass through in datastore order with
		// relevance fixed at 1.0 and no highlights.
		results = make([]*core.SearchResult, 0, len(docs))
		for _, doc := range docs {
			results = append(results, s.buildResult(doc, 1.0, nil))
		}
	} else {
		if outcome.succeeded() {
			monitor.EmbeddingReady(len(outcome.vector))
		} else {
			// Degraded mode: recovered locally, never surfaced to the
			// caller. The embedding vector currently feeds no ranking
			// strategy either way; see the Scorer interface.
			s.logger.Warn("embedding unavailable, continuing with lexical ranking",
				"query", query.Query, "err", outcome.err)
			monitor.EmbeddingDegraded(outcome.err)
		}

		now := time.Now().UTC()
		results = make([]*core.SearchResult, 0, len(docs))
		for _, doc := range docs {
			relevance := s.scorer.Score(doc, query.Query, now)
			highlights := s.scorer.Highlights(doc.ExtractedContent, query.Query)
			results = append(results, s.buildResult(doc, relevance, highlights))
		}

		// Relevance overrides datastore order; stable sort keeps the
		// original fetch order for ties.
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Relevance > results[j].Relevance
		})
	}
	monitor.AfterScoring(results)

	response := &core.SearchResponse{
		Results: results,
		Stats: core.SearchStats{
			TotalResults: total,
			TotalPages:   core.TotalPages(total, query.Limit),
			CurrentPage:  query.Page,
			QueryTime:    time.Since(started),
			Facets:       *facets,
		},
	}
	monitor.Finish(response)

	return response, nil
}

// fetchQueryEmbedding attempts a timeboxed embedding of the query text.
// All failure modes (unconfigured, timeout, provider error) collapse into a
// failed outcome.
func (s *Searcher) fetchQueryEmbedding(ctx context.Context, query string) embeddingOutcome {
	if s.embedder == nil {
		return embeddingOutcome{err: ai.ErrEmbeddingUnavailable}
	}

	embedCtx, cancel := context.WithTimeout(ctx, s.embeddingTimeout)
	defer cancel()

	vector, err := s.embedder.EmbedText(embedCtx, query)
	if err != nil {
		return embeddingOutcome{err: err}
	}
	return embeddingOutcome{vector: vector}
}

// buildResult projects a document into a search result.
func (s *Searcher) buildResult(doc *core.Document, relevance float64, highlights []string) *core.SearchResult {
	return &core.SearchResult{
		Id:           doc.Id,
		Title:        doc.Title,
		Snippet:      truncate(doc.ExtractedContent, snippetLength),
		Relevance:    relevance,
		Highlights:   highlights,
		Subject:      doc.Subject,
		Grade:        doc.Grade,
		DocumentType: doc.DocumentType,
		UploadedBy:   doc.UploadedBy,
		CreatedAt:    doc.CreatedAt,
	}
}

// SimilarChunks finds document chunks semantically close to the query text.
// Unlike Search, this path hard-requires the embedding service; there is no
// lexical fallback at chunk granularity.
func (s *Searcher) SimilarChunks(ctx context.Context, query string, minScore float32, limit int) ([]*core.ChunkMatch, error) {
	if s.embedder == nil || s.chunkRepository == nil {
		return nil, ErrSemanticUnavailable
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", core.ErrInvalidSearchQuery)
	}

	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSemanticUnavailable, err)
	}

	return s.chunkRepository.FindSimilarChunks(ctx, vector, minScore, limit)
}
