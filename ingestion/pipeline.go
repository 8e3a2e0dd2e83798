package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/elimu/ai"
	"github.com/poiesic/elimu/chunker"
	"github.com/poiesic/elimu/core"
	"github.com/poiesic/elimu/storage"
)

// Pipeline orchestrates the ingestion and processing of documents.
// It validates and stores documents, generates their chunk sets, and manages
// concurrent chunk-embedding work.
type Pipeline struct {
	documentRepository storage.DocumentRepository
	chunkRepository    storage.ChunkRepository
	chunker            *chunker.Chunker
	embeddingPool      *ants.Pool
	embeddingProc      processor
	pending            sync.WaitGroup
	logger             *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		embeddingPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.embeddingPool = embeddingPool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithMaxChunkSize sets the chunk size cap used when splitting content.
func WithMaxChunkSize(size int) Option {
	return func(p *Pipeline) error {
		p.chunker = chunker.New(chunker.WithMaxChunkSize(size))
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	documentRepository storage.DocumentRepository,
	chunkRepository storage.ChunkRepository,
	checkpointRepository storage.CheckpointRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if checkpointRepository == nil {
		return nil, ErrCheckpointRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		documentRepository: documentRepository,
		chunkRepository:    chunkRepository,
		chunker:            chunker.New(),
		embeddingPool:      embeddingPool,
		logger:             slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	embeddingProc, err := newEmbeddingProcessor(chunkRepository, checkpointRepository,
		provider.Embedder(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.embeddingProc = embeddingProc

	return p, nil
}

// Ingest validates, stores, and chunks the given documents, then submits
// their chunks for asynchronous embedding. Duplicate content is rejected with
// storage.ErrDuplicateContent before anything is written. Errors during async
// embedding are logged but do not fail the ingestion.
//
// Returns the stored documents with generated IDs and timestamps populated.
func (p *Pipeline) Ingest(ctx context.Context, docs ...*core.Document) ([]*core.Document, error) {
	for _, doc := range docs {
		if err := core.ValidateDocument(doc); err != nil {
			return nil, err
		}
	}

	added, err := p.documentRepository.AddDocuments(ctx, docs...)
	if err != nil {
		return nil, err
	}

	if len(added) == 0 {
		return added, nil
	}

	ids := make([]core.ID, len(added))
	for i, doc := range added {
		ids[i] = doc.Id

		chunks := p.chunker.Chunk(doc.Id, doc.ExtractedContent)
		if err := p.chunkRepository.ReplaceChunks(ctx, doc.Id, chunks); err != nil {
			return nil, err
		}
	}

	p.submitEmbedding(ids)
	return added, nil
}

// Reprocess re-chunks a document's current content and re-embeds the new
// chunk set. Used after a document's content changes; the old chunk set is
// replaced atomically.
func (p *Pipeline) Reprocess(ctx context.Context, id core.ID) error {
	doc, err := p.documentRepository.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	chunks := p.chunker.Chunk(doc.Id, doc.ExtractedContent)
	if err := p.chunkRepository.ReplaceChunks(ctx, doc.Id, chunks); err != nil {
		return err
	}

	p.submitEmbedding([]core.ID{id})
	return nil
}

// submitEmbedding queues async chunk embedding for the given documents.
func (p *Pipeline) submitEmbedding(ids []core.ID) {
	p.pending.Add(1)
	err := p.embeddingPool.Submit(func() {
		defer p.pending.Done()

		ctx := context.Background()
		if err := p.embeddingProc.process(ctx, ids...); err != nil {
			p.logger.Error("error processing chunk embeddings", "err", err)
			return
		}
		if err := p.embeddingProc.checkpoint(ctx); err != nil {
			p.logger.Error("error applying embedding checkpoint", "err", err)
		}
	})
	if err != nil {
		p.pending.Done()
		p.logger.Error("error submitting embedding work", "err", err)
	}
}

// Wait blocks until all submitted embedding work has completed.
func (p *Pipeline) Wait() {
	p.pending.Wait()
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
