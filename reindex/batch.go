package reindex

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/elimu/ai"
	"github.com/poiesic/elimu/chunker"
	"github.com/poiesic/elimu/core"
	"github.com/poiesic/elimu/storage"
)

// BatchProcessor re-chunks and re-embeds batches of documents.
type BatchProcessor struct {
	chunkRepo      storage.ChunkRepository
	chunker        *chunker.Chunker
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(chunkRepo storage.ChunkRepository, ch *chunker.Chunker, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	if ch == nil {
		ch = chunker.New()
	}
	return &BatchProcessor{
		chunkRepo:      chunkRepo,
		chunker:        ch,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process regenerates each document's chunk set from its current content,
// embeds the new chunks, and replaces the stored set atomically.
// Vectors are normalized after embedding to ensure compatibility with cosine
// similarity.
func (bp *BatchProcessor) Process(ctx context.Context, docs []*core.Document) error {
	for _, doc := range docs {
		if err := bp.processDocument(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

func (bp *BatchProcessor) processDocument(ctx context.Context, doc *core.Document) error {
	chunks := bp.chunker.Chunk(doc.Id, doc.ExtractedContent)
	if len(chunks) == 0 {
		return bp.chunkRepo.ReplaceChunks(ctx, doc.Id, nil)
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	// Generate embeddings with retry
	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(embeddings))
	}

	for i := range chunks {
		chunks[i].Vector = NormalizeVector(embeddings[i])
	}

	if err := bp.chunkRepo.ReplaceChunks(ctx, doc.Id, chunks); err != nil {
		return fmt.Errorf("failed to replace chunks: %w", err)
	}

	return nil
}
