package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/poiesic/elimu/ai"
	"github.com/poiesic/elimu/core"
	"github.com/poiesic/elimu/storage"
)

// EmbeddingProcessorType identifies the chunk-embedding processor in
// checkpoint storage.
const EmbeddingProcessorType = "chunk-embeddings"

// embeddingProcessor generates embedding vectors for document chunks.
type embeddingProcessor struct {
	chunkRepository      storage.ChunkRepository
	checkpointRepository storage.CheckpointRepository
	embedder             ai.Embedder
	logger               *slog.Logger

	mu     sync.Mutex
	lastID core.ID
}

var _ processor = (*embeddingProcessor)(nil)

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(
	chunkRepository storage.ChunkRepository,
	checkpointRepository storage.CheckpointRepository,
	embedder ai.Embedder,
	logger *slog.Logger,
) (processor, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if checkpointRepository == nil {
		return nil, ErrCheckpointRepositoryRequired
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		chunkRepository:      chunkRepository,
		checkpointRepository: checkpointRepository,
		embedder:             embedder,
		logger:               logger.With("processor", EmbeddingProcessorType),
	}, nil
}

// process embeds all chunks of the specified documents.
func (ep *embeddingProcessor) process(ctx context.Context, ids ...core.ID) error {
	ep.logger.Info("processing documents for chunk embeddings", "documents", len(ids))

	// Sort first so checkpointing works correctly
	slices.Sort(ids)

	for _, id := range ids {
		if err := ep.embedDocument(ctx, id); err != nil {
			return err
		}

		ep.mu.Lock()
		if id > ep.lastID {
			ep.lastID = id
		}
		ep.mu.Unlock()
	}

	return nil
}

// embedDocument embeds one document's chunk set in a single batch call.
func (ep *embeddingProcessor) embedDocument(ctx context.Context, id core.ID) error {
	chunks, err := ep.chunkRepository.GetChunks(ctx, id)
	if err != nil {
		ep.logger.Error("error retrieving chunks", "document", id, "err", err)
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	ep.logger.Debug("generating chunk embeddings", "document", id, "chunks", len(texts))
	embeddings, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		ep.logger.Error("error generating embeddings", "document", id, "err", err)
		return err
	}

	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(chunks), len(embeddings))
	}

	for i := range embeddings {
		chunks[i].Vector = embeddings[i]
	}

	return ep.chunkRepository.UpdateChunks(ctx, chunks...)
}

// checkpoint persists the highest fully-embedded document ID.
func (ep *embeddingProcessor) checkpoint(ctx context.Context) error {
	ep.mu.Lock()
	lastID := ep.lastID
	ep.mu.Unlock()

	if lastID == 0 {
		return nil
	}

	return ep.checkpointRepository.SaveCheckpoint(ctx, &core.Checkpoint{
		ProcessorType: EmbeddingProcessorType,
		LastID:        lastID,
		UpdatedAt:     time.Now().UTC(),
	})
}
