// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reindex

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/elimu/ai"
	"github.com/poiesic/elimu/chunker"
	"github.com/poiesic/elimu/core"
	"github.com/poiesic/elimu/storage"
)

// ProcessorType identifies the reindexer in checkpoint storage.
const ProcessorType = "reindex"

// Config holds configuration for the reindexing operation.
type Config struct {
	// BatchSize is the number of documents to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of documents)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// MaxChunkSize overrides the chunker's size cap when > 0
	MaxChunkSize int

	// Resume continues from the last saved checkpoint instead of starting over
	Resume bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reindexer orchestrates re-chunking and re-embedding of every document in a
// database. Progress survives interruption: a checkpoint is written after
// each batch and cleared on completion.
type Reindexer struct {
	docRepo        storage.DocumentRepository
	checkpointRepo storage.CheckpointRepository
	config         *Config
	progress       io.Writer
	processor      *BatchProcessor
	iterator       *DocumentIterator
}

// NewReindexer creates a new reindexer.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(
	docRepo storage.DocumentRepository,
	chunkRepo storage.ChunkRepository,
	checkpointRepo storage.CheckpointRepository,
	embedder ai.Embedder,
	config *Config,
	progress io.Writer,
) *Reindexer {
	if config == nil {
		config = DefaultConfig()
	}

	var ch *chunker.Chunker
	if config.MaxChunkSize > 0 {
		ch = chunker.New(chunker.WithMaxChunkSize(config.MaxChunkSize))
	}

	processor := NewBatchProcessor(chunkRepo, ch, embedder, config.MaxRetries, config.RetryDelay)
	iterator := NewDocumentIterator(docRepo, config.BatchSize)

	return &Reindexer{
		docRepo:        docRepo,
		checkpointRepo: checkpointRepo,
		config:         config,
		progress:       progress,
		processor:      processor,
		iterator:       iterator,
	}
}

// Run executes the reindexing operation. Every document's chunk set is
// regenerated from its current content and re-embedded. Progress is reported
// to the configured writer.
func (r *Reindexer) Run(ctx context.Context) error {
	total, err := r.docRepo.Count(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}

	if total == 0 {
		fmt.Fprintf(r.progress, "No documents found in database (0 documents)\n")
		return nil
	}

	startAfter := core.ID(0)
	if r.config.Resume {
		checkpoint, err := r.checkpointRepo.LoadCheckpoint(ctx, ProcessorType)
		if err != nil {
			return fmt.Errorf("failed to load checkpoint: %w", err)
		}
		if checkpoint != nil {
			startAfter = checkpoint.LastID
			fmt.Fprintf(r.progress, "Resuming after document %d\n", startAfter)
		}
	}

	fmt.Fprintf(r.progress, "Starting reindex of %d documents (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, int(total), r.config.ReportInterval)
	tracker.Start()

	processed := 0

	err = r.iterator.ForEach(ctx, startAfter, func(docs []*core.Document) error {
		if err := r.processor.Process(ctx, docs); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		// Checkpoint after each durable batch
		lastID := docs[len(docs)-1].Id
		if err := r.checkpointRepo.SaveCheckpoint(ctx, &core.Checkpoint{
			ProcessorType: ProcessorType,
			LastID:        lastID,
			UpdatedAt:     time.Now().UTC(),
		}); err != nil {
			return fmt.Errorf("failed to save checkpoint: %w", err)
		}

		processed += len(docs)
		tracker.Update(processed)

		return nil
	})

	if err != nil {
		return err
	}

	tracker.Finish()

	if err := r.checkpointRepo.DeleteCheckpoint(ctx, ProcessorType); err != nil {
		return fmt.Errorf("failed to clear checkpoint: %w", err)
	}

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindex complete. Processed %d documents in %v (%.1f documents/sec)\n",
		processed, elapsed.Round(time.Second), float64(processed)/elapsed.Seconds())

	return nil
}
