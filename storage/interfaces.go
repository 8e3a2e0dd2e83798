package storage

import (
	"context"

	"github.com/poiesic/elimu/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DocumentRepository provides operations for managing documents.
type DocumentRepository interface {
	Repository

	// AddDocuments adds one or more documents to storage.
	// For documents with Id=0, generates new IDs from sequence.
	// Sets CreatedAt timestamp if not already set.
	// Returns the documents with generated IDs and timestamps populated.
	AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// UpdateDocuments updates existing documents.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any document doesn't exist.
	UpdateDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// DeleteDocuments removes documents by their IDs.
	// Also removes associated indices and chunks.
	// Returns ErrNotFound if any document doesn't exist.
	DeleteDocuments(ctx context.Context, ids ...core.ID) error

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocuments retrieves multiple documents by their IDs.
	// Returns only the documents that exist (no error for missing documents).
	GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error)

	// GetDocumentByContentHash retrieves the document whose content hashes to
	// the given value. Returns ErrNotFound if no such document exists.
	GetDocumentByContentHash(ctx context.Context, hash core.ID) (*core.Document, error)

	// Count returns the number of documents matching the filter.
	// A nil filter counts all documents.
	Count(ctx context.Context, filter *core.DocumentFilter) (uint64, error)

	// FindMany returns one page of documents matching the filter, ordered by
	// sortBy/sortOrder, skipping skip documents and returning up to take.
	FindMany(ctx context.Context, filter *core.DocumentFilter, skip, take int, sortBy core.SortField, sortOrder core.SortOrder) ([]*core.Document, error)

	// GroupBy returns per-value counts of documents matching the filter,
	// grouped by the given dimension. Supported dimensions are
	// DimensionSubject, DimensionGrade, DimensionType, and DimensionDate.
	// Returns ErrInvalidQuery for an unknown dimension.
	GroupBy(ctx context.Context, dimension Dimension, filter *core.DocumentFilter) ([]core.FacetCount, error)

	// FindByTitleOrSubject returns up to limit documents whose title or
	// subject contains the partial string, case-insensitively.
	FindByTitleOrSubject(ctx context.Context, partial string, limit int) ([]*core.Document, error)

	// ListDocuments returns up to limit documents with ID greater than
	// afterID, in ascending ID order. Used for checkpointed batch scans.
	ListDocuments(ctx context.Context, afterID core.ID, limit int) ([]*core.Document, error)
}

// Dimension names a group-by axis for faceted counts.
type Dimension string

const (
	DimensionSubject Dimension = "subject"
	DimensionGrade   Dimension = "grade"
	DimensionType    Dimension = "documentType"
	DimensionDate    Dimension = "date"
)

// ChunkRepository provides operations for managing document chunks.
type ChunkRepository interface {
	Repository

	// ReplaceChunks atomically replaces all chunks for a document.
	// The prior chunk set is deleted and the new one written in a single
	// transaction, so readers never observe a partial set.
	ReplaceChunks(ctx context.Context, docID core.ID, chunks []*core.DocumentChunk) error

	// GetChunks retrieves all chunks for a document in chunk index order.
	// Returns an empty slice if the document has no chunks.
	GetChunks(ctx context.Context, docID core.ID) ([]*core.DocumentChunk, error)

	// UpdateChunks overwrites existing chunks in place, keyed by
	// (DocumentId, ChunkIndex). Used to attach embedding vectors.
	UpdateChunks(ctx context.Context, chunks ...*core.DocumentChunk) error

	// FindSimilarChunks finds chunks similar to the given vector.
	// Returns chunks with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	// Chunks without a vector are skipped.
	FindSimilarChunks(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ChunkMatch, error)
}

// CheckpointRepository tracks progress of long-running batch processors,
// allowing them to resume after interruption.
type CheckpointRepository interface {
	// SaveCheckpoint persists a checkpoint, overwriting any prior one for
	// the same processor type.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint for a processor type.
	// Returns nil, nil if no checkpoint has been saved.
	LoadCheckpoint(ctx context.Context, processorType string) (*core.Checkpoint, error)

	// DeleteCheckpoint removes the checkpoint for a processor type.
	// Deleting a missing checkpoint is not an error.
	DeleteCheckpoint(ctx context.Context, processorType string) error
}
