package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/elimu/core"
	"github.com/poiesic/elimu/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) *ChunkRepository {
	return &ChunkRepository{
		backend: backend,
	}
}

// Close is a no-op; the backend owns the database handle.
func (r *ChunkRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ChunkRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// ReplaceChunks atomically replaces all chunks for a document. The old set
// is deleted and the new one written in one transaction, so readers never
// see a partial set.
func (r *ChunkRepository) ReplaceChunks(ctx context.Context, docID core.ID, chunks []*core.DocumentChunk) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		oldKeys, err := collectChunkKeys(tx, docID)
		if err != nil {
			return err
		}
		for _, key := range oldKeys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}

		for _, chunk := range chunks {
			chunk.DocumentId = docID
			key := makeChunkKey(docID, chunk.ChunkIndex)
			if err := tx.Set(key, storage.MarshalDocumentChunk(chunk)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetChunks retrieves all chunks for a document in chunk index order.
func (r *ChunkRepository) GetChunks(ctx context.Context, docID core.ID) ([]*core.DocumentChunk, error) {
	var chunks []*core.DocumentChunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialChunkKey(docID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// BigEndian chunk index in the key gives ascending order for free
		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *core.DocumentChunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalDocumentChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if chunk != nil {
				chunks = append(chunks, chunk)
			}
		}
		return nil
	}, false)
	return chunks, err
}

// UpdateChunks overwrites existing chunks in place, keyed by
// (DocumentId, ChunkIndex). Used to attach embedding vectors.
func (r *ChunkRepository) UpdateChunks(ctx context.Context, chunks ...*core.DocumentChunk) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			key := makeChunkKey(chunk.DocumentId, chunk.ChunkIndex)
			if _, err := tx.Get(key); err != nil {
				if err == badger.ErrKeyNotFound {
					return storage.ErrNotFound
				}
				return err
			}
			if err := tx.Set(key, storage.MarshalDocumentChunk(chunk)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// FindSimilarChunks delegates to the backend.
func (r *ChunkRepository) FindSimilarChunks(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ChunkMatch, error) {
	return r.backend.FindSimilarChunks(ctx, vector, minSimilarity, limit)
}
