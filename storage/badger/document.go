package badger

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/elimu/core"
	"github.com/poiesic/elimu/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	idSeq, err := backend.GetSequence(documentIDSeq)
	if err != nil {
		return nil, err
	}

	return &DocumentRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *DocumentRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *DocumentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddDocuments adds one or more documents to storage.
func (r *DocumentRepository) AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			if doc.ContentHash == 0 {
				doc.ContentHash = core.IDFromContent(doc.ExtractedContent)
			}

			// Reject exact duplicates by content hash
			hashKey := makeDocumentHashKey(doc.ContentHash)
			if _, err := tx.Get(hashKey); err == nil {
				return storage.ErrDuplicateContent
			} else if err != badger.ErrKeyNotFound {
				return err
			}

			// Always generate new ID from sequence
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			doc.Id = core.ID(nextID)

			if doc.CreatedAt.IsZero() {
				doc.CreatedAt = time.Now().UTC()
			}
			doc.UpdatedAt = doc.CreatedAt

			// Store primary record
			key := makeDocumentKey(doc.Id)
			value := storage.MarshalDocument(doc)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update date index
			dateKey := makeDocumentDateKey(doc.CreatedAt, doc.Id)
			if err := tx.Set(dateKey, storage.MarshalID(doc.Id)); err != nil {
				return err
			}

			// Update content hash index
			if err := tx.Set(hashKey, storage.MarshalID(doc.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return docs, err
}

// UpdateDocuments updates existing documents.
func (r *DocumentRepository) UpdateDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			key := makeDocumentKey(doc.Id)

			// Read old record to detect index changes
			old, err := r.readDocument(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			doc.UpdatedAt = time.Now().UTC()

			// Recompute hash if content changed
			newHash := core.IDFromContent(doc.ExtractedContent)
			doc.ContentHash = newHash

			value := storage.MarshalDocument(doc)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update date index if creation time changed
			if !old.CreatedAt.Equal(doc.CreatedAt) {
				if err := tx.Delete(makeDocumentDateKey(old.CreatedAt, old.Id)); err != nil {
					return err
				}
				if err := tx.Set(makeDocumentDateKey(doc.CreatedAt, doc.Id), storage.MarshalID(doc.Id)); err != nil {
					return err
				}
			}

			// Update hash index if content changed
			if old.ContentHash != newHash {
				if err := tx.Delete(makeDocumentHashKey(old.ContentHash)); err != nil {
					return err
				}
				if err := tx.Set(makeDocumentHashKey(newHash), storage.MarshalID(doc.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return docs, err
}

// DeleteDocuments removes documents by their IDs, along with their indices
// and chunks.
func (r *DocumentRepository) DeleteDocuments(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeDocumentKey(id)

			doc, err := r.readDocument(tx, key)
			if err != nil {
				return err
			}
			if doc == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(makeDocumentDateKey(doc.CreatedAt, doc.Id)); err != nil {
				return err
			}
			if err := tx.Delete(makeDocumentHashKey(doc.ContentHash)); err != nil {
				return err
			}

			// Collect chunk keys first; deleting while iterating is unsafe
			chunkKeys, err := collectChunkKeys(tx, id)
			if err != nil {
				return err
			}
			for _, ck := range chunkKeys {
				if err := tx.Delete(ck); err != nil {
					return err
				}
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetDocument retrieves a single document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		var err error
		result, err = r.readDocument(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetDocuments retrieves multiple documents by their IDs.
func (r *DocumentRepository) GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error) {
	var result []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeDocumentKey(id)
			doc, err := r.readDocument(tx, key)
			if err != nil {
				return err
			}
			if doc != nil {
				result = append(result, doc)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetDocumentByContentHash retrieves the document with the given content hash.
func (r *DocumentRepository) GetDocumentByContentHash(ctx context.Context, hash core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeDocumentHashKey(hash))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var docID core.ID
		if err := item.Value(func(val []byte) error {
			var err error
			docID, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = r.readDocument(tx, makeDocumentKey(docID))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// Count returns the number of documents matching the filter.
func (r *DocumentRepository) Count(ctx context.Context, filter *core.DocumentFilter) (uint64, error) {
	var count uint64
	err := r.scanDocuments(func(doc *core.Document) bool {
		if filter.Matches(doc) {
			count++
		}
		return true
	})
	return count, err
}

// FindMany returns one page of documents matching the filter.
func (r *DocumentRepository) FindMany(ctx context.Context, filter *core.DocumentFilter, skip, take int, sortBy core.SortField, sortOrder core.SortOrder) ([]*core.Document, error) {
	var matched []*core.Document
	err := r.scanDocuments(func(doc *core.Document) bool {
		if filter.Matches(doc) {
			matched = append(matched, doc)
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	sortDocuments(matched, sortBy, sortOrder)

	if skip >= len(matched) {
		return []*core.Document{}, nil
	}
	matched = matched[skip:]
	if take > 0 && take < len(matched) {
		matched = matched[:take]
	}
	return matched, nil
}

// GroupBy returns per-value counts for one facet dimension.
func (r *DocumentRepository) GroupBy(ctx context.Context, dimension storage.Dimension, filter *core.DocumentFilter) ([]core.FacetCount, error) {
	switch dimension {
	case storage.DimensionSubject, storage.DimensionGrade, storage.DimensionType, storage.DimensionDate:
	default:
		return nil, storage.ErrInvalidQuery
	}

	now := time.Now().UTC()
	counts := make(map[string]uint64)

	err := r.scanDocuments(func(doc *core.Document) bool {
		if !filter.Matches(doc) {
			return true
		}
		switch dimension {
		case storage.DimensionSubject:
			counts[doc.Subject]++
		case storage.DimensionGrade:
			counts[doc.Grade]++
		case storage.DimensionType:
			counts[doc.DocumentType]++
		case storage.DimensionDate:
			counts[core.DateBucketFor(doc.CreatedAt, now)]++
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	if dimension == storage.DimensionDate {
		// Always report all five buckets, in fixed order
		result := make([]core.FacetCount, 0, len(core.DateBuckets))
		for _, bucket := range core.DateBuckets {
			result = append(result, core.FacetCount{Value: bucket, Count: counts[bucket]})
		}
		return result, nil
	}

	result := make([]core.FacetCount, 0, len(counts))
	for value, count := range counts {
		result = append(result, core.FacetCount{Value: value, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Value < result[j].Value
	})
	return result, nil
}

// FindByTitleOrSubject returns documents whose title or subject contains the
// partial string, case-insensitively, up to limit.
func (r *DocumentRepository) FindByTitleOrSubject(ctx context.Context, partial string, limit int) ([]*core.Document, error) {
	lowered := strings.ToLower(partial)

	var matched []*core.Document
	err := r.scanDocuments(func(doc *core.Document) bool {
		if strings.Contains(strings.ToLower(doc.Title), lowered) ||
			strings.Contains(strings.ToLower(doc.Subject), lowered) {
			matched = append(matched, doc)
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(matched, func(i, j int) bool {
		return strings.ToLower(matched[i].Title) < strings.ToLower(matched[j].Title)
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// ListDocuments returns up to limit documents with ID greater than afterID,
// in ascending ID order.
func (r *DocumentRepository) ListDocuments(ctx context.Context, afterID core.ID, limit int) ([]*core.Document, error) {
	var matched []*core.Document
	err := r.scanDocuments(func(doc *core.Document) bool {
		if doc.Id > afterID {
			matched = append(matched, doc)
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Id < matched[j].Id
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// Helper methods

// readDocument reads a document from the transaction.
// Returns nil, nil if the key is absent.
func (r *DocumentRepository) readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		doc, unmarshalErr = storage.UnmarshalDocument(val)
		return unmarshalErr
	})
	return doc, err
}

// scanDocuments iterates all primary document records, invoking visit for
// each. The visit callback returns false to stop early.
func (r *DocumentRepository) scanDocuments(visit func(*core.Document) bool) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var doc *core.Document
			err := iter.Item().Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalDocument(val)
				return err
			})
			if err != nil {
				return err
			}
			if doc == nil {
				continue
			}
			if !visit(doc) {
				return nil
			}
		}
		return nil
	}, false)
}

// sortDocuments orders a slice per the requested sort field and order.
// Relevance resolves to date at the datastore level (the scorer reorders the
// page afterwards), so the default request is most-recent-first.
func sortDocuments(docs []*core.Document, sortBy core.SortField, sortOrder core.SortOrder) {
	asc := sortOrder == core.SortAsc

	less := func(a, b *core.Document) bool {
		switch sortBy {
		case core.SortByTitle:
			ta, tb := strings.ToLower(a.Title), strings.ToLower(b.Title)
			if ta != tb {
				return ta < tb
			}
		case core.SortByPopularity:
			if a.ViewCount != b.ViewCount {
				return a.ViewCount < b.ViewCount
			}
		default: // SortByDate, SortByRelevance
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}
		return a.Id < b.Id
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if asc {
			return less(docs[i], docs[j])
		}
		return less(docs[j], docs[i])
	})
}

// collectChunkKeys gathers all chunk keys belonging to a document.
func collectChunkKeys(tx *badger.Txn, docID core.ID) ([][]byte, error) {
	prefix := makePartialChunkKey(docID)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var keys [][]byte
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	return keys, nil
}
