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

	"github.com/poiesic/elimu/core"
	"github.com/poiesic/elimu/storage"
)

const (
	// DefaultBatchSize is the default number of documents to fetch in each batch
	DefaultBatchSize = 100
)

// DocumentIterator iterates over all documents in ID order, in batches.
// Keyset pagination keeps memory bounded regardless of corpus size.
type DocumentIterator struct {
	repo      storage.DocumentRepository
	batchSize int
}

// NewDocumentIterator creates a new document iterator.
// batchSize: number of documents to fetch in each batch (must be > 0)
func NewDocumentIterator(repo storage.DocumentRepository, batchSize int) *DocumentIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &DocumentIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach iterates over all documents with ID greater than afterID, calling
// fn for each batch. Iteration stops on first error from fn or when all
// documents are processed. Context cancellation is checked between batches.
func (it *DocumentIterator) ForEach(ctx context.Context, afterID core.ID, fn func([]*core.Document) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		docs, err := it.repo.ListDocuments(ctx, afterID, it.batchSize)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return nil
		}

		if err := fn(docs); err != nil {
			return err
		}

		afterID = docs[len(docs)-1].Id
	}
}
