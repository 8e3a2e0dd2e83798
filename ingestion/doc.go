// Package ingestion provides pipeline orchestration for processing documents.
//
// The Pipeline type manages the ingestion workflow for documents, including:
//   - Validating and deduplicating documents by content hash
//   - Adding documents to storage
//   - Chunking extracted content and replacing the chunk set atomically
//   - Generating chunk embeddings asynchronously
//
// Embedding is performed on worker pools so that ingestion returns as soon as
// documents and chunks are durable. Errors during async processing are logged
// but do not fail the ingestion operation.
package ingestion
