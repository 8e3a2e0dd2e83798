// Package reindex provides full-corpus maintenance: re-chunking and
// re-embedding every document in a repository, typically after an embedding
// model change or a chunker configuration change.
//
// This package supports batch processing of documents, checkpointed resume,
// progress tracking, retry logic with exponential backoff, and vector
// normalization to ensure compatibility with cosine similarity search.
package reindex
