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


// Package ai provides abstractions for the embedding services used by Elimu.
//
// This package defines the interfaces for generating text embeddings. The
// search and ingestion layers depend on these abstractions rather than on a
// concrete embedding client, which keeps the embedding backend swappable and
// the business logic testable.
//
// # Implementation Packages
//
// The ai package includes two implementation sub-packages:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder) return
// INTERFACE types to enforce abstraction and prevent accidental coupling to
// concrete implementations.
//
//	provider, err := openai.NewProvider(config)  // returns ai.AIProvider
//
// Test utility constructors (mock.NewMockEmbedder) return CONCRETE types to
// enable test assertions and behavior injection via the mock's public fields
// (CallCount, EmbedTextFunc, Reset).
//
// # Degraded Mode
//
// The embedding service is optional at search time. When an Embedder call
// fails or times out, callers are expected to check for
// ErrEmbeddingUnavailable (or treat any error equivalently) and continue
// with lexical-only ranking.
//
//	vec, err := provider.Embedder().EmbedText(ctx, query)
//	if err != nil {
//	    // degrade: search proceeds without the query vector
//	}
package ai
