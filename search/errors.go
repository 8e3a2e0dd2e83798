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


package search

import "errors"

var (
	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrRetrievalFailed wraps datastore failures during search. Unlike
	// embedding failures, these are hard errors and never masked as an
	// empty result.
	ErrRetrievalFailed = errors.New("retrieval failed")

	// ErrSemanticUnavailable is returned by chunk similarity search when no
	// embedder or chunk repository is configured.
	ErrSemanticUnavailable = errors.New("semantic search unavailable")
)
