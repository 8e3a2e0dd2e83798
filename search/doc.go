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


// Package search provides relevance-ranked document search.
//
// The Searcher type coordinates each request: filtered counts, a candidate
// page, and faceted aggregates are fetched from the datastore concurrently,
// while an optional query embedding is attempted under a bounded timeout.
// Candidates are scored by the LexicalScorer, an additive keyword formula
// whose weights live in one named ScoringPolicy, and re-sorted by relevance.
//
// Embedding failures never fail a search; the coordinator degrades to
// lexical-only ranking and returns a complete result. Datastore failures,
// by contrast, are hard errors and are never masked as empty results.
//
// The package also provides typeahead suggestions, a static popular-terms
// list, and chunk-level vector similarity search.
package search
