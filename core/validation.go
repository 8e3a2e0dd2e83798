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


package core

import (
	"fmt"
	"time"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Title must not be empty
//   - ExtractedContent must not be empty
//   - CreatedAt must not be in the future
//
// NOT validated (populated by the pipeline or database):
//   - ContentHash (computed during ingestion)
//   - ID (0 is valid from database sequences)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyTitle)
	}

	if doc.ExtractedContent == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyContent)
	}

	if !IsValidTimestamp(doc.CreatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrInvalidTimestamp)
	}

	return nil
}

// Validate checks a search request against the boundary rules. Malformed
// requests are rejected here, before any retrieval work happens.
//
// Validation rules:
//   - Page must be at least 1
//   - Limit must be greater than zero
//   - DateFrom must not be after DateTo when both are set
//   - SortBy and SortOrder must be known values (empty means default)
func (q *SearchQuery) Validate() error {
	if q.Page < 1 {
		return fmt.Errorf("%w: %w (got %d)", ErrInvalidSearchQuery, ErrInvalidPage, q.Page)
	}

	if q.Limit < 1 {
		return fmt.Errorf("%w: %w (got %d)", ErrInvalidSearchQuery, ErrInvalidLimit, q.Limit)
	}

	if q.Filter.DateFrom != nil && q.Filter.DateTo != nil && q.Filter.DateFrom.After(*q.Filter.DateTo) {
		return fmt.Errorf("%w: %w", ErrInvalidSearchQuery, ErrInvalidDateRange)
	}

	switch q.SortBy {
	case SortByRelevance, SortByDate, SortByPopularity, SortByTitle:
	default:
		return fmt.Errorf("%w: %w %q", ErrInvalidSearchQuery, ErrInvalidSortField, q.SortBy)
	}

	switch q.SortOrder {
	case SortAsc, SortDesc:
	default:
		return fmt.Errorf("%w: %w %q", ErrInvalidSearchQuery, ErrInvalidSortOrder, q.SortOrder)
	}

	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
