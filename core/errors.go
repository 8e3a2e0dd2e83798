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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidSearchQuery indicates a SearchQuery failed validation.
	ErrInvalidSearchQuery = errors.New("invalid search query")

	// ErrEmptyTitle indicates the Title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrEmptyContent indicates the ExtractedContent field is empty.
	ErrEmptyContent = errors.New("extracted content cannot be empty")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrInvalidPage indicates a page number below 1.
	ErrInvalidPage = errors.New("page must be at least 1")

	// ErrInvalidLimit indicates a non-positive page size.
	ErrInvalidLimit = errors.New("limit must be greater than zero")

	// ErrInvalidDateRange indicates a date range whose start is after its end.
	ErrInvalidDateRange = errors.New("date range start is after end")

	// ErrInvalidSortField indicates an unknown sort field.
	ErrInvalidSortField = errors.New("invalid sort field")

	// ErrInvalidSortOrder indicates an unknown sort order.
	ErrInvalidSortOrder = errors.New("invalid sort order")

	// ErrPartialQueryTooShort indicates a suggestion query below the minimum length.
	ErrPartialQueryTooShort = errors.New("partial query must be at least 2 characters")
)
