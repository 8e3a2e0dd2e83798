package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/poiesic/elimu/core"
)

const (
	minPartialLength  = 2
	maxSuggestions    = 5
	suggestionSources = 5
)

// popularSubjects is a static list of common search terms. Explicitly a
// stub: not backed by live analytics.
var popularSubjects = []string{
	"Mathematics",
	"English",
	"Kiswahili",
	"Science",
	"Social Studies",
	"CRE",
	"Agriculture",
	"Home Science",
}

// Suggestions returns up to five deduplicated title and subject terms from
// documents matching the partial query. Partials shorter than two characters
// are rejected.
func (s *Searcher) Suggestions(ctx context.Context, partial string) ([]string, error) {
	trimmed := strings.TrimSpace(partial)
	if len(trimmed) < minPartialLength {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidSearchQuery, core.ErrPartialQueryTooShort)
	}

	docs, err := s.documentRepository.FindByTitleOrSubject(ctx, trimmed, suggestionSources)
	if err != nil {
		s.logger.Error("suggestion lookup failed", "partial", trimmed, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrRetrievalFailed, err)
	}

	seen := make(map[string]bool)
	suggestions := make([]string, 0, maxSuggestions)

	add := func(term string) {
		if len(suggestions) == maxSuggestions {
			return
		}
		if term == "" || !containsFold(term, trimmed) {
			return
		}
		key := strings.ToLower(term)
		if seen[key] {
			return
		}
		seen[key] = true
		suggestions = append(suggestions, term)
	}

	for _, doc := range docs {
		add(doc.Title)
		add(doc.Subject)
	}

	return suggestions, nil
}

// PopularSearches returns a fixed list of common subject terms.
func (s *Searcher) PopularSearches() []string {
	out := make([]string, len(popularSubjects))
	copy(out, popularSubjects)
	return out
}
