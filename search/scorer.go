package search

import (
	"strings"
	"time"

	"github.com/poiesic/elimu/core"
)

// Scorer computes a normalized relevance score in [0,1] for a document
// against a query. Implementations must be stateless per call; the same
// inputs always produce the same score.
//
// LexicalScorer is the production implementation. Embedding-based ranking,
// once a similarity function is settled, slots in as another Scorer behind
// the same interface.
type Scorer interface {
	Score(doc *core.Document, query string, now time.Time) float64
}

// LexicalScorer scores documents with an additive keyword formula and
// extracts highlighted snippets.
type LexicalScorer struct {
	policy ScoringPolicy
}

var _ Scorer = (*LexicalScorer)(nil)

// NewLexicalScorer creates a scorer with the given policy.
func NewLexicalScorer(policy ScoringPolicy) *LexicalScorer {
	return &LexicalScorer{policy: policy}
}

// Score computes the relevance of doc against a non-empty query.
// The raw additive score is capped at the policy maximum and normalized
// to [0,1]. The title weights stack: a title match earns both TitleMatch
// and TitleBonus.
func (s *LexicalScorer) Score(doc *core.Document, query string, now time.Time) float64 {
	var raw float64

	titleHit := containsFold(doc.Title, query)
	if titleHit {
		raw += s.policy.TitleMatch
	}
	if containsFold(doc.Subject, query) {
		raw += s.policy.SubjectMatch
	}

	occurrences := countOccurrences(doc.ExtractedContent, query)
	raw += s.policy.ContentOccurrence * float64(occurrences)

	if titleHit {
		raw += s.policy.TitleBonus
	}
	if occurrences > 0 {
		raw += s.policy.ContentBonus
	}

	ageLimit := now.AddDate(0, 0, -s.policy.RecencyWindowDays)
	if doc.CreatedAt.After(ageLimit) {
		raw += s.policy.RecencyBonus
	}

	if raw > s.policy.MaxRawScore {
		raw = s.policy.MaxRawScore
	}
	return raw / s.policy.MaxRawScore
}

// Highlights extracts up to three sentences from content that share words
// with the query, in source order, each capped at 150 characters.
func (s *LexicalScorer) Highlights(content, query string) []string {
	words := queryWords(query)
	if len(words) == 0 {
		return nil
	}

	var highlights []string
	for _, sentence := range splitNaiveSentences(content) {
		lowered := strings.ToLower(sentence)
		matched := 0
		for _, w := range words {
			if strings.Contains(lowered, w) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		highlights = append(highlights, truncate(sentence, highlightMaxLength))
		if len(highlights) == maxHighlights {
			break
		}
	}
	return highlights
}
