package search

import "strings"

const (
	maxHighlights      = 3
	highlightMaxLength = 150
	minQueryWordLength = 3
)

// splitNaiveSentences breaks text on terminal punctuation. No length
// filtering happens here; highlight candidacy is decided by word matches.
func splitNaiveSentences(text string) []string {
	var (
		sentences []string
		buf       strings.Builder
	)

	emit := func() {
		s := strings.TrimSpace(buf.String())
		buf.Reset()
		if s != "" {
			sentences = append(sentences, s)
		}
	}

	for _, r := range text {
		buf.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			emit()
		}
	}
	emit()

	return sentences
}

// queryWords tokenizes a query into lowercase words longer than two
// characters. Short words carry too little signal for highlighting.
func queryWords(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	words := make([]string, 0, len(fields))
	for _, w := range fields {
		if len(w) >= minQueryWordLength {
			words = append(words, w)
		}
	}
	return words
}

// countOccurrences counts non-overlapping case-insensitive occurrences of
// needle in haystack.
func countOccurrences(haystack, needle string) int {
	if needle == "" {
		return 0
	}
	return strings.Count(strings.ToLower(haystack), strings.ToLower(needle))
}

// containsFold reports whether s contains substr, case-insensitively.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// truncate shortens s to max characters, appending "..." when cut.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
