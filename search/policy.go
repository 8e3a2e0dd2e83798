package search

// ScoringPolicy names the additive weights of the lexical relevance formula.
// Keeping them in one structure keeps the formula auditable; the weights are
// cumulative, so a title match earns both TitleMatch and TitleBonus.
type ScoringPolicy struct {
	// TitleMatch is added when the title contains the full query.
	TitleMatch float64

	// SubjectMatch is added when the subject contains the full query.
	SubjectMatch float64

	// ContentOccurrence is added once per occurrence of the query
	// substring in the content.
	ContentOccurrence float64

	// TitleBonus is added, on top of TitleMatch, when the title contains
	// the query.
	TitleBonus float64

	// ContentBonus is added when the content contains the query at all.
	ContentBonus float64

	// RecencyBonus is added when the document is younger than RecencyWindow
	// days at evaluation time.
	RecencyBonus float64

	// RecencyWindowDays is the age threshold for RecencyBonus.
	RecencyWindowDays int

	// MaxRawScore caps the raw additive score before normalization.
	// Relevance is min(raw, MaxRawScore) / MaxRawScore.
	MaxRawScore float64
}

// DefaultScoringPolicy returns the production weights.
func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{
		TitleMatch:        10,
		SubjectMatch:      8,
		ContentOccurrence: 2,
		TitleBonus:        5,
		ContentBonus:      3,
		RecencyBonus:      1,
		RecencyWindowDays: 30,
		MaxRawScore:       100,
	}
}
