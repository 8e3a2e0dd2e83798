package search

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/poiesic/elimu/core"
)

func TestLexicalScorer_Score(t *testing.T) {
	scorer := NewLexicalScorer(DefaultScoringPolicy())
	now := time.Now().UTC()

	t.Run("title subject and recency stack", func(t *testing.T) {
		doc := &core.Document{
			Title:            "Mathematics Grade 5",
			Subject:          "Mathematics",
			ExtractedContent: "...fractions fractions fractions fractions...",
			CreatedAt:        now.AddDate(0, 0, -2),
		}

		// title (+10) + subject (+8) + title bonus (+5) + recency (+1) = 24
		score := scorer.Score(doc, "mathematics", now)
		assert.InDelta(t, 0.24, score, 1e-9)
	})

	t.Run("content occurrences", func(t *testing.T) {
		doc := &core.Document{
			Title:            "Revision Pack",
			Subject:          "Science",
			ExtractedContent: "Fractions here. Fractions there. Fractions everywhere.",
			CreatedAt:        now.AddDate(-1, 0, 0),
		}

		// 3 occurrences (+6) + content bonus (+3) = 9
		score := scorer.Score(doc, "fractions", now)
		assert.InDelta(t, 0.09, score, 1e-9)
	})

	t.Run("case-insensitive matching", func(t *testing.T) {
		doc := &core.Document{
			Title:            "ALGEBRA BASICS",
			Subject:          "mathematics",
			ExtractedContent: "Algebra is useful.",
			CreatedAt:        now.AddDate(-1, 0, 0),
		}

		// title (+10) + title bonus (+5) + 1 occurrence (+2) + content bonus (+3) = 20
		score := scorer.Score(doc, "Algebra", now)
		assert.InDelta(t, 0.20, score, 1e-9)
	})

	t.Run("no match scores zero", func(t *testing.T) {
		doc := &core.Document{
			Title:            "Grammar",
			Subject:          "English",
			ExtractedContent: "Nouns and verbs.",
			CreatedAt:        now.AddDate(-1, 0, 0),
		}

		assert.Zero(t, scorer.Score(doc, "chemistry", now))
	})

	t.Run("raw score capped at policy maximum", func(t *testing.T) {
		doc := &core.Document{
			Title:            "fractions",
			Subject:          "fractions",
			ExtractedContent: strings.Repeat("fractions ", 60),
			CreatedAt:        now,
		}

		score := scorer.Score(doc, "fractions", now)
		assert.Equal(t, 1.0, score)
	})

	t.Run("recency boundary", func(t *testing.T) {
		fresh := &core.Document{Title: "x", CreatedAt: now.AddDate(0, 0, -29)}
		stale := &core.Document{Title: "x", CreatedAt: now.AddDate(0, 0, -31)}

		// Neither matches the query; only recency differentiates them
		assert.InDelta(t, 0.01, scorer.Score(fresh, "zzz", now), 1e-9)
		assert.Zero(t, scorer.Score(stale, "zzz", now))
	})

	t.Run("score always in unit range", func(t *testing.T) {
		docs := []*core.Document{
			{Title: "a", Subject: "b", ExtractedContent: strings.Repeat("query ", 1000), CreatedAt: now},
			{},
			{Title: "query query query", Subject: "query", ExtractedContent: "query", CreatedAt: now},
		}
		for _, doc := range docs {
			score := scorer.Score(doc, "query", now)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}
	})
}

func TestLexicalScorer_Highlights(t *testing.T) {
	scorer := NewLexicalScorer(DefaultScoringPolicy())

	t.Run("matching sentences in source order", func(t *testing.T) {
		content := "Fractions are parts of a whole. The sky is blue. Adding fractions needs common denominators."
		highlights := scorer.Highlights(content, "fractions")

		assert.Equal(t, []string{
			"Fractions are parts of a whole.",
			"Adding fractions needs common denominators.",
		}, highlights)
	})

	t.Run("capped at three", func(t *testing.T) {
		content := "Water is vital. Water flows downhill. Water evaporates. Water condenses. Water freezes."
		highlights := scorer.Highlights(content, "water")

		assert.Len(t, highlights, 3)
		assert.Equal(t, "Water is vital.", highlights[0])
	})

	t.Run("long sentences truncated with ellipsis", func(t *testing.T) {
		long := "Water " + strings.Repeat("flows and flows and flows ", 10) + "endlessly."
		highlights := scorer.Highlights(long, "water")

		assert.Len(t, highlights, 1)
		assert.Len(t, highlights[0], 153)
		assert.True(t, strings.HasSuffix(highlights[0], "..."))
	})

	t.Run("short query words ignored", func(t *testing.T) {
		// "of" and "in" are below the length threshold
		highlights := scorer.Highlights("Full of wonder. Deep in thought.", "of in")
		assert.Empty(t, highlights)
	})

	t.Run("no matches yields empty", func(t *testing.T) {
		highlights := scorer.Highlights("Nothing relevant here.", "chemistry")
		assert.Empty(t, highlights)
	})

	t.Run("multi-word query matches any word", func(t *testing.T) {
		content := "Rivers shape the land. Mountains rise slowly. Valleys form between them."
		highlights := scorer.Highlights(content, "rivers valleys")

		assert.Equal(t, []string{
			"Rivers shape the land.",
			"Valleys form between them.",
		}, highlights)
	})
}

func TestScoringPolicy_Defaults(t *testing.T) {
	p := DefaultScoringPolicy()
	assert.Equal(t, 10.0, p.TitleMatch)
	assert.Equal(t, 8.0, p.SubjectMatch)
	assert.Equal(t, 2.0, p.ContentOccurrence)
	assert.Equal(t, 5.0, p.TitleBonus)
	assert.Equal(t, 3.0, p.ContentBonus)
	assert.Equal(t, 1.0, p.RecencyBonus)
	assert.Equal(t, 30, p.RecencyWindowDays)
	assert.Equal(t, 100.0, p.MaxRawScore)
}
