package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/elimu/core"
)

func TestChunk_SingleSentence(t *testing.T) {
	c := New()
	chunks := c.Chunk(1, "Photosynthesis converts sunlight into chemical energy.")

	require.Len(t, chunks, 1)
	assert.Equal(t, core.ID(1), chunks[0].DocumentId)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, 0, chunks[0].StartSentence)
	assert.Equal(t, 6, chunks[0].WordCount)
}

func TestChunk_EmptyContent(t *testing.T) {
	c := New()
	assert.Nil(t, c.Chunk(1, ""))
	assert.Nil(t, c.Chunk(1, "   \n\t  "))
}

func TestChunk_DiscardsShortFragments(t *testing.T) {
	c := New()
	chunks := c.Chunk(1, "Ch. 4. The water cycle moves moisture between land and sky.")

	require.Len(t, chunks, 1)
	assert.Equal(t, "The water cycle moves moisture between land and sky.", chunks[0].Content)
}

func TestChunk_AllFragmentsFiltered(t *testing.T) {
	c := New()
	chunks := c.Chunk(1, "1. 2. 3. iv. v.")

	// Every fragment is below the minimum length, but non-blank content
	// must still produce a chunk.
	require.Len(t, chunks, 1)
	assert.Equal(t, core.ID(1), chunks[0].DocumentId)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, "1. 2. 3. iv. v.", chunks[0].Content)
	assert.Equal(t, 5, chunks[0].WordCount)
}

func TestChunk_AccumulatesUpToCap(t *testing.T) {
	sentence := "This sentence has exactly forty-five chars." // 43 chars
	content := strings.Repeat(sentence+" ", 10)

	c := New(WithMaxChunkSize(100))
	chunks := c.Chunk(1, content)

	// Two 43-char sentences joined by a space fit in 100; a third does not.
	require.Len(t, chunks, 5)
	for i, ch := range chunks {
		assert.Equal(t, i, ch.ChunkIndex)
		assert.LessOrEqual(t, len(ch.Content), 100)
		assert.Equal(t, i*2, ch.StartSentence)
	}
}

func TestChunk_OversizedSentenceKeptWhole(t *testing.T) {
	long := "This single sentence runs well past the configured chunk size cap because it keeps adding clauses without ever reaching terminal punctuation until the very end."
	c := New(WithMaxChunkSize(50))
	chunks := c.Chunk(1, long)

	require.Len(t, chunks, 1)
	assert.Equal(t, long, chunks[0].Content)
	assert.Greater(t, len(chunks[0].Content), 50)
}

func TestChunk_OversizedSentenceFlushesBuffer(t *testing.T) {
	content := "Short opening sentence here. " +
		"Now a very long sentence that cannot share a chunk with anything else because it alone exceeds the cap entirely. " +
		"Closing sentence follows after."

	c := New(WithMaxChunkSize(60))
	chunks := c.Chunk(1, content)

	require.Len(t, chunks, 3)
	assert.Equal(t, "Short opening sentence here.", chunks[0].Content)
	assert.Equal(t, 1, chunks[1].StartSentence)
	assert.Equal(t, 2, chunks[2].StartSentence)
}

func TestChunk_OrderPreserved(t *testing.T) {
	content := "First sentence of the lesson. Second sentence of the lesson. Third sentence of the lesson."
	c := New(WithMaxChunkSize(35))
	chunks := c.Chunk(7, content)

	require.Len(t, chunks, 3)
	assert.Contains(t, chunks[0].Content, "First")
	assert.Contains(t, chunks[1].Content, "Second")
	assert.Contains(t, chunks[2].Content, "Third")
	for i, ch := range chunks {
		assert.Equal(t, core.ID(7), ch.DocumentId)
		assert.Equal(t, i, ch.ChunkIndex)
	}
}

func TestChunk_MixedTerminators(t *testing.T) {
	content := "Is rainfall seasonal here? It certainly is in the highlands! Records confirm the bimodal pattern."
	c := New(WithMaxChunkSize(40))
	chunks := c.Chunk(1, content)

	require.Len(t, chunks, 3)
}

func TestChunk_NoTerminalPunctuation(t *testing.T) {
	c := New()
	chunks := c.Chunk(1, "heading without any closing punctuation at all")

	require.Len(t, chunks, 1)
	assert.Equal(t, "heading without any closing punctuation at all", chunks[0].Content)
}

func TestWithMaxChunkSize_IgnoresInvalid(t *testing.T) {
	c := New(WithMaxChunkSize(0))
	assert.Equal(t, DefaultMaxChunkSize, c.maxChunkSize)

	c = New(WithMaxChunkSize(-10))
	assert.Equal(t, DefaultMaxChunkSize, c.maxChunkSize)
}
