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

// Package chunker splits extracted document text into sentence-aligned
// chunks sized for embedding.
package chunker

import (
	"strings"

	"github.com/poiesic/elimu/core"
)

const (
	// DefaultMaxChunkSize is the chunk size cap in characters.
	DefaultMaxChunkSize = 1000

	// minFragmentLength filters out noise left over from sentence
	// splitting (stray abbreviations, list markers, page numbers).
	minFragmentLength = 10
)

// Chunker splits document content into chunks that never cross a sentence
// boundary. A single sentence longer than the cap is kept whole rather
// than cut mid-sentence.
type Chunker struct {
	maxChunkSize int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithMaxChunkSize overrides the chunk size cap. Non-positive values are
// ignored.
func WithMaxChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.maxChunkSize = size
		}
	}
}

// New creates a Chunker with the default size cap.
func New(opts ...Option) *Chunker {
	c := &Chunker{maxChunkSize: DefaultMaxChunkSize}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chunk splits content into ordered chunks for the given document. Chunks
// are built by accumulating whole sentences until adding the next one
// would exceed the size cap. Any non-blank content yields at least one
// chunk: if fragment filtering discards every sentence, the trimmed text
// becomes a single chunk. Returns nil only for empty or whitespace content.
func (c *Chunker) Chunk(docID core.ID, content string) []*core.DocumentChunk {
	sentences := splitSentences(content)
	if len(sentences) == 0 {
		trimmed := strings.TrimSpace(content)
		if trimmed == "" {
			return nil
		}
		return []*core.DocumentChunk{{
			DocumentId: docID,
			Content:    trimmed,
			WordCount:  len(strings.Fields(trimmed)),
		}}
	}

	var (
		chunks        []*core.DocumentChunk
		buf           strings.Builder
		startSentence int
	)

	flush := func(nextStart int) {
		if buf.Len() == 0 {
			return
		}
		text := buf.String()
		chunks = append(chunks, &core.DocumentChunk{
			DocumentId:    docID,
			ChunkIndex:    len(chunks),
			Content:       text,
			WordCount:     len(strings.Fields(text)),
			StartSentence: startSentence,
		})
		buf.Reset()
		startSentence = nextStart
	}

	for i, sentence := range sentences {
		if buf.Len() > 0 && buf.Len()+1+len(sentence) > c.maxChunkSize {
			flush(i)
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(sentence)
	}
	flush(len(sentences))

	return chunks
}

// splitSentences breaks text on terminal punctuation and discards
// fragments too short to carry meaning.
func splitSentences(text string) []string {
	var (
		sentences []string
		buf       strings.Builder
	)

	emit := func() {
		s := strings.TrimSpace(buf.String())
		buf.Reset()
		if len(s) >= minFragmentLength {
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
