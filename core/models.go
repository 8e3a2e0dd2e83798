package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Document is a processed educational document. The upstream processing
// pipeline owns it; once processing completes it only changes on reprocessing.
type Document struct {
	Id               ID
	Title            string
	Subject          string
	Grade            string
	DocumentType     string
	ExtractedContent string
	UploadedBy       string
	ContentHash      ID     // IDFromContent of ExtractedContent, used for ingest dedup
	ViewCount        uint64 // popularity signal for sorting
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DocumentChunk is a bounded, ordered slice of a document's extracted text.
// A document's chunk set is regenerated as a whole whenever its content changes.
type DocumentChunk struct {
	DocumentId    ID
	ChunkIndex    int
	Content       string
	WordCount     int
	StartSentence int // index of the chunk's first sentence within the document
	Vector        []float32 // Embedding vector, populated by the embedding processor
}

// Checkpoint records the last entity a background processor completed.
type Checkpoint struct {
	ProcessorType string
	LastID        ID
	UpdatedAt     time.Time
}

// SortField selects the datastore ordering for candidate fetches.
type SortField string

const (
	SortByRelevance  SortField = "relevance"
	SortByDate       SortField = "date"
	SortByPopularity SortField = "popularity"
	SortByTitle      SortField = "title"
)

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// DocumentFilter selects the candidate set for a search. All fields are
// optional; the zero value matches every document.
type DocumentFilter struct {
	Subject      string
	Grade        string
	DocumentType string
	UploadedBy   string
	Tags         []string
	DateFrom     *time.Time
	DateTo       *time.Time
}

// Matches reports whether a document belongs to the filter's candidate set.
// Subject, grade, type and uploader match exactly; date bounds are inclusive.
// Tags match as an OR of case-insensitive substring checks against the
// extracted content rather than a structured tag index.
func (f *DocumentFilter) Matches(doc *Document) bool {
	if f == nil {
		return true
	}
	if f.Subject != "" && doc.Subject != f.Subject {
		return false
	}
	if f.Grade != "" && doc.Grade != f.Grade {
		return false
	}
	if f.DocumentType != "" && doc.DocumentType != f.DocumentType {
		return false
	}
	if f.UploadedBy != "" && doc.UploadedBy != f.UploadedBy {
		return false
	}
	if f.DateFrom != nil && doc.CreatedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && doc.CreatedAt.After(*f.DateTo) {
		return false
	}
	if len(f.Tags) > 0 && !matchesAnyTag(doc.ExtractedContent, f.Tags) {
		return false
	}
	return true
}

// SearchQuery is a search request. Use NewSearchQuery to get a request with
// defaults applied; Validate rejects malformed requests before retrieval.
type SearchQuery struct {
	Query     string
	Filter    DocumentFilter
	SortBy    SortField
	SortOrder SortOrder
	Page      int
	Limit     int
}

// NewSearchQuery creates a search request with defaults: page 1, limit 10,
// sorted by relevance descending.
func NewSearchQuery(query string) *SearchQuery {
	return &SearchQuery{
		Query:     query,
		SortBy:    SortByRelevance,
		SortOrder: SortDesc,
		Page:      1,
		Limit:     10,
	}
}

// Skip returns the number of candidates to skip for the requested page.
func (q *SearchQuery) Skip() int {
	return (q.Page - 1) * q.Limit
}

// SearchResult is one scored document in a search response.
type SearchResult struct {
	Id           ID
	Title        string
	Snippet      string
	Relevance    float64 // Normalized to [0,1]
	Highlights   []string
	Subject      string
	Grade        string
	DocumentType string
	UploadedBy   string
	CreatedAt    time.Time
}

// SearchStats describes the full filtered candidate set behind one page of results.
type SearchStats struct {
	TotalResults uint64
	TotalPages   int
	CurrentPage  int
	QueryTime    time.Duration
	Facets       Facets
}

// TotalPages computes ceil(total/limit). Limit must be positive.
func TotalPages(total uint64, limit int) int {
	return int(math.Ceil(float64(total) / float64(limit)))
}

// SearchResponse is the complete result of a search operation.
type SearchResponse struct {
	Results []*SearchResult
	Stats   SearchStats
}

// FacetCount is one aggregated group within a facet dimension.
type FacetCount struct {
	Value string
	Count uint64
}

// Facets holds grouped counts over the filtered candidate set,
// independent of pagination.
type Facets struct {
	Subjects      []FacetCount
	Grades        []FacetCount
	DocumentTypes []FacetCount
	Dates         []FacetCount
}

// ChunkMatch is a chunk-level vector similarity hit.
type ChunkMatch struct {
	Chunk *DocumentChunk
	Score float32
}
