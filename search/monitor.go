package search

import (
	"github.com/poiesic/elimu/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterCount(total uint64)
	AfterFetch(docs []*core.Document)
	AfterFacets(facets *core.Facets)
	EmbeddingReady(dimensions int)
	EmbeddingDegraded(err error)
	AfterScoring(results []*core.SearchResult)
	Finish(response *core.SearchResponse)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                        {}
func (n *noopMonitor) AfterCount(_ uint64)                   {}
func (n *noopMonitor) AfterFetch(_ []*core.Document)         {}
func (n *noopMonitor) AfterFacets(_ *core.Facets)            {}
func (n *noopMonitor) EmbeddingReady(_ int)                  {}
func (n *noopMonitor) EmbeddingDegraded(_ error)             {}
func (n *noopMonitor) AfterScoring(_ []*core.SearchResult)   {}
func (n *noopMonitor) Finish(_ *core.SearchResponse)         {}
