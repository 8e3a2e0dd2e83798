package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/poiesic/elimu/core"
	"github.com/poiesic/elimu/storage"
)

// FacetAggregator computes grouped counts over the filtered candidate set.
// The four group-by queries are independent and run concurrently.
type FacetAggregator struct {
	repository storage.DocumentRepository
}

// NewFacetAggregator creates an aggregator over a document repository.
func NewFacetAggregator(repository storage.DocumentRepository) *FacetAggregator {
	return &FacetAggregator{repository: repository}
}

// Aggregate computes subject, grade, document type, and date bucket counts
// for documents matching the filter. Pagination never affects facets; they
// always describe the whole candidate set.
func (a *FacetAggregator) Aggregate(ctx context.Context, filter *core.DocumentFilter) (*core.Facets, error) {
	var (
		wg     sync.WaitGroup
		facets core.Facets
		errs   [4]error
	)

	groupInto := func(dimension storage.Dimension, dst *[]core.FacetCount, errSlot *error) {
		defer wg.Done()
		counts, err := a.repository.GroupBy(ctx, dimension, filter)
		if err != nil {
			*errSlot = fmt.Errorf("group by %s: %w", dimension, err)
			return
		}
		*dst = counts
	}

	wg.Add(4)
	go groupInto(storage.DimensionSubject, &facets.Subjects, &errs[0])
	go groupInto(storage.DimensionGrade, &facets.Grades, &errs[1])
	go groupInto(storage.DimensionType, &facets.DocumentTypes, &errs[2])
	go groupInto(storage.DimensionDate, &facets.Dates, &errs[3])
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return &facets, nil
}
