// Package retrieval selects reference excerpts for a specification by
// similarity against the embedding index.
package retrieval

import (
	"strings"

	"github.com/google/uuid"

	"github.com/metakael/programme-outline/index"
	"github.com/metakael/programme-outline/models"
)

const (
	defaultTopK = 6

	// Score floor at full style adherence. The effective threshold scales
	// linearly with the specification's adherence weight, so raising the
	// weight never admits excerpts it previously rejected.
	defaultThresholdCeiling = 0.35
)

// Retriever answers excerpt queries against the current index snapshot.
// Stateless apart from configuration; safe for concurrent use.
type Retriever struct {
	idx              *index.Index
	topK             int
	thresholdCeiling float64
}

// Option configures a Retriever
type Option func(*Retriever)

// WithTopK overrides how many excerpts a selection may return
func WithTopK(k int) Option {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithThresholdCeiling overrides the similarity floor applied at full
// style adherence
func WithThresholdCeiling(ceiling float64) Option {
	return func(r *Retriever) {
		if ceiling > 0 {
			r.thresholdCeiling = ceiling
		}
	}
}

// New creates a retriever reading from idx
func New(idx *index.Index, opts ...Option) *Retriever {
	r := &Retriever{
		idx:              idx,
		topK:             defaultTopK,
		thresholdCeiling: defaultThresholdCeiling,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// QueryText composes the retrieval query for a specification from its
// objectives and any required segment titles.
func QueryText(spec models.Specification) string {
	parts := make([]string, 0, 1+len(spec.Segments))
	if spec.Objectives != "" {
		parts = append(parts, spec.Objectives)
	}
	for _, seg := range spec.Segments {
		if seg.Title != "" {
			parts = append(parts, seg.Title)
		}
	}
	return strings.Join(parts, "\n")
}

// Select retrieves excerpts for the specification. An empty reference id
// list means the whole corpus; an empty index or an over-strict threshold
// yields an empty result, and generation proceeds without excerpts.
func (r *Retriever) Select(spec models.Specification) []models.Excerpt {
	return r.SelectQuery(QueryText(spec), spec.ReferenceIDs, spec.StyleAdherence)
}

// SelectQuery is Select with an explicit query, used when regenerating a
// single segment where the query centers on that segment instead of the
// whole specification.
func (r *Retriever) SelectQuery(query string, referenceIDs []uuid.UUID, styleAdherence float64) []models.Excerpt {
	snap := r.idx.Current()
	if snap.Len() == 0 {
		return nil
	}

	var filter func(index.Entry) bool
	if len(referenceIDs) > 0 {
		allowed := make(map[uuid.UUID]struct{}, len(referenceIDs))
		for _, id := range referenceIDs {
			allowed[id] = struct{}{}
		}
		filter = func(e index.Entry) bool {
			_, ok := allowed[e.ReferenceID]
			return ok
		}
	}

	hits := snap.Search(snap.Embed(query), 0, filter)

	minScore := clamp01(styleAdherence) * r.thresholdCeiling
	excerpts := make([]models.Excerpt, 0, r.topK)
	for _, hit := range hits {
		if hit.Score < minScore {
			// Hits are sorted by score; everything after is below too.
			break
		}
		excerpts = append(excerpts, models.Excerpt{
			ReferenceID:    hit.Entry.ReferenceID,
			ReferenceTitle: hit.Entry.ReferenceTitle,
			SegmentTitle:   hit.Entry.SegmentTitle,
			Text:           hit.Entry.Text,
			Score:          hit.Score,
		})
		if len(excerpts) == r.topK {
			break
		}
	}

	if len(excerpts) == 0 {
		return nil
	}
	return excerpts
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
