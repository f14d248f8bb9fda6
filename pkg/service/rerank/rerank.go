// Package rerank reorders retrieval hits by blending vector similarity with
// tag-set overlap.
package rerank

import (
	"sort"

	"github.com/m-mizutani/burrow/pkg/model"
)

// Jaccard computes |a ∩ b| / |a ∪ b| over two tag sets. Both sets empty is
// defined as 0.
func Jaccard(a, b []string) float64 {
	sa := make(map[string]bool, len(a))
	for _, t := range a {
		sa[t] = true
	}
	sb := make(map[string]bool, len(b))
	for _, t := range b {
		sb[t] = true
	}

	union := len(sb)
	inter := 0
	for t := range sa {
		if sb[t] {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Apply fills in the combined score of each hit and reorders hits descending
// by it. Combined = alpha*similarity + beta*jaccard(hit tags, refTags); alpha
// and beta are caller-supplied and unconstrained in range. The sort is stable,
// so exact ties keep their input order. When disabled, the input ordering is
// preserved and Combined mirrors Similarity.
func Apply(hits []*model.SearchHit, refTags []string, alpha, beta float64, enabled bool) {
	if !enabled {
		for _, h := range hits {
			h.Combined = h.Similarity
		}
		return
	}

	for _, h := range hits {
		overlap := Jaccard(h.Fragment.TagSet, refTags)
		h.Combined = alpha*h.Similarity + beta*overlap
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Combined > hits[j].Combined
	})
}
